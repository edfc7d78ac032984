package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/authcore/internal/app"
	"github.com/dmitrijs2005/authcore/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}
