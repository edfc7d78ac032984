// Package app wires configuration, storage, services and the controller
// into the interactive authcore program and runs it until the user exits
// or the process is signalled.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authcore/internal/auth"
	"github.com/dmitrijs2005/authcore/internal/cli"
	"github.com/dmitrijs2005/authcore/internal/config"
	"github.com/dmitrijs2005/authcore/internal/controller"
	"github.com/dmitrijs2005/authcore/internal/hashing"
	"github.com/dmitrijs2005/authcore/internal/logging"
	"github.com/dmitrijs2005/authcore/internal/notify"
	"github.com/dmitrijs2005/authcore/internal/repositories/repomanager"
	"github.com/dmitrijs2005/authcore/internal/services"
	"github.com/dmitrijs2005/authcore/internal/timex"
)

// Seams for tests.
var (
	openStorage = repomanager.Open
	newS3Client = func(ctx context.Context, s notify.S3Settings) (notify.PutObjectAPI, error) {
		return notify.NewS3Client(ctx, s)
	}
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	controller *controller.Controller
	in         io.Reader
	out        io.Writer
	sentry     bool
}

// NewApp builds an App reading from stdin, printing to stdout and logging
// JSON to stderr.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdin, os.Stdout, os.Stderr)
}

func newApp(ctx context.Context, c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	var logger logging.Logger = logging.NewJSONLogger(logOut, c.LogLevel)
	sentryOn := false
	if c.SentryDSN != "" {
		if err := logging.InitSentry(c.SentryDSN, c.Environment); err != nil {
			return nil, fmt.Errorf("sentry init error: %w", err)
		}
		logger = logging.NewSentryLogger(logger, nil)
		sentryOn = true
	}

	hasher, err := hashing.New(c.Hasher, c.BcryptCost)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	openCtx, cancel := context.WithTimeout(ctx, c.StorageTimeout)
	defer cancel()

	db, rm, err := openStorage(openCtx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	svc := services.NewAccountService(db, rm, services.Options{
		Hasher:         hasher,
		Clock:          timex.SystemClock{},
		Policy:         c.Policy(),
		StorageTimeout: c.StorageTimeout,
		Logger:         logger.With("module", "services"),
	})

	ctl := controller.New(svc, controller.Options{
		MaxTries: c.MaxTries,
		Notifier: notifier,
		Issuer: &auth.Issuer{
			Secret:  []byte(c.ActivationSecret),
			TTL:     c.ActivationTTL,
			BaseURL: c.ActivationBaseURL,
		},
		Logger: logger,
	})

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		controller: ctl,
		in:         in,
		out:        out,
		sentry:     sentryOn,
	}, nil
}

func newNotifier(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Notifier, error) {
	switch c.Notifier {
	case config.NotifierS3:
		client, err := newS3Client(ctx, notify.S3Settings{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 client error: %w", err)
		}
		return notify.NewS3Outbox(client, c.S3Bucket), nil
	default:
		return notify.NewLogNotifier(logger), nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if _, ok := <-sigs; ok {
			cancelFunc()
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(sigs)
	}
}

// Run serves the menu until the user exits, input ends or a signal
// arrives, then waits for pending notifications and closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	done := make(chan error, 1)
	go func() {
		done <- cli.RunREPL(ctx, app.controller, cli.NewTerminal(app.in, app.out))
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
	}

	app.Close(context.WithoutCancel(ctx))
	return err
}

// Close waits for pending notifications and releases storage.
func (app *App) Close(ctx context.Context) {
	app.controller.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	if app.sentry {
		logging.FlushSentry()
	}
	app.logger.Info(ctx, "stopped")
}
