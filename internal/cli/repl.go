package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/authcore/internal/controller"
)

// dispatcher is the part of controller.Controller the REPL drives.
type dispatcher interface {
	Options() []controller.Operation
	Session() controller.Session
	Dispatch(ctx context.Context, op controller.Operation, p controller.Prompter) (controller.Result, error)
}

// RunREPL shows the menu for the current session state, reads a choice and
// dispatches it until the user picks 0, input ends or ctx is cancelled.
// Operation failures are printed and the loop continues; only output
// errors are returned.
func RunREPL(ctx context.Context, d dispatcher, t *Terminal) error {
	for ctx.Err() == nil {
		opts := d.Options()
		if err := printMenu(t.out, d.Session(), opts); err != nil {
			return err
		}

		choice, err := t.choice()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(t.out)
				break
			}
			return err
		}

		if choice == "0" || ctx.Err() != nil {
			break
		}

		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(opts) {
			fmt.Fprintln(t.out, "Unrecognized command.")
			fmt.Fprintln(t.out)
			continue
		}

		res, err := d.Dispatch(ctx, opts[n-1], t)
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(t.out)
			fmt.Fprintln(t.out, "Farewell!")
			return nil
		case err != nil:
			fmt.Fprintln(t.out, Message(err))
		case res.Message != "":
			fmt.Fprintln(t.out, res.Message)
		default:
			fmt.Fprintln(t.out, FormatHistory(res.History))
		}
		fmt.Fprintln(t.out)
	}

	fmt.Fprintln(t.out, "Farewell!")
	return nil
}

func printMenu(w io.Writer, s controller.Session, opts []controller.Operation) error {
	greeting := ""
	if s.LoggedIn() {
		greeting = ", " + s.Email
	}

	if _, err := fmt.Fprintf(w, "What would you like to do%s?\n", greeting); err != nil {
		return err
	}
	fmt.Fprintln(w, "0 - Exit system")
	for i, op := range opts {
		fmt.Fprintf(w, "%d - %s\n", i+1, OperationLabel(op))
	}
	return nil
}
