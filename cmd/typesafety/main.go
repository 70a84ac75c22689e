package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/typesafety/internal/cli"
)

// main is the entrypoint for the typesafety command.
func main() {
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) (err error) {
	// A panic from a registered predicate is reported instead of crashing.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("typesafety panicked: %v", r)
		}
	}()

	return cli.Run(ctx, args, outW, errW)
}
