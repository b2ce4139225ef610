package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"addsubs/internal/services"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(stdin)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUserCancelled):
		fmt.Fprintln(stderr, "Cancelled; nothing was changed.")
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "Interrupted; running jobs were allowed to finish.")
	case errors.Is(err, services.ErrPartialFailure):
		// The summary already lists the failed jobs.
	default:
		fmt.Fprintln(stderr, "Error:", err)
	}
	return services.ExitCode(err)
}
