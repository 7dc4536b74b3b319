package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, cleanup := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	err := cmd.ExecuteContext(ctx)
	cleanup()
	if err != nil {
		if !errors.Is(err, errReported) {
			cmd.PrintErrln("Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
