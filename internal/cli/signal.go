package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// withInterrupt returns a context cancelled on SIGINT or SIGTERM. The
// first signal cancels in-flight work so nothing is committed; a second
// signal exits immediately.
func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
			cancel()
		case <-ctx.Done():
			return
		}

		<-sigChan
		os.Exit(130) // Standard exit code for SIGINT
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
