package shared

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// SetupSignalHandlerWithLogger creates a context that is cancelled on interrupt signals and logs
func SetupSignalHandlerWithLogger(logger *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
		cancel()
	}()

	return ctx
}
