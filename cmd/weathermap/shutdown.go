package main

import (
	"context"
	"log/slog"
)

type httpShutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown drains HTTP first so handlers still in flight can publish, then
// stops the dispatcher and waits for its final flush.
func shutdown(ctx context.Context, srv httpShutdowner, stopDispatcher context.CancelFunc, dispatcherDone <-chan struct{}, logger *slog.Logger) {
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	stopDispatcher()
	select {
	case <-dispatcherDone:
	case <-ctx.Done():
		logger.Warn("event dispatcher did not stop before shutdown timeout")
	}
}
