package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to signal all components
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Wait for all goroutines
	a.wg.Wait()

	a.closeResources()

	a.logger.Info("application-shutdown-complete")

	return nil
}

// closeResources releases everything setup opened. Safe on a partially
// built App.
func (a *App) closeResources() {
	a.unsubscribe()

	if a.journal != nil {
		err := a.journal.Close()
		if err != nil {
			a.logger.Error("journal-close-error", zap.Error(err))
		}
	}

	if a.rpc != nil {
		a.rpc.Close()
	}

	if a.pageCache != nil {
		a.pageCache.Close()
	}
}
