package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akeren/event-registration/config"
	"github.com/akeren/event-registration/domain"
	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/utils"
)

const defaultShutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run(log.NewLoggerWithJSONOutput()))
}

func run(logger *log.Logger) int {
	appConfig, err := config.LoadApplicationConfiguration(logger, domain.StoreInitializers(logger)...)
	if err != nil {
		logger.Error("Failed to load application configuration", "error", err)
		return 1
	}
	defer appConfig.Cleanup()

	if err := domain.SetupCoreDomain(appConfig); err != nil {
		logger.Error("Failed to set up domain", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go warmStore(ctx, appConfig, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- appConfig.RouterService.RunHTTPServer()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")

	timeout := utils.GetEnvDurationOrDefault("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := appConfig.RouterService.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return 1
	}

	logger.Info("HTTP server shut down gracefully")
	return 0
}

// warmStore dials the document store once so indexes exist before the first
// registration. The server keeps serving when the store is down; requests
// retry the connection themselves.
func warmStore(ctx context.Context, appConfig *config.ApplicationConfig, logger *log.Logger) {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := appConfig.Store.Ping(pingCtx); err != nil {
		logger.Warn("Document store not reachable at startup; serving degraded until it is", "error", err)
		return
	}
	logger.Info("Document store ready")
}
