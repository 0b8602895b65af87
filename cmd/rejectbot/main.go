package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/api"
	"github.com/DevRickLin/reject-console/internal/di"
	"github.com/DevRickLin/reject-console/internal/server"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run starts the bot and the ops API and blocks until a shutdown signal
func run(logger *zap.Logger, srv *server.FeishuServer, apiServer *api.Server) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if apiServer.Enabled() {
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("API server error", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	logger.Info("Reject console started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error("Server error", zap.Error(runErr))
		}
	}

	srv.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("Failed to stop API server", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return runErr
}
