package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/di"
	"github.com/DevRickLin/reject-console/internal/mcp"
)

// This MCP server exposes the reject list tools over stdio. Stdout carries
// the protocol, so all logging goes to stderr.

func main() {
	_ = godotenv.Load()

	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, server *mcp.RejectMCPServer) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server starting on stdio")
	return server.Run(ctx)
}
