package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/di"
	"github.com/DevRickLin/reject-console/internal/service"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: post-rejects <chat_id>")
		os.Exit(1)
	}
	chatID := os.Args[1]

	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	err = container.Invoke(func(logger *zap.Logger, consoleSvc *service.ConsoleService) error {
		defer logger.Sync()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return consoleSvc.PostBlockedList(ctx, chatID)
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Reject list posted successfully!")
}
