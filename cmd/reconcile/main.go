// Command reconcile rebuilds missing connection rows from accepted
// requests. Safe to run repeatedly; realization is idempotent.
package main

import (
	"context"
	"log"
	"time"

	"studymesh/internal/cache"
	"studymesh/internal/config"
	"studymesh/internal/database"
	"studymesh/internal/repository"
	"studymesh/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)

	connRepo := repository.NewConnectionRepository(db)
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)

	chatService := service.NewChatService(chatRepo)
	connectionService := service.NewConnectionService(connRepo, userRepo, chatService)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, err := connectionService.Reconcile(ctx)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	log.Printf("Reconciliation complete: %d connections realized", created)
}
