package main

import (
	"context"
	"fmt"
	"log"

	"github.com/velmar/taskrelay-api/internal/config"
	"github.com/velmar/taskrelay-api/internal/database"
	"github.com/velmar/taskrelay-api/internal/services"
)

// Removes pending invitations past their expiry. Intended to run from cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	inviteService := services.NewInviteService(db)

	expired, err := inviteService.ExpireStale(ctx)
	if err != nil {
		log.Fatalf("Failed to expire invitations: %v", err)
	}

	fmt.Printf("Expired %d stale invitation(s)\n", expired)
}
