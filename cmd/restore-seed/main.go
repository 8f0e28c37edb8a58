// restore-seed is a one-shot tool that loads the demo companies, logins and
// records into PostgreSQL. Run it on a fresh database, or when the demo data
// has been changed by bulk actions and needs resetting.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"os"

	"bizdesk/internal/db"
	"bizdesk/internal/source"
	"bizdesk/internal/views"
	"bizdesk/migrations"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	catalogue, err := views.Load(os.Getenv("VIEWS_FILE"))
	if err != nil {
		log.Fatalf("Failed to load views: %v", err)
	}

	log.Println("Restoring demo data...")
	if err := source.SeedDemo(ctx, pool, catalogue); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Println("Seed data restored successfully.")
}
