// verify-db applies pending migrations and checks that every view in the
// catalogue can be served by the PostgreSQL row source.
//
// Usage: go run ./cmd/verify-db
package main

import (
	"context"
	"log"
	"os"
	"time"

	"bizdesk/internal/db"
	"bizdesk/internal/source"
	"bizdesk/internal/views"
	"bizdesk/migrations"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer pool.Close()
	log.Println("[CONNECT] success")

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("[MIGRATE] %v", err)
	}
	log.Println("[MIGRATE] schema up to date")

	catalogue, err := views.Load(os.Getenv("VIEWS_FILE"))
	if err != nil {
		log.Fatalf("[VIEWS] %v", err)
	}

	problems, err := source.CheckSchema(ctx, pool, catalogue.All())
	if err != nil {
		log.Fatalf("[CHECK] %v", err)
	}
	if len(problems) == 0 {
		log.Printf("[DONE] %d views verified.", len(catalogue.All()))
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"VIEW", "TABLE", "MISSING"})
	for _, p := range problems {
		missing := p.Column
		if missing == "" {
			missing = "(table)"
		}
		tw.AppendRow(table.Row{p.View, p.Table, missing})
	}
	tw.Render()
	pool.Close()
	log.Fatalf("[CHECK] %d problem(s) found", len(problems))
}
