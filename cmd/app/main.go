package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bizdesk/internal/adapters/cli"
	"bizdesk/internal/app"
	"bizdesk/internal/config"
	"bizdesk/internal/source"
	"bizdesk/internal/views"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(func(ctx context.Context) (app.ApplicationService, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("config: %w", err)
		}
		src, closeSrc, err := source.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		catalogue, err := views.Load(cfg.ViewsFile)
		if err != nil {
			closeSrc()
			return nil, nil, fmt.Errorf("views: %w", err)
		}
		svc := app.NewAppService(src, catalogue, views.BuildOptions{
			Location:       cfg.Location,
			PrimaryColumns: cfg.PrimaryColumns,
		})
		return svc, closeSrc, nil
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
