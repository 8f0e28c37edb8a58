package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "bizdesk/internal/adapters/web"
	"bizdesk/internal/app"
	"bizdesk/internal/config"
	"bizdesk/internal/source"
	"bizdesk/internal/views"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := source.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("source: %v", err)
	}
	defer closeSrc()

	catalogue, err := views.Load(cfg.ViewsFile)
	if err != nil {
		log.Fatalf("views: %v", err)
	}

	svc := app.NewAppService(src, catalogue, views.BuildOptions{
		Location:       cfg.Location,
		PrimaryColumns: cfg.PrimaryColumns,
		BasePath:       "/v",
	})

	handler := webAdapter.NewHandler(ctx, svc, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.SecureCookies,
		Location:       cfg.Location,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("server starting on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server: %v", err)
	}
}
