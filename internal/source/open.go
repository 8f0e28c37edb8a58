package source

import (
	"context"
	"fmt"
	"log"

	"bizdesk/internal/config"
	"bizdesk/internal/db"
)

// Open returns the source selected by cfg.RowSource. The returned close
// function releases its resources and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Source, func(), error) {
	switch cfg.RowSource {
	case config.SourceAPI:
		log.Printf("row source: REST backend at %s", cfg.APIBaseURL)
		return NewAPISource(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout), func() {}, nil
	case config.SourcePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		log.Printf("row source: PostgreSQL")
		return NewPostgresSource(pool), pool.Close, nil
	case config.SourceStatic:
		st, err := Demo()
		if err != nil {
			return nil, nil, err
		}
		log.Printf("row source: built-in demo data (password %q)", DemoPassword)
		return st, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown row source %q", cfg.RowSource)
}
