// Package source loads the rows behind a view and applies bulk actions to them.
package source

import (
	"context"
	"fmt"
	"strings"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

// RowSource returns the records of a view as seen by a session.
type RowSource interface {
	Rows(ctx context.Context, s core.SessionContext, def views.Definition) ([]datatable.Row, error)
}

// BulkRunner applies a bulk action to records of a view and returns how many
// records were affected.
type BulkRunner interface {
	Bulk(ctx context.Context, s core.SessionContext, def views.Definition, action string, ids []string) (int, error)
}

// Source is everything the application needs from a backend.
type Source interface {
	RowSource
	BulkRunner
	core.Authenticator
}

// BulkOp is a decoded bulk action value.
type BulkOp struct {
	Delete bool
	Status string
}

// ParseBulk decodes "delete" or "status:<value>".
func ParseBulk(action string) (BulkOp, error) {
	if action == "delete" {
		return BulkOp{Delete: true}, nil
	}
	if status, ok := strings.CutPrefix(action, "status:"); ok && strings.TrimSpace(status) != "" {
		return BulkOp{Status: strings.TrimSpace(status)}, nil
	}
	return BulkOp{}, fmt.Errorf("bulk action %q: %w", action, core.ErrInvalidInput)
}
