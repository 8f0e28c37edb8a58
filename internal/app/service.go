package app

import (
	"context"

	"bizdesk/internal/core"
	"bizdesk/internal/views"
)

// ApplicationService is the single interface all UI adapters (CLI, REPL, Web) call.
// It decouples presentation from data access. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
// Every call takes the session explicitly; there is no ambient user.
type ApplicationService interface {
	// Authenticate verifies credentials and returns the session on success.
	Authenticate(ctx context.Context, username, password string) (core.SessionContext, error)

	// Views returns the views the session may open, in catalogue order.
	Views(s core.SessionContext) []views.Definition

	// ListView loads a view's rows and mounts a table with the request's state applied.
	ListView(ctx context.Context, s core.SessionContext, req ListRequest) (*ListResult, error)

	// Record returns a single row of a view by id.
	Record(ctx context.Context, s core.SessionContext, view, id string) (*RecordResult, error)

	// Dashboard returns the role-specific overview: row counts per view and money totals.
	Dashboard(ctx context.Context, s core.SessionContext) (*DashboardResult, error)

	// PlanBulk validates a bulk request without running it and returns what
	// would be affected, for confirmation.
	PlanBulk(ctx context.Context, s core.SessionContext, req BulkRequest) (*BulkPlan, error)

	// BulkAction runs a previously planned bulk request.
	BulkAction(ctx context.Context, s core.SessionContext, req BulkRequest) (*BulkResult, error)
}
