package source_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"bizdesk/internal/core"
	"bizdesk/internal/source"
	"bizdesk/internal/views"
	"bizdesk/migrations"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE invoices, bulk_actions, users, companies RESTART IDENTITY CASCADE;
		INSERT INTO companies (id, company_code, name) VALUES (1, 'ACME', 'Acme Corp'), (2, 'INIT', 'Initech');
		INSERT INTO invoices (company_id, invoice_number, client_name, amount, status, issue_date) VALUES
			(1, 'INV-1', 'Globex', 1250.50, 'Unpaid', '2024-01-15'),
			(1, 'INV-2', 'Umbrella', 99.00, 'Unpaid', '2024-02-01'),
			(2, 'IT-1', 'Vandelay', 10.00, 'Unpaid', '2024-02-03');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return pool
}

func TestPostgresSource(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	src := source.NewPostgresSource(pool)
	c, err := views.Load("")
	if err != nil {
		t.Fatalf("Load views: %v", err)
	}
	def, _ := c.Get("invoices")
	admin := core.SessionContext{UserID: 1, CompanyID: 1, Role: core.RoleAdmin}

	t.Run("ScopedRows", func(t *testing.T) {
		rows, err := src.Rows(ctx, admin, def)
		if err != nil {
			t.Fatalf("Rows: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows for company 1, got %d", len(rows))
		}
		amt, ok := rows[1]["amount"].(decimal.Decimal)
		if !ok || !amt.Equal(decimal.RequireFromString("1250.50")) {
			t.Errorf("expected decimal amount 1250.50, got %#v", rows[1]["amount"])
		}
		if rows[1]["issue_date"] != "2024-01-15" {
			t.Errorf("expected DATE as 2024-01-15, got %#v", rows[1]["issue_date"])
		}
		if rows[1]["due_date"] != nil {
			t.Errorf("expected NULL due_date, got %#v", rows[1]["due_date"])
		}
	})

	t.Run("SuperAdminUnscoped", func(t *testing.T) {
		rows, err := src.Rows(ctx, core.SessionContext{UserID: 1, Role: core.RoleSuperAdmin}, def)
		if err != nil {
			t.Fatalf("Rows: %v", err)
		}
		if len(rows) != 3 {
			t.Errorf("expected 3 rows, got %d", len(rows))
		}
	})

	t.Run("BulkStatusStaysInCompany", func(t *testing.T) {
		n, err := src.Bulk(ctx, admin, def, "status:Paid", []string{"1", "3"})
		if err != nil {
			t.Fatalf("Bulk: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 affected row, got %d", n)
		}
		var audited int
		if err := pool.QueryRow(ctx, `SELECT count(*) FROM bulk_actions WHERE view_name = 'invoices'`).Scan(&audited); err != nil {
			t.Fatalf("count audit: %v", err)
		}
		if audited != 1 {
			t.Errorf("expected 1 audit row, got %d", audited)
		}
	})

	t.Run("BulkRejectsUnknownAction", func(t *testing.T) {
		if _, err := src.Bulk(ctx, admin, def, "archive", []string{"1"}); !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSeedDemo(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	c, err := views.Load("")
	if err != nil {
		t.Fatalf("Load views: %v", err)
	}
	if err := source.SeedDemo(ctx, pool, c); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	// A second run replaces rows instead of failing on duplicate ids.
	if err := source.SeedDemo(ctx, pool, c); err != nil {
		t.Fatalf("SeedDemo again: %v", err)
	}

	problems, err := source.CheckSchema(ctx, pool, c.All())
	if err != nil {
		t.Fatalf("CheckSchema: %v", err)
	}
	for _, p := range problems {
		t.Errorf("schema problem: %s", p)
	}

	src := source.NewPostgresSource(pool)
	s, err := src.Authenticate(ctx, "dana", source.DemoPassword)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	def, _ := c.Get("invoices")
	rows, err := src.Rows(ctx, s, def)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("expected 4 demo invoices for Acme, got %d", len(rows))
	}
}

func TestCheckSchema_ReportsMissing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	def := views.Definition{
		Name:     "ghost",
		Resource: "ghosts",
		Columns:  []views.ColumnDef{{Key: "name"}},
	}
	broken := views.Definition{
		Name:     "invoices_plus",
		Resource: "invoices",
		Columns:  []views.ColumnDef{{Key: "invoice_number"}, {Key: "vat_number"}},
	}
	problems, err := source.CheckSchema(context.Background(), pool, []views.Definition{def, broken})
	if err != nil {
		t.Fatalf("CheckSchema: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", problems)
	}
	if problems[0].Table != "ghosts" || problems[0].Column != "" {
		t.Errorf("expected missing table ghosts, got %s", problems[0])
	}
	if problems[1].Column != "vat_number" {
		t.Errorf("expected missing column vat_number, got %s", problems[1])
	}
}
