package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"bizdesk/internal/core"
	"bizdesk/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	hash, err := core.HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE users, companies RESTART IDENTITY CASCADE;
		INSERT INTO companies (id, company_code, name) VALUES (1, 'ACME', 'Acme Corp');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO users (company_id, username, name, email, password_hash, role, is_active) VALUES
		(1, 'dana', 'Dana Admin', 'dana@acme.test', $1, 'admin', true),
		(1, 'gone', 'Former', 'gone@acme.test', $1, 'employee', false)`,
		hash,
	)
	if err != nil {
		t.Fatalf("Failed to seed users: %v", err)
	}
	return pool
}

func TestUserService_Authenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewUserService(pool)

	t.Run("ValidCredentials", func(t *testing.T) {
		s, err := svc.Authenticate(ctx, "dana", "secret")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if s.Role != core.RoleAdmin || s.CompanyID != 1 || s.Name != "Dana Admin" {
			t.Errorf("unexpected session %+v", s)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "dana", "nope"); !errors.Is(err, core.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("InactiveUser", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "gone", "secret"); !errors.Is(err, core.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("GetByID_Missing", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, 999); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
