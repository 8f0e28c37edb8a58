package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

// SeedDemo loads DemoRows and DemoUsers into the reporting tables of pool,
// replacing rows with the same ids. Each resource is written to the table of
// the catalogue view that reads it; resources no view reads are skipped.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool, catalogue *views.Catalogue) error {
	tables := make(map[string]string)
	for _, def := range catalogue.All() {
		tables[def.Resource] = def.TableName()
	}

	data := DemoRows()
	resources := make([]string, 0, len(data))
	for r := range data {
		if r != "companies" {
			resources = append(resources, r)
		}
	}
	sort.Strings(resources)
	// Companies first: every other table references them.
	resources = append([]string{"companies"}, resources...)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, resource := range resources {
		table, ok := tables[resource]
		if !ok {
			log.Printf("[SKIP] %s: no view reads it", resource)
			continue
		}
		n, err := seedTable(ctx, tx, table, data[resource])
		if err != nil {
			return err
		}
		log.Printf("[SEED] %s: %d rows", table, n)

		if resource == "companies" {
			if err := seedUsers(ctx, tx); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// seedTable upserts rows by id. Values are converted by json_populate_record,
// so dates and amounts may be given as strings.
func seedTable(ctx context.Context, tx pgx.Tx, table string, rows []datatable.Row) (int, error) {
	rel := ident(table)
	query := fmt.Sprintf(`
		INSERT INTO %[1]s
		SELECT * FROM json_populate_record(NULL::%[1]s, $1::json)
		ON CONFLICT (id) DO NOTHING`, rel)
	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE id = $1", rel)

	for _, row := range rows {
		doc, err := json.Marshal(row)
		if err != nil {
			return 0, fmt.Errorf("encode %s row: %w", table, err)
		}
		if table != "companies" {
			if _, err := tx.Exec(ctx, deleteQuery, row["id"]); err != nil {
				return 0, fmt.Errorf("clear %s row %v: %w", table, row["id"], err)
			}
		}
		if _, err := tx.Exec(ctx, query, string(doc)); err != nil {
			return 0, fmt.Errorf("seed %s row %v: %w", table, row["id"], err)
		}
	}

	_, err := tx.Exec(ctx, fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))",
		table, rel))
	if err != nil {
		return 0, fmt.Errorf("reset %s sequence: %w", table, err)
	}
	return len(rows), nil
}

func seedUsers(ctx context.Context, tx pgx.Tx) error {
	hash, err := core.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	for _, u := range DemoUsers() {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, company_id, username, name, email, password_hash, role, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true)
			ON CONFLICT (id) DO UPDATE
			  SET company_id = EXCLUDED.company_id,
			      username = EXCLUDED.username,
			      name = EXCLUDED.name,
			      email = EXCLUDED.email,
			      password_hash = EXCLUDED.password_hash,
			      role = EXCLUDED.role,
			      is_active = true`,
			u.ID, u.CompanyID, u.Username, u.Name, u.Email, hash, string(u.Role),
		)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	_, err = tx.Exec(ctx, "SELECT setval(pg_get_serial_sequence('users', 'id'), (SELECT MAX(id) FROM users))")
	if err != nil {
		return fmt.Errorf("reset users sequence: %w", err)
	}
	log.Printf("[SEED] users: %d logins, password %q", len(DemoUsers()), DemoPassword)
	return nil
}
