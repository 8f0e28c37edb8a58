package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"bizdesk/internal/views"
)

// SchemaProblem is a catalogue field the database cannot serve.
type SchemaProblem struct {
	View   string
	Table  string
	Column string // empty when the table itself is missing
}

func (p SchemaProblem) String() string {
	if p.Column == "" {
		return fmt.Sprintf("%s: table %s does not exist", p.View, p.Table)
	}
	return fmt.Sprintf("%s: column %s.%s does not exist", p.View, p.Table, p.Column)
}

// CheckSchema compares the fields every view reads against the columns of its
// table and reports what is missing. The users and bulk_actions tables are
// checked as well.
func CheckSchema(ctx context.Context, pool *pgxpool.Pool, defs []views.Definition) ([]SchemaProblem, error) {
	rows, err := pool.Query(ctx, `
		SELECT table_schema, table_name, column_name
		FROM information_schema.columns
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')`)
	if err != nil {
		return nil, fmt.Errorf("read information_schema: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]map[string]bool)
	for rows.Next() {
		var schema, table, column string
		if err := rows.Scan(&schema, &table, &column); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		for _, name := range []string{schema + "." + table, table} {
			if columns[name] == nil {
				columns[name] = make(map[string]bool)
			}
			columns[name][column] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read information_schema: %w", err)
	}

	var problems []SchemaProblem
	check := func(view, table string, fields []string) {
		cols, ok := columns[strings.ToLower(table)]
		if !ok {
			problems = append(problems, SchemaProblem{View: view, Table: table})
			return
		}
		for _, f := range fields {
			if !cols[f] {
				problems = append(problems, SchemaProblem{View: view, Table: table, Column: f})
			}
		}
	}
	check("logins", "users", []string{"id", "company_id", "username", "name", "password_hash", "role", "is_active"})
	check("audit", "bulk_actions", []string{"company_id", "user_id", "view_name", "action", "record_ids"})
	for _, def := range defs {
		check(def.Name, def.TableName(), def.Fields())
	}
	return problems, nil
}
