package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

// PostgresSource reads view rows straight from the reporting tables.
type PostgresSource struct {
	pool  *pgxpool.Pool
	users core.UserService
}

// NewPostgresSource returns a source over pool. Logins are checked against the users table.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool, users: core.NewUserService(pool)}
}

// Authenticate verifies credentials against the users table.
func (p *PostgresSource) Authenticate(ctx context.Context, username, password string) (core.SessionContext, error) {
	return p.users.Authenticate(ctx, username, password)
}

// ident quotes a possibly schema-qualified relation or column name.
func ident(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// scope returns the WHERE clause restricting def to the session's company,
// starting at placeholder $n, and its argument.
func scope(s core.SessionContext, def views.Definition, n int) (string, []any) {
	if s.IsSuperAdmin() {
		return "", nil
	}
	return fmt.Sprintf("%s = $%d", ident(def.Scope()), n), []any{s.CompanyID}
}

// Rows selects every column of the view's table, newest first.
func (p *PostgresSource) Rows(ctx context.Context, s core.SessionContext, def views.Definition) ([]datatable.Row, error) {
	query := "SELECT * FROM " + ident(def.TableName())
	where, args := scope(s, def, 1)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY 1 DESC"

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", def.Name, err)
	}
	dates := make(map[string]bool)
	for _, fd := range rows.FieldDescriptions() {
		if fd.DataTypeOID == pgtype.DateOID {
			dates[fd.Name] = true
		}
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", def.Name, err)
	}

	out := make([]datatable.Row, 0, len(maps))
	for _, m := range maps {
		for k, v := range m {
			if t, ok := v.(time.Time); ok && dates[k] {
				// DATE has no zone; keep it a calendar day.
				m[k] = t.Format(time.DateOnly)
				continue
			}
			m[k] = plainValue(v)
		}
		out = append(out, datatable.Row(m))
	}
	return out, nil
}

// plainValue converts pgx values that the formatters do not know.
func plainValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		if x.NaN || x.InfinityModifier != pgtype.Finite {
			return nil
		}
		return decimal.NewFromBigInt(x.Int, x.Exp)
	case [16]byte:
		return datatable.CellString(x)
	}
	return v
}

// Bulk deletes records or sets their status within the session's company and
// records the action in bulk_actions.
func (p *PostgresSource) Bulk(ctx context.Context, s core.SessionContext, def views.Definition, action string, ids []string) (int, error) {
	op, err := ParseBulk(action)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin bulk: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		query string
		args  []any
	)
	if op.Delete {
		query = "DELETE FROM " + ident(def.TableName()) + " WHERE id::text = ANY($1)"
		args = []any{ids}
	} else {
		query = "UPDATE " + ident(def.TableName()) + " SET status = $2 WHERE id::text = ANY($1)"
		args = []any{ids, op.Status}
	}
	if where, extra := scope(s, def, len(args)+1); where != "" {
		query += " AND " + where
		args = append(args, extra...)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk %s on %s: %w", action, def.Name, err)
	}

	var company *int
	if !s.IsSuperAdmin() {
		company = &s.CompanyID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO bulk_actions (company_id, user_id, view_name, action, record_ids)
		VALUES ($1, $2, $3, $4, $5)`,
		company, s.UserID, def.Name, action, ids,
	)
	if err != nil {
		return 0, fmt.Errorf("record bulk action: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit bulk: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
