package source

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

// Static serves rows and users held in memory.
type Static struct {
	mu     sync.RWMutex
	rows   map[string][]datatable.Row
	users  map[string]core.User
	nextID int
}

// NewStatic returns an empty in-memory source.
func NewStatic() *Static {
	return &Static{
		rows:  make(map[string][]datatable.Row),
		users: make(map[string]core.User),
	}
}

// SetRows replaces the records of resource.
func (st *Static) SetRows(resource string, rows []datatable.Row) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.rows[resource] = rows
}

// AddUser registers u with the given password.
func (st *Static) AddUser(u core.User, password string) error {
	hash, err := core.HashPassword(password)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if u.ID == 0 {
		st.nextID++
		u.ID = st.nextID
	}
	u.PasswordHash = hash
	u.IsActive = true
	st.users[u.Username] = u
	return nil
}

// Authenticate checks the password of an in-memory user.
func (st *Static) Authenticate(_ context.Context, username, password string) (core.SessionContext, error) {
	st.mu.RLock()
	u, ok := st.users[username]
	st.mu.RUnlock()
	if !ok || !u.IsActive || !core.CheckPassword(u.PasswordHash, password) {
		return core.SessionContext{}, core.ErrUnauthenticated
	}
	return u.Session(), nil
}

func inScope(s core.SessionContext, def views.Definition, row datatable.Row) bool {
	if s.IsSuperAdmin() {
		return true
	}
	return datatable.CellString(row[def.Scope()]) == strconv.Itoa(s.CompanyID)
}

// Rows returns copies of the records of def.Resource visible to s.
func (st *Static) Rows(_ context.Context, s core.SessionContext, def views.Definition) ([]datatable.Row, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]datatable.Row, 0, len(st.rows[def.Resource]))
	for _, row := range st.rows[def.Resource] {
		if inScope(s, def, row) {
			cp := make(datatable.Row, len(row))
			for k, v := range row {
				cp[k] = v
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

// Bulk deletes or updates in-memory records visible to s.
func (st *Static) Bulk(_ context.Context, s core.SessionContext, def views.Definition, action string, ids []string) (int, error) {
	op, err := ParseBulk(action)
	if err != nil {
		return 0, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	rows, ok := st.rows[def.Resource]
	if !ok {
		return 0, fmt.Errorf("resource %q: %w", def.Resource, core.ErrNotFound)
	}
	affected := 0
	kept := make([]datatable.Row, 0, len(rows))
	for _, row := range rows {
		hit := inScope(s, def, row) && slices.Contains(ids, datatable.RowID(row))
		if hit {
			affected++
		}
		switch {
		case hit && op.Delete:
			continue
		case hit:
			row["status"] = op.Status
		}
		kept = append(kept, row)
	}
	st.rows[def.Resource] = kept
	return affected, nil
}
