package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/source"
	"bizdesk/internal/views"
)

func TestParseBulk(t *testing.T) {
	op, err := source.ParseBulk("delete")
	require.NoError(t, err)
	assert.True(t, op.Delete)

	op, err = source.ParseBulk("status: On Hold ")
	require.NoError(t, err)
	assert.Equal(t, "On Hold", op.Status)

	for _, bad := range []string{"", "status:", "archive"} {
		_, err := source.ParseBulk(bad)
		assert.True(t, errors.Is(err, core.ErrInvalidInput), bad)
	}
}

func TestStatic_ScopesRowsByCompany(t *testing.T) {
	st := source.NewStatic()
	st.SetRows("invoices", []datatable.Row{
		{"id": 1, "company_id": 1},
		{"id": 2, "company_id": 2},
		{"id": 3, "company_id": 1},
	})
	ctx := context.Background()

	rows, err := st.Rows(ctx, core.SessionContext{UserID: 1, CompanyID: 1, Role: core.RoleAdmin}, invoices)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = st.Rows(ctx, core.SessionContext{UserID: 1, Role: core.RoleSuperAdmin}, invoices)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows[0]["id"] = 99
	again, _ := st.Rows(ctx, core.SessionContext{UserID: 1, Role: core.RoleSuperAdmin}, invoices)
	assert.Equal(t, 1, again[0]["id"])
}

func TestStatic_Bulk(t *testing.T) {
	st := source.NewStatic()
	st.SetRows("invoices", []datatable.Row{
		{"id": 1, "company_id": 1, "status": "Unpaid"},
		{"id": 2, "company_id": 2, "status": "Unpaid"},
		{"id": 3, "company_id": 1, "status": "Unpaid"},
	})
	ctx := context.Background()
	admin := core.SessionContext{UserID: 1, CompanyID: 1, Role: core.RoleAdmin}

	n, err := st.Bulk(ctx, admin, invoices, "status:Paid", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "row of another company is untouched")

	n, err = st.Bulk(ctx, admin, invoices, "delete", []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, _ := st.Rows(ctx, core.SessionContext{UserID: 1, Role: core.RoleSuperAdmin}, invoices)
	require.Len(t, rows, 2)
	assert.Equal(t, "Paid", rows[0]["status"])
	assert.Equal(t, "Unpaid", rows[1]["status"])

	_, err = st.Bulk(ctx, admin, views.Definition{Name: "x", Resource: "missing"}, "delete", []string{"1"})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestDemo_Authenticate(t *testing.T) {
	st, err := source.Demo()
	require.NoError(t, err)
	ctx := context.Background()

	s, err := st.Authenticate(ctx, "dana", source.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, s.Role)
	assert.Equal(t, 1, s.CompanyID)

	_, err = st.Authenticate(ctx, "dana", "wrong")
	assert.True(t, errors.Is(err, core.ErrUnauthenticated))
	_, err = st.Authenticate(ctx, "nobody", source.DemoPassword)
	assert.True(t, errors.Is(err, core.ErrUnauthenticated))

	c, err := views.Load("")
	require.NoError(t, err)
	for _, def := range c.All() {
		rows, err := st.Rows(ctx, core.SessionContext{UserID: 1, Role: core.RoleSuperAdmin}, def)
		require.NoError(t, err)
		assert.NotEmpty(t, rows, def.Name)
	}
}

func TestDemo_RowsCoverViewFields(t *testing.T) {
	c, err := views.Load("")
	require.NoError(t, err)
	data := source.DemoRows()
	for _, def := range c.All() {
		rows, ok := data[def.Resource]
		require.True(t, ok, def.Resource)
		for _, row := range rows {
			for _, f := range def.Fields() {
				_, ok := row[f]
				assert.True(t, ok, "%s row %v has no %s", def.Name, row["id"], f)
			}
		}
	}
}
