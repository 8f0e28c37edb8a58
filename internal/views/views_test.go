package views_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

var (
	admin      = core.SessionContext{UserID: 1, CompanyID: 3, Role: core.RoleAdmin}
	client     = core.SessionContext{UserID: 2, CompanyID: 3, Role: core.RoleClient}
	superAdmin = core.SessionContext{UserID: 3, Role: core.RoleSuperAdmin}
)

func TestLoad_Builtin(t *testing.T) {
	c, err := views.Load("")
	require.NoError(t, err)

	names := func(defs []views.Definition) []string {
		var out []string
		for _, d := range defs {
			out = append(out, d.Name)
		}
		return out
	}
	assert.Equal(t, []string{"companies", "clients", "employees", "projects", "tasks", "invoices", "estimates", "proposals", "payments"}, names(c.All()))
	assert.Equal(t, []string{"projects", "invoices", "estimates", "proposals", "payments"}, names(c.For(client)))
	assert.Len(t, c.For(superAdmin), 9)
}

func TestLookup(t *testing.T) {
	c, err := views.Load("")
	require.NoError(t, err)

	_, err = c.Lookup(admin, "invoices")
	require.NoError(t, err)

	_, err = c.Lookup(client, "employees")
	assert.True(t, errors.Is(err, core.ErrForbidden))

	_, err = c.Lookup(admin, "nope")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestLoad_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
views:
  - name: invoices
    title: Bills
    resource: bills
    columns: [{key: number}]
  - name: leads
    title: Leads
    resource: leads
    roles: [admin]
    columns: [{key: name}, {key: stage, format: status}]
`), 0o600))

	c, err := views.Load(path)
	require.NoError(t, err)
	inv, ok := c.Get("invoices")
	require.True(t, ok)
	assert.Equal(t, "Bills", inv.Title)
	assert.Equal(t, "bills", inv.TableName())
	leads, ok := c.Get("leads")
	require.True(t, ok)
	assert.Equal(t, "company_id", leads.Scope())
	assert.Len(t, c.All(), 10)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		def  views.Definition
	}{
		{"bad name", views.Definition{Name: "Bad Name", Resource: "x", Columns: []views.ColumnDef{{Key: "a"}}}},
		{"no columns", views.Definition{Name: "x", Resource: "x"}},
		{"no resource", views.Definition{Name: "x", Columns: []views.ColumnDef{{Key: "a"}}}},
		{"unknown format", views.Definition{Name: "x", Resource: "x", Columns: []views.ColumnDef{{Key: "a", Format: "emoji"}}}},
		{"unknown filter type", views.Definition{Name: "x", Resource: "x", Columns: []views.ColumnDef{{Key: "a"}}, Filters: []views.FilterDef{{Key: "a", Type: "range"}}}},
		{"unknown role", views.Definition{Name: "x", Resource: "x", Roles: []core.Role{"owner"}, Columns: []views.ColumnDef{{Key: "a"}}}},
		{"bad bulk", views.Definition{Name: "x", Resource: "x", Columns: []views.ColumnDef{{Key: "a"}}, Bulk: []views.BulkDef{{Value: "archive", Label: "A"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := views.New([]views.Definition{tt.def})
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidInput))
		})
	}

	ok := views.Definition{Name: "x", Resource: "x", Columns: []views.ColumnDef{{Key: "a"}}}
	_, err := views.New([]views.Definition{ok, ok})
	require.Error(t, err)
}

func TestBuild_Invoices(t *testing.T) {
	c, err := views.Load("")
	require.NoError(t, err)
	def, _ := c.Get("invoices")

	rows := []datatable.Row{
		{"id": 10, "invoice_number": "INV-10", "client_name": "Globex", "amount": "1250.5", "currency": "USD", "status": "Paid", "issue_date": "2024-01-15"},
		{"id": 11, "invoice_number": "INV-11", "client_name": "Acme", "amount": "99", "currency": "EUR", "status": "Unpaid", "issue_date": "2024-02-01"},
	}
	cfg := views.Build(def, admin, rows, views.BuildOptions{BasePath: "/v", PrimaryColumns: 2})

	assert.Equal(t, "/v/invoices", cfg.BaseURL)
	assert.Equal(t, "/v/invoices/bulk", cfg.BulkURL)
	assert.Equal(t, 3, cfg.PrimaryColumns)
	assert.True(t, cfg.BulkActions)
	assert.Equal(t, "/v/invoices/10", cfg.RowLink(rows[0]))

	var clientFilter datatable.Filter
	for _, f := range cfg.Filters {
		if f.Key == "client_name" {
			clientFilter = f
		}
	}
	assert.Equal(t, []datatable.Option{{Value: "Acme"}, {Value: "Globex"}}, clientFilter.Options)

	amount := cfg.Columns[2]
	assert.Equal(t, "$1,250.50", amount.Text(rows[0]))
	assert.Equal(t, "€99.00", amount.Text(rows[1]))
	assert.Equal(t, "Jan 15, 2024", cfg.Columns[5].Text(rows[0]))

	actions := cfg.Actions(rows[1])
	require.Len(t, actions, 1)
	assert.True(t, actions[0].Post)
	assert.Equal(t, "/v/invoices/bulk?action=status:Paid&sel=11", actions[0].Href)

	tbl := datatable.New(rows, cfg, datatable.WithHidden(def.Hidden...))
	assert.Equal(t, []string{"paid_amount"}, tbl.HiddenColumns())
}

func TestBuild_ClientHasNoAdminBulkActions(t *testing.T) {
	c, err := views.Load("")
	require.NoError(t, err)
	def, _ := c.Get("invoices")

	cfg := views.Build(def, client, nil, views.BuildOptions{})
	assert.False(t, cfg.BulkActions)
	assert.Nil(t, cfg.Actions)
	_, ok := def.BulkAction(client, "delete")
	assert.False(t, ok)
	_, ok = def.BulkAction(admin, "delete")
	assert.True(t, ok)
}

func TestFormatters(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	c, err := views.New([]views.Definition{{
		Name: "x", Resource: "x",
		Columns: []views.ColumnDef{
			{Key: "when", Format: "datetime"},
			{Key: "ok", Format: "boolean"},
			{Key: "pct", Format: "percent"},
			{Key: "amt", Format: "currency"},
			{Key: "mail", Format: "email"},
		},
	}})
	require.NoError(t, err)
	def, _ := c.Get("x")
	cfg := views.Build(def, admin, nil, views.BuildOptions{Location: loc})
	row := datatable.Row{"when": "2024-03-05T20:00:00Z", "ok": true, "pct": json.Number("42.25"), "amt": -1234567.891, "currency": "CHF", "mail": "a@b.co"}

	assert.Equal(t, "Mar 6, 2024 01:30", cfg.Columns[0].Text(row))
	assert.Equal(t, "Yes", cfg.Columns[1].Text(row))
	assert.Equal(t, "42.3%", cfg.Columns[2].Text(row))
	assert.Equal(t, "-CHF 1,234,567.89", cfg.Columns[3].Text(row))
	assert.Equal(t, "-", cfg.Columns[1].Text(datatable.Row{"ok": "maybe"}))
	assert.NotNil(t, cfg.Columns[4].Render)
}

func TestDateFormatter_DriverDateWestOfUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	c, err := views.New([]views.Definition{{
		Name: "x", Resource: "x",
		Columns: []views.ColumnDef{{Key: "due", Format: "date"}},
	}})
	require.NoError(t, err)
	def, _ := c.Get("x")
	cfg := views.Build(def, admin, nil, views.BuildOptions{Location: loc})

	assert.Equal(t, "Jan 15, 2024", cfg.Columns[0].Text(datatable.Row{"due": time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}))
	assert.Equal(t, "Jan 15, 2024", cfg.Columns[0].Text(datatable.Row{"due": "2024-01-15"}))
}

func TestMoneyAndDecimal(t *testing.T) {
	d, ok := views.Decimal("1,000.10")
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("1000.10")))
	_, ok = views.Decimal("n/a")
	assert.False(t, ok)
	assert.Equal(t, "₹0.00", views.Money(decimal.Zero, "inr"))
	assert.Equal(t, "$999.00", views.Money(decimal.NewFromInt(999), ""))
}

func TestStatusTone(t *testing.T) {
	assert.Equal(t, "success", views.StatusTone("Paid"))
	assert.Equal(t, "danger", views.StatusTone(" overdue "))
	assert.Equal(t, "secondary", views.StatusTone("Archived"))
}

func TestExpand(t *testing.T) {
	row := datatable.Row{"company_id": 4, "email": "a b@x.io"}
	assert.Equal(t, "/c/4", views.Expand("/c/{id}", row))
	assert.Equal(t, "mailto:a%20b@x.io", views.Expand("mailto:{email}", row))
	assert.Equal(t, "/x/", views.Expand("/x/{missing}", row))
}

func TestSchema(t *testing.T) {
	b, err := views.SchemaJSON()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "bizdesk views", doc["title"])
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "views")
}

func TestDefinitionFields(t *testing.T) {
	c, err := views.Load("")
	require.NoError(t, err)

	inv, ok := c.Get("invoices")
	require.True(t, ok)
	assert.Equal(t, []string{
		"id", "company_id", "invoice_number", "client_name", "amount", "paid_amount",
		"status", "issue_date", "due_date", "currency",
	}, inv.Fields())

	companies, ok := c.Get("companies")
	require.True(t, ok)
	assert.Equal(t, "id", companies.Fields()[0])
	assert.NotContains(t, companies.Fields(), "company_id")
	assert.NotContains(t, companies.Fields(), "currency")
}
