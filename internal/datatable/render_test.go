package datatable_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"bizdesk/internal/datatable"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestRender_EmptyState(t *testing.T) {
	out := render(t, datatable.New(nil, datatable.Config{ID: "clients"}).Render())
	assert.Contains(t, out, "No records found.")
	assert.Contains(t, out, "blankslate")
	assert.NotContains(t, out, "<table")
	assert.NotContains(t, out, "Reset search and filters")
}

func TestRender_NoMatchOffersReset(t *testing.T) {
	tbl := datatable.New(invoiceRows(), datatable.Config{BaseURL: "/v/invoices", Filters: invoiceFilters})
	tbl.SetSearch("zzz")
	out := render(t, tbl.Render())
	assert.Contains(t, out, "No records match the current search or filters.")
	assert.Contains(t, out, "Reset search and filters")
}

func TestRender_DesktopAndMobileShareRows(t *testing.T) {
	tbl := datatable.New(invoiceRows(), datatable.Config{
		ID:          "inv",
		BaseURL:     "/v/invoices",
		BulkURL:     "/v/invoices/bulk",
		BulkActions: true,
		BulkOptions: []datatable.BulkOption{{Value: "delete", Label: "Delete", Danger: true}},
		Columns: []datatable.Column{
			{Key: "name", Label: "Name"},
			{Key: "status", Label: "Status", Render: func(v any, _ datatable.Row) g.Node {
				return h.Span(h.Class("Label"), g.Text(datatable.DisplayString(v)))
			}},
			{Key: "owner", Label: "Owner"},
		},
		Filters: invoiceFilters,
		RowLink: func(r datatable.Row) string { return "/v/invoices/" + datatable.RowID(r) },
		Actions: func(r datatable.Row) []datatable.Action {
			return []datatable.Action{{Label: "Open", Href: "/x/" + datatable.RowID(r)}, {Label: "Archive", Href: "/y", Post: true}}
		},
	})
	tbl.SetFilter("status", datatable.Scalar("Active"))
	tbl.ToggleRow("3")
	out := render(t, tbl.Render())

	assert.Contains(t, out, "Showing 3 of 5 entries.")
	assert.Contains(t, out, "1 selected")
	assert.Equal(t, 2, strings.Count(out, `data-row="3"`))
	assert.Equal(t, 2, strings.Count(out, `href="/v/invoices/1"`))
	assert.Equal(t, 6, strings.Count(out, `<span class="Label">Active</span>`))
	assert.NotContains(t, out, "Globex")
	assert.Contains(t, out, `formaction="/v/invoices/bulk"`)
	assert.Contains(t, out, `formaction="/y"`)
	assert.Contains(t, out, "Status: Active")
	assert.Contains(t, out, `data-bind`)
	assert.Contains(t, out, `data-show`)
	assert.Contains(t, out, "Dana")
}

func TestRender_HiddenColumnsAndPlaceholder(t *testing.T) {
	rows := []datatable.Row{{"id": 1, "name": "Solo", "email": nil, "phone": "555"}}
	tbl := datatable.New(rows, datatable.Config{
		Columns: []datatable.Column{{Key: "name"}, {Key: "email"}, {Key: "phone", Label: "Phone"}},
	}, datatable.WithHidden("phone"))
	out := render(t, tbl.Render())

	assert.Contains(t, out, ">-<")
	assert.NotContains(t, out, ">555<")
	assert.Contains(t, out, `name="hide" value="phone"`)
}

func TestRender_IsDeterministic(t *testing.T) {
	tbl := datatable.New(invoiceRows(), datatable.Config{Columns: []datatable.Column{{Key: "name"}}})
	assert.Equal(t, render(t, tbl.Render()), render(t, tbl.Render()))
}

func TestPrintDocument(t *testing.T) {
	tbl := datatable.New(invoiceRows(), datatable.Config{Columns: []datatable.Column{{Key: "name", Label: "Client"}}})
	out := render(t, datatable.PrintDocument("Clients", tbl.View()))
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "<title>Clients</title>")
	assert.Contains(t, out, "<th>Client</th>")
	assert.Contains(t, out, "<td>Umbrella</td>")
	assert.Contains(t, out, "window.print()")

	empty := render(t, datatable.PrintDocument("None", datatable.New(nil, datatable.Config{}).View()))
	assert.Contains(t, empty, "No records found.")
}
