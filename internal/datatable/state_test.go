package datatable_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/datatable"
)

func TestParseState(t *testing.T) {
	q := url.Values{}
	q.Set("q", "acme")
	q.Set("f.status", "Active")
	q.Set("f.created_at.start", "2024-01-01")
	q.Add("sel", "1,2")
	q.Add("sel", "2")
	q.Add("sel", "3")
	q.Set("hide", "owner")
	q.Set("f.unknown", "x")
	q.Set("op", datatable.OpSelectAll)

	s := datatable.ParseState(q, invoiceFilters)
	assert.Equal(t, "acme", s.Search)
	assert.Equal(t, datatable.FilterState{
		"status":     datatable.Scalar("Active"),
		"created_at": datatable.Range("2024-01-01", ""),
	}, s.Filters)
	assert.Equal(t, []string{"1", "2", "3"}, s.Selected)
	assert.Equal(t, []string{"owner"}, s.Hidden)
	assert.Equal(t, datatable.OpSelectAll, s.Op)
}

func TestState_RoundTrip(t *testing.T) {
	tbl := newTable(t)
	tbl.SetSearch("a")
	tbl.SetFilter("status", datatable.Scalar("Active"))
	tbl.SetFilter("created_at", datatable.Range("", "2024-12-31"))
	tbl.ToggleRow("3")
	tbl.ToggleColumn("owner")

	values := datatable.StateOf(tbl).Values()
	restored := newTable(t)
	datatable.ParseState(values, invoiceFilters).Apply(restored)

	assert.Equal(t, tbl.Filtered(), restored.Filtered())
	assert.Equal(t, tbl.Selected(), restored.Selected())
	assert.Equal(t, tbl.HiddenColumns(), restored.HiddenColumns())
	assert.Equal(t, tbl.FilterValues(), restored.FilterValues())
}

func TestState_ApplyOps(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, tbl *datatable.Table)
	}{
		{
			name:  "select all over filtered rows",
			query: "f.status=Active&op=select_all",
			check: func(t *testing.T, tbl *datatable.Table) {
				assert.Equal(t, []string{"1", "3", "5"}, tbl.Selected())
			},
		},
		{
			name:  "select all again clears",
			query: "f.status=Active&sel=1,3,5&op=select_all",
			check: func(t *testing.T, tbl *datatable.Table) {
				assert.Empty(t, tbl.Selected())
			},
		},
		{
			name:  "clear selection",
			query: "sel=1,2&op=clear_selection",
			check: func(t *testing.T, tbl *datatable.Table) {
				assert.Empty(t, tbl.Selected())
			},
		},
		{
			name:  "clear one filter",
			query: "f.status=Active&f.owner=lee&op=clear:owner",
			check: func(t *testing.T, tbl *datatable.Table) {
				require.Len(t, tbl.ActiveFilters(), 1)
				assert.Equal(t, "status", tbl.ActiveFilters()[0].Key)
			},
		},
		{
			name:  "clear filters keeps search",
			query: "q=lee&f.status=Active&op=clear_filters",
			check: func(t *testing.T, tbl *datatable.Table) {
				assert.Empty(t, tbl.ActiveFilters())
				assert.Equal(t, "lee", tbl.Search())
			},
		},
		{
			name:  "toggle column",
			query: "hide=owner&op=toggle_col:status",
			check: func(t *testing.T, tbl *datatable.Table) {
				assert.Equal(t, []string{"status", "owner"}, tbl.HiddenColumns())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			tbl := newTable(t)
			datatable.ParseState(q, invoiceFilters).Apply(tbl)
			tt.check(t, tbl)
		})
	}
}

func TestState_ApplyLeavesExternalSelection(t *testing.T) {
	var toggled []string
	tbl := newTable(t, datatable.WithExternalSelection([]string{"2"}, func(id string) { toggled = append(toggled, id) }, nil))
	datatable.ParseState(url.Values{"sel": {"1,3"}}, invoiceFilters).Apply(tbl)
	assert.Equal(t, []string{"2"}, tbl.Selected())
	assert.Empty(t, toggled)
}

func TestTable_URL(t *testing.T) {
	tbl := datatable.New(invoiceRows(), datatable.Config{BaseURL: "/v/invoices", Filters: invoiceFilters})
	assert.Equal(t, "/v/invoices", tbl.URL(nil))

	tbl.SetSearch("acme corp")
	assert.Equal(t, "/v/invoices?q=acme+corp", tbl.URL(nil))
	assert.Equal(t, "/v/invoices?f.status=Active&q=acme+corp", tbl.URL(func(s *datatable.State) {
		s.Filters.Set("status", datatable.Scalar("Active"))
	}))
	assert.Empty(t, tbl.FilterValues())

	withQuery := datatable.New(nil, datatable.Config{BaseURL: "/v/x?tab=1"})
	withQuery.SetSearch("y")
	assert.Equal(t, "/v/x?tab=1&q=y", withQuery.URL(nil))
}

func TestState_DefaultHiddenColumns(t *testing.T) {
	tbl := newTable(t, datatable.WithHidden("owner"))
	datatable.ParseState(url.Values{}, invoiceFilters).Apply(tbl)
	assert.Equal(t, []string{"owner"}, tbl.HiddenColumns())

	// Showing the last default-hidden column keeps an explicit empty list in the URL.
	link := tbl.URL(func(s *datatable.State) { s.Hidden = nil })
	assert.Equal(t, "?hide=", link)

	q, err := url.ParseQuery("hide=")
	require.NoError(t, err)
	fresh := newTable(t, datatable.WithHidden("owner"))
	datatable.ParseState(q, invoiceFilters).Apply(fresh)
	assert.Empty(t, fresh.HiddenColumns())

	q, err = url.ParseQuery("hide=status")
	require.NoError(t, err)
	fresh = newTable(t, datatable.WithHidden("owner"))
	datatable.ParseState(q, invoiceFilters).Apply(fresh)
	assert.Equal(t, []string{"status"}, fresh.HiddenColumns())
}
