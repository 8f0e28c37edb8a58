package datatable_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bizdesk/internal/datatable"
)

func exportView(t *testing.T) datatable.View {
	t.Helper()
	tbl := datatable.New(invoiceRows(), datatable.Config{
		Columns: []datatable.Column{
			{Key: "name", Label: "Name"},
			{Key: "status", Label: "Status", Format: func(v any, _ datatable.Row) string {
				return strings.ToUpper(datatable.CellString(v))
			}},
			{Key: "owner", Label: "Owner"},
		},
		Filters: invoiceFilters,
	}, datatable.WithHidden("owner"))
	tbl.SetFilter("status", datatable.Scalar("Active"))
	return tbl.View()
}

func TestWriteCSV(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, exportView(t).WriteCSV(&b))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "name,status", strings.ToLower(lines[0]))
	assert.Equal(t, "Acme Corp,ACTIVE", lines[1])
	assert.Equal(t, "Hooli,ACTIVE", lines[3])
	assert.NotContains(t, b.String(), "Dana")
}

func TestWriteMarkdown(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, exportView(t).WriteMarkdown(&b))
	out := b.String()
	assert.Contains(t, out, "| Initech | ACTIVE |")
	assert.NotContains(t, out, "Globex")
}

func TestWriteText(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, exportView(t).WriteText(&b))
	assert.Contains(t, b.String(), "Initech")
	assert.Contains(t, b.String(), "(3 of 5 rows)")

	b.Reset()
	require.NoError(t, datatable.New(nil, datatable.Config{}).View().WriteText(&b))
	assert.Equal(t, "No records found.\n", b.String())
}

func TestWriteXLSX(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, exportView(t).WriteXLSX(&b, "Invoices: Q1/2024"))

	f, err := excelize.OpenReader(&b)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Invoices- Q1-2024", sheet)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name", "Status"}, rows[0])
	assert.Equal(t, []string{"Initech", "ACTIVE"}, rows[2])
}

func TestWriteXLSX_LongSheetName(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, datatable.New(nil, datatable.Config{}).View().WriteXLSX(&b, strings.Repeat("x", 40)))
	f, err := excelize.OpenReader(&b)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Len(t, f.GetSheetName(0), 31)
}
