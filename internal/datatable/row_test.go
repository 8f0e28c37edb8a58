package datatable_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"bizdesk/internal/datatable"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"nil", nil, 0},
		{"string", "rows", 0},
		{"map", map[string]any{"id": 1}, 0},
		{"nil rows", []datatable.Row(nil), 0},
		{"maps", []map[string]any{{"id": 1}, nil, {"id": 2}}, 2},
		{"decoded json", []any{map[string]any{"id": 1}, "junk", 3, datatable.Row{"id": 2}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := datatable.Normalize(tt.in)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRowID(t *testing.T) {
	assert.Equal(t, "7", datatable.RowID(datatable.Row{"id": 7, "company_id": 9}))
	assert.Equal(t, "9", datatable.RowID(datatable.Row{"company_id": json.Number("9")}))
	assert.Equal(t, "9", datatable.RowID(datatable.Row{"id": nil, "company_id": 9}))
	assert.Equal(t, "", datatable.RowID(datatable.Row{"name": "x"}))
}

func TestCellString(t *testing.T) {
	id := uuid.MustParse("6f1c2a52-8a43-4c86-9d0e-3b5c41a7f001")
	ts := time.Date(2024, 5, 1, 13, 45, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{json.Number("12.50"), "12.50"},
		{true, "true"},
		{int64(-3), "-3"},
		{uint16(8), "8"},
		{2.5, "2.5"},
		{float32(0.25), "0.25"},
		{time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "2024-05-01"},
		{ts, "2024-05-01T13:45:00Z"},
		{&ts, "2024-05-01T13:45:00Z"},
		{[16]byte(id), id.String()},
		{id, id.String()},
		{[]any{"a", 1}, "a,1"},
		{map[string]any{"k": "v"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, datatable.CellString(tt.in), "%#v", tt.in)
	}
	assert.Equal(t, datatable.Placeholder, datatable.DisplayString(nil))
	assert.Equal(t, datatable.Placeholder, datatable.DisplayString(""))
}

func TestColumnText(t *testing.T) {
	c := datatable.Column{Key: "total", Format: func(v any, _ datatable.Row) string {
		if v == nil {
			return ""
		}
		return "$" + datatable.CellString(v)
	}}
	assert.Equal(t, "$10", c.Text(datatable.Row{"total": 10}))
	assert.Equal(t, "-", c.Text(datatable.Row{}))
	assert.Equal(t, "-", datatable.Column{Key: "x"}.Text(datatable.Row{"x": ""}))
}
