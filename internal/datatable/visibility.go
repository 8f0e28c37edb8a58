package datatable

// ColumnVisibility maps column keys to visibility. Keys that were never set
// are visible.
type ColumnVisibility map[string]bool

// Visible reports whether key is shown.
func (v ColumnVisibility) Visible(key string) bool {
	shown, ok := v[key]
	return !ok || shown
}

// Toggle flips the visibility of key.
func (v ColumnVisibility) Toggle(key string) { v[key] = !v.Visible(key) }

// Hidden returns the keys of cols that are currently hidden, in column order.
func (v ColumnVisibility) Hidden(cols []Column) []string {
	var out []string
	for _, c := range cols {
		if !v.Visible(c.Key) {
			out = append(out, c.Key)
		}
	}
	return out
}

// Filter returns the visible subset of cols.
func (v ColumnVisibility) Filter(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if v.Visible(c.Key) {
			out = append(out, c)
		}
	}
	return out
}
