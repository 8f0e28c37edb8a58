package datatable

import (
	g "maragu.dev/gomponents"
)

// Column describes one displayed field.
type Column struct {
	Key       string
	Label     string
	ClassName string
	Width     string

	// Render formats a cell for HTML. Nil falls back to Format, then to the raw value.
	Render func(value any, row Row) g.Node
	// Format formats a cell as plain text for mobile labels and exports.
	Format func(value any, row Row) string
}

// Text returns the plain-text form of the column's cell in row.
func (c Column) Text(row Row) string {
	v := row[c.Key]
	if c.Format != nil {
		if s := c.Format(v, row); s != "" {
			return s
		}
		return Placeholder
	}
	return DisplayString(v)
}

// Cell returns the HTML form of the column's cell in row.
func (c Column) Cell(row Row) g.Node {
	if c.Render != nil {
		if n := c.Render(row[c.Key], row); n != nil {
			return n
		}
	}
	return g.Text(c.Text(row))
}

func (c Column) header() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}
