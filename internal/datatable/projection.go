package datatable

// DefaultPrimaryColumns is the number of columns shown in a mobile card header.
const DefaultPrimaryColumns = 2

// MobilePolicy decides whether hidden columns also disappear from mobile cards.
type MobilePolicy int

const (
	// MobileFollowsVisibility projects only the visible columns.
	MobileFollowsVisibility MobilePolicy = iota
	// MobileIgnoresVisibility projects every column regardless of the toggles.
	MobileIgnoresVisibility
)

// Projection splits columns for the narrow-viewport card layout.
type Projection struct {
	Primary   []Column
	Secondary []Column
}

// Project splits cols into the first n primary columns and the rest.
func Project(cols []Column, n int) Projection {
	if n <= 0 {
		n = DefaultPrimaryColumns
	}
	if n > len(cols) {
		n = len(cols)
	}
	return Projection{
		Primary:   cols[:n:n],
		Secondary: cols[n:],
	}
}
