package datatable

import (
	"strings"
	"time"
)

// Apply returns the rows of data that match the search term and every active
// filter, in their original order. data is never modified.
func Apply(data []Row, search string, filters []Filter, state FilterState, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}
	active := state.Active(filters)
	term := strings.ToLower(search)

	out := make([]Row, 0, len(data))
	for _, row := range data {
		if !matchSearch(row, term) {
			continue
		}
		if !matchFilters(row, active, state, loc) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// matchSearch expects term already lowercased.
func matchSearch(row Row, term string) bool {
	if term == "" {
		return true
	}
	for _, v := range row {
		if v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(CellString(v)), term) {
			return true
		}
	}
	return false
}

func matchFilters(row Row, active []Filter, state FilterState, loc *time.Location) bool {
	for _, f := range active {
		if !matchFilter(row, f, state[f.Key], loc) {
			return false
		}
	}
	return true
}

func matchFilter(row Row, f Filter, v FilterValue, loc *time.Location) bool {
	switch f.Type {
	case FilterSelect:
		return CellString(row[f.Key]) == v.Value
	case FilterText:
		return strings.Contains(strings.ToLower(CellString(row[f.Key])), strings.ToLower(v.Value))
	case FilterDate:
		want, ok := parseDateString(v.Value, loc)
		if !ok {
			return true
		}
		got, ok := ParseDate(row[f.Key], loc)
		if !ok {
			return false
		}
		return sameDay(got, want, loc)
	case FilterDateRange:
		return matchRange(row[f.Key], v, loc)
	}
	return true
}

func matchRange(value any, v FilterValue, loc *time.Location) bool {
	start, hasStart := parseDateString(v.Start, loc)
	end, hasEnd := parseDateString(v.End, loc)
	if !hasStart && !hasEnd {
		return true
	}
	got, ok := ParseDate(value, loc)
	if !ok {
		return false
	}
	if hasStart && got.Before(startOfDay(start, loc)) {
		return false
	}
	if hasEnd && got.After(endOfDay(end, loc)) {
		return false
	}
	return true
}
