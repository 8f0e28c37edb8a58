package datatable

import "sort"

// FilterType selects the input widget and the matching rule for a filter.
type FilterType string

const (
	FilterSelect    FilterType = "select"
	FilterDate      FilterType = "date"
	FilterDateRange FilterType = "daterange"
	FilterText      FilterType = "text"
)

// Valid reports whether t is a known filter type.
func (t FilterType) Valid() bool {
	switch t {
	case FilterSelect, FilterDate, FilterDateRange, FilterText:
		return true
	}
	return false
}

// Option is one choice of a select filter.
type Option struct {
	Value string
	Label string
}

// Filter describes one filter input and the row field it applies to.
type Filter struct {
	Key         string
	Label       string
	Type        FilterType
	Options     []Option
	Placeholder string
}

// FilterValue is the current value of a filter. Scalar filters use Value,
// date ranges use Start and End (either may be empty for an open bound).
type FilterValue struct {
	Value string
	Start string
	End   string
}

// Scalar returns a value for select, date and text filters.
func Scalar(v string) FilterValue { return FilterValue{Value: v} }

// Range returns a value for daterange filters.
func Range(start, end string) FilterValue { return FilterValue{Start: start, End: end} }

// Empty reports whether the value leaves a filter of type t inactive.
func (v FilterValue) Empty(t FilterType) bool {
	if t == FilterDateRange {
		return v.Start == "" && v.End == ""
	}
	return v.Value == ""
}

// FilterState maps filter keys to their current values.
type FilterState map[string]FilterValue

// Set stores v under key. Storing an all-empty value clears the key.
func (s FilterState) Set(key string, v FilterValue) {
	if v == (FilterValue{}) {
		delete(s, key)
		return
	}
	s[key] = v
}

// Clear removes the value for key.
func (s FilterState) Clear(key string) { delete(s, key) }

// ClearAll removes every value.
func (s FilterState) ClearAll() {
	for k := range s {
		delete(s, k)
	}
}

// Active returns the filters from defs that currently have a non-empty value,
// in declaration order.
func (s FilterState) Active(defs []Filter) []Filter {
	var out []Filter
	for _, f := range defs {
		if v, ok := s[f.Key]; ok && !v.Empty(f.Type) {
			out = append(out, f)
		}
	}
	return out
}

// Keys returns the stored keys in sorted order.
func (s FilterState) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s FilterState) clone() FilterState {
	out := make(FilterState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DistinctOptions returns the sorted distinct non-empty string forms of key
// across rows, for select filters declared without options.
func DistinctOptions(rows []Row, key string) []Option {
	seen := map[string]bool{}
	var values []string
	for _, row := range rows {
		s := CellString(row[key])
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		values = append(values, s)
	}
	sort.Strings(values)
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v}
	}
	return out
}
