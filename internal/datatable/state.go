package datatable

import (
	"net/url"
	"strings"
)

// Query parameter names used to carry table state between requests.
const (
	ParamSearch   = "q"
	ParamSelected = "sel"
	ParamHidden   = "hide"
	ParamOp       = "op"
)

// Operations accepted in the op parameter.
const (
	OpSelectAll      = "select_all"
	OpClearSelection = "clear_selection"
	OpClearFilters   = "clear_filters"
	OpClearFilter    = "clear:"
	OpToggleColumn   = "toggle_col:"
)

func filterParam(key string) string { return "f." + key }
func startParam(key string) string  { return "f." + key + ".start" }
func endParam(key string) string    { return "f." + key + ".end" }

// State is the transient table state in transportable form.
type State struct {
	Search   string
	Filters  FilterState
	Selected []string
	Hidden   []string

	// HiddenSet means Hidden is the complete list rather than additions to
	// the table's default hidden columns.
	HiddenSet bool
	Op        string
}

// ParseState reads table state from query or form values. Only filters
// declared in defs are read.
func ParseState(q url.Values, defs []Filter) State {
	s := State{
		Search:  q.Get(ParamSearch),
		Filters: FilterState{},
		Op:      q.Get(ParamOp),
	}
	for _, f := range defs {
		if f.Type == FilterDateRange {
			s.Filters.Set(f.Key, Range(q.Get(startParam(f.Key)), q.Get(endParam(f.Key))))
			continue
		}
		s.Filters.Set(f.Key, Scalar(q.Get(filterParam(f.Key))))
	}
	s.Selected = splitValues(q[ParamSelected])
	s.Hidden = splitValues(q[ParamHidden])
	_, s.HiddenSet = q[ParamHidden]
	return s
}

// splitValues accepts both repeated and comma-joined parameters.
func splitValues(raw []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range raw {
		for _, p := range strings.Split(r, ",") {
			p = strings.TrimSpace(p)
			if p != "" && !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// Values encodes the state. Op is not included.
func (s State) Values() url.Values {
	q := url.Values{}
	if s.Search != "" {
		q.Set(ParamSearch, s.Search)
	}
	for _, k := range s.Filters.Keys() {
		v := s.Filters[k]
		if v.Value != "" {
			q.Set(filterParam(k), v.Value)
		}
		if v.Start != "" {
			q.Set(startParam(k), v.Start)
		}
		if v.End != "" {
			q.Set(endParam(k), v.End)
		}
	}
	if len(s.Selected) > 0 {
		q.Set(ParamSelected, strings.Join(s.Selected, ","))
	}
	if len(s.Hidden) > 0 || s.HiddenSet {
		q.Set(ParamHidden, strings.Join(s.Hidden, ","))
	}
	return q
}

// Apply loads the state into t and then runs the requested operation.
// A caller-owned selection is left untouched.
func (s State) Apply(t *Table) {
	if s.Search != "" || t.search != "" {
		t.SetSearch(s.Search)
	}
	t.filters.ClearAll()
	for k, v := range s.Filters {
		t.SetFilter(k, v)
	}
	if internal, ok := t.selection.(*InternalSelectionStore); ok {
		internal.SetAll(s.Selected, true)
	}
	if s.HiddenSet {
		t.visibility = ColumnVisibility{}
	}
	for _, k := range s.Hidden {
		t.SetColumnVisible(k, false)
	}
	applyOp(t, s.Op)
}

func applyOp(t *Table, op string) {
	switch {
	case op == "":
	case op == OpSelectAll:
		t.SelectAll()
	case op == OpClearSelection:
		t.selection.SetAll(nil, false)
	case op == OpClearFilters:
		t.ClearFilters()
	case strings.HasPrefix(op, OpClearFilter):
		t.ClearFilter(strings.TrimPrefix(op, OpClearFilter))
	case strings.HasPrefix(op, OpToggleColumn):
		t.ToggleColumn(strings.TrimPrefix(op, OpToggleColumn))
	}
}

// StateOf captures the current state of t.
func StateOf(t *Table) State {
	return State{
		Search:    t.search,
		Filters:   t.filters.clone(),
		Selected:  t.selection.Selected(),
		Hidden:    t.HiddenColumns(),
		HiddenSet: len(t.defaultHidden) > 0,
	}
}

// URL returns BaseURL with the table's current state, after edit has been
// applied to a copy of it. edit may be nil.
func (t *Table) URL(edit func(*State)) string {
	s := StateOf(t)
	if edit != nil {
		edit(&s)
	}
	enc := s.Values().Encode()
	if enc == "" {
		return t.cfg.BaseURL
	}
	sep := "?"
	if strings.Contains(t.cfg.BaseURL, "?") {
		sep = "&"
	}
	return t.cfg.BaseURL + sep + enc
}
