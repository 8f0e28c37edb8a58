// Package datatable renders a list of opaque records as a searchable,
// filterable table with optional row selection, column toggles and a card
// layout for narrow viewports.
//
// A Table is one mounted instance. Its search text, filter values, selection
// and column visibility live only as long as the instance; the rows themselves
// belong to the caller and are never modified.
package datatable

import "time"

const (
	defaultEmptyMessage   = "No records found."
	defaultNoMatchMessage = "No records match the current search or filters."
)

// Action is a per-row link or form button.
type Action struct {
	Label  string
	Href   string
	Post   bool
	Danger bool
}

// BulkOption is an action offered for the selected rows.
type BulkOption struct {
	Value  string
	Label  string
	Danger bool
}

// Config declares the table. Zero values are usable.
type Config struct {
	ID                string
	Columns           []Column
	Filters           []Filter
	SearchPlaceholder string
	EmptyMessage      string
	NoMatchMessage    string
	BulkActions       bool
	BulkOptions       []BulkOption
	PrimaryColumns    int
	MobilePolicy      MobilePolicy
	Location          *time.Location

	// BaseURL is where the toolbar form submits; BulkURL receives bulk posts.
	BaseURL string
	BulkURL string

	RowLink func(row Row) string
	Actions func(row Row) []Action

	OnSearch   func(term string)
	OnRowClick func(row Row)
}

// TableOption customises a Table at construction.
type TableOption func(*Table)

// WithSelection installs a custom selection store.
func WithSelection(s SelectionStore) TableOption {
	return func(t *Table) {
		if s != nil {
			t.selection = s
		}
	}
}

// WithExternalSelection hands ownership of the selection to the caller.
func WithExternalSelection(selected []string, onToggle func(id string), onSelectAll func(ids []string, checked bool)) TableOption {
	return WithSelection(NewExternalSelectionStore(selected, onToggle, onSelectAll))
}

// WithHidden starts the table with the given columns hidden. These are the
// defaults that a state carrying an explicit hide list replaces.
func WithHidden(keys ...string) TableOption {
	return func(t *Table) {
		t.defaultHidden = append(t.defaultHidden, keys...)
		for _, k := range keys {
			t.visibility[k] = false
		}
	}
}

// Table is a mounted instance of the tabular view.
type Table struct {
	cfg        Config
	data       []Row
	search     string
	filters    FilterState
	selection  SelectionStore
	visibility ColumnVisibility

	defaultHidden []string
}

// New mounts a table over data. data that is not a sequence of records is
// treated as empty.
func New(data any, cfg Config, opts ...TableOption) *Table {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PrimaryColumns <= 0 {
		cfg.PrimaryColumns = DefaultPrimaryColumns
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = defaultEmptyMessage
	}
	if cfg.NoMatchMessage == "" {
		cfg.NoMatchMessage = defaultNoMatchMessage
	}
	if cfg.SearchPlaceholder == "" {
		cfg.SearchPlaceholder = "Search..."
	}
	t := &Table{
		cfg:        cfg,
		data:       Normalize(data),
		filters:    FilterState{},
		selection:  NewInternalSelectionStore(),
		visibility: ColumnVisibility{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the declaration the table was built from.
func (t *Table) Config() Config { return t.cfg }

// Data returns the unfiltered rows.
func (t *Table) Data() []Row { return t.data }

// SetSearch stores the search term and notifies OnSearch.
func (t *Table) SetSearch(term string) {
	t.search = term
	if t.cfg.OnSearch != nil {
		t.cfg.OnSearch(term)
	}
}

// Search returns the current search term.
func (t *Table) Search() string { return t.search }

// SetFilter sets the value of the filter with key. Unknown keys are ignored.
func (t *Table) SetFilter(key string, v FilterValue) {
	if _, ok := t.filterDef(key); !ok {
		return
	}
	t.filters.Set(key, v)
}

// ClearFilter resets one filter.
func (t *Table) ClearFilter(key string) { t.filters.Clear(key) }

// ClearFilters resets every filter. The search term is kept.
func (t *Table) ClearFilters() { t.filters.ClearAll() }

// FilterValues returns a copy of the current filter values.
func (t *Table) FilterValues() FilterState { return t.filters.clone() }

// ActiveFilters returns the filters that currently restrict the rows.
func (t *Table) ActiveFilters() []Filter { return t.filters.Active(t.cfg.Filters) }

// Filtered recomputes the visible rows from the data and current state.
func (t *Table) Filtered() []Row {
	return Apply(t.data, t.search, t.cfg.Filters, t.filters, t.cfg.Location)
}

// ToggleRow flips the selection of one row.
func (t *Table) ToggleRow(id string) { t.selection.Toggle(id) }

// SelectAll selects exactly the filtered rows, or clears the selection when
// all of them are already selected.
func (t *Table) SelectAll() {
	ids := filteredIDs(t.Filtered())
	t.selection.SetAll(ids, !t.allSelected(ids))
}

// Selected returns the selected ids.
func (t *Table) Selected() []string { return t.selection.Selected() }

// IsSelected reports whether id is selected.
func (t *Table) IsSelected(id string) bool { return t.selection.IsSelected(id) }

// AllSelected reports whether every filtered, selectable row is selected.
func (t *Table) AllSelected() bool { return t.allSelected(filteredIDs(t.Filtered())) }

func (t *Table) allSelected(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !t.selection.IsSelected(id) {
			return false
		}
	}
	return true
}

// ToggleColumn flips the visibility of a column.
func (t *Table) ToggleColumn(key string) { t.visibility.Toggle(key) }

// SetColumnVisible shows or hides a column.
func (t *Table) SetColumnVisible(key string, visible bool) { t.visibility[key] = visible }

// VisibleColumns returns the columns shown in the desktop table.
func (t *Table) VisibleColumns() []Column { return t.visibility.Filter(t.cfg.Columns) }

// HiddenColumns returns the keys of hidden columns.
func (t *Table) HiddenColumns() []string { return t.visibility.Hidden(t.cfg.Columns) }

// Projection returns the mobile card split according to the mobile policy.
func (t *Table) Projection() Projection {
	cols := t.cfg.Columns
	if t.cfg.MobilePolicy == MobileFollowsVisibility {
		cols = t.VisibleColumns()
	}
	return Project(cols, t.cfg.PrimaryColumns)
}

// Click notifies OnRowClick for the row with id. It reports whether the row exists.
func (t *Table) Click(id string) bool {
	if id == "" {
		return false
	}
	for _, row := range t.data {
		if RowID(row) == id {
			if t.cfg.OnRowClick != nil {
				t.cfg.OnRowClick(row)
			}
			return true
		}
	}
	return false
}

func (t *Table) filterDef(key string) (Filter, bool) {
	for _, f := range t.cfg.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return Filter{}, false
}

func filteredIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id := RowID(row); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// View is a snapshot of everything a renderer or exporter needs.
type View struct {
	Columns      []Column
	AllColumns   []Column
	Hidden       []string
	Projection   Projection
	Rows         []Row
	Total        int
	Search       string
	Filters      []Filter
	FilterValues FilterState
	Active       []Filter
	Selected     []string
	AllSelected  bool
	Empty        bool
	EmptyMessage string
}

// View computes the current snapshot.
func (t *Table) View() View {
	rows := t.Filtered()
	ids := filteredIDs(rows)
	v := View{
		Columns:      t.VisibleColumns(),
		AllColumns:   t.cfg.Columns,
		Hidden:       t.HiddenColumns(),
		Projection:   t.Projection(),
		Rows:         rows,
		Total:        len(t.data),
		Search:       t.search,
		Filters:      t.cfg.Filters,
		FilterValues: t.filters.clone(),
		Active:       t.ActiveFilters(),
		Selected:     t.selection.Selected(),
		AllSelected:  t.allSelected(ids),
		Empty:        len(rows) == 0,
	}
	if v.Empty {
		v.EmptyMessage = t.cfg.EmptyMessage
		if len(t.data) > 0 {
			v.EmptyMessage = t.cfg.NoMatchMessage
		}
	}
	return v
}
