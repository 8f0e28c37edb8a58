package datatable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	g "maragu.dev/gomponents"
	ds "maragu.dev/gomponents-datastar"
	h "maragu.dev/gomponents/html"
)

// syncScript mirrors selection checkboxes between the desktop row and the
// mobile card of the same record.
const syncScript = `document.addEventListener('change', function(e){ var t=e.target; if(!(t instanceof HTMLInputElement) || !t.dataset.row){return;} document.querySelectorAll('input[data-row="'+t.dataset.row+'"]').forEach(function(i){ i.checked=t.checked; }); });`

// Render draws the table in its current state.
func (t *Table) Render() g.Node {
	return t.renderView(t.View())
}

func (t *Table) renderView(v View) g.Node {
	var body g.Node
	if v.Empty {
		body = t.emptyState(v)
	} else {
		body = g.Group([]g.Node{t.desktop(v), t.mobile(v)})
	}
	return h.Div(
		h.Class("datatable"),
		g.If(t.cfg.ID != "", h.ID(t.cfg.ID)),
		h.Form(
			h.Method("get"),
			h.Action(t.cfg.BaseURL),
			ds.Signals(map[string]any{"q": v.Search}),
			t.toolbar(v),
			t.activeChips(v),
			g.If(t.cfg.BulkActions, t.bulkBar(v)),
			t.summary(v),
			body,
			t.carriedInputs(v),
		),
		g.If(t.cfg.BulkActions, h.Script(g.Raw(syncScript))),
	)
}

func (t *Table) toolbar(v View) g.Node {
	return h.Div(
		h.Class("Box p-3 mb-3 card toolbar"),
		h.Div(
			h.Class("d-flex flex-wrap flex-items-center gap-2"),
			h.Label(h.Class("sr-only"), h.For(t.inputID("q")), g.Text("Search")),
			h.Input(
				h.Type("search"),
				h.ID(t.inputID("q")),
				h.Name(ParamSearch),
				h.Value(v.Search),
				h.Class("form-control flex-1"),
				h.Placeholder(t.cfg.SearchPlaceholder),
				h.AutoComplete("off"),
				ds.Bind("q"),
			),
			g.If(len(v.Filters) > 0, t.filterPanel(v)),
			t.columnMenu(v),
			h.Button(h.Type("submit"), h.Class("btn btn-primary"), g.Text("Apply")),
		),
	)
}

func (t *Table) filterPanel(v View) g.Node {
	label := "Filters"
	if n := len(v.Active); n > 0 {
		label = fmt.Sprintf("Filters (%d)", n)
	}
	fields := make([]g.Node, 0, len(v.Filters))
	for _, f := range v.Filters {
		fields = append(fields, t.filterField(f, v.FilterValues[f.Key]))
	}
	return h.Details(
		h.Class("dropdown details-reset details-overlay d-inline-block"),
		h.Summary(h.Class("btn"), g.Text(label)),
		h.Div(
			h.Class("dropdown-menu dropdown-menu-se filter-panel p-3"),
			g.Group(fields),
			h.Div(
				h.Class("d-flex gap-2 mt-2"),
				h.Button(h.Type("submit"), h.Class("btn btn-sm btn-primary"), g.Text("Apply filters")),
				g.If(len(v.Active) > 0, h.A(h.Href(t.URL(func(s *State) { s.Filters = FilterState{} })), h.Class("btn btn-sm"), g.Text("Clear all"))),
			),
		),
	)
}

func (t *Table) filterField(f Filter, val FilterValue) g.Node {
	label := f.Label
	if label == "" {
		label = f.Key
	}
	id := t.inputID("f-" + f.Key)
	var input g.Node
	switch f.Type {
	case FilterSelect:
		opts := []g.Node{h.Option(h.Value(""), g.Text(selectPlaceholder(f)))}
		for _, o := range f.Options {
			text := o.Label
			if text == "" {
				text = o.Value
			}
			opts = append(opts, h.Option(h.Value(o.Value), g.If(o.Value == val.Value, h.Selected()), g.Text(text)))
		}
		input = h.Select(h.ID(id), h.Name(filterParam(f.Key)), h.Class("form-select"), g.Group(opts))
	case FilterDate:
		input = h.Input(h.Type("date"), h.ID(id), h.Name(filterParam(f.Key)), h.Value(val.Value), h.Class("form-control"))
	case FilterDateRange:
		input = h.Div(
			h.Class("d-flex gap-1"),
			h.Input(h.Type("date"), h.ID(id), h.Name(startParam(f.Key)), h.Value(val.Start), h.Class("form-control"), h.Aria("label", label+" from")),
			h.Input(h.Type("date"), h.Name(endParam(f.Key)), h.Value(val.End), h.Class("form-control"), h.Aria("label", label+" to")),
		)
	default:
		input = h.Input(h.Type("text"), h.ID(id), h.Name(filterParam(f.Key)), h.Value(val.Value), h.Class("form-control"), h.Placeholder(f.Placeholder))
	}
	return h.Div(
		h.Class("form-group mb-2"),
		h.Label(h.For(id), h.Class("text-small"), g.Text(label)),
		input,
	)
}

func selectPlaceholder(f Filter) string {
	if f.Placeholder != "" {
		return f.Placeholder
	}
	return "All"
}

func (t *Table) columnMenu(v View) g.Node {
	items := make([]g.Node, 0, len(v.AllColumns))
	for _, c := range v.AllColumns {
		key := c.Key
		mark := "☐ "
		if !contains(v.Hidden, key) {
			mark = "☑ "
		}
		items = append(items, h.A(
			h.Href(t.URL(func(s *State) { s.Hidden = toggled(s.Hidden, key) })),
			h.Class("dropdown-item"),
			g.Text(mark+c.header()),
		))
	}
	return h.Details(
		h.Class("dropdown details-reset details-overlay d-inline-block"),
		h.Summary(h.Class("btn"), g.Text("Columns")),
		h.Div(h.Class("dropdown-menu dropdown-menu-se"), g.Group(items)),
	)
}

func (t *Table) activeChips(v View) g.Node {
	if len(v.Active) == 0 {
		return nil
	}
	chips := make([]g.Node, 0, len(v.Active)+1)
	for _, f := range v.Active {
		key := f.Key
		chips = append(chips, h.Span(
			h.Class("Label Label--accent mr-1"),
			g.Text(chipText(f, v.FilterValues[key])+" "),
			h.A(h.Href(t.URL(func(s *State) { s.Filters.Clear(key) })), h.Aria("label", "Clear "+f.Label), g.Text("×")),
		))
	}
	chips = append(chips, h.A(h.Href(t.URL(func(s *State) { s.Filters = FilterState{} })), h.Class("text-small"), g.Text("Clear filters")))
	return h.Div(h.Class("mb-2 active-filters"), g.Group(chips))
}

func chipText(f Filter, v FilterValue) string {
	label := f.Label
	if label == "" {
		label = f.Key
	}
	if f.Type != FilterDateRange {
		return label + ": " + optionLabel(f, v.Value)
	}
	from, to := v.Start, v.End
	if from == "" {
		from = "…"
	}
	if to == "" {
		to = "…"
	}
	return label + ": " + from + " – " + to
}

func optionLabel(f Filter, value string) string {
	for _, o := range f.Options {
		if o.Value == value && o.Label != "" {
			return o.Label
		}
	}
	return value
}

func (t *Table) bulkBar(v View) g.Node {
	selectLabel := "Select all"
	if v.AllSelected {
		selectLabel = "Deselect all"
	}
	buttons := make([]g.Node, 0, len(t.cfg.BulkOptions))
	for _, o := range t.cfg.BulkOptions {
		class := "btn btn-sm"
		if o.Danger {
			class += " btn-danger"
		}
		buttons = append(buttons, h.Button(
			h.Type("submit"),
			h.Name("action"),
			h.Value(o.Value),
			h.Class(class),
			g.Attr("formaction", t.cfg.BulkURL),
			g.Attr("formmethod", "post"),
			g.If(len(v.Selected) == 0, h.Disabled()),
			g.Text(o.Label),
		))
	}
	return h.Div(
		h.Class("Box p-2 mb-2 d-flex flex-items-center gap-2 bulk-bar"),
		h.Span(h.Class("text-small"), g.Text(fmt.Sprintf("%d selected", len(v.Selected)))),
		h.Button(h.Type("submit"), h.Name(ParamOp), h.Value(OpSelectAll), h.Class("btn btn-sm"), g.Text(selectLabel)),
		g.If(len(v.Selected) > 0, h.A(h.Href(t.URL(func(s *State) { s.Selected = nil })), h.Class("btn btn-sm"), g.Text("Clear selection"))),
		g.Group(buttons),
	)
}

func (t *Table) summary(v View) g.Node {
	return h.P(
		h.Class("color-fg-muted text-small mb-2"),
		g.Text(fmt.Sprintf("Showing %d of %d entries.", len(v.Rows), v.Total)),
	)
}

// carriedInputs keeps state that has no visible input of its own across submits.
func (t *Table) carriedInputs(v View) g.Node {
	var nodes []g.Node
	for _, key := range v.Hidden {
		nodes = append(nodes, h.Input(h.Type("hidden"), h.Name(ParamHidden), h.Value(key)))
	}
	if len(v.Hidden) == 0 && len(t.defaultHidden) > 0 {
		nodes = append(nodes, h.Input(h.Type("hidden"), h.Name(ParamHidden), h.Value("")))
	}
	if t.cfg.BulkActions {
		shown := make(map[string]bool, len(v.Rows))
		for _, row := range v.Rows {
			shown[RowID(row)] = true
		}
		for _, id := range v.Selected {
			if !shown[id] {
				nodes = append(nodes, h.Input(h.Type("hidden"), h.Name(ParamSelected), h.Value(id)))
			}
		}
	}
	return g.Group(nodes)
}

func (t *Table) emptyState(v View) g.Node {
	filtered := v.Search != "" || len(v.Active) > 0
	return h.Div(
		h.Class("Box p-3 mb-3 card blankslate"),
		h.P(h.Class("color-fg-muted mb-2"), g.Text(v.EmptyMessage)),
		g.If(filtered, h.A(h.Href(t.URL(func(s *State) {
			s.Search = ""
			s.Filters = FilterState{}
		})), h.Class("btn"), g.Text("Reset search and filters"))),
	)
}

func (t *Table) desktop(v View) g.Node {
	head := make([]g.Node, 0, len(v.Columns)+2)
	if t.cfg.BulkActions {
		head = append(head, h.Th(h.Class("col-select"), h.Span(h.Class("sr-only"), g.Text("Select"))))
	}
	for _, c := range v.Columns {
		head = append(head, h.Th(
			g.If(c.ClassName != "", h.Class(c.ClassName)),
			g.If(c.Width != "", h.Style("width: "+c.Width)),
			g.Text(c.header()),
		))
	}
	if t.cfg.Actions != nil {
		head = append(head, h.Th(h.Class("col-actions"), h.Span(h.Class("sr-only"), g.Text("Actions"))))
	}

	rows := make([]g.Node, 0, len(v.Rows))
	for i, row := range v.Rows {
		id := RowID(row)
		cells := make([]g.Node, 0, len(v.Columns)+2)
		if t.cfg.BulkActions {
			cells = append(cells, h.Td(h.Class("col-select"), t.checkbox(id, v)))
		}
		for j, c := range v.Columns {
			cells = append(cells, h.Td(
				g.If(c.ClassName != "", h.Class(c.ClassName)),
				t.cellContent(c, row, j == 0),
			))
		}
		if t.cfg.Actions != nil {
			cells = append(cells, h.Td(h.Class("col-actions"), t.actionMenu(row)))
		}
		rows = append(rows, h.Tr(
			h.Data("key", rowKey(id, i)),
			g.If(id != "" && contains(v.Selected, id), h.Class("selected")),
			ds.Show(quickFilterExpr(row)),
			g.Group(cells),
		))
	}

	return h.Div(
		h.Class("Box mb-3 card table-wrap hide-sm"),
		h.Table(
			h.Class("data-table"),
			h.THead(h.Tr(g.Group(head))),
			h.TBody(g.Group(rows)),
		),
	)
}

func (t *Table) mobile(v View) g.Node {
	cards := make([]g.Node, 0, len(v.Rows))
	for i, row := range v.Rows {
		id := RowID(row)
		primary := make([]g.Node, 0, len(v.Projection.Primary))
		for j, c := range v.Projection.Primary {
			class := "text-small color-fg-muted"
			if j == 0 {
				class = "text-bold"
			}
			primary = append(primary, h.Div(h.Class(class), t.cellContent(c, row, j == 0)))
		}
		details := make([]g.Node, 0, 2*len(v.Projection.Secondary))
		for _, c := range v.Projection.Secondary {
			details = append(details, h.Dt(h.Class("text-small color-fg-muted"), g.Text(c.header())), h.Dd(c.Cell(row)))
		}
		cards = append(cards, h.Div(
			h.Class("Box p-3 mb-2 row-card"),
			h.Data("key", rowKey(id, i)),
			ds.Show(quickFilterExpr(row)),
			h.Div(
				h.Class("d-flex flex-items-start gap-2"),
				g.If(t.cfg.BulkActions, t.checkbox(id, v)),
				h.Div(h.Class("flex-1"), g.Group(primary)),
				t.actionMenu(row),
			),
			g.If(len(details) > 0, h.Dl(h.Class("row-card-grid mt-2 mb-0"), g.Group(details))),
		))
	}
	return h.Div(h.Class("card-list show-sm"), g.Group(cards))
}

func (t *Table) cellContent(c Column, row Row, first bool) g.Node {
	cell := c.Cell(row)
	if first && t.cfg.RowLink != nil {
		if href := t.cfg.RowLink(row); href != "" {
			return h.A(h.Href(href), cell)
		}
	}
	return cell
}

func (t *Table) checkbox(id string, v View) g.Node {
	if id == "" {
		return nil
	}
	return h.Input(
		h.Type("checkbox"),
		h.Name(ParamSelected),
		h.Value(id),
		h.Data("row", id),
		h.Aria("label", "Select row "+id),
		g.If(contains(v.Selected, id), h.Checked()),
	)
}

func (t *Table) actionMenu(row Row) g.Node {
	if t.cfg.Actions == nil {
		return nil
	}
	actions := t.cfg.Actions(row)
	if len(actions) == 0 {
		return nil
	}
	items := make([]g.Node, 0, len(actions))
	for _, a := range actions {
		class := "dropdown-item"
		if a.Danger {
			class += " dropdown-item-danger color-fg-danger"
		}
		if a.Post {
			items = append(items, h.Button(
				h.Type("submit"),
				h.Class(class),
				g.Attr("formaction", a.Href),
				g.Attr("formmethod", "post"),
				g.Text(a.Label),
			))
			continue
		}
		items = append(items, h.A(h.Href(a.Href), h.Class(class), g.Text(a.Label)))
	}
	return h.Details(
		h.Class("dropdown details-reset details-overlay d-inline-block"),
		h.Summary(h.Class("btn btn-sm btn-icon"), h.Aria("label", "Actions"), g.Text("⋯")),
		h.Div(h.Class("dropdown-menu dropdown-menu-sw"), g.Group(items)),
	)
}

// quickFilterExpr narrows already rendered rows while the user types, before
// the form is submitted. It uses the same lowercase substring rule as Apply.
func quickFilterExpr(row Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if row[k] == nil {
			continue
		}
		parts = append(parts, strings.ToLower(CellString(row[k])))
	}
	return "$q === '' || " + strconv.Quote(strings.Join(parts, "\x1f")) + ".includes($q.toLowerCase())"
}

func (t *Table) inputID(name string) string {
	prefix := t.cfg.ID
	if prefix == "" {
		prefix = "dt"
	}
	return prefix + "-" + name
}

func rowKey(id string, i int) string {
	if id != "" {
		return id
	}
	return "row-" + strconv.Itoa(i)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func toggled(list []string, s string) []string {
	out := make([]string, 0, len(list)+1)
	found := false
	for _, v := range list {
		if v == s {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, s)
	}
	return out
}
