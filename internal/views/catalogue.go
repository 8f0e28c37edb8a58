// Package views declares the list screens of the application. Each view names
// a backend resource, its columns and filters, and the roles allowed to open it.
package views

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	g "maragu.dev/gomponents"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
)

//go:embed views.yaml
var builtin []byte

// File is the top-level shape of a views document.
type File struct {
	Views []Definition `yaml:"views" json:"views" jsonschema:"required"`
}

// Definition declares one list screen.
type Definition struct {
	Name              string            `yaml:"name" json:"name" jsonschema:"required,pattern=^[a-z][a-z0-9_-]*$"`
	Title             string            `yaml:"title" json:"title" jsonschema:"required"`
	Resource          string            `yaml:"resource" json:"resource" jsonschema:"required,description=Path of the collection on the REST backend"`
	Table             string            `yaml:"table,omitempty" json:"table,omitempty" jsonschema:"description=PostgreSQL relation; defaults to resource"`
	ScopeColumn       string            `yaml:"scope_column,omitempty" json:"scope_column,omitempty" jsonschema:"description=Column holding the company id; defaults to company_id"`
	Roles             []core.Role       `yaml:"roles,omitempty" json:"roles,omitempty" jsonschema:"enum=super_admin,enum=admin,enum=employee,enum=client"`
	SearchPlaceholder string            `yaml:"search_placeholder,omitempty" json:"search_placeholder,omitempty"`
	EmptyMessage      string            `yaml:"empty_message,omitempty" json:"empty_message,omitempty"`
	PrimaryColumns    int               `yaml:"primary_columns,omitempty" json:"primary_columns,omitempty" jsonschema:"minimum=1"`
	MobilePolicy      string            `yaml:"mobile_policy,omitempty" json:"mobile_policy,omitempty" jsonschema:"enum=follow,enum=ignore"`
	Columns           []ColumnDef       `yaml:"columns" json:"columns" jsonschema:"required,minItems=1"`
	Filters           []FilterDef       `yaml:"filters,omitempty" json:"filters,omitempty"`
	Hidden            []string          `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Actions           []ActionDef       `yaml:"actions,omitempty" json:"actions,omitempty"`
	Bulk              []BulkDef         `yaml:"bulk,omitempty" json:"bulk,omitempty"`
	RowLink           string            `yaml:"row_link,omitempty" json:"row_link,omitempty" jsonschema:"description=URL template; {field} is replaced by the row value"`
	Totals            map[string]string `yaml:"totals,omitempty" json:"totals,omitempty" jsonschema:"description=Dashboard total name to money column"`
}

// ColumnDef declares a column.
type ColumnDef struct {
	Key    string `yaml:"key" json:"key" jsonschema:"required"`
	Label  string `yaml:"label,omitempty" json:"label,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty" jsonschema:"enum=text,enum=currency,enum=date,enum=datetime,enum=status,enum=boolean,enum=percent,enum=email"`
	Class  string `yaml:"class,omitempty" json:"class,omitempty"`
	Width  string `yaml:"width,omitempty" json:"width,omitempty"`
}

// FilterDef declares a filter.
type FilterDef struct {
	Key         string      `yaml:"key" json:"key" jsonschema:"required"`
	Label       string      `yaml:"label,omitempty" json:"label,omitempty"`
	Type        string      `yaml:"type" json:"type" jsonschema:"required,enum=select,enum=date,enum=daterange,enum=text"`
	Options     []OptionDef `yaml:"options,omitempty" json:"options,omitempty" jsonschema:"description=Select choices; derived from the data when empty"`
	Placeholder string      `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
}

// OptionDef is one select choice.
type OptionDef struct {
	Value string `yaml:"value" json:"value" jsonschema:"required"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// ActionDef is a per-row action.
type ActionDef struct {
	Label  string      `yaml:"label" json:"label" jsonschema:"required"`
	Href   string      `yaml:"href" json:"href" jsonschema:"required"`
	Method string      `yaml:"method,omitempty" json:"method,omitempty" jsonschema:"enum=get,enum=post"`
	Danger bool        `yaml:"danger,omitempty" json:"danger,omitempty"`
	Roles  []core.Role `yaml:"roles,omitempty" json:"roles,omitempty"`
}

// BulkDef is an action applied to the selected rows.
type BulkDef struct {
	Value  string      `yaml:"value" json:"value" jsonschema:"required,description=delete or status:<value>"`
	Label  string      `yaml:"label" json:"label" jsonschema:"required"`
	Danger bool        `yaml:"danger,omitempty" json:"danger,omitempty"`
	Roles  []core.Role `yaml:"roles,omitempty" json:"roles,omitempty"`
}

// TableName returns the PostgreSQL relation of the view.
func (d Definition) TableName() string {
	if d.Table != "" {
		return d.Table
	}
	return d.Resource
}

// Scope returns the company column of the view.
func (d Definition) Scope() string {
	if d.ScopeColumn != "" {
		return d.ScopeColumn
	}
	return "company_id"
}

// Fields returns every row field the view reads, in first-use order: the id,
// the company column, columns, filters and dashboard totals, plus currency
// when money is shown and status when a bulk action sets it.
func (d Definition) Fields() []string {
	var out []string
	seen := map[string]bool{}
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	add("id")
	add(d.Scope())
	money := len(d.Totals) > 0
	for _, c := range d.Columns {
		add(c.Key)
		money = money || c.Format == "currency"
	}
	for _, f := range d.Filters {
		add(f.Key)
	}
	totals := make([]string, 0, len(d.Totals))
	for _, col := range d.Totals {
		totals = append(totals, col)
	}
	sort.Strings(totals)
	for _, col := range totals {
		add(col)
	}
	if money {
		add("currency")
	}
	for _, b := range d.Bulk {
		if strings.HasPrefix(b.Value, "status:") {
			add("status")
		}
	}
	return out
}

// Allowed reports whether s may open the view.
func (d Definition) Allowed(s core.SessionContext) bool { return s.HasRole(d.Roles...) }

// BulkFor returns the bulk actions s may run on the view.
func (d Definition) BulkFor(s core.SessionContext) []BulkDef {
	var out []BulkDef
	for _, b := range d.Bulk {
		if s.HasRole(b.Roles...) {
			out = append(out, b)
		}
	}
	return out
}

// BulkAction returns the bulk action with value, if s may run it.
func (d Definition) BulkAction(s core.SessionContext, value string) (BulkDef, bool) {
	for _, b := range d.BulkFor(s) {
		if b.Value == value {
			return b, true
		}
	}
	return BulkDef{}, false
}

// Catalogue is the set of known views.
type Catalogue struct {
	views  []Definition
	byName map[string]int
}

// Parse decodes a views document.
func Parse(data []byte) ([]Definition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	return f.Views, nil
}

// Load returns the built-in catalogue merged with the views in overridePath,
// when given. An override replaces the built-in view of the same name.
func Load(overridePath string) (*Catalogue, error) {
	defs, err := Parse(builtin)
	if err != nil {
		return nil, err
	}
	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read views file: %w", err)
		}
		extra, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", overridePath, err)
		}
		defs = Merge(defs, extra)
	}
	return New(defs)
}

// Merge returns base with every view in extra replacing or appending to it.
func Merge(base, extra []Definition) []Definition {
	out := append([]Definition(nil), base...)
	for _, e := range extra {
		replaced := false
		for i := range out {
			if out[i].Name == e.Name {
				out[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, e)
		}
	}
	return out
}

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// New validates defs and builds a catalogue.
func New(defs []Definition) (*Catalogue, error) {
	c := &Catalogue{byName: make(map[string]int, len(defs))}
	for _, d := range defs {
		if err := validate(d); err != nil {
			return nil, fmt.Errorf("view %q: %w", d.Name, err)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("view %q: duplicate name", d.Name)
		}
		c.byName[d.Name] = len(c.views)
		c.views = append(c.views, d)
	}
	return c, nil
}

func validate(d Definition) error {
	if !namePattern.MatchString(d.Name) {
		return fmt.Errorf("%w: name must match %s", core.ErrInvalidInput, namePattern)
	}
	if d.Resource == "" {
		return fmt.Errorf("%w: resource is required", core.ErrInvalidInput)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("%w: at least one column is required", core.ErrInvalidInput)
	}
	for _, r := range d.Roles {
		if !r.Valid() {
			return fmt.Errorf("%w: unknown role %q", core.ErrInvalidInput, r)
		}
	}
	for _, c := range d.Columns {
		if c.Key == "" {
			return fmt.Errorf("%w: column without key", core.ErrInvalidInput)
		}
		if _, ok := formatters[formatName(c.Format)]; !ok {
			return fmt.Errorf("%w: column %q: unknown format %q", core.ErrInvalidInput, c.Key, c.Format)
		}
	}
	for _, f := range d.Filters {
		if f.Key == "" {
			return fmt.Errorf("%w: filter without key", core.ErrInvalidInput)
		}
		if !datatable.FilterType(f.Type).Valid() {
			return fmt.Errorf("%w: filter %q: unknown type %q", core.ErrInvalidInput, f.Key, f.Type)
		}
	}
	switch d.MobilePolicy {
	case "", "follow", "ignore":
	default:
		return fmt.Errorf("%w: unknown mobile_policy %q", core.ErrInvalidInput, d.MobilePolicy)
	}
	for _, b := range d.Bulk {
		if b.Value != "delete" && !strings.HasPrefix(b.Value, "status:") {
			return fmt.Errorf("%w: bulk action %q must be delete or status:<value>", core.ErrInvalidInput, b.Value)
		}
	}
	return nil
}

func formatName(f string) string {
	if f == "" {
		return "text"
	}
	return f
}

// All returns every view in declaration order.
func (c *Catalogue) All() []Definition { return append([]Definition(nil), c.views...) }

// Get returns the view named name.
func (c *Catalogue) Get(name string) (Definition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Definition{}, false
	}
	return c.views[i], true
}

// For returns the views s may open.
func (c *Catalogue) For(s core.SessionContext) []Definition {
	var out []Definition
	for _, d := range c.views {
		if d.Allowed(s) {
			out = append(out, d)
		}
	}
	return out
}

// Lookup returns the view named name if s may open it.
func (c *Catalogue) Lookup(s core.SessionContext, name string) (Definition, error) {
	d, ok := c.Get(name)
	if !ok {
		return Definition{}, fmt.Errorf("view %q: %w", name, core.ErrNotFound)
	}
	if !d.Allowed(s) {
		return Definition{}, fmt.Errorf("view %q: %w", name, core.ErrForbidden)
	}
	return d, nil
}

// BuildOptions carries presentation settings that do not belong in a view file.
type BuildOptions struct {
	Location       *time.Location
	PrimaryColumns int
	// BasePath prefixes view URLs, e.g. "/v".
	BasePath string
}

// Build converts d into a table declaration for s. rows are used to derive
// options for select filters declared without any.
func Build(d Definition, s core.SessionContext, rows []datatable.Row, opts BuildOptions) datatable.Config {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	base := strings.TrimRight(opts.BasePath, "/") + "/" + d.Name

	cfg := datatable.Config{
		ID:                "view-" + d.Name,
		SearchPlaceholder: d.SearchPlaceholder,
		EmptyMessage:      d.EmptyMessage,
		PrimaryColumns:    opts.PrimaryColumns,
		Location:          loc,
		BaseURL:           base,
		BulkURL:           base + "/bulk",
	}
	if d.PrimaryColumns > 0 {
		cfg.PrimaryColumns = d.PrimaryColumns
	}
	if d.MobilePolicy == "ignore" {
		cfg.MobilePolicy = datatable.MobileIgnoresVisibility
	}

	for _, c := range d.Columns {
		cfg.Columns = append(cfg.Columns, column(c, loc))
	}
	for _, f := range d.Filters {
		cfg.Filters = append(cfg.Filters, filter(f, rows))
	}

	for _, b := range d.BulkFor(s) {
		cfg.BulkOptions = append(cfg.BulkOptions, datatable.BulkOption{Value: b.Value, Label: b.Label, Danger: b.Danger})
	}
	cfg.BulkActions = len(cfg.BulkOptions) > 0

	link := d.RowLink
	if link == "" {
		link = base + "/{id}"
	}
	cfg.RowLink = func(row datatable.Row) string {
		if datatable.RowID(row) == "" {
			return ""
		}
		return Expand(link, row)
	}

	var actions []ActionDef
	for _, a := range d.Actions {
		if s.HasRole(a.Roles...) {
			actions = append(actions, a)
		}
	}
	if len(actions) > 0 {
		cfg.Actions = func(row datatable.Row) []datatable.Action {
			out := make([]datatable.Action, 0, len(actions))
			for _, a := range actions {
				out = append(out, datatable.Action{
					Label:  a.Label,
					Href:   Expand(a.Href, row),
					Post:   strings.EqualFold(a.Method, "post"),
					Danger: a.Danger,
				})
			}
			return out
		}
	}
	return cfg
}

func column(c ColumnDef, loc *time.Location) datatable.Column {
	f := formatters[formatName(c.Format)]
	col := datatable.Column{Key: c.Key, Label: c.Label, ClassName: c.Class, Width: c.Width}
	col.Format = func(v any, row datatable.Row) string { return f.Text(v, row, loc) }
	if f.HTML != nil {
		col.Render = func(v any, row datatable.Row) g.Node { return f.HTML(v, row, loc) }
	}
	return col
}

func filter(f FilterDef, rows []datatable.Row) datatable.Filter {
	out := datatable.Filter{
		Key:         f.Key,
		Label:       f.Label,
		Type:        datatable.FilterType(f.Type),
		Placeholder: f.Placeholder,
	}
	for _, o := range f.Options {
		out.Options = append(out.Options, datatable.Option{Value: o.Value, Label: o.Label})
	}
	if out.Type == datatable.FilterSelect && len(out.Options) == 0 {
		out.Options = datatable.DistinctOptions(rows, f.Key)
	}
	return out
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Expand replaces {field} in tmpl with the escaped value of that field in row.
// {id} uses the row identity.
func Expand(tmpl string, row datatable.Row) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[1 : len(m)-1]
		v := datatable.CellString(row[key])
		if key == "id" {
			v = datatable.RowID(row)
		}
		return url.PathEscape(v)
	})
}
