package app

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/source"
	"bizdesk/internal/views"
)

// dashboardConcurrency bounds the number of views loaded at once for a dashboard.
const dashboardConcurrency = 4

type appService struct {
	src       source.Source
	catalogue *views.Catalogue
	opts      views.BuildOptions
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(src source.Source, catalogue *views.Catalogue, opts views.BuildOptions) ApplicationService {
	return &appService{src: src, catalogue: catalogue, opts: opts}
}

// Authenticate verifies credentials against the configured source.
func (a *appService) Authenticate(ctx context.Context, username, password string) (core.SessionContext, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return core.SessionContext{}, fmt.Errorf("username and password are required: %w", core.ErrInvalidInput)
	}
	s, err := a.src.Authenticate(ctx, username, password)
	if err != nil {
		return core.SessionContext{}, err
	}
	return s, nil
}

// Views returns the views s may open.
func (a *appService) Views(s core.SessionContext) []views.Definition {
	if !s.Valid() {
		return nil
	}
	return a.catalogue.For(s)
}

func (a *appService) lookup(s core.SessionContext, name string) (views.Definition, error) {
	if !s.Valid() {
		return views.Definition{}, core.ErrUnauthenticated
	}
	return a.catalogue.Lookup(s, name)
}

// mount builds the table for def and applies the transported state.
func (a *appService) mount(def views.Definition, s core.SessionContext, rows []datatable.Row, cfgEdit func(*datatable.Config)) *datatable.Table {
	cfg := views.Build(def, s, rows, a.opts)
	if cfgEdit != nil {
		cfgEdit(&cfg)
	}
	return datatable.New(rows, cfg, datatable.WithHidden(def.Hidden...))
}

// ListView loads the rows of a view and applies the request state.
func (a *appService) ListView(ctx context.Context, s core.SessionContext, req ListRequest) (*ListResult, error) {
	def, err := a.lookup(s, req.View)
	if err != nil {
		return nil, err
	}
	rows, err := a.src.Rows(ctx, s, def)
	if err != nil {
		return nil, err
	}
	tbl := a.mount(def, s, rows, nil)
	datatable.ParseState(req.Query, tbl.Config().Filters).Apply(tbl)
	return &ListResult{View: def, Table: tbl}, nil
}

// Record finds one row of a view by id.
func (a *appService) Record(ctx context.Context, s core.SessionContext, view, id string) (*RecordResult, error) {
	def, err := a.lookup(s, view)
	if err != nil {
		return nil, err
	}
	rows, err := a.src.Rows(ctx, s, def)
	if err != nil {
		return nil, err
	}

	var found datatable.Row
	tbl := a.mount(def, s, rows, func(cfg *datatable.Config) {
		cfg.OnRowClick = func(row datatable.Row) { found = row }
	})
	if !tbl.Click(id) {
		return nil, fmt.Errorf("%s record %q: %w", def.Name, id, core.ErrNotFound)
	}

	res := &RecordResult{View: def, ID: id, Row: found}
	seen := make(map[string]bool)
	for _, c := range tbl.Config().Columns {
		seen[c.Key] = true
		label := c.Label
		if label == "" {
			label = humanize(c.Key)
		}
		res.Fields = append(res.Fields, Field{Key: c.Key, Label: label, Text: c.Text(found)})
	}
	var extra []string
	for k := range found {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		res.Fields = append(res.Fields, Field{Key: k, Label: humanize(k), Text: datatable.DisplayString(found[k])})
	}
	return res, nil
}

func humanize(key string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(key))
	for i, w := range words {
		if w == "id" {
			words[i] = "ID"
			continue
		}
		if i == 0 {
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

var dashboardTitles = map[core.Role]string{
	core.RoleSuperAdmin: "Platform overview",
	core.RoleAdmin:      "Company overview",
	core.RoleEmployee:   "My work",
	core.RoleClient:     "My account",
}

// Dashboard loads every view the session may open and summarises it.
func (a *appService) Dashboard(ctx context.Context, s core.SessionContext) (*DashboardResult, error) {
	if !s.Valid() {
		return nil, core.ErrUnauthenticated
	}
	defs := a.catalogue.For(s)
	cards := make([]Card, len(defs))
	loaded := make([][]datatable.Row, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardConcurrency)
	for i, def := range defs {
		cards[i] = Card{View: def.Name, Title: def.Title}
		g.Go(func() error {
			rows, err := a.src.Rows(gctx, s, def)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("dashboard: load %s for user %d: %v", def.Name, s.UserID, err)
				cards[i].Err = "unavailable"
				return nil
			}
			cards[i].Count = len(rows)
			loaded[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DashboardResult{
		Title:    dashboardTitles[s.Role],
		Greeting: "Welcome back, " + s.DisplayName(),
		Cards:    cards,
		Totals:   totals(defs, loaded),
	}, nil
}

var totalLabels = map[string]string{
	"invoiced":    "Invoiced",
	"collected":   "Collected",
	"received":    "Received",
	"outstanding": "Outstanding",
}

// totals sums each view's declared money columns per currency and derives
// outstanding = invoiced - collected where both are known.
func totals(defs []views.Definition, loaded [][]datatable.Row) []MoneyTotal {
	var out []MoneyTotal
	index := make(map[string]int)
	add := func(name, currency string, amount decimal.Decimal) {
		key := name + "\x00" + currency
		i, ok := index[key]
		if !ok {
			label := totalLabels[name]
			if label == "" {
				label = humanize(name)
			}
			i = len(out)
			index[key] = i
			out = append(out, MoneyTotal{Name: name, Label: label, Currency: currency, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(amount)
	}

	for i, def := range defs {
		if len(def.Totals) == 0 || loaded[i] == nil {
			continue
		}
		names := make([]string, 0, len(def.Totals))
		for name := range def.Totals {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			col := def.Totals[name]
			for _, row := range loaded[i] {
				currency := strings.ToUpper(datatable.CellString(row["currency"]))
				if currency == "" {
					currency = "USD"
				}
				if d, ok := views.Decimal(row[col]); ok {
					add(name, currency, d)
				} else {
					add(name, currency, decimal.Zero)
				}
			}
		}
	}

	n := len(out)
	for i := 0; i < n; i++ {
		if out[i].Name != "invoiced" {
			continue
		}
		j, ok := index["collected\x00"+out[i].Currency]
		if !ok {
			continue
		}
		add("outstanding", out[i].Currency, out[i].Amount.Sub(out[j].Amount))
	}
	return out
}

// PlanBulk checks that s may run the action and narrows ids to the rows s can see.
func (a *appService) PlanBulk(ctx context.Context, s core.SessionContext, req BulkRequest) (*BulkPlan, error) {
	def, err := a.lookup(s, req.View)
	if err != nil {
		return nil, err
	}
	action, ok := def.BulkAction(s, req.Action)
	if !ok {
		if slices.ContainsFunc(def.Bulk, func(b views.BulkDef) bool { return b.Value == req.Action }) {
			return nil, fmt.Errorf("bulk action %q on %s: %w", req.Action, def.Name, core.ErrForbidden)
		}
		return nil, fmt.Errorf("bulk action %q on %s: %w", req.Action, def.Name, core.ErrInvalidInput)
	}

	wanted := make(map[string]bool, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = true
		}
	}
	if len(wanted) == 0 {
		return nil, fmt.Errorf("no records selected: %w", core.ErrInvalidInput)
	}

	rows, err := a.src.Rows(ctx, s, def)
	if err != nil {
		return nil, err
	}
	plan := &BulkPlan{View: def, Action: action}
	for _, row := range rows {
		if id := datatable.RowID(row); wanted[id] {
			plan.IDs = append(plan.IDs, id)
			plan.Rows = append(plan.Rows, row)
			delete(wanted, id)
		}
	}
	if len(plan.IDs) == 0 {
		return nil, fmt.Errorf("selected %s records: %w", def.Name, core.ErrNotFound)
	}
	return plan, nil
}

// BulkAction re-validates the request and runs it against the source.
func (a *appService) BulkAction(ctx context.Context, s core.SessionContext, req BulkRequest) (*BulkResult, error) {
	plan, err := a.PlanBulk(ctx, s, req)
	if err != nil {
		return nil, err
	}
	n, err := a.src.Bulk(ctx, s, plan.View, plan.Action.Value, plan.IDs)
	if err != nil {
		return nil, err
	}
	log.Printf("bulk %s on %s by user %d (company %d): %d of %d records", plan.Action.Value, plan.View.Name, s.UserID, s.CompanyID, n, len(plan.IDs))
	return &BulkResult{View: plan.View.Name, Action: plan.Action.Value, Label: plan.Action.Label, Affected: n}, nil
}
