package app

import (
	"github.com/shopspring/decimal"

	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

// ListResult is returned by ListView.
type ListResult struct {
	View  views.Definition
	Table *datatable.Table
}

// Field is one labelled value of a record.
type Field struct {
	Key   string
	Label string
	Text  string
}

// RecordResult is returned by Record.
type RecordResult struct {
	View   views.Definition
	ID     string
	Row    datatable.Row
	Fields []Field
}

// Card summarises one view on the dashboard.
type Card struct {
	View  string
	Title string
	Count int
	// Err is set when the view could not be loaded; the rest of the dashboard still renders.
	Err string
}

// MoneyTotal is a dashboard sum in one currency.
type MoneyTotal struct {
	Name     string
	Label    string
	Currency string
	Amount   decimal.Decimal
}

// DashboardResult is returned by Dashboard.
type DashboardResult struct {
	Title    string
	Greeting string
	Cards    []Card
	Totals   []MoneyTotal
}

// BulkPlan is returned by PlanBulk.
type BulkPlan struct {
	View   views.Definition
	Action views.BulkDef
	IDs    []string
	// Rows holds the selected records the session can see.
	Rows []datatable.Row
}

// BulkResult is returned by BulkAction.
type BulkResult struct {
	View     string
	Action   string
	Label    string
	Affected int
}
