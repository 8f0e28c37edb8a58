package app

import "net/url"

// ListRequest is the input for ListView.
type ListRequest struct {
	View string
	// Query carries the table state: search, filters, selection, hidden
	// columns and an optional operation. See datatable.ParseState.
	Query url.Values
}

// BulkRequest is the input for PlanBulk and BulkAction.
type BulkRequest struct {
	View   string
	Action string
	IDs    []string
}
