package web

import (
	"net/http"

	"bizdesk/internal/app"
	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

type viewSummary struct {
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Bulk  []string `json:"bulk,omitempty"`
}

type columnResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type viewRowsResponse struct {
	View     string           `json:"view"`
	Title    string           `json:"title"`
	Total    int              `json:"total"`
	Count    int              `json:"count"`
	Columns  []columnResponse `json:"columns"`
	Rows     []datatable.Row  `json:"rows"`
	Selected []string         `json:"selected,omitempty"`
}

// apiViews handles GET /api/views.
func (h *Handler) apiViews(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	defs := h.svc.Views(s)
	out := make([]viewSummary, 0, len(defs))
	for _, d := range defs {
		sum := viewSummary{Name: d.Name, Title: d.Title}
		for _, b := range d.BulkFor(s) {
			sum.Bulk = append(sum.Bulk, b.Value)
		}
		out = append(out, sum)
	}
	writeData(w, out)
}

// apiViewRows handles GET /api/views/{view}. It accepts the same query
// parameters as the list page and returns the matching rows.
func (h *Handler) apiViewRows(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListView(r.Context(), session(r), app.ListRequest{View: viewParam(r), Query: r.URL.Query()})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	v := res.Table.View()
	cols := make([]columnResponse, 0, len(v.Columns))
	for _, c := range v.Columns {
		label := c.Label
		if label == "" {
			label = c.Key
		}
		cols = append(cols, columnResponse{Key: c.Key, Label: label})
	}
	rows := v.Rows
	if rows == nil {
		rows = []datatable.Row{}
	}
	writeData(w, viewRowsResponse{
		View:     res.View.Name,
		Title:    res.View.Title,
		Total:    v.Total,
		Count:    len(v.Rows),
		Columns:  cols,
		Rows:     rows,
		Selected: v.Selected,
	})
}

// apiRecord handles GET /api/views/{view}/records/{id}.
func (h *Handler) apiRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Record(r.Context(), session(r), viewParam(r), chiParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, rec.Row)
}

// apiBulk handles POST /api/views/{view}/bulk. API clients confirm on their
// side; the request runs immediately.
func (h *Handler) apiBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string   `json:"action"`
		IDs    []string `json:"ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.BulkAction(r.Context(), session(r), app.BulkRequest{View: viewParam(r), Action: req.Action, IDs: req.IDs})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, struct {
		View     string `json:"view"`
		Action   string `json:"action"`
		Affected int    `json:"affected"`
	}{res.View, res.Action, res.Affected})
}

// apiSchema handles GET /api/schema/views, the JSON Schema of a views file.
func (h *Handler) apiSchema(w http.ResponseWriter, r *http.Request) {
	data, err := views.SchemaJSON()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(data)
}
