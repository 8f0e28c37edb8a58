package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	g "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"bizdesk/internal/app"
	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
)

// Query parameters of the post-bulk notice.
const (
	paramBulkDone  = "bulk"
	paramBulkCount = "n"
)

// exportFormat describes one downloadable rendition of a view.
type exportFormat struct {
	contentType string
	write       func(v datatable.View, title string, w *bytes.Buffer) error
}

var exportFormats = map[string]exportFormat{
	"csv": {"text/csv; charset=utf-8", func(v datatable.View, _ string, w *bytes.Buffer) error { return v.WriteCSV(w) }},
	"md":  {"text/markdown; charset=utf-8", func(v datatable.View, _ string, w *bytes.Buffer) error { return v.WriteMarkdown(w) }},
	"txt": {"text/plain; charset=utf-8", func(v datatable.View, _ string, w *bytes.Buffer) error { return v.WriteText(w) }},
	"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(v datatable.View, title string, w *bytes.Buffer) error {
		return v.WriteXLSX(w, title)
	}},
}

// listPage handles GET /v/{view}. A request carrying a toolbar operation is
// applied and redirected to the resulting state so the URL stays shareable.
func (h *Handler) listPage(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	q := r.URL.Query()
	res, err := h.svc.ListView(r.Context(), s, app.ListRequest{View: viewParam(r), Query: q})
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	if q.Get(datatable.ParamOp) != "" {
		http.Redirect(w, r, res.Table.URL(nil), http.StatusSeeOther)
		return
	}

	current := res.Table.URL(nil)
	body := []g.Node{
		bulkNotice(res, s, q.Get(paramBulkDone), q.Get(paramBulkCount)),
		html.Div(
			html.Class("d-flex flex-justify-end gap-2 mb-2 view-tools"),
			exportLink("CSV", withSuffix(current, "/export.csv")),
			exportLink("Excel", withSuffix(current, "/export.xlsx")),
			exportLink("Markdown", withSuffix(current, "/export.md")),
			html.A(html.Href(withSuffix(current, "/print")), html.Target("_blank"), html.Rel("noopener"), html.Class("btn btn-sm"), g.Text("Print")),
		),
		res.Table.Render(),
	}
	renderHTML(w, http.StatusOK, appPage(s, h.svc.Views(s), res.View.Title, res.View.Name, body...))
}

func exportLink(label, href string) g.Node {
	return html.A(html.Href(href), html.Class("btn btn-sm"), g.Attr("download"), g.Text(label))
}

// withSuffix inserts suffix between the path and the query of u.
func withSuffix(u, suffix string) string {
	path, query, found := strings.Cut(u, "?")
	if !found {
		return path + suffix
	}
	return path + suffix + "?" + query
}

// bulkNotice confirms a finished bulk action. Only labels of actions the
// session may run are shown; nothing from the query is echoed verbatim.
func bulkNotice(res *app.ListResult, s core.SessionContext, action, count string) g.Node {
	if action == "" {
		return nil
	}
	b, ok := res.View.BulkAction(s, action)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return nil
	}
	noun := "records"
	if n == 1 {
		noun = "record"
	}
	return flash("success", fmt.Sprintf("%s: %d %s updated.", b.Label, n, noun))
}

// recordPage handles GET /v/{view}/{id}.
func (h *Handler) recordPage(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	rec, err := h.svc.Record(r.Context(), s, viewParam(r), chiParam(r, "id"))
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	items := make([]g.Node, 0, 2*len(rec.Fields))
	for _, f := range rec.Fields {
		text := f.Text
		if text == "" {
			text = "-"
		}
		items = append(items,
			html.Dt(html.Class("color-fg-muted text-small"), g.Text(f.Label)),
			html.Dd(html.Data("field", f.Key), g.Text(text)),
		)
	}
	body := []g.Node{
		html.P(html.Class("mb-3"), html.A(html.Href("/v/"+rec.View.Name), html.Class("Link--secondary"), g.Text("Back to "+rec.View.Title))),
		html.Div(html.Class("Box p-3"), html.Dl(html.Class("detail-grid"), g.Group(items))),
	}
	renderHTML(w, http.StatusOK, appPage(s, h.svc.Views(s), rec.View.Title+" "+rec.ID, rec.View.Name, body...))
}

// exportView handles GET /v/{view}/export.{format}. The export covers the
// filtered rows and the visible columns of the requested state.
func (h *Handler) exportView(w http.ResponseWriter, r *http.Request) {
	format, ok := exportFormats[chiParam(r, "format")]
	if !ok {
		renderHTML(w, http.StatusNotFound, errorPage("Not found", "Unknown export format."))
		return
	}
	res, err := h.svc.ListView(r.Context(), session(r), app.ListRequest{View: viewParam(r), Query: r.URL.Query()})
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := format.write(res.Table.View(), res.View.Title, &buf); err != nil {
		renderServiceError(w, r, fmt.Errorf("export %s: %w: %w", res.View.Name, errInternal, err))
		return
	}
	filename := fmt.Sprintf("%s-%s.%s", res.View.Name, time.Now().In(h.opts.Location).Format("20060102"), chiParam(r, "format"))
	w.Header().Set("Content-Type", format.contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// printView handles GET /v/{view}/print.
func (h *Handler) printView(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListView(r.Context(), session(r), app.ListRequest{View: viewParam(r), Query: r.URL.Query()})
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, datatable.PrintDocument(res.View.Title, res.Table.View()))
}
