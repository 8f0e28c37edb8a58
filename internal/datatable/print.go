package datatable

import (
	"fmt"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const printStyle = `body{font:12px/1.4 -apple-system,"Segoe UI",Helvetica,Arial,sans-serif;margin:24px;color:#1f2328}
h1{font-size:18px;margin:0 0 4px}
p{color:#59636e;margin:0 0 12px}
table{border-collapse:collapse;width:100%}
th,td{border:1px solid #d1d9e0;padding:4px 6px;text-align:left;vertical-align:top}
th{background:#f6f8fa}
@media print{body{margin:0}}`

// PrintDocument returns a standalone printable page of the view. The browser
// print dialog opens once the page has loaded.
func PrintDocument(title string, v View) g.Node {
	head := make([]g.Node, len(v.Columns))
	for i, c := range v.Columns {
		head[i] = h.Th(g.Text(c.header()))
	}
	rows := make([]g.Node, len(v.Rows))
	for i, row := range v.Rows {
		cells := make([]g.Node, len(v.Columns))
		for j, c := range v.Columns {
			cells[j] = h.Td(g.Text(c.Text(row)))
		}
		rows[i] = h.Tr(g.Group(cells))
	}

	var body g.Node
	if v.Empty {
		body = h.P(g.Text(v.EmptyMessage))
	} else {
		body = h.Table(h.THead(h.Tr(g.Group(head))), h.TBody(g.Group(rows)))
	}

	return h.Doctype(h.HTML(
		h.Lang("en"),
		h.Head(
			h.Meta(h.Charset("utf-8")),
			h.TitleEl(g.Text(title)),
			h.StyleEl(g.Raw(printStyle)),
		),
		h.Body(
			h.H1(g.Text(title)),
			h.P(g.Text(fmt.Sprintf("%d of %d records", len(v.Rows), v.Total))),
			body,
			h.Script(g.Raw("window.addEventListener('load', function(){ window.print(); });")),
		),
	))
}
