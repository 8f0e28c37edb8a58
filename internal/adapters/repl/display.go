package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"bizdesk/internal/app"
	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
)

func printTable(w io.Writer, v datatable.View, selected int) {
	fmt.Fprintln(w)
	if v.Search != "" || len(v.Active) > 0 {
		fmt.Fprintf(w, "  %s\n", describeState(v))
	}
	if err := v.WriteText(w); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	if selected > 0 {
		fmt.Fprintf(w, "%d selected\n", selected)
	}
}

func describeState(v datatable.View) string {
	var parts []string
	if v.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", v.Search))
	}
	for _, f := range v.Active {
		val := v.FilterValues[f.Key]
		if f.Type == datatable.FilterDateRange {
			parts = append(parts, fmt.Sprintf("%s %s..%s", f.Key, val.Start, val.End))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", f.Key, val.Value))
	}
	return strings.Join(parts, ", ")
}

func printFilters(w io.Writer, t *datatable.Table) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"KEY", "TYPE", "CURRENT", "OPTIONS"})
	current := t.FilterValues()
	for _, f := range t.Config().Filters {
		v := current[f.Key]
		cur := v.Value
		if f.Type == datatable.FilterDateRange && !v.Empty(f.Type) {
			cur = v.Start + ".." + v.End
		}
		opts := make([]string, 0, len(f.Options))
		for _, o := range f.Options {
			opts = append(opts, o.Value)
		}
		tw.AppendRow(table.Row{f.Key, string(f.Type), cur, strings.Join(opts, ", ")})
	}
	tw.Render()
}

func printColumns(w io.Writer, t *datatable.Table) {
	hidden := make(map[string]bool)
	for _, k := range t.HiddenColumns() {
		hidden[k] = true
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"KEY", "LABEL", "SHOWN"})
	for _, c := range t.Config().Columns {
		shown := "yes"
		if hidden[c.Key] {
			shown = "no"
		}
		tw.AppendRow(table.Row{c.Key, c.Label, shown})
	}
	tw.Render()
}

// PrintRecord writes one record as a two-column table.
func PrintRecord(w io.Writer, rec *app.RecordResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(rec.View.Title + " " + rec.ID)
	for _, f := range rec.Fields {
		text := f.Text
		if text == "" {
			text = "-"
		}
		tw.AppendRow(table.Row{f.Label, text})
	}
	tw.Render()
}

func printBulkActions(w io.Writer, res *app.ListResult, s core.SessionContext) {
	actions := res.View.BulkFor(s)
	if len(actions) == 0 {
		fmt.Fprintln(w, "No bulk actions available on this view.")
		return
	}
	fmt.Fprintln(w, "Usage: /bulk <action>  (applies to the selected rows)")
	for _, a := range actions {
		fmt.Fprintf(w, "  %-24s %s\n", a.Value, a.Label)
	}
}

func exportView(w io.Writer, v datatable.View, format string) error {
	switch strings.ToLower(format) {
	case "csv":
		return v.WriteCSV(w)
	case "md", "markdown":
		return v.WriteMarkdown(w)
	case "txt", "text":
		return v.WriteText(w)
	}
	return fmt.Errorf("unknown export format %q: %w", format, core.ErrInvalidInput)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `
Commands:
  <text>                      search for text
  /search <text>   (/s)       set the search term; /search alone clears it
  /filter                     list filters and their current values
  /filter key=value  (/f)     set a select, text or date filter
  /filter key=start..end      set a date range; either bound may be empty,
                              and one date selects that day
  /clear [key...]  (/c)       clear the given filters, or search and all filters
  /select <id...>  (/sel)     toggle row selection
  /selectall  (/all)          select every matching row, or clear if all are selected
  /hide <col...>, /show <col...>
                              hide or show columns; alone, list the columns
  /open <id>  (/o)            show every field of one record
  /bulk [action]              list bulk actions, or run one on the selection
  /export csv|md|txt  (/x)    print the current rows in another format
  /reload  (/r)               fetch the rows again
  /help  (/h)                 this list
  /exit  (/q)                 leave`)
}
