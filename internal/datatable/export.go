package datatable

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"
)

// Exports write the visible columns of the filtered rows, as text produced by
// each column's Format.

func (v View) writer() table.Writer {
	tw := table.NewWriter()
	header := make(table.Row, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = c.header()
	}
	tw.AppendHeader(header)
	for _, row := range v.Rows {
		r := make(table.Row, len(v.Columns))
		for i, c := range v.Columns {
			r[i] = c.Text(row)
		}
		tw.AppendRow(r)
	}
	return tw
}

// WriteCSV writes the view as CSV.
func (v View) WriteCSV(w io.Writer) error {
	_, err := io.WriteString(w, v.writer().RenderCSV()+"\n")
	return err
}

// WriteMarkdown writes the view as a Markdown table.
func (v View) WriteMarkdown(w io.Writer) error {
	_, err := io.WriteString(w, v.writer().RenderMarkdown()+"\n")
	return err
}

// WriteText writes the view as a boxed plain-text table followed by a row count.
func (v View) WriteText(w io.Writer) error {
	if v.Empty {
		_, err := fmt.Fprintln(w, v.EmptyMessage)
		return err
	}
	tw := v.writer()
	tw.SetStyle(table.StyleLight)
	if _, err := io.WriteString(w, tw.Render()+"\n"); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d of %d rows)\n", len(v.Rows), v.Total)
	return err
}

// WriteXLSX writes the view as a single-sheet workbook.
func (v View) WriteXLSX(w io.Writer, sheet string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet = sheetName(sheet)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = c.header()
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range v.Rows {
		values := make([]any, len(v.Columns))
		for j, c := range v.Columns {
			values[j] = c.Text(row)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if len(v.Columns) > 0 {
		last, err := excelize.ColumnNumberToName(len(v.Columns))
		if err != nil {
			return err
		}
		if err := f.AutoFilter(sheet, "A1:"+last+"1", nil); err != nil {
			return fmt.Errorf("autofilter: %w", err)
		}
	}
	return f.Write(w)
}

// sheetName trims s to a valid worksheet name.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return "Sheet1"
	}
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}
