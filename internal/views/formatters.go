package views

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"bizdesk/internal/datatable"
)

// Formatter turns a cell value into text and, optionally, HTML.
type Formatter struct {
	Text func(v any, row datatable.Row, loc *time.Location) string
	HTML func(v any, row datatable.Row, loc *time.Location) g.Node
}

var formatters = map[string]Formatter{
	"text":     {Text: plainText},
	"currency": {Text: currencyText},
	"date":     {Text: layoutText("Jan 2, 2006")},
	"datetime": {Text: layoutText("Jan 2, 2006 15:04")},
	"status":   {Text: plainText, HTML: statusHTML},
	"boolean":  {Text: booleanText},
	"percent":  {Text: percentText},
	"email":    {Text: plainText, HTML: emailHTML},
}

// FormatterNames lists the registered formatter names.
func FormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for n := range formatters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func plainText(v any, _ datatable.Row, _ *time.Location) string {
	return datatable.CellString(v)
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"JPY": "¥",
}

// Decimal converts a cell value to a decimal. Values that are not numbers report false.
func Decimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	}
	s := strings.TrimSpace(datatable.CellString(v))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Money formats amount in the given ISO currency with grouped thousands.
func Money(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	if sym, ok := currencySymbols[currency]; ok {
		return sign + sym + group(whole) + "." + frac
	}
	return sign + currency + " " + group(whole) + "." + frac
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func currencyText(v any, row datatable.Row, _ *time.Location) string {
	d, ok := Decimal(v)
	if !ok {
		return datatable.CellString(v)
	}
	return Money(d, datatable.CellString(row["currency"]))
}

func layoutText(layout string) func(any, datatable.Row, *time.Location) string {
	return func(v any, _ datatable.Row, loc *time.Location) string {
		t, ok := datatable.ParseDate(v, loc)
		if !ok {
			return datatable.CellString(v)
		}
		return t.In(loc).Format(layout)
	}
}

func booleanText(v any, _ datatable.Row, _ *time.Location) string {
	switch strings.ToLower(datatable.CellString(v)) {
	case "true", "t", "1", "yes", "y":
		return "Yes"
	case "false", "f", "0", "no", "n":
		return "No"
	}
	return ""
}

func percentText(v any, _ datatable.Row, _ *time.Location) string {
	d, ok := Decimal(v)
	if !ok {
		return datatable.CellString(v)
	}
	return d.Round(1).String() + "%"
}

// StatusTone maps a status word to a label colour.
func StatusTone(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "paid", "completed", "accepted", "approved", "done", "low":
		return "success"
	case "pending", "unpaid", "waiting", "in progress", "partially paid", "draft", "sent", "medium", "not started":
		return "attention"
	case "overdue", "inactive", "declined", "cancelled", "failed", "expired", "rejected", "urgent", "high":
		return "danger"
	case "on hold", "refunded":
		return "severe"
	}
	return "secondary"
}

func statusHTML(v any, _ datatable.Row, _ *time.Location) g.Node {
	s := datatable.CellString(v)
	if s == "" {
		return nil
	}
	return h.Span(h.Class("Label Label--"+StatusTone(s)), g.Text(s))
}

func emailHTML(v any, _ datatable.Row, _ *time.Location) g.Node {
	s := datatable.CellString(v)
	if s == "" || !strings.Contains(s, "@") {
		return nil
	}
	return h.A(h.Href("mailto:"+s), g.Text(s))
}
