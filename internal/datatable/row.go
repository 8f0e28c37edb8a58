package datatable

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Row is one record supplied by the caller. The table never validates its shape.
type Row map[string]any

// Placeholder is shown for nil or empty cells.
const Placeholder = "-"

// RowID returns the identity of a row: "id", falling back to "company_id".
// An empty string means the row cannot take part in selection.
func RowID(row Row) string {
	if v, ok := row["id"]; ok && v != nil {
		return CellString(v)
	}
	if v, ok := row["company_id"]; ok && v != nil {
		return CellString(v)
	}
	return ""
}

// Normalize converts loosely typed data into rows. Values that are not a
// sequence of records produce an empty slice instead of an error.
func Normalize(data any) []Row {
	switch d := data.(type) {
	case []Row:
		if d == nil {
			return []Row{}
		}
		return d
	case []map[string]any:
		out := make([]Row, 0, len(d))
		for _, m := range d {
			if m != nil {
				out = append(out, Row(m))
			}
		}
		return out
	case []any:
		out := make([]Row, 0, len(d))
		for _, elem := range d {
			switch m := elem.(type) {
			case Row:
				if m != nil {
					out = append(out, m)
				}
			case map[string]any:
				if m != nil {
					out = append(out, Row(m))
				}
			}
		}
		return out
	default:
		return []Row{}
	}
}

// CellString returns the plain string form of a row value. It is the form
// used for search, select and text matching, and for raw display.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return timeString(x)
	case *time.Time:
		if x == nil {
			return ""
		}
		return timeString(*x)
	case [16]byte:
		return uuid.UUID(x).String()
	case []byte:
		return string(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, CellString(e))
		}
		return strings.Join(parts, ",")
	case map[string]any, Row:
		return ""
	case fmt.Stringer:
		return x.String()
	case driver.Valuer:
		val, err := x.Value()
		if err != nil {
			return ""
		}
		return CellString(val)
	default:
		return fmt.Sprint(x)
	}
}

// DisplayString is CellString with the empty placeholder applied.
func DisplayString(v any) string {
	if s := CellString(v); s != "" {
		return s
	}
	return Placeholder
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
