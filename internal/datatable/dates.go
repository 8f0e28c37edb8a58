package datatable

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.000000",
	"2006/01/02",
	"01/02/2006",
}

// ParseDate interprets v as an instant. Zone-less layouts are read in loc and
// numbers are taken as epoch milliseconds. A time.Time at midnight UTC is a
// calendar date, as database drivers deliver DATE values, and is read as that
// day in loc.
func ParseDate(v any, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return wallDate(x, loc), !x.IsZero()
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return wallDate(*x, loc), true
	case string:
		return parseDateString(x, loc)
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			return time.UnixMilli(ms), true
		}
		if f, err := x.Float64(); err == nil {
			return time.UnixMilli(int64(f)), true
		}
		return time.Time{}, false
	case int:
		return time.UnixMilli(int64(x)), true
	case int64:
		return time.UnixMilli(x), true
	case float64:
		return time.UnixMilli(int64(x)), true
	case driver.Valuer:
		val, err := x.Value()
		if err != nil {
			return time.Time{}, false
		}
		return ParseDate(val, loc)
	}
	return time.Time{}, false
}

func wallDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil || t.Location() != time.UTC || t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func parseDateString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// startOfDay and endOfDay bound the calendar day of t in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
