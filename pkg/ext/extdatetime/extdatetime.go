// Package extdatetime provides date/time functions for xan expressions.
//
// Dates are read from cells in one of the layouts listed in Layouts, or as
// integer milliseconds since the Unix epoch. Functions returning a date
// format it back in the layout it was parsed with, so a column keeps its
// shape once transformed. All computations happen in UTC unless the date
// carries an offset.
package extdatetime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/A-Archives-and-Forks/xan/pkg/ext/extutil"
	"github.com/A-Archives-and-Forks/xan/pkg/functions"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Layouts are the accepted date layouts, tried in order.
var Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// millisLayout marks dates given as epoch milliseconds.
const millisLayout = ""

// All returns all extended date/time function definitions.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		DateAdd(),
		DateDiff(),
		DatePart(),
		DateStartOf(),
		DateEndOf(),
	}
}

// DateAdd returns the definition for date_add(date, amount, unit).
// Adds (or subtracts if negative) the given amount of the specified unit.
//
// Supported units: "year", "month", "day", "hour", "minute", "second", "millisecond".
func DateAdd() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "date_add",
		MinArgs:     3,
		MaxArgs:     3,
		Help:        "date_add(date, amount, unit) -> string",
		Description: "Shift date by amount units (year, month, day, hour, minute, second, millisecond).",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			t, layout, err := parseDate(args[0])
			if err != nil {
				return types.None, err
			}
			amount, err := extutil.Int(args, 1)
			if err != nil {
				return types.None, err
			}
			unit, err := extutil.String(args, 2)
			if err != nil {
				return types.None, err
			}

			n := int(amount)
			switch strings.ToLower(unit) {
			case "year":
				t = t.AddDate(n, 0, 0)
			case "month":
				t = t.AddDate(0, n, 0)
			case "day":
				t = t.AddDate(0, 0, n)
			case "hour":
				t = t.Add(time.Duration(amount) * time.Hour)
			case "minute":
				t = t.Add(time.Duration(amount) * time.Minute)
			case "second":
				t = t.Add(time.Duration(amount) * time.Second)
			case "millisecond":
				t = t.Add(time.Duration(amount) * time.Millisecond)
			default:
				return types.None, fmt.Errorf("unsupported unit %q", unit)
			}
			return formatDate(t, layout), nil
		},
	}
}

// DateDiff returns the definition for date_diff(from, to, unit).
// Returns the difference (to - from) in whole units.
func DateDiff() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "date_diff",
		MinArgs:     3,
		MaxArgs:     3,
		Help:        "date_diff(from, to, unit) -> integer",
		Description: "Return the number of whole units between from and to.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			from, _, err := parseDate(args[0])
			if err != nil {
				return types.None, err
			}
			to, _, err := parseDate(args[1])
			if err != nil {
				return types.None, err
			}
			unit, err := extutil.String(args, 2)
			if err != nil {
				return types.None, err
			}

			var diff int64
			switch strings.ToLower(unit) {
			case "millisecond":
				diff = to.UnixMilli() - from.UnixMilli()
			case "second":
				diff = to.Unix() - from.Unix()
			case "minute":
				diff = (to.Unix() - from.Unix()) / 60
			case "hour":
				diff = (to.Unix() - from.Unix()) / 3600
			case "day":
				diff = (to.Unix() - from.Unix()) / 86400
			case "month":
				years, months := dateDiffYM(from, to)
				diff = int64(years*12 + months)
			case "year":
				years, _ := dateDiffYM(from, to)
				diff = int64(years)
			default:
				return types.None, fmt.Errorf("unsupported unit %q", unit)
			}
			return types.NewInteger(diff), nil
		},
	}
}

// DatePart returns the definition for date_part(date, component).
// Components: year, month, day, hour, minute, second, millisecond, weekday
// (0 is Sunday), yearday.
func DatePart() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "date_part",
		MinArgs:     2,
		MaxArgs:     2,
		Help:        "date_part(date, component) -> integer",
		Description: "Return one component of date (year, month, day, hour, minute, second, millisecond, weekday, yearday).",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			t, _, err := parseDate(args[0])
			if err != nil {
				return types.None, err
			}
			component, err := extutil.String(args, 1)
			if err != nil {
				return types.None, err
			}

			var part int
			switch strings.ToLower(component) {
			case "year":
				part = t.Year()
			case "month":
				part = int(t.Month())
			case "day":
				part = t.Day()
			case "hour":
				part = t.Hour()
			case "minute":
				part = t.Minute()
			case "second":
				part = t.Second()
			case "millisecond":
				part = t.Nanosecond() / int(time.Millisecond)
			case "weekday":
				part = int(t.Weekday())
			case "yearday":
				part = t.YearDay()
			default:
				return types.None, fmt.Errorf("unsupported component %q", component)
			}
			return types.NewInteger(int64(part)), nil
		},
	}
}

// DateStartOf returns the definition for date_start_of(date, unit).
func DateStartOf() functions.CustomFunctionDef {
	return truncation("date_start_of", "Truncate date to the start of unit.", startOf)
}

// DateEndOf returns the definition for date_end_of(date, unit): the last
// millisecond of the unit.
func DateEndOf() functions.CustomFunctionDef {
	return truncation("date_end_of", "Return the last millisecond of the unit containing date.", func(t time.Time, unit string) (time.Time, bool) {
		start, ok := startOf(t, unit)
		if !ok {
			return t, false
		}
		var next time.Time
		switch unit {
		case "year":
			next = start.AddDate(1, 0, 0)
		case "month":
			next = start.AddDate(0, 1, 0)
		case "day":
			next = start.AddDate(0, 0, 1)
		case "hour":
			next = start.Add(time.Hour)
		case "minute":
			next = start.Add(time.Minute)
		case "second":
			next = start.Add(time.Second)
		}
		return next.Add(-time.Millisecond), true
	})
}

func truncation(name, description string, fn func(time.Time, string) (time.Time, bool)) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        name,
		MinArgs:     2,
		MaxArgs:     2,
		Help:        name + "(date, unit) -> string",
		Description: description,
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			t, layout, err := parseDate(args[0])
			if err != nil {
				return types.None, err
			}
			unit, err := extutil.String(args, 1)
			if err != nil {
				return types.None, err
			}
			result, ok := fn(t, strings.ToLower(unit))
			if !ok {
				return types.None, fmt.Errorf("unsupported unit %q", unit)
			}
			return formatDate(result, layout), nil
		},
	}
}

// ── helpers ────────────────────────────────────────────────────────────────

func startOf(t time.Time, unit string) (time.Time, bool) {
	loc := t.Location()
	switch unit {
	case "year":
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, loc), true
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc), true
	case "day":
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	case "hour":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc), true
	case "minute":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
	case "second":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
	default:
		return t, false
	}
}

// parseDate reads a date and reports the layout it matched.
func parseDate(v types.Value) (time.Time, string, error) {
	if v.Kind() == types.KindInteger {
		ms, _ := v.AsInteger()
		return time.UnixMilli(ms).UTC(), millisLayout, nil
	}

	s, err := v.AsString()
	if err != nil {
		return time.Time{}, "", err
	}
	s = strings.TrimSpace(s)
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("cannot parse %q as a date", s)
}

func formatDate(t time.Time, layout string) types.Value {
	if layout == millisLayout {
		return types.NewInteger(t.UnixMilli())
	}
	return types.NewString(t.Format(layout))
}

// dateDiffYM returns the difference in full years and remaining months.
func dateDiffYM(from, to time.Time) (years, months int) {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	years = y2 - y1
	months = int(m2) - int(m1)
	if d2 < d1 {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}
	return years, months
}
