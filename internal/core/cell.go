// Package core holds the month/year grouping routine and the cell coercion
// rules it relies on.
//
// Cells arrive as the loosely typed values a spreadsheet hands over: float64
// for numbers and serial dates, string for text, bool, time.Time, or nil for
// an empty cell.
package core

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// serialEpoch is day zero of spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// IsBlank reports whether a grouping key cell counts as empty: nil, "", false,
// a numeric zero or NaN.
func IsBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case time.Time:
		return false
	case Date:
		return false
	}
	if f, ok := toFloat(v); ok {
		return f == 0 || math.IsNaN(f)
	}
	return false
}

// DateOf converts a cell into a time. Numbers are spreadsheet serial dates.
func DateOf(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case Date:
		return x.Time, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, invalidDate(x)
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, invalidDate(v)
	}
	return FromSerial(f), nil
}

// FromSerial converts a spreadsheet serial number (days since 1899-12-30,
// fraction = time of day) into a UTC time. The time of day is rounded to the
// second.
func FromSerial(serial float64) time.Time {
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	return serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
}

// ToSerial is the inverse of FromSerial.
func ToSerial(t time.Time) float64 {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := (day.Unix() - serialEpoch.Unix()) / 86400
	return float64(days) + t.Sub(day).Seconds()/86400
}

// AmountOf converts a value cell into a number. Missing or non-numeric cells
// yield NaN, which then poisons the group total.
func AmountOf(v any) float64 {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		if f, ok := ParseAmount(x); ok {
			return f
		}
		return math.NaN()
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return math.NaN()
}

// ParseAmount parses a decimal string. Both "12.34" and "12,34" are accepted;
// when both separators appear the comma is a thousands separator.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case decimal.Decimal:
		f, _ := x.Float64()
		return f, true
	}
	return 0, false
}
