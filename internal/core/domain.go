package core

import (
	"strconv"
	"strings"
	"time"
)

// monthAbbrev maps a 0-based month index to its English label.
var monthAbbrev = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type (
	// Date wraps a calendar day. Cells holding a Date are grouped like time.Time.
	Date struct {
		time.Time
	}

	// MonthYear is the grouping key: a 0-based month index and a calendar year.
	MonthYear struct {
		Month int // 0-11
		Year  int
	}

	// FilterSpec restricts contributing rows to those whose Column (1-based)
	// holds one of Values.
	FilterSpec struct {
		Column int
		Values []string
	}

	// ResultRow is one output line: "<Mon> <Year>" and the summed amount.
	ResultRow struct {
		Label string
		Total float64
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// KeyOf returns the month/year bucket a time falls into, as given, with no
// zone conversion.
func KeyOf(t time.Time) MonthYear {
	return MonthYear{Month: int(t.Month()) - 1, Year: t.Year()}
}

// MonthAbbrev returns the three letter English name for a 0-based month index,
// or "" when the index is out of range.
func MonthAbbrev(month int) string {
	if month < 0 || month >= len(monthAbbrev) {
		return ""
	}
	return monthAbbrev[month]
}

// Label formats the key as "<Mon> <Year>".
func (k MonthYear) Label() string {
	return MonthAbbrev(k.Month) + " " + strconv.Itoa(k.Year)
}

// NewFilterSpec splits a comma separated list into a FilterSpec. Tokens are
// kept verbatim: " B" does not match "B".
func NewFilterSpec(text string, column int) *FilterSpec {
	return &FilterSpec{Column: column, Values: strings.Split(text, ",")}
}

// Match reports whether the record's filter column holds a string equal to
// one of the allowed values. Non-string cells never match.
func (f *FilterSpec) Match(record []any) bool {
	idx := f.Column - 1
	if idx < 0 || idx >= len(record) {
		return false
	}
	s, ok := record[idx].(string)
	if !ok {
		return false
	}
	for _, v := range f.Values {
		if s == v {
			return true
		}
	}
	return false
}
