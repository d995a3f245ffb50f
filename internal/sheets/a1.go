package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Span is a parsed cell rectangle. Zero columns or rows mean "unbounded" on
// that side: "A2:F" has LastRow 0, "B:B" has FirstRow 0.
type Span struct {
	Sheet    string
	FirstCol int
	FirstRow int
	LastCol  int
	LastRow  int
}

// ParseSpan parses an A1 range such as "Trades!A2:F50", "Trades!B2:B" or "Report!A2".
func ParseSpan(a1 string) (Span, error) {
	sheet, cells := SplitSheet(a1)
	if cells == "" {
		return Span{}, fmt.Errorf("empty range %q", a1)
	}
	first, last := cells, cells
	single := true
	if i := strings.Index(cells, ":"); i >= 0 {
		first, last = cells[:i], cells[i+1:]
		single = false
	}
	fc, fr, err := parseEndpoint(first)
	if err != nil {
		return Span{}, fmt.Errorf("range %q: %w", a1, err)
	}
	lc, lr, err := parseEndpoint(last)
	if err != nil {
		return Span{}, fmt.Errorf("range %q: %w", a1, err)
	}
	if single && (fc == 0 || fr == 0) {
		return Span{}, fmt.Errorf("range %q: single cell needs a column and a row", a1)
	}
	if lc != 0 && fc > lc {
		return Span{}, fmt.Errorf("range %q: columns out of order", a1)
	}
	if lr != 0 && fr > lr {
		return Span{}, fmt.Errorf("range %q: rows out of order", a1)
	}
	return Span{Sheet: sheet, FirstCol: fc, FirstRow: fr, LastCol: lc, LastRow: lr}, nil
}

// Height returns the number of rows a bounded range covers, or 0 when the
// range is open-ended.
func (s Span) Height() int {
	if s.LastRow == 0 {
		return 0
	}
	first := s.FirstRow
	if first == 0 {
		first = 1
	}
	return s.LastRow - first + 1
}

func parseEndpoint(s string) (col, row int, err error) {
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "$", "")))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	letters, digits := s[:i], s[i:]
	if letters == "" && digits == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}
	if letters != "" {
		if col, err = excelize.ColumnNameToNumber(letters); err != nil {
			return 0, 0, err
		}
	}
	if digits != "" {
		if row, err = strconv.Atoi(digits); err != nil || row < 1 {
			return 0, 0, fmt.Errorf("invalid row %q", digits)
		}
	}
	return col, row, nil
}

// SplitSheet splits "Sheet!A1:B2" into ("Sheet", "A1:B2"). Quoted sheet
// names ('My Sheet'!A1) are unquoted. A range without "!" has an empty sheet.
func SplitSheet(a1 string) (sheet, cells string) {
	a1 = strings.TrimSpace(a1)
	idx := strings.LastIndex(a1, "!")
	if idx < 0 {
		return "", a1
	}
	sheet = a1[:idx]
	if len(sheet) >= 2 && strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	return sheet, a1[idx+1:]
}

// Anchor returns the top-left cell of a range: "Report!A2:B" -> "Report!A2".
func Anchor(a1 string) string {
	sheet, cells := SplitSheet(a1)
	if i := strings.Index(cells, ":"); i >= 0 {
		cells = cells[:i]
	}
	return qualify(sheet, cells)
}

// ResultSpan returns the two-column, open-ended area a result written at
// target occupies: "Report!A2" -> "Report!A2:B".
func ResultSpan(target string) (string, error) {
	sp, err := ParseSpan(Anchor(target))
	if err != nil {
		return "", err
	}
	first, err := excelize.ColumnNumberToName(sp.FirstCol)
	if err != nil {
		return "", err
	}
	second, err := excelize.ColumnNumberToName(sp.FirstCol + 1)
	if err != nil {
		return "", err
	}
	return qualify(sp.Sheet, fmt.Sprintf("%s%d:%s", first, sp.FirstRow, second)), nil
}

// QuoteSheet quotes a sheet name when it contains characters A1 notation
// does not allow bare.
func QuoteSheet(name string) string {
	if strings.ContainsAny(name, " '!:-") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

func qualify(sheet, cells string) string {
	if sheet == "" {
		return cells
	}
	return QuoteSheet(sheet) + "!" + cells
}

// PadRows extends m with empty rows up to n rows.
func PadRows(m [][]any, n int) [][]any {
	for len(m) < n {
		m = append(m, []any{})
	}
	return m
}
