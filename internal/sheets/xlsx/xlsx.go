// Package xlsx reads input ranges from and writes results to a local .xlsx
// workbook.
package xlsx

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	ports "monthgroup/internal/sheets"

	"github.com/xuri/excelize/v2"
)

// Client opens the workbook on every call so edits made outside the process
// are picked up.
type Client struct {
	mu   sync.Mutex
	path string
}

var _ ports.ReadWriter = (*Client)(nil)

func New(path string) *Client {
	return &Client{path: path}
}

// Path returns the workbook location.
func (c *Client) Path() string { return c.path }

// ReadRanges returns one matrix per range. Numeric cells (dates included,
// as serial numbers) come back as float64, boolean cells as bool, text cells
// as string and empty cells as nil.
func (c *Client) ReadRanges(ctx context.Context, ranges ...string) ([][][]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", c.path, err)
	}
	defer f.Close()

	sheetRows := map[string][][]string{}
	out := make([][][]any, len(ranges))
	for i, rng := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		span, err := ports.ParseSpan(rng)
		if err != nil {
			return nil, err
		}
		sheet, err := resolveSheet(f, span.Sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, rng)
		}
		rows, ok := sheetRows[sheet]
		if !ok {
			rows, err = f.GetRows(sheet, excelize.Options{RawCellValue: true})
			if err != nil {
				return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
			}
			sheetRows[sheet] = rows
		}
		out[i] = slice(rows, span, cellTypeFunc(f, sheet))
	}
	return out, nil
}

// WriteResult clears the two result columns below target, writes rows from
// the anchor cell and saves the workbook. A missing sheet is created.
func (c *Client) WriteResult(ctx context.Context, target string, rows [][]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	anchor, err := ports.ParseSpan(ports.Anchor(target))
	if err != nil {
		return fmt.Errorf("result target %q: %w", target, err)
	}

	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", c.path, err)
	}
	defer f.Close()

	sheet := anchor.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	existing, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	for r := anchor.FirstRow; r <= len(existing); r++ {
		for col := anchor.FirstCol; col <= anchor.FirstCol+1; col++ {
			cell, err := excelize.CoordinatesToCellName(col, r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, nil); err != nil {
				return fmt.Errorf("clear %s!%s: %w", sheet, cell, err)
			}
		}
	}

	for i, row := range ports.WritableCells(rows) {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(anchor.FirstCol, anchor.FirstRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", c.path, err)
	}
	return nil
}

// resolveSheet maps an empty sheet name to the first sheet and checks that
// a named one exists.
func resolveSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		return f.GetSheetName(0), nil
	}
	for _, s := range f.GetSheetList() {
		if s == name {
			return s, nil
		}
	}
	return "", ports.ErrRangeNotFound
}

// cellTypeFunc looks up the stored type of a cell by 1-based coordinates.
func cellTypeFunc(f *excelize.File, sheet string) func(col, row int) excelize.CellType {
	return func(col, row int) excelize.CellType {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return excelize.CellTypeUnset
		}
		typ, err := f.GetCellType(sheet, cell)
		if err != nil {
			return excelize.CellTypeUnset
		}
		return typ
	}
}

// slice cuts span out of the sheet rows. Open-ended ranges stop at the last
// populated row; bounded ones are padded to their full height. typeOf may be
// nil, in which case every cell is treated as untyped.
func slice(rows [][]string, span ports.Span, typeOf func(col, row int) excelize.CellType) [][]any {
	first := span.FirstRow
	if first == 0 {
		first = 1
	}
	last := span.LastRow
	if last == 0 {
		last = len(rows)
	}
	firstCol := span.FirstCol
	if firstCol == 0 {
		firstCol = 1
	}

	out := make([][]any, 0, max(last-first+1, 0))
	for r := first; r <= last; r++ {
		var row []string
		if r-1 < len(rows) {
			row = rows[r-1]
		}
		lastCol := span.LastCol
		if lastCol == 0 {
			lastCol = len(row)
		}
		cells := make([]any, 0, max(lastCol-firstCol+1, 0))
		for col := firstCol; col <= lastCol; col++ {
			var raw string
			if col-1 < len(row) {
				raw = row[col-1]
			}
			typ := excelize.CellTypeUnset
			if raw != "" && typeOf != nil {
				typ = typeOf(col, r)
			}
			cells = append(cells, cellValue(raw, typ))
		}
		out = append(out, cells)
	}
	return out
}

// cellValue converts a raw cell string using its stored type. Shared, inline
// and formula strings stay text even when they look numeric; untyped and
// numeric cells are parsed as numbers.
func cellValue(raw string, typ excelize.CellType) any {
	if raw == "" {
		return nil
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return raw
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE" || raw == "true"
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
