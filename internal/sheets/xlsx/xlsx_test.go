package xlsx

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"monthgroup/internal/core"
	ports "monthgroup/internal/sheets"

	"github.com/xuri/excelize/v2"
)

// newWorkbook writes a Trades sheet with a header and three data rows.
func newWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Trades"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	rows := [][]any{
		{"Date", "Broker", "Amount"},
		{time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), "IBKR", 10},
		{time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC), "Degiro", 5},
		{time.Date(2023, 2, 3, 0, 0, 0, 0, time.UTC), "IBKR", 7},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Trades", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "trades.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestReadRanges(t *testing.T) {
	c := New(newWorkbook(t))

	got, err := c.ReadRanges(context.Background(), "Trades!A2:C", "Trades!A2:A", "Trades!C2:C6")
	if err != nil {
		t.Fatalf("ReadRanges: %v", err)
	}
	if len(got[0]) != 3 || len(got[1]) != 3 {
		t.Fatalf("open ranges should stop at the last row, got %d and %d", len(got[0]), len(got[1]))
	}
	if got[0][0][0] != 44931.0 {
		t.Errorf("date should read as serial 44931, got %v (%T)", got[0][0][0], got[0][0][0])
	}
	if got[0][1][1] != "Degiro" {
		t.Errorf("expected Degiro, got %v", got[0][1][1])
	}
	if len(got[2]) != 5 {
		t.Errorf("bounded range should be padded to 5 rows, got %d", len(got[2]))
	}
	if got[2][2][0] != 7.0 || got[2][4][0] != nil {
		t.Errorf("unexpected amount column: %v", got[2])
	}
}

func TestReadRanges_UnknownSheet(t *testing.T) {
	c := New(newWorkbook(t))
	_, err := c.ReadRanges(context.Background(), "Missing!A1:A")
	if !errors.Is(err, ports.ErrRangeNotFound) {
		t.Fatalf("expected ErrRangeNotFound, got %v", err)
	}
}

func TestReadRanges_MissingFile(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope.xlsx"))
	if _, err := c.ReadRanges(context.Background(), "A1:A"); err == nil {
		t.Fatal("expected error for missing workbook")
	}
}

func TestWriteResult(t *testing.T) {
	path := newWorkbook(t)
	c := New(path)
	ctx := context.Background()

	first := [][]any{{"Feb 2023", 7.0}, {"Jan 2023", 15.0}, {"Dec 2022", 1.0}}
	if err := c.WriteResult(ctx, "Report!A2", first); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	// A shorter second result must not leave the old third row behind.
	second := [][]any{{"Feb 2023", 7.0}}
	if err := c.WriteResult(ctx, "Report!A2", second); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	got, err := c.ReadRanges(ctx, "Report!A2:B4")
	if err != nil {
		t.Fatalf("ReadRanges: %v", err)
	}
	if got[0][0][0] != "Feb 2023" || got[0][0][1] != 7.0 {
		t.Errorf("unexpected first row: %v", got[0][0])
	}
	for _, row := range got[0][1:] {
		for _, cell := range row {
			if cell != nil {
				t.Errorf("stale cell left after rewrite: %v", got[0])
			}
		}
	}

	// The input sheet is untouched.
	trades, err := c.ReadRanges(ctx, "Trades!B2:B4")
	if err != nil {
		t.Fatalf("ReadRanges: %v", err)
	}
	if trades[0][0][0] != "IBKR" {
		t.Errorf("input sheet changed: %v", trades[0])
	}
}

func TestWriteResult_BadTarget(t *testing.T) {
	c := New(newWorkbook(t))
	if err := c.WriteResult(context.Background(), "Report!A:A", nil); err == nil {
		t.Fatal("expected error for target without a row")
	}
}

func TestSlice(t *testing.T) {
	rows := [][]string{
		{"a", "1"},
		{"b"},
		{"", "3", "x"},
	}
	got := slice(rows, ports.Span{FirstCol: 1, FirstRow: 1, LastCol: 2}, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[0][1] != 1.0 || got[1][1] != nil || got[2][0] != nil {
		t.Errorf("unexpected cells: %v", got)
	}
	if len(got[2]) != 2 {
		t.Errorf("bounded columns should cut row width, got %d", len(got[2]))
	}
}

func TestSlice_UsesCellType(t *testing.T) {
	rows := [][]string{{"3", "3", "1"}}
	types := map[int]excelize.CellType{
		1: excelize.CellTypeSharedString,
		2: excelize.CellTypeNumber,
		3: excelize.CellTypeBool,
	}
	got := slice(rows, ports.Span{FirstCol: 1, FirstRow: 1, LastCol: 3}, func(col, _ int) excelize.CellType {
		return types[col]
	})
	if got[0][0] != "3" {
		t.Errorf("text cell should stay a string, got %v (%T)", got[0][0], got[0][0])
	}
	if got[0][1] != 3.0 {
		t.Errorf("numeric cell should be a float, got %v (%T)", got[0][1], got[0][1])
	}
	if got[0][2] != true {
		t.Errorf("bool cell should be true, got %v (%T)", got[0][2], got[0][2])
	}
}

func TestReadRanges_NumericLookingTextMatchesFilter(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStr("Sheet1", "B1", "3"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "C1", 10); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "text.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := New(path).ReadRanges(context.Background(), "Sheet1!A1:C1", "Sheet1!A1:A1", "Sheet1!C1:C1")
	if err != nil {
		t.Fatalf("ReadRanges: %v", err)
	}
	if got[0][0][1] != "3" {
		t.Fatalf("text cell read as %v (%T), want string \"3\"", got[0][0][1], got[0][0][1])
	}
	if got[0][0][2] != 10.0 {
		t.Fatalf("numeric cell read as %v (%T)", got[0][0][2], got[0][0][2])
	}

	res, err := core.Group(got[0], got[1], got[2], "3", 2)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].Label != "Jan 2023" || res.Rows[0].Total != 10 {
		t.Fatalf("filter on text cell: got %+v", res)
	}
}
