package memory

import (
	"context"
	"errors"
	"testing"

	ports "monthgroup/internal/sheets"
)

func TestStoreReadRanges(t *testing.T) {
	s := New()
	s.Put("Trades!A2:C", [][]any{{"2023-01-05", "A", 10.0}})
	s.Put("Trades!A2:A", [][]any{{"2023-01-05"}})

	got, err := s.ReadRanges(context.Background(), "Trades!A2:A", "Trades!A2:C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0][0][0] != "2023-01-05" || got[1][0][2] != 10.0 {
		t.Fatalf("unexpected ranges: %v", got)
	}

	// Returned matrices are copies.
	got[0][0][0] = "mutated"
	again, _ := s.ReadRanges(context.Background(), "Trades!A2:A")
	if again[0][0][0] != "2023-01-05" {
		t.Fatalf("store was mutated through returned slice")
	}
}

func TestStoreMissingRange(t *testing.T) {
	_, err := New().ReadRanges(context.Background(), "Nope!A:A")
	if !errors.Is(err, ports.ErrRangeNotFound) {
		t.Fatalf("expected ErrRangeNotFound, got %v", err)
	}
}

func TestStoreWriteResult(t *testing.T) {
	s := New()
	if err := s.WriteResult(context.Background(), "Report!A2:B", [][]any{{"Jan 2023", 15.0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, ok := s.Written("Report!A2")
	if !ok || len(rows) != 1 || rows[0][0] != "Jan 2023" {
		t.Fatalf("unexpected written rows: %v %v", rows, ok)
	}
}
