package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const fixtureDoc = `
ranges:
  "Trades!A2:B3":
    - [44931, "rent"]
    - [~, ""]
  "Trades!C2:C3":
    - [10.5]
    - [2]
`

func TestLoadFixtures(t *testing.T) {
	s := New()
	if err := s.LoadFixtures([]byte(fixtureDoc)); err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	got, err := s.ReadRanges(context.Background(), "Trades!A2:B3", "Trades!C2:C3")
	if err != nil {
		t.Fatalf("ReadRanges: %v", err)
	}
	if got[0][0][0] != float64(44931) {
		t.Fatalf("serial not normalised to float64: %#v", got[0][0][0])
	}
	if got[0][0][1] != "rent" {
		t.Fatalf("text cell = %#v", got[0][0][1])
	}
	if got[0][1][0] != nil || got[0][1][1] != nil {
		t.Fatalf("blank cells should be nil: %#v", got[0][1])
	}
	if got[1][0][0] != 10.5 || got[1][1][0] != float64(2) {
		t.Fatalf("values = %#v", got[1])
	}
}

func TestLoadFixturesRejectsBadYAML(t *testing.T) {
	if err := New().LoadFixtures([]byte("ranges: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(fixtureDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	if _, err := s.ReadRanges(context.Background(), "Trades!C2:C3"); err != nil {
		t.Fatalf("fixture range missing: %v", err)
	}

	if _, err := NewFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
