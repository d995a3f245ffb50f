package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"monthgroup/internal/config"
	"monthgroup/internal/sheets/memory"
	"monthgroup/internal/sheets/xlsx"
)

func TestBackendTypeIsValid(t *testing.T) {
	tests := []struct {
		in   BackendType
		want bool
	}{
		{MemoryBackend, true},
		{SheetsBackend, true},
		{XLSXBackend, true},
		{"sqlite", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.in.IsValid(); got != tt.want {
			t.Fatalf("%q.IsValid() = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "memory,sheets,xlsx" {
		t.Fatalf("GetBackendTypeStrings() = %q", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sqlite"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "xlsx",
		XLSXPath:            "book.xlsx",
		GoogleSpreadsheetID: "abc",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != XLSXBackend || cfg.XLSXPath != "book.xlsx" || cfg.GoogleSpreadsheetID != "abc" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sheets without id", Config{Type: SheetsBackend}, true},
		{"sheets", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id"}, false},
		{"xlsx without path", Config{Type: XLSXBackend}, true},
		{"xlsx", Config{Type: XLSXBackend, XLSXPath: "a.xlsx"}, false},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := res.Backend.(*memory.Store); !ok {
		t.Fatalf("memory backend type = %T", res.Backend)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	res, err = f.CreateBackend(ctx, Config{Type: XLSXBackend, XLSXPath: path})
	if err != nil {
		t.Fatalf("xlsx backend: %v", err)
	}
	if c, ok := res.Backend.(*xlsx.Client); !ok || c.Path() != path {
		t.Fatalf("xlsx backend = %#v", res.Backend)
	}

	if _, err := f.CreateBackend(ctx, Config{Type: XLSXBackend}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCreateMemoryBackendWithFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	doc := "ranges:\n  \"S!A1:A1\":\n    - [44931]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, MemoryFixtures: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	got, err := res.Backend.ReadRanges(context.Background(), "S!A1:A1")
	if err != nil || got[0][0][0] != float64(44931) {
		t.Fatalf("ReadRanges = %v, %v", got, err)
	}

	_, err = NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, MemoryFixtures: path + ".missing"})
	if err == nil {
		t.Fatalf("expected error for missing fixtures")
	}
}

func TestCreateSheetsBackendWithoutCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SheetsBackend, GoogleSpreadsheetID: "sheet-id"})
	if err == nil || !strings.Contains(err.Error(), "Google Sheets client") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestBackendResultCloseNil(t *testing.T) {
	var r *BackendResult
	if err := r.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
