package cypher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const recordArray = `[
  {"entities":[{"name":"Acme Corp","description":"Organization"}],"relationships":[],"error":false,"extraction_method":"direct_generic","source_url":"https://example.com/"},
  {"entities":[],"relationships":[],"error":true,"message":"boom","extraction_method":"failed","source_url":"https://example.com/x"}
]`

func TestParseRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"record array", recordArray, 2},
		{"run summary", `{"run_id":"r","data":` + recordArray + `}`, 2},
		{"versioned report", `{"version":"1.0.0","summary":{"run_id":"r","data":` + recordArray + `}}`, 2},
		{"single record", `{"entities":[],"relationships":[],"error":false,"extraction_method":"direct_generic","source_url":"https://example.com/"}`, 1},
		{"empty array", `[]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRecords([]byte(tt.in))
			if err != nil {
				t.Fatalf("ParseRecords() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseRecordsErrors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", `{"foo":1}`} {
		if _, err := ParseRecords([]byte(in)); !errors.Is(err, ErrUnrecognizedFormat) {
			t.Errorf("ParseRecords(%q) error = %v, want ErrUnrecognizedFormat", in, err)
		}
	}
	if _, err := ParseRecords([]byte(`[{`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestReadRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	if err := os.WriteFile(a, []byte(recordArray), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte(`{"run_id":"r","data":`+recordArray+`}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadRecords([]string{a, b})
	if err != nil {
		t.Fatalf("ReadRecords() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].Entities[0].Name != "Acme Corp" || !got[1].Error {
		t.Errorf("records = %+v", got)
	}

	if _, err := ReadRecords([]string{filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("expected error for missing file")
	}
}
