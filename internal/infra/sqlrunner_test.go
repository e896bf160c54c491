package infra

import (
	"errors"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	query := `--sql 3d0c6a51-9b0e-4f57-a2c4-6c1e2b8f7d40
select 1;
`
	marker, sql, err := ExtractMarker(query)
	if err != nil {
		t.Fatalf("ExtractMarker: %v", err)
	}
	if marker != "3d0c6a51-9b0e-4f57-a2c4-6c1e2b8f7d40" {
		t.Fatalf("marker = %q", marker)
	}
	if sql != "select 1;" {
		t.Fatalf("sql = %q", sql)
	}
}

func TestExtractMarkerRejectsUnmarkedQueries(t *testing.T) {
	for _, q := range []string{"select 1", "--sql not-a-uuid\nselect 1", "--sql 3D0C6A51-9B0E-4F57-A2C4-6C1E2B8F7D40\nselect 1"} {
		if _, _, err := ExtractMarker(q); !errors.Is(err, ErrMissingMarker) {
			t.Fatalf("%q: expected ErrMissingMarker, got %v", q, err)
		}
	}
	if _, _, err := ExtractMarker("   "); err == nil {
		t.Fatalf("expected error for empty query")
	}
}
