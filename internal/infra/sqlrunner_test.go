package infra

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	query := `--sql 0b6f3c1e-7d2a-4c1b-9a3e-5f8d2e1c4b7a
select 1;
`
	marker, body, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker error: %v", err)
	}
	if marker != "0b6f3c1e-7d2a-4c1b-9a3e-5f8d2e1c4b7a" {
		t.Fatalf("marker mismatch: %q", marker)
	}
	if strings.TrimSpace(body) != "select 1;" {
		t.Fatalf("body mismatch: %q", body)
	}
}

func TestExtractMarkerRejectsUnmarkedQueries(t *testing.T) {
	for _, q := range []string{"select 1;", "", "--sql not-a-uuid\nselect 1;"} {
		if _, _, err := extractMarker(q); !errors.Is(err, ErrSQLMarker) {
			t.Fatalf("extractMarker(%q) error = %v, want ErrSQLMarker", q, err)
		}
	}
}

func TestErrorRowScan(t *testing.T) {
	row := errorRow{err: ErrSQLMarker}
	var v int
	if err := row.Scan(&v); !errors.Is(err, ErrSQLMarker) {
		t.Fatalf("Scan error = %v", err)
	}
}
