package workflow

import (
	"testing"

	"hairfit/internal/domain"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                             "",
		"results/r.png":                "/images/results/r.png",
		"/results/r.png":               "/images/results/r.png",
		"/images/results/r.png":        "/images/results/r.png",
		"http://h/images/styles/x.jpg": "http://h/images/styles/x.jpg",
		"data:image/png;base64,AAAA":   "data:image/png;base64,AAAA",
	}
	for in, want := range cases {
		got := NormalizePath(in)
		if got != want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
		if again := NormalizePath(got); again != got {
			t.Fatalf("NormalizePath not idempotent for %q: %q -> %q", in, got, again)
		}
	}
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	recs := []domain.HistoryRecord{
		{ID: "2", OriginalPhotoPath: "originals/b.png", ResultPhotoPath: "results/b.png"},
		{ID: "1", OriginalPhotoPath: "https://cdn.example.com/a.jpg", ResultPhotoPath: "/images/results/a.png"},
	}
	out := NormalizeAll(recs)
	if out[0].ID != "2" || out[1].ID != "1" {
		t.Fatalf("order changed: %v, %v", out[0].ID, out[1].ID)
	}
	if out[0].OriginalPhotoPath != "/images/originals/b.png" {
		t.Fatalf("original = %q", out[0].OriginalPhotoPath)
	}
	if out[1].OriginalPhotoPath != "https://cdn.example.com/a.jpg" || out[1].ResultPhotoPath != "/images/results/a.png" {
		t.Fatalf("second record rewritten: %+v", out[1])
	}
	if recs[0].OriginalPhotoPath != "originals/b.png" {
		t.Fatalf("input mutated")
	}
}
