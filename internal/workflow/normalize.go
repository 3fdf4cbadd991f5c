package workflow

import (
	"strings"

	"hairfit/internal/domain"
)

// AssetPrefix is the path segment the backend serves stored images under.
const AssetPrefix = "/images/"

// NormalizePath makes a stored path addressable relative to the asset host.
// Absolute URLs, data URIs and already-prefixed paths are returned unchanged,
// so applying it twice is the same as applying it once.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	if domain.IsAbsoluteURL(p) || domain.IsDataURI(p) || strings.HasPrefix(p, AssetPrefix) {
		return p
	}
	return AssetPrefix + strings.TrimLeft(p, "/")
}

// Normalize rewrites both image paths of rec for display.
func Normalize(rec domain.HistoryRecord) domain.HistoryRecord {
	rec.OriginalPhotoPath = NormalizePath(rec.OriginalPhotoPath)
	rec.ResultPhotoPath = NormalizePath(rec.ResultPhotoPath)
	return rec
}

// NormalizeAll applies Normalize to every record, in order.
func NormalizeAll(recs []domain.HistoryRecord) []domain.HistoryRecord {
	out := make([]domain.HistoryRecord, len(recs))
	for i, rec := range recs {
		out[i] = Normalize(rec)
	}
	return out
}
