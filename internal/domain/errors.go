package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Source selection.
	ErrSourceRead          = errors.New("source image unreadable")
	ErrSourceFetchDegraded = errors.New("source photo unavailable, preview only")

	// Synthesis lifecycle.
	ErrSynthesisTimeout  = errors.New("synthesis timed out")
	ErrSynthesisRejected = errors.New("synthesis rejected")

	// Persistence.
	ErrPersistenceUpload  = errors.New("persistence upload failed")
	ErrPersistenceWrite   = errors.New("persistence write failed")
	ErrUnresolvedOriginal = errors.New("original image cannot be mapped to a stored path")

	// Preconditions the caller is expected to gate on.
	ErrNotReady           = errors.New("source image and style are required")
	ErrSubmissionInFlight = errors.New("synthesis already in flight")
	ErrSessionTerminal    = errors.New("session finished, reset required")
	ErrSessionLocked      = errors.New("session is not idle")
	ErrSessionReset       = errors.New("session was reset")
	ErrNoResult           = errors.New("no synthesis result to save")
	ErrSaveInFlight       = errors.New("save already in progress")
	ErrStyleNotFound      = errors.New("style not in filtered catalog")
)

// Error kinds reported to presentation layers.
const (
	KindSourceRead          = "source_read"
	KindSourceFetchDegraded = "source_fetch_degraded"
	KindSynthesisTimeout    = "synthesis_timeout"
	KindSynthesisRejected   = "synthesis_rejected"
	KindPersistenceUpload   = "persistence_upload"
	KindPersistenceWrite    = "persistence_write"
	KindUnresolvedOriginal  = "unresolved_original"
	KindPrecondition        = "precondition"
	KindNotFound            = "not_found"
	KindInternal            = "internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrSourceRead, KindSourceRead},
	{ErrSourceFetchDegraded, KindSourceFetchDegraded},
	{ErrSynthesisTimeout, KindSynthesisTimeout},
	{ErrSynthesisRejected, KindSynthesisRejected},
	{ErrPersistenceUpload, KindPersistenceUpload},
	{ErrPersistenceWrite, KindPersistenceWrite},
	{ErrUnresolvedOriginal, KindUnresolvedOriginal},
	{ErrNotReady, KindPrecondition},
	{ErrSubmissionInFlight, KindPrecondition},
	{ErrSessionTerminal, KindPrecondition},
	{ErrSessionLocked, KindPrecondition},
	{ErrSessionReset, KindPrecondition},
	{ErrNoResult, KindPrecondition},
	{ErrSaveInFlight, KindPrecondition},
	{ErrStyleNotFound, KindPrecondition},
	{ErrNotFound, KindNotFound},
}

// KindOf classifies err into one of the Kind* constants. A nil error yields "".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Retryable reports whether the failed operation may be retried as-is.
// Persistence failures never leave a partial record behind.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindPersistenceUpload, KindPersistenceWrite:
		return true
	}
	return false
}
