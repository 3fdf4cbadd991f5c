package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hairfit/internal/domain"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type fakeMembers struct {
	members map[string]domain.Member
}

func (f *fakeMembers) GetMember(_ context.Context, id string) (*domain.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMembers) ListMembers(context.Context) ([]domain.Member, error) {
	out := make([]domain.Member, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, m)
	}
	return out, nil
}

type fakeStyles struct {
	styles []domain.Style
	err    error
}

func (f *fakeStyles) ListStyles(context.Context) ([]domain.Style, error) {
	return f.styles, f.err
}

type fakeFetcher struct {
	mu   sync.Mutex
	urls []string
	bin  domain.RawBinary
	err  error
}

func (f *fakeFetcher) FetchImage(_ context.Context, url string) (domain.RawBinary, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	return f.bin, f.err
}

// fakeSynth returns result, or blocks on gate when it is non-nil.
type fakeSynth struct {
	mu      sync.Mutex
	calls   int
	result  string
	err     error
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeSynth) Synthesize(ctx context.Context, _ domain.RawBinary, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *fakeSynth) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// hangingSynth ignores its context entirely.
type hangingSynth struct {
	release chan struct{}
}

func (h *hangingSynth) Synthesize(context.Context, domain.RawBinary, string) (string, error) {
	<-h.release
	return "late", nil
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads []domain.UploadKind
	failOn  domain.UploadKind
	seq     int
}

func (f *fakeUploader) UploadImage(_ context.Context, kind domain.UploadKind, img domain.RawBinary) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if kind == f.failOn {
		return "", errors.New("disk full")
	}
	f.uploads = append(f.uploads, kind)
	f.seq++
	return fmt.Sprintf("%s/%d.%s", kind.Folder(), f.seq, img.Extension()), nil
}

func (f *fakeUploader) count(kind domain.UploadKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, k := range f.uploads {
		if k == kind {
			n++
		}
	}
	return n
}

type fakeHistory struct {
	mu      sync.Mutex
	records []domain.HistoryRecord
	err     error

	// When gate is set, CreateRecord signals entered and waits for gate.
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeHistory) CreateRecord(ctx context.Context, rec domain.NewHistoryRecord) (*domain.HistoryRecord, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	created := domain.HistoryRecord{
		ID:                fmt.Sprintf("h%d", len(f.records)+1),
		MemberID:          rec.MemberID,
		OriginalPhotoPath: rec.OriginalPhotoPath,
		ReferenceStyleID:  rec.ReferenceStyleID,
		ResultPhotoPath:   rec.ResultPhotoPath,
	}
	f.records = append(f.records, created)
	return &created, nil
}

func (f *fakeHistory) ListRecords(context.Context) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.HistoryRecord(nil), f.records...), nil
}

func (f *fakeHistory) GetRecord(_ context.Context, id string) (*domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			rec := r
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeHistory) DeleteRecord(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeHistory) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func strPtr(s string) *string { return &s }
