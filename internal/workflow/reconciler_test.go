package workflow

import (
	"context"
	"errors"
	"testing"

	"hairfit/internal/domain"
)

const resultB64 = "aGVsbG8gd29ybGQ="

func newTestReconciler(t *testing.T, up *fakeUploader, hist *fakeHistory, policy ForeignOriginalPolicy) *Reconciler {
	t.Helper()
	r, err := NewReconciler(up, hist, "http://h", policy, nil)
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}
	return r
}

func TestRelativeFromURL(t *testing.T) {
	r := newTestReconciler(t, &fakeUploader{}, &fakeHistory{}, ForeignReject)
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "http://h/images/styles/x.jpg", want: "styles/x.jpg", wantOK: true},
		{in: "http://H/images/members/m1.jpg", want: "members/m1.jpg", wantOK: true},
		{in: "http://h/originals/a.png", want: "originals/a.png", wantOK: true},
		{in: "http://h/images/", wantOK: false},
		{in: "https://h/images/styles/x.jpg", wantOK: false},
		{in: "http://cdn.example.com/images/x.jpg", wantOK: false},
		{in: "not a url", wantOK: false},
	}
	for _, tc := range tests {
		got, ok := r.RelativeFromURL(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("RelativeFromURL(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestRelativeFromURLWithBasePath(t *testing.T) {
	r, err := NewReconciler(&fakeUploader{}, &fakeHistory{}, "http://h/api", ForeignReject, nil)
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}
	if got, ok := r.RelativeFromURL("http://h/api/images/results/r.png"); !ok || got != "results/r.png" {
		t.Fatalf("got %q, %v", got, ok)
	}
	if _, ok := r.RelativeFromURL("http://h/apix/images/results/r.png"); ok {
		t.Fatalf("path outside the base must not resolve")
	}
}

func TestRelativeAssetPath(t *testing.T) {
	cases := map[string]string{
		"/images/styles/a.jpg": "styles/a.jpg",
		"images/styles/a.jpg":  "styles/a.jpg",
		"members/m1.jpg":       "members/m1.jpg",
		"/imagesx/a.jpg":       "imagesx/a.jpg",
		"/images":              "",
		"":                     "",
	}
	for in, want := range cases {
		if got := relativeAssetPath(in); got != want {
			t.Fatalf("relativeAssetPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReconcilerSaveUploadsDataURIOriginal(t *testing.T) {
	up := &fakeUploader{}
	hist := &fakeHistory{}
	r := newTestReconciler(t, up, hist, ForeignReject)

	bin := domain.RawBinary{Data: pngBytes, MIMEType: "image/png"}
	rec, err := r.Save(context.Background(), SaveRequest{
		Original:     domain.DataURI(domain.EncodeDataURI(bin)),
		StyleID:      "s1",
		ResultBase64: resultB64,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if up.count(domain.UploadOriginal) != 1 || up.count(domain.UploadResult) != 1 {
		t.Fatalf("uploads = %v", up.uploads)
	}
	if rec.MemberID != nil {
		t.Fatalf("anonymous save must not carry a member id")
	}
	if rec.ReferenceStyleID != "s1" {
		t.Fatalf("style = %q", rec.ReferenceStyleID)
	}
	if domain.IsAbsoluteURL(rec.OriginalPhotoPath) || domain.IsAbsoluteURL(rec.ResultPhotoPath) {
		t.Fatalf("paths must be relative: %+v", rec)
	}
}

func TestReconcilerSaveResultUploadFailureWritesNothing(t *testing.T) {
	up := &fakeUploader{failOn: domain.UploadResult}
	hist := &fakeHistory{}
	r := newTestReconciler(t, up, hist, ForeignReject)

	_, err := r.Save(context.Background(), SaveRequest{
		MemberID:     "m1",
		Original:     domain.RemoteURL("http://h/images/members/m1.jpg"),
		StyleID:      "s1",
		ResultBase64: resultB64,
	})
	if !errors.Is(err, domain.ErrPersistenceUpload) {
		t.Fatalf("err = %v, want ErrPersistenceUpload", err)
	}
	if !domain.Retryable(err) {
		t.Fatalf("upload failure must be retryable")
	}
	if hist.len() != 0 {
		t.Fatalf("no record may be written after an upload failure")
	}
}

func TestReconcilerSaveRecordWriteFailure(t *testing.T) {
	hist := &fakeHistory{err: errors.New("db down")}
	r := newTestReconciler(t, &fakeUploader{}, hist, ForeignReject)
	_, err := r.Save(context.Background(), SaveRequest{
		Original:     domain.ServerPath("originals/a.png"),
		StyleID:      "s1",
		ResultBase64: resultB64,
	})
	if !errors.Is(err, domain.ErrPersistenceWrite) {
		t.Fatalf("err = %v, want ErrPersistenceWrite", err)
	}
}

func TestReconcilerForeignOriginal(t *testing.T) {
	req := SaveRequest{
		Original:     domain.RemoteURL("https://cdn.example.com/p.jpg"),
		StyleID:      "s1",
		ResultBase64: resultB64,
	}

	hist := &fakeHistory{}
	r := newTestReconciler(t, &fakeUploader{}, hist, ForeignReject)
	if _, err := r.Save(context.Background(), req); !errors.Is(err, domain.ErrUnresolvedOriginal) {
		t.Fatalf("reject policy err = %v, want ErrUnresolvedOriginal", err)
	}
	if hist.len() != 0 {
		t.Fatalf("rejected save wrote a record")
	}

	hist = &fakeHistory{}
	r = newTestReconciler(t, &fakeUploader{}, hist, ForeignKeep)
	rec, err := r.Save(context.Background(), req)
	if err != nil {
		t.Fatalf("keep policy: %v", err)
	}
	if rec.OriginalPhotoPath != "https://cdn.example.com/p.jpg" {
		t.Fatalf("original = %q", rec.OriginalPhotoPath)
	}
}

func TestReconcilerSaveRejectsBadResult(t *testing.T) {
	r := newTestReconciler(t, &fakeUploader{}, &fakeHistory{}, ForeignReject)
	_, err := r.Save(context.Background(), SaveRequest{
		Original:     domain.ServerPath("originals/a.png"),
		StyleID:      "s1",
		ResultBase64: "%%%not base64%%%",
	})
	if !errors.Is(err, domain.ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestParseForeignOriginalPolicy(t *testing.T) {
	if p, err := ParseForeignOriginalPolicy(""); err != nil || p != ForeignReject {
		t.Fatalf("default = %q, %v", p, err)
	}
	if p, err := ParseForeignOriginalPolicy("KEEP"); err != nil || p != ForeignKeep {
		t.Fatalf("keep = %q, %v", p, err)
	}
	if _, err := ParseForeignOriginalPolicy("upload"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
