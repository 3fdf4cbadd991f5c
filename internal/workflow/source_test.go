package workflow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"hairfit/internal/domain"
)

func TestFromBinary(t *testing.T) {
	r := NewSourceResolver(nil, "http://h", nil)
	src, err := r.FromBinary(pngBytes)
	if err != nil {
		t.Fatalf("FromBinary: %v", err)
	}
	if src.MemberID != "" {
		t.Fatalf("local pick must not carry a member")
	}
	if src.Ref.Kind() != domain.ImageKindDataURI {
		t.Fatalf("ref kind = %s", src.Ref.Kind())
	}
	if src.Binary == nil || src.Binary.MIMEType != "image/png" {
		t.Fatalf("binary = %+v", src.Binary)
	}
	if !src.Synthesizable() {
		t.Fatalf("local pick must be synthesizable")
	}
}

func TestFromBinaryRejectsNonImage(t *testing.T) {
	r := NewSourceResolver(nil, "", nil)
	for _, data := range [][]byte{nil, []byte("just some text")} {
		if _, err := r.FromBinary(data); !errors.Is(err, domain.ErrSourceRead) {
			t.Fatalf("FromBinary(%q) err = %v, want ErrSourceRead", data, err)
		}
	}
}

func TestFromReader(t *testing.T) {
	r := NewSourceResolver(nil, "", nil)
	if _, err := r.FromReader(bytes.NewReader(pngBytes)); err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if _, err := r.FromReader(nil); !errors.Is(err, domain.ErrSourceRead) {
		t.Fatalf("nil reader err = %v", err)
	}
}

func TestFromMemberFetchesPhoto(t *testing.T) {
	fetcher := &fakeFetcher{bin: domain.RawBinary{Data: pngBytes}}
	r := NewSourceResolver(fetcher, "http://h/", nil)
	m := domain.Member{ID: "m1", PhotoPath: strPtr("members/m1.jpg")}

	src, err := r.FromMember(context.Background(), m)
	if err != nil {
		t.Fatalf("FromMember: %v", err)
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "http://h/images/members/m1.jpg" {
		t.Fatalf("fetched %v", fetcher.urls)
	}
	if src.Ref != domain.RemoteURL("http://h/images/members/m1.jpg") {
		t.Fatalf("ref = %v", src.Ref)
	}
	if src.Degraded || !src.Synthesizable() {
		t.Fatalf("fetched member photo must be synthesizable")
	}
	if src.Binary.MIMEType != "image/png" {
		t.Fatalf("mime = %q", src.Binary.MIMEType)
	}
	if src.MemberID != "m1" {
		t.Fatalf("member = %q", src.MemberID)
	}
}

func TestFromMemberDegradesOnFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	r := NewSourceResolver(fetcher, "http://h", nil)
	src, err := r.FromMember(context.Background(), domain.Member{ID: "m1", PhotoPath: strPtr("members/m1.jpg")})
	if err != nil {
		t.Fatalf("degraded fetch must not fail: %v", err)
	}
	if !src.Degraded || src.Synthesizable() {
		t.Fatalf("source = %+v, want degraded preview-only", src)
	}
	if src.Preview() != "http://h/images/members/m1.jpg" {
		t.Fatalf("preview = %q", src.Preview())
	}
}

func TestFromMemberWithoutPhoto(t *testing.T) {
	r := NewSourceResolver(&fakeFetcher{}, "http://h", nil)
	if _, err := r.FromMember(context.Background(), domain.Member{ID: "m2"}); !errors.Is(err, domain.ErrSourceRead) {
		t.Fatalf("err = %v, want ErrSourceRead", err)
	}
}

func TestPhotoURL(t *testing.T) {
	r := NewSourceResolver(nil, "http://h", nil)
	cases := map[string]string{
		"members/m1.jpg":         "http://h/images/members/m1.jpg",
		"/images/members/m1.jpg": "http://h/images/members/m1.jpg",
		"https://cdn/x.jpg":      "https://cdn/x.jpg",
	}
	for in, want := range cases {
		if got := r.PhotoURL(in); got != want {
			t.Fatalf("PhotoURL(%q) = %q, want %q", in, got, want)
		}
	}
}
