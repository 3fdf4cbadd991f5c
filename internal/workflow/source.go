package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
)

// maxSourceBytes caps a single client photo read from a stream.
const maxSourceBytes = 20 << 20

// Source is the currently selected client photo.
//
// Ref is the identity the reconciler persists (DataURI for local picks,
// RemoteURL for member photos). Binary is what gets submitted for synthesis;
// it is nil for a degraded, preview-only member source.
type Source struct {
	Ref      domain.ImageRef
	Binary   *domain.RawBinary
	MemberID string
	Degraded bool
}

// Preview returns a string suitable for an <img src>.
func (s Source) Preview() string {
	return domain.PreviewString(s.Ref)
}

// Synthesizable reports whether the source can be submitted.
func (s Source) Synthesizable() bool {
	if s.Binary != nil && !s.Binary.Empty() {
		return true
	}
	_, ok := domain.ResolveBinary(s.Ref)
	return ok
}

// SynthesisInput returns the binary payload for submission.
func (s Source) SynthesisInput() (domain.RawBinary, bool) {
	if s.Binary != nil && !s.Binary.Empty() {
		return *s.Binary, true
	}
	return domain.ResolveBinary(s.Ref)
}

// SourceResolver turns camera captures, gallery picks and member photos into
// a Source.
type SourceResolver struct {
	fetcher   domain.PhotoFetcher
	assetBase string
	logger    *infra.Logger
}

// NewSourceResolver builds a resolver. assetBase is the origin serving
// /images/ (e.g. "http://127.0.0.1:8000").
func NewSourceResolver(fetcher domain.PhotoFetcher, assetBase string, logger *infra.Logger) *SourceResolver {
	return &SourceResolver{
		fetcher:   fetcher,
		assetBase: strings.TrimRight(strings.TrimSpace(assetBase), "/"),
		logger:    infra.OrNop(logger),
	}
}

// FromBinary selects a local photo. The result carries no member association.
func (r *SourceResolver) FromBinary(data []byte) (Source, error) {
	if len(data) == 0 {
		return Source{}, fmt.Errorf("%w: empty payload", domain.ErrSourceRead)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Source{}, fmt.Errorf("%w: content is %s, not an image", domain.ErrSourceRead, mt.String())
	}
	bin := domain.RawBinary{Data: data, MIMEType: mt.String()}
	return Source{
		Ref:    domain.DataURI(domain.EncodeDataURI(bin)),
		Binary: &bin,
	}, nil
}

// FromReader drains rd and selects it as a local photo.
func (r *SourceResolver) FromReader(rd io.Reader) (Source, error) {
	if rd == nil {
		return Source{}, fmt.Errorf("%w: no stream", domain.ErrSourceRead)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(rd, maxSourceBytes+1))
	if err != nil {
		return Source{}, fmt.Errorf("%w: %w", domain.ErrSourceRead, err)
	}
	if n > maxSourceBytes {
		return Source{}, fmt.Errorf("%w: photo exceeds %d bytes", domain.ErrSourceRead, maxSourceBytes)
	}
	return r.FromBinary(buf.Bytes())
}

// FromMember selects a member's stored photo. A failed download degrades to a
// preview-only source instead of failing; the caller decides whether to
// surface "photo unavailable".
func (r *SourceResolver) FromMember(ctx context.Context, m domain.Member) (Source, error) {
	photo := strings.TrimSpace(m.Photo())
	if photo == "" {
		return Source{}, fmt.Errorf("%w: member %s has no photo", domain.ErrSourceRead, m.ID)
	}
	if domain.IsDataURI(photo) {
		bin, err := domain.DecodeDataURI(photo)
		if err != nil {
			return Source{}, fmt.Errorf("%w: %w", domain.ErrSourceRead, err)
		}
		return Source{Ref: domain.DataURI(photo), Binary: &bin, MemberID: m.ID}, nil
	}
	photoURL := r.PhotoURL(photo)
	src := Source{Ref: domain.RemoteURL(photoURL), MemberID: m.ID}

	if r.fetcher == nil {
		src.Degraded = true
		return src, nil
	}
	bin, err := r.fetcher.FetchImage(ctx, photoURL)
	if err == nil && bin.Empty() {
		err = fmt.Errorf("empty body")
	}
	if err != nil {
		r.logger.Warn().
			Err(fmt.Errorf("%w: %w", domain.ErrSourceFetchDegraded, err)).
			Str("member_id", m.ID).
			Str("url", photoURL).
			Msg("member photo fetch failed, using preview only")
		src.Degraded = true
		return src, nil
	}
	if bin.MIMEType == "" || !strings.HasPrefix(bin.MIMEType, "image/") {
		bin.MIMEType = mimetype.Detect(bin.Data).String()
	}
	src.Binary = &bin
	return src, nil
}

// PhotoURL makes a stored photo reference addressable. Absolute URLs and
// data URIs pass through; relative paths are served under /images/.
func (r *SourceResolver) PhotoURL(photo string) string {
	photo = strings.TrimSpace(photo)
	if domain.IsAbsoluteURL(photo) || domain.IsDataURI(photo) {
		return photo
	}
	path := NormalizePath(photo)
	if r.assetBase == "" {
		return path
	}
	if u, err := url.Parse(r.assetBase); err == nil {
		return strings.TrimRight(u.String(), "/") + path
	}
	return r.assetBase + path
}
