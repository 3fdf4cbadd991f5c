package workflow

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
)

// ForeignOriginalPolicy decides what happens to an original photo URL that
// does not belong to the asset host.
type ForeignOriginalPolicy string

const (
	// ForeignReject fails the save with domain.ErrUnresolvedOriginal.
	ForeignReject ForeignOriginalPolicy = "reject"
	// ForeignKeep stores the external URL verbatim.
	ForeignKeep ForeignOriginalPolicy = "keep"
)

// ParseForeignOriginalPolicy maps configuration input to a policy.
func ParseForeignOriginalPolicy(s string) (ForeignOriginalPolicy, error) {
	switch ForeignOriginalPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ForeignReject:
		return ForeignReject, nil
	case ForeignKeep:
		return ForeignKeep, nil
	default:
		return "", fmt.Errorf("unknown foreign original policy %q", s)
	}
}

// SaveRequest is a succeeded synthesis ready to be persisted.
type SaveRequest struct {
	MemberID     string
	Original     domain.ImageRef
	StyleID      string
	ResultBase64 string
}

// Reconciler converts a synthesis outcome into a HistoryRecord whose paths
// are all server-relative (or, under ForeignKeep, external URLs).
type Reconciler struct {
	uploader  domain.AssetUploader
	history   domain.HistoryStore
	assetBase *url.URL
	policy    ForeignOriginalPolicy
	logger    *infra.Logger
}

// NewReconciler builds a reconciler. assetBase identifies the host whose
// URLs can be mapped back to relative paths.
func NewReconciler(uploader domain.AssetUploader, history domain.HistoryStore, assetBase string, policy ForeignOriginalPolicy, logger *infra.Logger) (*Reconciler, error) {
	var base *url.URL
	if trimmed := strings.TrimSpace(assetBase); trimmed != "" {
		u, err := url.Parse(trimmed)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("reconciler: invalid asset base url %q", assetBase)
		}
		base = u
	}
	if policy == "" {
		policy = ForeignReject
	}
	return &Reconciler{
		uploader:  uploader,
		history:   history,
		assetBase: base,
		policy:    policy,
		logger:    infra.OrNop(logger),
	}, nil
}

// Save uploads the result, resolves the original and writes the record.
// Either both paths resolve and exactly one record is written, or an error
// is returned and no record exists.
func (r *Reconciler) Save(ctx context.Context, req SaveRequest) (*domain.HistoryRecord, error) {
	if strings.TrimSpace(req.StyleID) == "" {
		return nil, fmt.Errorf("%w: style id is required", domain.ErrNoResult)
	}
	result, err := domain.DecodeDataURI(req.ResultBase64)
	if err != nil || result.Empty() {
		return nil, fmt.Errorf("%w: result payload is not valid base64", domain.ErrNoResult)
	}
	if req.Original == nil {
		return nil, fmt.Errorf("%w: no original image", domain.ErrUnresolvedOriginal)
	}

	var resultPath, originalPath string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := r.uploader.UploadImage(gctx, domain.UploadResult, result)
		if err != nil {
			return fmt.Errorf("%w: result image: %w", domain.ErrPersistenceUpload, err)
		}
		resultPath = p
		return nil
	})
	g.Go(func() error {
		p, err := r.ResolveOriginal(gctx, req.Original)
		if err != nil {
			return err
		}
		originalPath = p
		return nil
	})
	if err := g.Wait(); err != nil {
		r.logger.Warn().Err(err).Str("kind", domain.KindOf(err)).Msg("save aborted before record write")
		return nil, err
	}

	rec := domain.NewHistoryRecord{
		OriginalPhotoPath: originalPath,
		ReferenceStyleID:  req.StyleID,
		ResultPhotoPath:   resultPath,
	}
	if id := strings.TrimSpace(req.MemberID); id != "" {
		rec.MemberID = &id
	}
	created, err := r.history.CreateRecord(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}
	r.logger.Info().
		Str("history_id", created.ID).
		Str("original", originalPath).
		Str("result", resultPath).
		Msg("synthesis saved")
	return created, nil
}

// ResolveOriginal maps ref to the path stored in the history record.
func (r *Reconciler) ResolveOriginal(ctx context.Context, ref domain.ImageRef) (string, error) {
	switch v := ref.(type) {
	case domain.DataURI:
		bin, err := domain.DecodeDataURI(string(v))
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrUnresolvedOriginal, err)
		}
		return r.uploadOriginal(ctx, bin)
	case domain.RawBinary:
		return r.uploadOriginal(ctx, v)
	case domain.ServerPath:
		p := relativeAssetPath(string(v))
		if p == "" {
			return "", fmt.Errorf("%w: empty server path", domain.ErrUnresolvedOriginal)
		}
		return p, nil
	case domain.RemoteURL:
		if p, ok := r.RelativeFromURL(string(v)); ok {
			return p, nil
		}
		if r.policy == ForeignKeep {
			r.logger.Debug().Str("url", string(v)).Msg("keeping foreign original url verbatim")
			return string(v), nil
		}
		return "", fmt.Errorf("%w: %s is not on the asset host", domain.ErrUnresolvedOriginal, string(v))
	default:
		return "", fmt.Errorf("%w: unsupported reference %T", domain.ErrUnresolvedOriginal, ref)
	}
}

func (r *Reconciler) uploadOriginal(ctx context.Context, bin domain.RawBinary) (string, error) {
	if bin.Empty() {
		return "", fmt.Errorf("%w: empty original payload", domain.ErrUnresolvedOriginal)
	}
	p, err := r.uploader.UploadImage(ctx, domain.UploadOriginal, bin)
	if err != nil {
		return "", fmt.Errorf("%w: original image: %w", domain.ErrPersistenceUpload, err)
	}
	return p, nil
}

// RelativeFromURL recovers the relative asset path from a URL on the asset
// host, e.g. "http://h/images/styles/x.jpg" -> "styles/x.jpg".
func (r *Reconciler) RelativeFromURL(raw string) (string, bool) {
	if r.assetBase == nil {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	if !strings.EqualFold(u.Scheme, r.assetBase.Scheme) || !strings.EqualFold(u.Host, r.assetBase.Host) {
		return "", false
	}
	p := u.Path
	if base := strings.TrimRight(r.assetBase.Path, "/"); base != "" {
		if p != base && !strings.HasPrefix(p, base+"/") {
			return "", false
		}
		p = strings.TrimPrefix(p, base)
	}
	rel := relativeAssetPath(p)
	if rel == "" {
		return "", false
	}
	return rel, true
}

// relativeAssetPath strips the asset prefix and leading slashes.
func relativeAssetPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = path.Clean("/" + p)
	if p+"/" == AssetPrefix {
		return ""
	}
	p = strings.TrimPrefix(p, AssetPrefix)
	return strings.TrimLeft(p, "/")
}
