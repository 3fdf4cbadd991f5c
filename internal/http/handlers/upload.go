package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"hairfit/internal/domain"
	"hairfit/internal/storage"
)

var errNotImage = errors.New("upload is not an image")

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// readImageFile pulls the "file" part out of a multipart request and checks
// that its content is an image.
func (a *App) readImageFile(w http.ResponseWriter, r *http.Request) (domain.RawBinary, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload()+1<<20)
	if err := r.ParseMultipartForm(a.maxUpload()); err != nil {
		return domain.RawBinary{}, fmt.Errorf("parse multipart: %w", err)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return domain.RawBinary{}, fmt.Errorf("file part: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, a.maxUpload()+1))
	if err != nil {
		return domain.RawBinary{}, fmt.Errorf("read file part: %w", err)
	}
	if int64(len(data)) > a.maxUpload() {
		return domain.RawBinary{}, fmt.Errorf("file exceeds %d bytes", a.maxUpload())
	}
	mt := mimetype.Detect(data)
	if _, ok := allowedImageTypes[mt.String()]; !ok {
		return domain.RawBinary{}, fmt.Errorf("%w: %s", errNotImage, mt.String())
	}
	return domain.RawBinary{Data: data, MIMEType: mt.String()}, nil
}

type uploadResponse struct {
	PhotoPath string `json:"photo_path"`
}

// Upload stores an image under originals/, results/ or profiles/ and returns
// its relative path.
func (a *App) Upload(kind domain.UploadKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := a.readImageFile(w, r)
		if err != nil {
			a.logger().Debug().Err(err).Str("kind", string(kind)).Msg("upload rejected")
			a.error(w, r, http.StatusBadRequest, codeInvalidImage)
			return
		}
		key := storage.NewKey(kind.Folder(), img.Extension())
		stored, err := a.Store.Write(r.Context(), key, img.Data, img.MIME())
		if err != nil {
			a.logger().Error().Err(err).Str("key", key).Msg("store upload")
			a.error(w, r, http.StatusInternalServerError, codeStorageFailed)
			return
		}
		a.logger().Info().Str("kind", string(kind)).Str("path", stored).Int("bytes", len(img.Data)).Msg("image uploaded")
		a.json(w, http.StatusOK, uploadResponse{PhotoPath: stored})
	}
}

// UploadByKind serves /upload/{kind} for the three known kinds. The router
// mounts limited routes for those kinds ahead of it, so in practice it answers
// unknown kinds.
func (a *App) UploadByKind(w http.ResponseWriter, r *http.Request) {
	kind := domain.UploadKind(strings.TrimSpace(chi.URLParam(r, "kind")))
	switch kind {
	case domain.UploadOriginal, domain.UploadResult, domain.UploadProfile:
		a.Upload(kind)(w, r)
	default:
		a.error(w, r, http.StatusNotFound, codeUnsupportedUpload)
	}
}
