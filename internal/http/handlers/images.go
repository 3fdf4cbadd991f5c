package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/go-chi/chi/v5"

	"hairfit/internal/storage"
	"hairfit/internal/styles"
)

// Image serves /images/{type}/{filename}. Style references come from the
// style directory; everything else from asset storage.
func (a *App) Image(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "type")
	filename := chi.URLParam(r, "filename")
	if kind == "" || filename == "" {
		a.error(w, r, http.StatusNotFound, codeImageNotFound)
		return
	}

	if kind == styles.ImageFolder {
		p, ok := a.Styles.FilePath(filename)
		if !ok {
			a.error(w, r, http.StatusNotFound, codeImageNotFound)
			return
		}
		f, err := os.Open(p)
		if err != nil {
			a.error(w, r, http.StatusNotFound, codeImageNotFound)
			return
		}
		defer f.Close()
		st, err := f.Stat()
		if err != nil || st.IsDir() {
			a.error(w, r, http.StatusNotFound, codeImageNotFound)
			return
		}
		http.ServeContent(w, r, filename, st.ModTime(), f)
		return
	}

	rc, contentType, err := a.Store.Open(r.Context(), path.Join(kind, filename))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger().Debug().Err(err).Str("type", kind).Str("file", filename).Msg("image lookup failed")
		}
		a.error(w, r, http.StatusNotFound, codeImageNotFound)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
