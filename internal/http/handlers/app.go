package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
	"hairfit/internal/middleware"
	"hairfit/internal/storage"
)

const (
	defaultMaxUploadBytes   = 20 << 20
	defaultSynthesisTimeout = 60 * time.Second
)

// StyleCatalog is the style directory as the handlers see it.
type StyleCatalog interface {
	Reload() error
	List() []domain.Style
	Get(id string) (domain.Style, error)
	FilePath(filename string) (string, bool)
}

// App carries the handler dependencies.
type App struct {
	Members          domain.MemberRepository
	History          domain.HistoryRepository
	Styles           StyleCatalog
	Store            storage.Store
	Synth            domain.Synthesizer
	Logger           *infra.Logger
	SynthesisTimeout time.Duration
	MaxUploadBytes   int64
}

func (a *App) logger() *infra.Logger { return infra.OrNop(a.Logger) }

func (a *App) maxUpload() int64 {
	if a.MaxUploadBytes > 0 {
		return a.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (a *App) synthesisTimeout() time.Duration {
	if a.SynthesisTimeout > 0 {
		return a.SynthesisTimeout
	}
	return defaultSynthesisTimeout
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// error writes {"error": code, "message": <localized>}.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code string) {
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	a.json(w, status, errorBody{
		Error:     code,
		Message:   message(middleware.LocaleFromContext(ctx), code),
		RequestID: middleware.RequestIDFromContext(ctx),
	})
}

// page reads skip/limit query parameters.
func page(r *http.Request) (int, int) {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return skip, limit
}
