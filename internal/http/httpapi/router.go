package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"hairfit/internal/domain"
	"hairfit/internal/http/handlers"
	"hairfit/internal/middleware"
)

// Options tune the router's middleware stack.
type Options struct {
	Logger        zerolog.Logger
	DefaultLocale string
	CountryLookup middleware.CountryLookup
	CORSOrigins   []string
	// UploadLimitPerHour applies per client IP to each upload kind on its own.
	UploadLimitPerHour int
	// SynthesisLimitPerHour is a separate per-IP budget; zero disables it.
	SynthesisLimitPerHour int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/health", app.Health)

	r.Route("/members", func(r chi.Router) {
		r.Get("/", app.ListMembers)
		r.Get("/{id}", app.GetMember)
	})

	r.Get("/styles", app.ListStyles)

	synthLimit := middleware.NewLimiter(opts.SynthesisLimitPerHour, time.Hour)
	r.With(synthLimit.Middleware).Post("/synthesize", app.Synthesize)

	r.Route("/upload", func(r chi.Router) {
		for _, kind := range []domain.UploadKind{domain.UploadOriginal, domain.UploadResult, domain.UploadProfile} {
			limit := middleware.NewLimiter(opts.UploadLimitPerHour, time.Hour)
			r.With(limit.Middleware).Post("/"+string(kind), app.Upload(kind))
		}
		r.Post("/{kind}", app.UploadByKind)
	})

	r.Get("/images/{type}/{filename}", app.Image)

	r.Route("/synthesis-history", func(r chi.Router) {
		r.Get("/", app.ListHistory)
		r.Post("/", app.CreateHistory)
		r.Get("/{id}", app.GetHistory)
		r.Delete("/{id}", app.DeleteHistory)
	})

	return r
}
