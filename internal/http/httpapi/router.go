package httpapi

import (
	"net/http"
	"time"

	"artify/internal/http/handlers"
	appmw "artify/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options carries the cross-cutting settings of the router.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   appmw.CountryLookup
	SecureCookies   bool
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		appmw.I18N(opts.DefaultLocale, opts.CountryLookup),
		appmw.Logger(opts.Logger),
		appmw.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	limited := appmw.RateLimit(opts.RateLimitPerMin, time.Minute)

	r.Group(func(r chi.Router) {
		r.Use(appmw.Session(opts.SecureCookies))
		r.Get("/", app.Index)
		r.Get("/download", app.Download)
		r.Post("/improve", app.Improve)
		r.With(limited).Post("/generate", app.Generate)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/prompts/improve", app.ImprovePrompt)
		r.With(limited).Post("/images", app.CreateImage)
	})

	return r
}
