package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/config"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/handler"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/metrics"
	mw "github.com/kishan34-Mac/AcreCap-Full-stack/internal/middleware"
)

func New(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	resolver *auth.Resolver,
	userH *handler.UserHandler,
	subH *handler.SubmissionHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. Recovery first so everything below is covered.
	r.Use(mw.Recovery(log))
	r.Use(mw.RequestID)
	r.Use(mw.Logger(log))
	r.Use(mw.SecureHeaders)
	r.Use(mw.CORS(cfg.AllowedOrigins))
	r.Use(mw.RateLimit(cfg.RateLimitRPM))
	r.Use(m.Middleware)
	r.Use(auth.Middleware(resolver))

	r.Get("/", handler.Root)
	r.Get("/healthz", handler.Healthz)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.Health)

		r.Route("/users", func(r chi.Router) {
			r.With(mw.NoStore).Get("/me", userH.Me)
			r.With(mw.NoStore).Put("/me", userH.UpdateMe)
			r.Post("/role", userH.UpdateRole)
			r.Post("/sync", userH.Sync)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", subH.Create)
			r.Get("/", subH.ListAll)
			r.Get("/mine", subH.ListMine)
			r.Get("/stream", subH.Stream)
			r.Patch("/{id}", subH.UpdateStatus)
		})

		r.Post("/admin/backup", subH.Backup)

		r.NotFound(handler.APINotFound)
	})

	return r
}
