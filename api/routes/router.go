package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/newswirehq/newswire-backend/api/controllers"
	"github.com/newswirehq/newswire-backend/api/middleware"
	"github.com/newswirehq/newswire-backend/internal/checkpoint"
	"github.com/newswirehq/newswire-backend/internal/media"
	"github.com/newswirehq/newswire-backend/internal/session"
	"github.com/newswirehq/newswire-backend/internal/users"
	"github.com/newswirehq/newswire-backend/pkg/config"
	"github.com/newswirehq/newswire-backend/pkg/logger"
	"github.com/newswirehq/newswire-backend/pkg/metrics"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Users      *users.Service
	Session    *session.Service
	Checkpoint *checkpoint.Store
	Media      *media.Service

	// health-check surfaces, nil entries are skipped
	Pingers map[string]controllers.Pinger

	Metrics        *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/", controllers.UserFindOrCreate(deps.Users, logg))
		r.Get("/{id}", controllers.UserGet(deps.Users, logg))
		r.Put("/{id}", controllers.UserUpdate(deps.Users, logg))
		r.Delete("/{id}", controllers.UserDelete(deps.Users, logg))
	})

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Post("/register", controllers.SessionRegister(deps.Session, logg))
		r.Post("/login", controllers.SessionLogin(deps.Session, logg))
	})

	gate := middleware.AccessGate(cfg.Auth, logg)

	r.Route("/api/v1/checkpoint", func(r chi.Router) {
		r.Use(gate)
		r.Get("/", controllers.CheckpointGet(deps.Checkpoint, logg))
		r.Post("/", controllers.CheckpointSet(deps.Checkpoint, logg))
		r.Post("/advance", controllers.CheckpointAdvance(deps.Checkpoint, logg))
	})

	r.Route("/api/v1/media", func(r chi.Router) {
		r.Use(gate)
		r.Post("/upload", controllers.MediaUpload(deps.Media, cfg.Media.MaxUploadBytes(), logg))
	})

	return r
}
