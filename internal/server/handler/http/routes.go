package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/middleware"
)

// RouterDeps bundles what NewRouter mounts. Metrics and Gatherer are
// optional; CORS is enabled only when CORSOrigins is non-empty.
type RouterDeps struct {
	Auth        *AuthHandler
	Directory   *DirectoryHandler
	Credentials *CredentialHandler
	Metrics     *middleware.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter constructs and returns an HTTP handler that serves the
// credential manager API.
//
// Routes:
//
//	POST   /login               → Auth.Login
//	POST   /register            → Auth.Register
//	POST   /orgs-and-divisions  → Directory.Profile      (bearer)
//	POST   /all-users           → Directory.Users        (bearer)
//	PUT    /update-role         → Directory.ChangeRole   (bearer)
//	POST   /assign-division     → Directory.Assign       (bearer)
//	DELETE /unassign-division   → Directory.Unassign     (bearer)
//	POST   /view-credentials    → Credentials.View       (bearer)
//	POST   /add-credential      → Credentials.Add        (bearer)
//	PUT    /update-credential   → Credentials.Update     (bearer)
//	GET    /metrics             → Prometheus exposition
//
// Unknown paths and methods get JSON 404 and 405 bodies.
//
// Middleware chain (applied in order):
//  1. Recoverer: turns panics into 500
//  2. WithRequestLogging(logger): logs served requests
//  3. Metrics.Handler: request counter and latency
//  4. AllowJSON: rejects non-JSON bodies with a JSON 415
//  5. BearerAuth: protected group only
func NewRouter(deps RouterDeps) http.Handler {
	logger := nopIfNil(deps.Logger)
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler)
	}
	r.Use(middleware.AllowJSON)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Public endpoints
	r.Post("/register", deps.Auth.Register)
	r.Post("/login", deps.Auth.Login)

	// Protected group: requires a live bearer token
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(deps.Auth.AuthService, logger))

		r.Post("/orgs-and-divisions", deps.Directory.Profile)
		r.Post("/all-users", deps.Directory.Users)
		r.Put("/update-role", deps.Directory.ChangeRole)
		r.Post("/assign-division", deps.Directory.Assign)
		r.Delete("/unassign-division", deps.Directory.Unassign)

		r.Post("/view-credentials", deps.Credentials.View)
		r.Post("/add-credential", deps.Credentials.Add)
		r.Put("/update-credential", deps.Credentials.Update)
	})

	if len(deps.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}
