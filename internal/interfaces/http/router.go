package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lexicon-health/lexicon/internal/application/cds"
	"github.com/lexicon-health/lexicon/internal/application/claims"
	"github.com/lexicon-health/lexicon/internal/application/terminology"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	"github.com/lexicon-health/lexicon/internal/snapshot"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Terminology *terminology.Service
	CDS         *cds.Service
	Claims      *claims.Service
	Store       *snapshot.Store
	Metrics     *metrics.Metrics
	Log         logging.Logger
}

// NewRouter builds the service's chi router: operational endpoints at the
// root, the API under /api/v1.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Log))
	r.Use(requestMetrics(deps.Metrics))
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(deps.Store)
	r.Get("/healthz", health.Live)
	r.Get("/readyz", health.Ready)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	concepts := NewConceptHandler(deps.Terminology)
	cdsHandler := NewCDSHandler(deps.CDS)
	claimHandler := NewClaimHandler(deps.Claims)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/concepts/search", concepts.Search)
		r.Get("/concepts/{conceptID}", concepts.Get)
		r.Get("/mappings/{system}/{code}", concepts.MapCode)
		r.Post("/cds/recommendations", cdsHandler.Recommendations)
		r.Post("/claims/resolve", claimHandler.Resolve)
	})

	return r
}
