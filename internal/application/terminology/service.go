// Package terminology is the application service for concept search, concept
// lookup and external-code mapping.
package terminology

import (
	"context"
	"time"

	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// maxSearchLimit caps the per-request result count regardless of input.
const maxSearchLimit = 100

// ScoredConcept is a search hit exposed to the transport layer.
type ScoredConcept struct {
	Concept concept.Concept `json:"concept"`
	Score   float64         `json:"score"`
}

// Service answers concept search, lookup and mapping requests against the
// active snapshot.
type Service struct {
	store         *snapshot.Store
	mapper        claim.CodeMapper
	minSimilarity float64
	defaultLimit  int
	metrics       *metrics.Metrics
	log           logging.Logger
}

// NewService wires the terminology service.
func NewService(
	store *snapshot.Store,
	mapper claim.CodeMapper,
	minSimilarity float64,
	defaultLimit int,
	m *metrics.Metrics,
	log logging.Logger,
) *Service {
	return &Service{
		store:         store,
		mapper:        mapper,
		minSimilarity: minSimilarity,
		defaultLimit:  defaultLimit,
		metrics:       m,
		log:           log,
	}
}

// Search runs a fuzzy concept search.  A query with no matches returns an
// empty slice, not an error.
func (s *Service) Search(_ context.Context, query string, limit int) ([]ScoredConcept, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, apperrors.Unavailable("no snapshot loaded")
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	start := time.Now()
	matches := snap.Index.Search(query, limit, s.minSimilarity)
	s.metrics.SearchRequests.Inc()
	s.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	s.metrics.SearchResults.Observe(float64(len(matches)))

	out := make([]ScoredConcept, 0, len(matches))
	for _, m := range matches {
		out = append(out, ScoredConcept{Concept: *m.Concept, Score: m.Score})
	}

	s.log.Debug("concept search served",
		logging.String("query", query),
		logging.Int("limit", limit),
		logging.Int("results", len(out)),
	)
	return out, nil
}

// GetConcept returns the concept with the given id.
func (s *Service) GetConcept(_ context.Context, id int64) (*concept.Concept, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, apperrors.Unavailable("no snapshot loaded")
	}
	return snap.Catalog.Get(id)
}

// MapCode resolves an external code to a concept via the configured mapper.
func (s *Service) MapCode(ctx context.Context, system, code string) (*claim.Mapping, error) {
	if system == "" || code == "" {
		return nil, apperrors.InvalidParam("code system and code must not be empty")
	}
	return s.mapper.MapCode(ctx, system, code)
}
