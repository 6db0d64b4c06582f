// Package claims is the application service orchestrating claim resolution
// and the downstream event fan-out.
package claims

import (
	"context"

	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Publisher emits events for resolved claims.  The kafka publisher implements
// it; a nil Publisher disables fan-out.
type Publisher interface {
	PublishClaimResolved(ctx context.Context, res *claim.Resolution) error
}

// Config carries the engine tunables the service needs per resolution.
type Config struct {
	RelationConfidence float64
	WetMonths          []int
	Thresholds         claim.Thresholds
}

// Service resolves claims against the active snapshot.
type Service struct {
	store     *snapshot.Store
	mapper    claim.CodeMapper
	validator claim.TreatmentValidator
	cfg       Config
	publisher Publisher
	metrics   *metrics.Metrics
	log       logging.Logger
}

// NewService wires the claims service.  validator and publisher may be nil.
func NewService(
	store *snapshot.Store,
	mapper claim.CodeMapper,
	validator claim.TreatmentValidator,
	cfg Config,
	publisher Publisher,
	m *metrics.Metrics,
	log logging.Logger,
) *Service {
	return &Service{
		store:     store,
		mapper:    mapper,
		validator: validator,
		cfg:       cfg,
		publisher: publisher,
		metrics:   m,
		log:       log,
	}
}

// Resolve runs the claim pipeline and publishes the outcome.  Publishing is
// best-effort: an event failure is logged, never surfaced to the caller.
func (s *Service) Resolve(ctx context.Context, in *claim.Input) (*claim.Resolution, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, apperrors.Unavailable("no snapshot loaded")
	}

	engine := clinical.NewEngine(snap.Catalog, snap.Graph, s.cfg.RelationConfidence)
	resolver := claim.NewResolver(engine, s.mapper, s.validator, s.cfg.WetMonths, s.cfg.Thresholds, s.log)

	res, err := resolver.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	s.metrics.ClaimsResolved.WithLabelValues(string(res.Decision)).Inc()
	s.metrics.ClaimConfidence.Observe(res.ConfidenceScore)

	if s.publisher != nil {
		if err := s.publisher.PublishClaimResolved(ctx, res); err != nil {
			s.log.Warn("claim event publish failed",
				logging.String("claim_id", res.ClaimID), logging.Err(err))
		}
	}
	return res, nil
}
