// Package cds is the application service for clinical decision support:
// ranked, context-aware recommendations for a diagnosis.
package cds

import (
	"context"
	"strconv"

	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// RecommendationSet is the full answer for one recommendation request.
type RecommendationSet struct {
	Diagnosis       *concept.Concept          `json:"diagnosis"`
	Context         clinical.Context          `json:"context"`
	Recommendations []clinical.Recommendation `json:"recommendations"`
}

// Service produces recommendations against the active snapshot.
type Service struct {
	store      *snapshot.Store
	confidence float64
	metrics    *metrics.Metrics
	log        logging.Logger
}

// NewService wires the CDS service.  confidence is attached to every
// recommendation by the underlying engine.
func NewService(store *snapshot.Store, confidence float64, m *metrics.Metrics, log logging.Logger) *Service {
	return &Service{store: store, confidence: confidence, metrics: m, log: log}
}

// Recommend returns the ranked recommendations for diagnosisID under ctx.
// The diagnosis must exist in the catalog; an existing diagnosis with no
// relationships yields an empty recommendation list.
func (s *Service) Recommend(_ context.Context, diagnosisID int64, reqCtx clinical.Context) (*RecommendationSet, error) {
	if err := validateContext(reqCtx); err != nil {
		return nil, err
	}

	snap := s.store.Current()
	if snap == nil {
		return nil, apperrors.Unavailable("no snapshot loaded")
	}

	diagnosis, err := snap.Catalog.Get(diagnosisID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeDiagnosisNotFound, "diagnosis concept not found").
			WithDetail(strconv.FormatInt(diagnosisID, 10))
	}

	engine := clinical.NewEngine(snap.Catalog, snap.Graph, s.confidence)
	recs := engine.Recommend(diagnosisID, reqCtx)
	for _, r := range recs {
		s.metrics.Recommendations.WithLabelValues(string(r.RelationType)).Inc()
	}

	s.log.Debug("recommendations served",
		logging.Int64("diagnosis_id", diagnosisID),
		logging.String("context", reqCtx.Key()),
		logging.Int("count", len(recs)),
	)
	return &RecommendationSet{
		Diagnosis:       diagnosis,
		Context:         reqCtx,
		Recommendations: recs,
	}, nil
}

func validateContext(ctx clinical.Context) error {
	switch ctx.Season {
	case "", clinical.SeasonWet, clinical.SeasonDry:
		return nil
	default:
		return apperrors.New(apperrors.ErrCodeContextInvalid, "season must be WET or DRY").
			WithDetail(ctx.Season)
	}
}
