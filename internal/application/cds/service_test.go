package cds

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *metrics.Metrics) {
	t.Helper()
	snap, err := snapshot.Build(snapshot.SampleData())
	require.NoError(t, err)
	m := metrics.New()
	return NewService(snapshot.NewStore(snap), 0.9, m, logging.NewNop()), m
}

func TestRecommend(t *testing.T) {
	svc, m := newTestService(t)

	set, err := svc.Recommend(context.Background(), 1,
		clinical.Context{Location: "Manado", Season: clinical.SeasonWet})
	require.NoError(t, err)

	assert.Equal(t, "Dengue Fever", set.Diagnosis.Name)
	require.Len(t, set.Recommendations, 3)
	assert.InDelta(t, 1.0, set.Recommendations[0].PriorityScore, 1e-9)
	for _, r := range set.Recommendations {
		assert.InDelta(t, 0.9, r.Confidence, 1e-9)
	}

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.Recommendations.WithLabelValues("HAS_DIAGNOSTIC_TEST")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Recommendations.WithLabelValues("HAS_TREATMENT")), 1e-9)
}

func TestRecommend_NoRelationships(t *testing.T) {
	svc, _ := newTestService(t)

	set, err := svc.Recommend(context.Background(), 2, clinical.Context{})
	require.NoError(t, err)
	assert.Equal(t, "Complete Blood Count", set.Diagnosis.Name)
	assert.Empty(t, set.Recommendations)
}

func TestRecommend_UnknownDiagnosis(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Recommend(context.Background(), 99, clinical.Context{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDiagnosisNotFound))
}

func TestRecommend_InvalidSeason(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Recommend(context.Background(), 1, clinical.Context{Season: "MONSOON"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeContextInvalid))
}

func TestRecommend_NoSnapshot(t *testing.T) {
	svc := NewService(snapshot.NewStore(nil), 0.9, metrics.New(), logging.NewNop())
	_, err := svc.Recommend(context.Background(), 1, clinical.Context{})
	assert.True(t, apperrors.IsUnavailable(err))
}
