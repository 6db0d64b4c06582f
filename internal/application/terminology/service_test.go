package terminology

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	infraterm "github.com/lexicon-health/lexicon/internal/infrastructure/terminology"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *metrics.Metrics) {
	t.Helper()
	snap, err := snapshot.Build(snapshot.SampleData())
	require.NoError(t, err)
	store := snapshot.NewStore(snap)
	m := metrics.New()
	mapper := infraterm.NewStaticMapper(store, 0)
	return NewService(store, mapper, 0.1, 10, m, logging.NewNop()), m
}

func TestSearch(t *testing.T) {
	svc, m := newTestService(t)

	results, err := svc.Search(context.Background(), "demam berdarah", 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, int64(1), results[0].Concept.ID)
	assert.Greater(t, results[0].Score, 0.1)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.SearchRequests), 1e-9)
}

func TestSearch_EmptyResult(t *testing.T) {
	svc, _ := newTestService(t)
	results, err := svc.Search(context.Background(), "xylophone", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_LimitClamped(t *testing.T) {
	svc, _ := newTestService(t)
	results, err := svc.Search(context.Background(), "count", 100000)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), maxSearchLimit)
}

func TestSearch_NoSnapshot(t *testing.T) {
	svc := NewService(snapshot.NewStore(nil), nil, 0.1, 10, metrics.New(), logging.NewNop())
	_, err := svc.Search(context.Background(), "dengue", 10)
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestGetConcept(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.GetConcept(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", c.Name)

	_, err = svc.GetConcept(context.Background(), 99)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMapCode(t *testing.T) {
	svc, _ := newTestService(t)

	mapping, err := svc.MapCode(context.Background(), "icd10", "A90")
	require.NoError(t, err)
	assert.Equal(t, int64(1), mapping.Concept.ID)

	_, err = svc.MapCode(context.Background(), "", "A90")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.MapCode(context.Background(), "icd10", "Z99")
	assert.True(t, apperrors.IsNotFound(err))
}
