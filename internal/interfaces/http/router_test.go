package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexicon-health/lexicon/internal/application/cds"
	"github.com/lexicon-health/lexicon/internal/application/claims"
	"github.com/lexicon-health/lexicon/internal/application/terminology"
	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/metrics"
	infraterm "github.com/lexicon-health/lexicon/internal/infrastructure/terminology"
	"github.com/lexicon-health/lexicon/internal/snapshot"
)

func newTestRouter(t *testing.T, store *snapshot.Store) http.Handler {
	t.Helper()
	m := metrics.New()
	log := logging.NewNop()
	mapper := infraterm.NewStaticMapper(store, 0)

	return NewRouter(RouterDeps{
		Terminology: terminology.NewService(store, mapper, 0.1, 10, m, log),
		CDS:         cds.NewService(store, 0.9, m, log),
		Claims: claims.NewService(store, mapper, nil, claims.Config{
			RelationConfidence: 0.9,
			WetMonths:          []int{11, 12, 1, 2, 3, 4},
			Thresholds:         claim.Thresholds{AutoApprove: 0.8, Review: 0.6},
		}, nil, m, log),
		Store:   store,
		Metrics: m,
		Log:     log,
	})
}

func loadedStore(t *testing.T) *snapshot.Store {
	t.Helper()
	snap, err := snapshot.Build(snapshot.SampleData())
	require.NoError(t, err)
	return snapshot.NewStore(snap)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, env := doRequest(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = doRequest(t, router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var health struct {
		Status string `json:"status"`
		Data   struct {
			Concepts      int `json:"concepts"`
			Relationships int `json:"relationships"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "up", health.Status)
	assert.Equal(t, 4, health.Data.Concepts)
	assert.Equal(t, 3, health.Data.Relationships)
}

func TestReadyz_NoSnapshot(t *testing.T) {
	router := newTestRouter(t, snapshot.NewStore(nil))
	rec, _ := doRequest(t, router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestConceptSearch(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/concepts/search?q=dbd", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)

	var data struct {
		Query   string `json:"query"`
		Total   int    `json:"total"`
		Results []struct {
			Concept struct {
				ID int64 `json:"id"`
			} `json:"concept"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "dbd", data.Query)
	require.NotZero(t, data.Total)
	assert.Equal(t, int64(1), data.Results[0].Concept.ID)
	assert.Greater(t, data.Results[0].Score, 0.1)
}

func TestConceptSearch_BadRequests(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/concepts/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "COMMON_002", env.Error.Code)

	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/concepts/search?q=dbd&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConceptSearch_NoMatches(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/concepts/search?q=xylophone", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Total   int           `json:"total"`
		Results []interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Zero(t, data.Total)
	assert.NotNil(t, data.Results)
}

func TestGetConcept(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/concepts/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var c struct {
		Name          string `json:"name"`
		LocalizedName string `json:"localized_name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, "Dengue Fever", c.Name)
	assert.Equal(t, "Demam Berdarah Dengue", c.LocalizedName)

	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/concepts/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CON_001", env.Error.Code)
}

func TestGetConcept_NonNumericID(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/concepts/dengue", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "COMMON_002", env.Error.Code)
}

func TestMapCode(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/mappings/icd10/A90", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		ConceptID  int64   `json:"concept_id"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(1), data.ConceptID)
	assert.InDelta(t, 0.95, data.Confidence, 1e-9)

	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/mappings/icd10/Z99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TERM_001", env.Error.Code)
}

func TestRecommendations(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	body := map[string]interface{}{
		"diagnosis_id": 1,
		"context":      map[string]string{"location": "Manado", "season": "WET"},
	}
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cds/recommendations", body)
	require.Equal(t, http.StatusOK, rec.Code, env)

	var data struct {
		Diagnosis struct {
			ID int64 `json:"id"`
		} `json:"diagnosis"`
		Total           int `json:"total"`
		Recommendations []struct {
			Concept struct {
				ID int64 `json:"id"`
			} `json:"concept"`
			PriorityScore float64 `json:"priority_score"`
			Reason        string  `json:"reason"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(1), data.Diagnosis.ID)
	require.Equal(t, 3, data.Total)
	assert.InDelta(t, 1.0, data.Recommendations[0].PriorityScore, 1e-9)
	assert.Contains(t, data.Recommendations[0].Reason, "musim hujan")
}

func TestRecommendations_Errors(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/cds/recommendations",
		map[string]interface{}{"context": map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cds/recommendations",
		map[string]interface{}{"diagnosis_id": 99})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CDS_001", env.Error.Code)

	rec, env = doRequest(t, router, http.MethodPost, "/api/v1/cds/recommendations",
		map[string]interface{}{"diagnosis_id": 1, "context": map[string]string{"season": "MONSOON"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CDS_003", env.Error.Code)
}

func TestResolveClaim(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	body := map[string]interface{}{
		"claim_id":        "claim-1",
		"diagnosis_codes": []string{"A90"},
	}
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/claims/resolve", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		ClaimID        string  `json:"claim_id"`
		Decision       string  `json:"decision"`
		Confidence     float64 `json:"confidence_score"`
		MappedConcepts []struct {
			SourceCode string `json:"source_code"`
		} `json:"mapped_concepts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "claim-1", data.ClaimID)
	assert.Equal(t, "MANUAL_REVIEW", data.Decision)
	assert.InDelta(t, 0.725, data.Confidence, 1e-9)
	require.Len(t, data.MappedConcepts, 1)
	assert.Equal(t, "A90", data.MappedConcepts[0].SourceCode)
}

func TestResolveClaim_Errors(t *testing.T) {
	router := newTestRouter(t, loadedStore(t))

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/claims/resolve",
		map[string]interface{}{"claim_id": "claim-2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CLM_002", env.Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/resolve", bytes.NewReader([]byte("{broken")))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}
