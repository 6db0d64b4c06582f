package http

import (
	"encoding/json"
	"net/http"

	"github.com/lexicon-health/lexicon/internal/application/cds"
	"github.com/lexicon-health/lexicon/internal/domain/clinical"
)

// CDSHandler serves clinical decision support requests.
type CDSHandler struct {
	svc *cds.Service
}

// NewCDSHandler creates the handler.
func NewCDSHandler(svc *cds.Service) *CDSHandler {
	return &CDSHandler{svc: svc}
}

type recommendationRequest struct {
	DiagnosisID int64            `json:"diagnosis_id"`
	Context     clinical.Context `json:"context"`
}

type recommendationResponse struct {
	*cds.RecommendationSet
	Total int `json:"total"`
}

// Recommendations handles POST /api/v1/cds/recommendations.
func (h *CDSHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, r, "request body is not valid JSON")
		return
	}
	if req.DiagnosisID <= 0 {
		writeBadRequest(w, r, "diagnosis_id must be a positive integer")
		return
	}

	set, err := h.svc.Recommend(r.Context(), req.DiagnosisID, req.Context)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, recommendationResponse{
		RecommendationSet: set,
		Total:             len(set.Recommendations),
	})
}
