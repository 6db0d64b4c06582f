package http

import (
	"encoding/json"
	"net/http"

	"github.com/lexicon-health/lexicon/internal/application/claims"
	"github.com/lexicon-health/lexicon/internal/domain/claim"
)

// ClaimHandler serves claim resolution requests.
type ClaimHandler struct {
	svc *claims.Service
}

// NewClaimHandler creates the handler.
func NewClaimHandler(svc *claims.Service) *ClaimHandler {
	return &ClaimHandler{svc: svc}
}

// Resolve handles POST /api/v1/claims/resolve.
func (h *ClaimHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var in claim.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, r, "request body is not valid JSON")
		return
	}

	res, err := h.svc.Resolve(r.Context(), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
