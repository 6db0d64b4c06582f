package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lexicon-health/lexicon/internal/application/terminology"
)

// ConceptHandler serves concept search, lookup and code mapping.
type ConceptHandler struct {
	svc *terminology.Service
}

// NewConceptHandler creates the handler.
func NewConceptHandler(svc *terminology.Service) *ConceptHandler {
	return &ConceptHandler{svc: svc}
}

type searchResponse struct {
	Query   string                      `json:"query"`
	Results []terminology.ScoredConcept `json:"results"`
	Total   int                         `json:"total"`
}

// Search handles GET /api/v1/concepts/search?q=...&limit=...
func (h *ConceptHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeBadRequest(w, r, "query parameter q is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, r, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	results, err := h.svc.Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []terminology.ScoredConcept{}
	}
	writeJSON(w, r, http.StatusOK, searchResponse{Query: query, Results: results, Total: len(results)})
}

// Get handles GET /api/v1/concepts/{conceptID}.
func (h *ConceptHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "conceptID"), 10, 64)
	if err != nil {
		writeBadRequest(w, r, "concept id must be an integer")
		return
	}

	c, err := h.svc.GetConcept(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

type mappingResponse struct {
	System     string      `json:"system"`
	Code       string      `json:"code"`
	ConceptID  int64       `json:"concept_id"`
	Concept    interface{} `json:"concept"`
	Confidence float64     `json:"confidence"`
}

// MapCode handles GET /api/v1/mappings/{system}/{code}.
func (h *ConceptHandler) MapCode(w http.ResponseWriter, r *http.Request) {
	system := chi.URLParam(r, "system")
	code := chi.URLParam(r, "code")

	mapping, err := h.svc.MapCode(r.Context(), system, code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mappingResponse{
		System:     system,
		Code:       code,
		ConceptID:  mapping.Concept.ID,
		Concept:    mapping.Concept,
		Confidence: mapping.Confidence,
	})
}
