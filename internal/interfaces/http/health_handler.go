package http

import (
	"net/http"
	"time"

	"github.com/lexicon-health/lexicon/internal/snapshot"
	"github.com/lexicon-health/lexicon/pkg/types/common"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store *snapshot.Store
}

// NewHealthHandler creates the handler.
func NewHealthHandler(store *snapshot.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

type healthResponse struct {
	Status     common.HealthStatus      `json:"status"`
	Components []common.ComponentHealth `json:"components,omitempty"`
	Data       *snapshotInfo            `json:"data,omitempty"`
}

type snapshotInfo struct {
	Concepts      int       `json:"concepts"`
	Relationships int       `json:"relationships"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// Live handles GET /healthz: the process is up and serving.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: common.HealthUp})
}

// Ready handles GET /readyz: the service can answer requests, which requires
// a loaded snapshot.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{
			Status: common.HealthDown,
			Components: []common.ComponentHealth{
				{Name: "snapshot", Status: common.HealthDown, Message: "no snapshot loaded"},
			},
		})
		return
	}

	writeJSON(w, r, http.StatusOK, healthResponse{
		Status: common.HealthUp,
		Components: []common.ComponentHealth{
			{Name: "snapshot", Status: common.HealthUp},
		},
		Data: &snapshotInfo{
			Concepts:      snap.Catalog.Len(),
			Relationships: snap.Graph.Len(),
			LoadedAt:      snap.LoadedAt,
		},
	})
}
