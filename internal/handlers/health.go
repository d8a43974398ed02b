package handlers

import (
	"net/http"
)

// HealthResponse reports server status and Sayna reachability.
type HealthResponse struct {
	Status string `json:"status"` // "ok" or "degraded"
	Sayna  bool   `json:"sayna"`
}

// Health handles the health check endpoint. The server is "degraded"
// when the Sayna platform cannot be reached; no local check is fatal.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sayna := h.saynaCheck(r.Context())

	status := "ok"
	if !sayna {
		status = "degraded"
	}

	h.JSON(w, http.StatusOK, HealthResponse{Status: status, Sayna: sayna})
}
