package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/SaynaAI/examples/internal/archive"
	"github.com/SaynaAI/examples/internal/token"
)

// SessionLauncher starts a voice-agent pipeline for a room in the
// background. Implemented by agent.Manager.
type SessionLauncher interface {
	Launch(room string)
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	logger   zerolog.Logger
	minter   *token.Minter
	launcher SessionLauncher
	archive  archive.Store // may be nil
	saynaURL string

	// saynaCheck probes platform reachability; replaced in tests.
	saynaCheck func(ctx context.Context) bool
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(logger zerolog.Logger, minter *token.Minter, launcher SessionLauncher, arch archive.Store, saynaURL string) *Handler {
	h := &Handler{
		logger:   logger,
		minter:   minter,
		launcher: launcher,
		archive:  arch,
		saynaURL: saynaURL,
	}
	h.saynaCheck = h.probeSayna
	return h
}

// probeSayna checks whether the Sayna deployment answers HTTP.
func (h *Handler) probeSayna(ctx context.Context) bool {
	if h.saynaURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.saynaURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
