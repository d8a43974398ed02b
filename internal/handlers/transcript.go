package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SaynaAI/examples/internal/archive"
)

// TranscriptResponse lists a room's archived turns.
type TranscriptResponse struct {
	Room  string         `json:"room"`
	Turns []archive.Turn `json:"turns"`
}

// RoomTranscript returns the most recent archived turns for a room.
func (h *Handler) RoomTranscript(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.Error(w, http.StatusServiceUnavailable, "transcript archive not configured")
		return
	}

	room := chi.URLParam(r, "room")
	if room == "" {
		h.Error(w, http.StatusBadRequest, "room is required")
		return
	}

	turns, err := h.archive.RecentTurns(r.Context(), room, 50)
	if err != nil {
		h.logger.Error().Err(err).Str("room", room).Msg("archive read failed")
		h.Error(w, http.StatusInternalServerError, "failed to read transcript")
		return
	}
	if turns == nil {
		turns = []archive.Turn{}
	}

	h.JSON(w, http.StatusOK, TranscriptResponse{Room: room, Turns: turns})
}
