package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// StartRequest is the session-start request body.
type StartRequest struct {
	RoomName            string `json:"room_name"`
	ParticipantName     string `json:"participant_name"`
	ParticipantIdentity string `json:"participant_identity"`
}

// StartResponse is the session-start response.
type StartResponse struct {
	Token      string `json:"token"`
	LivekitURL string `json:"livekit_url"`
}

// Start mints a room access token for the participant and launches the
// voice-agent pipeline for the room in the background. The response does
// not wait for the pipeline to come up.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.RoomName = strings.TrimSpace(req.RoomName)
	req.ParticipantName = strings.TrimSpace(req.ParticipantName)
	req.ParticipantIdentity = strings.TrimSpace(req.ParticipantIdentity)

	if req.RoomName == "" {
		h.Error(w, http.StatusBadRequest, "room_name is required")
		return
	}
	if req.ParticipantName == "" {
		h.Error(w, http.StatusBadRequest, "participant_name is required")
		return
	}
	if req.ParticipantIdentity == "" {
		h.Error(w, http.StatusBadRequest, "participant_identity is required")
		return
	}

	tok, err := h.minter.Mint(req.RoomName, req.ParticipantIdentity, req.ParticipantName)
	if err != nil {
		h.logger.Error().Err(err).Msg("token mint failed")
		h.Error(w, http.StatusInternalServerError, "failed to mint access token")
		return
	}

	h.launcher.Launch(req.RoomName)

	h.JSON(w, http.StatusOK, StartResponse{
		Token:      tok,
		LivekitURL: h.saynaURL,
	})
}
