package voicechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// TokenInfo is a normalized token-endpoint response.
type TokenInfo struct {
	Token   string
	LiveURL string
}

// FetchError is a failed token fetch. Status is zero when the request
// never reached the server.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("token fetch failed (%d): %s", e.Status, e.Message)
	}
	return "token fetch failed: " + e.Message
}

// tokenRequest is the snake_case body expected by the token endpoint.
type tokenRequest struct {
	RoomName            string `json:"room_name"`
	ParticipantName     string `json:"participant_name"`
	ParticipantIdentity string `json:"participant_identity"`
}

// tokenResponse accepts either the liveUrl or livekit_url key, since
// upstream systems disagree on the name.
type tokenResponse struct {
	Token      string `json:"token"`
	LiveURL    string `json:"liveUrl"`
	LivekitURL string `json:"livekit_url"`
}

// FetchToken requests a room access token from endpoint. httpClient may
// be nil, in which case http.DefaultClient is used.
func FetchToken(ctx context.Context, httpClient *http.Client, endpoint, room, name, identity string) (*TokenInfo, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	body, err := json.Marshal(tokenRequest{
		RoomName:            room,
		ParticipantName:     name,
		ParticipantIdentity: identity,
	})
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp struct {
			Error string `json:"error"`
		}
		msg := string(respBody)
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return nil, &FetchError{Status: resp.StatusCode, Message: msg}
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Message: "invalid response body"}
	}

	liveURL := parsed.LiveURL
	if liveURL == "" {
		liveURL = parsed.LivekitURL
	}
	if parsed.Token == "" || liveURL == "" {
		return nil, &FetchError{Status: resp.StatusCode, Message: "response missing token or live URL"}
	}

	return &TokenInfo{Token: parsed.Token, LiveURL: liveURL}, nil
}
