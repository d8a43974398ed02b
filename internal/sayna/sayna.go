// Package sayna is a thin client for the Sayna platform's per-room data
// channel. Media transport, speech recognition and synthesis all live on
// the platform side; this package only ships JSON frames over a
// websocket and hands inbound events to a callback.
package sayna

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event is an inbound frame from the platform.
type Event struct {
	Type     string          `json:"type"` // "transcription", "data", "error"
	Text     string          `json:"text,omitempty"`
	Final    bool            `json:"final,omitempty"`
	Identity string          `json:"identity,omitempty"`
	Reliable bool            `json:"reliable,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// Conn is one room's data-channel connection.
type Conn struct {
	ws     *websocket.Conn
	logger zerolog.Logger

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to a Sayna room's agent channel using a room access token.
func Dial(ctx context.Context, baseURL, token string) (*Conn, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sayna url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/agent"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("sayna dial: %w", err)
	}

	return &Conn{ws: ws, logger: zerolog.Nop()}, nil
}

// WithLogger sets the connection's logger.
func (c *Conn) WithLogger(logger zerolog.Logger) *Conn {
	c.logger = logger
	return c
}

func (c *Conn) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

// PublishData publishes a payload to the room's data channel.
func (c *Conn) PublishData(payload []byte, reliable bool) error {
	return c.writeJSON(map[string]any{
		"type":     "publish_data",
		"payload":  json.RawMessage(payload),
		"reliable": reliable,
	})
}

// Say asks the platform to synthesize and play text in the room.
func (c *Conn) Say(text string) error {
	return c.writeJSON(map[string]any{
		"type": "say",
		"text": text,
	})
}

// Events reads inbound frames and dispatches them serially to handler
// until the connection closes. Undecodable frames are dropped.
func (c *Conn) Events(handler func(Event)) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Err(err).Msg("data channel read ended")
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Debug().Err(err).Msg("dropping undecodable event")
			continue
		}
		handler(ev)
	}
}

// Close closes the websocket.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
