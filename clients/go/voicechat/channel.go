package voicechat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// envelope is the transport frame the platform wraps around each
// data-channel payload: sender identity and delivery reliability come
// from the transport, not the payload.
type envelope struct {
	Identity string          `json:"identity,omitempty"`
	Reliable bool            `json:"reliable,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// WSChannel is a websocket-backed DataChannel to a Sayna room.
type WSChannel struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	connected atomic.Bool
}

// DialChannel connects to a room's data channel at liveURL using a room
// access token.
func DialChannel(ctx context.Context, liveURL, token string) (*WSChannel, error) {
	u, err := url.Parse(liveURL)
	if err != nil {
		return nil, fmt.Errorf("invalid live URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/room"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	ch := &WSChannel{conn: conn}
	ch.connected.Store(true)
	return ch, nil
}

// Connected reports whether the channel is usable.
func (c *WSChannel) Connected() bool {
	return c.connected.Load()
}

// Publish sends a payload to the room. reliable is carried as transport
// metadata; the websocket itself always delivers in order.
func (c *WSChannel) Publish(ctx context.Context, payload []byte, reliable bool) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}

	frame, err := json.Marshal(envelope{Reliable: reliable, Payload: payload})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.connected.Store(false)
		return err
	}
	return nil
}

// EnableMicrophone asks the platform to start audio capture for this
// participant. The connection stays up when the request fails; sessions
// without a media track simply continue text-only.
func (c *WSChannel) EnableMicrophone() error {
	if !c.connected.Load() {
		return ErrNotConnected
	}

	frame, err := json.Marshal(struct {
		Type string `json:"type"`
	}{Type: "enable_microphone"})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.connected.Store(false)
		return err
	}
	return nil
}

// Listen reads frames and hands each payload to handler with its
// transport metadata. Handlers run serially; Listen returns when the
// connection closes. Frames that are not enveloped are passed through
// as bare payloads.
func (c *WSChannel) Listen(handler func(payload []byte, meta EventMeta)) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.connected.Store(false)
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err == nil && len(env.Payload) > 0 {
			handler(env.Payload, EventMeta{SenderIdentity: env.Identity, Reliable: env.Reliable})
			continue
		}
		handler(data, EventMeta{Reliable: true})
	}
}

// Close shuts the channel down.
func (c *WSChannel) Close() error {
	c.connected.Store(false)
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Close()
}
