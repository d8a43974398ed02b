package voicechat

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// ErrActionInFlight is returned when Connect or Disconnect is called
// while a previous connect or disconnect is still settling.
var ErrActionInFlight = errors.New("voicechat: connect/disconnect already in progress")

// ErrNotConnectedSession is returned by Send and Retry on a session
// without a live connection.
var ErrNotConnectedSession = errors.New("voicechat: session not connected")

// MicError is a microphone-enable failure. The connection itself is
// fine; callers should warn and continue text-only rather than treat it
// as a connection error.
type MicError struct {
	Err error
}

func (e *MicError) Error() string {
	return "voicechat: microphone enable failed: " + e.Err.Error()
}

func (e *MicError) Unwrap() error { return e.Err }

// SessionConfig names the room and participant for a session.
type SessionConfig struct {
	TokenEndpoint string
	Room          string
	Name          string
	Identity      string

	// HTTPClient is used for the token fetch; nil means http.DefaultClient.
	HTTPClient *http.Client

	// OnUpdate, if set, is invoked after every transcript change with a
	// fresh snapshot. Called from the channel's read goroutine.
	OnUpdate func([]Entry)

	// OnSendError, if set, is invoked when an outbound entry fails.
	OnSendError func(entryID string, err error)
}

// Session ties the pieces together: it fetches a token, opens the data
// channel, feeds inbound payloads through the reconciler and exposes
// the outbound send pipeline. At most one connect or disconnect may be
// in flight at a time; overlapping calls fail fast instead of queueing.
type Session struct {
	cfg        SessionConfig
	transcript *Transcript

	mu       sync.Mutex
	busy     bool
	channel  *WSChannel
	sender   *Sender
	listenWG sync.WaitGroup
}

// NewSession creates a disconnected session.
func NewSession(cfg SessionConfig) *Session {
	return &Session{
		cfg:        cfg,
		transcript: NewTranscript(),
	}
}

// Transcript returns the session's transcript.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// Connected reports whether the session has a live channel.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel != nil && s.channel.Connected()
}

// beginAction claims the single in-flight connect/disconnect slot.
func (s *Session) beginAction() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrActionInFlight
	}
	s.busy = true
	return nil
}

func (s *Session) endAction() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Connect fetches a token, dials the room's data channel and starts the
// read loop. Returns ErrActionInFlight if another connect or disconnect
// has not settled yet; connecting an already connected session is an
// error.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.beginAction(); err != nil {
		return err
	}
	defer s.endAction()

	s.mu.Lock()
	if s.channel != nil {
		s.mu.Unlock()
		return errors.New("voicechat: already connected")
	}
	s.mu.Unlock()

	info, err := FetchToken(ctx, s.cfg.HTTPClient, s.cfg.TokenEndpoint, s.cfg.Room, s.cfg.Name, s.cfg.Identity)
	if err != nil {
		return err
	}

	channel, err := DialChannel(ctx, info.LiveURL, info.Token)
	if err != nil {
		return err
	}

	sender := NewSender(s.transcript, channel, s.cfg.Identity, func(entryID string, err error) {
		if s.cfg.OnSendError != nil {
			s.cfg.OnSendError(entryID, err)
		}
		s.notify()
	})

	s.mu.Lock()
	s.channel = channel
	s.sender = sender
	s.mu.Unlock()

	s.listenWG.Add(1)
	go func() {
		defer s.listenWG.Done()
		channel.Listen(func(payload []byte, meta EventMeta) {
			msg, ok := DecodeWireMessage(payload)
			if !ok {
				return
			}
			s.transcript.Reconcile(msg, meta)
			s.notify()
		})
	}()

	return nil
}

// Disconnect closes the channel and waits for the read loop to drain.
// Returns ErrActionInFlight if another connect or disconnect has not
// settled yet. Disconnecting a disconnected session is a no-op.
func (s *Session) Disconnect() error {
	if err := s.beginAction(); err != nil {
		return err
	}
	defer s.endAction()

	s.mu.Lock()
	channel := s.channel
	s.channel = nil
	s.sender = nil
	s.mu.Unlock()

	if channel == nil {
		return nil
	}
	err := channel.Close()
	s.listenWG.Wait()
	return err
}

// EnableMicrophone requests platform-side audio capture for this
// participant. Failures are wrapped in *MicError so callers can tell
// them apart from connection errors; the session stays connected.
func (s *Session) EnableMicrophone() error {
	s.mu.Lock()
	channel := s.channel
	s.mu.Unlock()
	if channel == nil {
		return ErrNotConnectedSession
	}
	if err := channel.EnableMicrophone(); err != nil {
		return &MicError{Err: err}
	}
	return nil
}

// Send publishes user-typed text and returns the new entry id.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()
	if sender == nil {
		return "", ErrNotConnectedSession
	}
	id := sender.Send(ctx, text)
	s.notify()
	return id, nil
}

// Retry replays a failed entry.
func (s *Session) Retry(ctx context.Context, entryID string) error {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()
	if sender == nil {
		return ErrNotConnectedSession
	}
	if err := sender.Retry(ctx, entryID); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *Session) notify() {
	if s.cfg.OnUpdate != nil {
		s.cfg.OnUpdate(s.transcript.Entries())
	}
}
