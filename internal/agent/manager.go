package agent

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SaynaAI/examples/internal/archive"
	"github.com/SaynaAI/examples/internal/history"
	"github.com/SaynaAI/examples/internal/sayna"
	"github.com/SaynaAI/examples/internal/token"
)

// Manager launches and tracks one voice session per room.
type Manager struct {
	saynaURL string
	minter   *token.Minter
	gen      *Generator
	history  history.Store
	archive  archive.Store
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager. archive may be nil.
func NewManager(saynaURL string, minter *token.Minter, gen *Generator, store history.Store, arch archive.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		saynaURL: saynaURL,
		minter:   minter,
		gen:      gen,
		history:  store,
		archive:  arch,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Launch starts the agent pipeline for a room in the background.
// Launching a room that already has a live session is a no-op.
func (m *Manager) Launch(room string) {
	m.mu.Lock()
	if _, exists := m.sessions[room]; exists {
		m.mu.Unlock()
		return
	}
	// Reserve the slot before dialing so concurrent launches collapse.
	m.sessions[room] = nil
	m.mu.Unlock()

	go m.run(room)
}

func (m *Manager) run(room string) {
	ctx := context.Background()
	logger := m.logger.With().Str("room", room).Logger()

	identity := "agent-" + uuid.NewString()[:8]
	tok, err := m.minter.Mint(room, identity, "voice-agent")
	if err != nil {
		logger.Error().Err(err).Msg("agent token mint failed")
		m.remove(room)
		return
	}

	conn, err := sayna.Dial(ctx, m.saynaURL, tok)
	if err != nil {
		logger.Error().Err(err).Msg("failed to join room")
		m.remove(room)
		return
	}

	session := NewSession(room, conn.WithLogger(logger), m.gen, m.history, m.archive, logger)
	m.mu.Lock()
	m.sessions[room] = session
	m.mu.Unlock()

	logger.Info().Msg("voice session started")

	// Serial event dispatch: each handler returns before the next
	// frame is read.
	conn.Events(func(ev sayna.Event) {
		switch ev.Type {
		case "transcription":
			session.HandleTranscript(ctx, ev.Text, ev.Final)
		case "error":
			logger.Warn().Str("message", ev.Message).Msg("platform error event")
		}
	})

	session.Stop(ctx)
	m.remove(room)
}

func (m *Manager) remove(room string) {
	m.mu.Lock()
	delete(m.sessions, room)
	m.mu.Unlock()
}

// StopAll stops every live session, used during shutdown.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s != nil {
			sessions = append(sessions, s)
		}
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Stop(ctx)
	}
}
