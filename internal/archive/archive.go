// Package archive persists completed conversation turns so finished
// sessions can be reviewed later. Postgres and SQLite backends implement
// the same interface; the server picks one from configuration.
package archive

import (
	"context"
	"time"
)

// Turn is one completed exchange: the user's finalized transcript and
// the assistant's full reply.
type Turn struct {
	ID         string    `json:"id"` // ULID
	Room       string    `json:"room"`
	Transcript string    `json:"transcript"`
	Reply      string    `json:"reply"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists turns. Both PostgresStore and SQLiteStore implement it.
type Store interface {
	Close()
	Ping(ctx context.Context) error

	SaveTurn(ctx context.Context, room, transcript, reply string) error
	RecentTurns(ctx context.Context, room string, limit int) ([]Turn, error)
}
