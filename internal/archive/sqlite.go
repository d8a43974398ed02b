package archive

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// SQLiteStore archives turns in a local SQLite file. It is the default
// backend when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the archive database at dbPath.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/transcripts.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			transcript TEXT NOT NULL,
			reply TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_room_created ON turns(room, created_at);
	`)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveTurn stores one completed exchange.
func (s *SQLiteStore) SaveTurn(ctx context.Context, room, transcript, reply string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (id, room, transcript, reply, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, ulid.Make().String(), room, transcript, reply, time.Now().UTC())
	return err
}

// RecentTurns returns a room's most recent turns, oldest first.
func (s *SQLiteStore) RecentTurns(ctx context.Context, room string, limit int) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room, transcript, reply, created_at
		FROM (
			SELECT id, room, transcript, reply, created_at
			FROM turns WHERE room = ?
			ORDER BY created_at DESC LIMIT ?
		)
		ORDER BY created_at ASC
	`, room, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.Room, &t.Transcript, &t.Reply, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
