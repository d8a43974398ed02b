package archive

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore archives turns in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres archive with a connection pool and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	store := &PostgresStore{pool: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			transcript TEXT NOT NULL,
			reply TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_turns_room_created ON turns(room, created_at DESC);
	`)
	return err
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SaveTurn stores one completed exchange.
func (s *PostgresStore) SaveTurn(ctx context.Context, room, transcript, reply string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO turns (id, room, transcript, reply)
		VALUES ($1, $2, $3, $4)
	`, ulid.Make().String(), room, transcript, reply)
	return err
}

// RecentTurns returns a room's most recent turns, oldest first.
func (s *PostgresStore) RecentTurns(ctx context.Context, room string, limit int) ([]Turn, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, room, transcript, reply, created_at
		FROM (
			SELECT id, room, transcript, reply, created_at
			FROM turns WHERE room = $1
			ORDER BY created_at DESC LIMIT $2
		) recent
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
