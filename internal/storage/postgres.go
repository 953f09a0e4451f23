package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS monopoly_saves (
	game_id     TEXT PRIMARY KEY,
	state       TEXT NOT NULL,
	turn_number INTEGER NOT NULL,
	checksum    TEXT NOT NULL,
	saved_at    TIMESTAMPTZ NOT NULL,
	data        BYTEA NOT NULL
)`

// PostgresStore persists saves in PostgreSQL, for boards that sync to a
// shared server.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and creates the saves table.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("storage dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// SaveGame upserts a save.
func (s *PostgresStore) SaveGame(ctx context.Context, snapshot *game.Snapshot) error {
	enc, err := encode(snapshot)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO monopoly_saves (game_id, state, turn_number, checksum, saved_at, data)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (game_id) DO UPDATE SET
	state = EXCLUDED.state,
	turn_number = EXCLUDED.turn_number,
	checksum = EXCLUDED.checksum,
	saved_at = EXCLUDED.saved_at,
	data = EXCLUDED.data`,
		enc.record.GameID,
		enc.record.State,
		enc.record.TurnNumber,
		enc.record.Checksum,
		enc.record.SavedAt,
		enc.data,
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

// LoadGame reads and verifies a save.
func (s *PostgresStore) LoadGame(ctx context.Context, gameID string) (*game.Snapshot, error) {
	var (
		checksum string
		data     []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT checksum, data FROM monopoly_saves WHERE game_id = $1`,
		strings.TrimSpace(gameID),
	).Scan(&checksum, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	return decode(data, checksum)
}

// ListGames returns every save, newest first.
func (s *PostgresStore) ListGames(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT game_id, state, turn_number, checksum, saved_at FROM monopoly_saves ORDER BY saved_at DESC, game_id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.GameID, &rec.State, &rec.TurnNumber, &rec.Checksum, &rec.SavedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		rec.SavedAt = rec.SavedAt.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return records, nil
}

// DeleteGame removes a save.
func (s *PostgresStore) DeleteGame(ctx context.Context, gameID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM monopoly_saves WHERE game_id = $1`, strings.TrimSpace(gameID))
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
