package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS saves (
	game_id     TEXT PRIMARY KEY,
	state       TEXT NOT NULL,
	turn_number INTEGER NOT NULL,
	checksum    TEXT NOT NULL,
	saved_at    INTEGER NOT NULL,
	data        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS saves_saved_at ON saves (saved_at DESC);
`

// SQLiteStore persists saves in a SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens a SQLite save store and creates its table.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveGame upserts a save.
func (s *SQLiteStore) SaveGame(ctx context.Context, snapshot *game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	enc, err := encode(snapshot)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO saves (game_id, state, turn_number, checksum, saved_at, data)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(game_id) DO UPDATE SET
	state = excluded.state,
	turn_number = excluded.turn_number,
	checksum = excluded.checksum,
	saved_at = excluded.saved_at,
	data = excluded.data`,
		enc.record.GameID,
		enc.record.State,
		enc.record.TurnNumber,
		enc.record.Checksum,
		toMillis(enc.record.SavedAt),
		enc.data,
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

// LoadGame reads and verifies a save.
func (s *SQLiteStore) LoadGame(ctx context.Context, gameID string) (*game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	var (
		checksum string
		data     []byte
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT checksum, data FROM saves WHERE game_id = ?`,
		strings.TrimSpace(gameID),
	).Scan(&checksum, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	return decode(data, checksum)
}

// ListGames returns every save, newest first.
func (s *SQLiteStore) ListGames(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT game_id, state, turn_number, checksum, saved_at FROM saves ORDER BY saved_at DESC, game_id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			savedAt int64
		)
		if err := rows.Scan(&rec.GameID, &rec.State, &rec.TurnNumber, &rec.Checksum, &savedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		rec.SavedAt = fromMillis(savedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return records, nil
}

// DeleteGame removes a save.
func (s *SQLiteStore) DeleteGame(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM saves WHERE game_id = ?`, strings.TrimSpace(gameID))
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
