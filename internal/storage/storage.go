// Package storage persists game snapshots so a board can be powered off and
// resumed. Every backend stores the encoded snapshot together with its
// checksum and refuses to hand back a save whose checksum no longer matches.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
)

var (
	// ErrNotFound is returned when no save exists for a game id.
	ErrNotFound = errors.New("save not found")
	// ErrCorrupt is returned when a save fails its checksum.
	ErrCorrupt = errors.New("save is corrupt")
)

// Record describes a stored save without decoding it.
type Record struct {
	GameID     string
	State      string
	TurnNumber int
	Checksum   string
	SavedAt    time.Time
}

// Store saves and loads snapshots keyed by game id. Saving an id that
// already exists replaces the previous save.
type Store interface {
	SaveGame(ctx context.Context, snapshot *game.Snapshot) error
	LoadGame(ctx context.Context, gameID string) (*game.Snapshot, error)
	ListGames(ctx context.Context) ([]Record, error)
	DeleteGame(ctx context.Context, gameID string) error
	Close() error
}

// Drivers understood by Open.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds the store selected by driver. target is a directory for the
// file driver, a database path for sqlite and a connection string for postgres.
func Open(ctx context.Context, driver, target string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch driver {
	case DriverFile:
		store, err = OpenFile(target)
	case DriverSQLite:
		store, err = OpenSQLite(target)
	case DriverPostgres:
		store, err = OpenPostgres(ctx, target)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// encoded is one snapshot ready to be written by a backend.
type encoded struct {
	record Record
	data   []byte
}

func encode(snapshot *game.Snapshot) (*encoded, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	gameID := strings.TrimSpace(snapshot.GameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}
	sum, err := snapshot.ComputeChecksum()
	if err != nil {
		return nil, err
	}
	raw, err := snapshot.SerializeToBytes()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}

	savedAt := snapshot.Timestamp.UTC()
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	turn := snapshot.TurnNumber
	return &encoded{
		record: Record{
			GameID:     gameID,
			State:      snapshot.State.String(),
			TurnNumber: turn,
			Checksum:   sum.Hash,
			SavedAt:    savedAt,
		},
		data: buf.Bytes(),
	}, nil
}

func decode(data []byte, checksum string) (*game.Snapshot, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	snapshot, err := game.DeserializeFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	ok, err := snapshot.VerifyChecksum(&game.SnapshotChecksum{Hash: checksum})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: checksum mismatch for %s", ErrCorrupt, snapshot.GameID)
	}
	return snapshot, nil
}
