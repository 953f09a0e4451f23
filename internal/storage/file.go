package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
)

const saveExt = ".save"

// FileStore keeps one file per game in a directory. Each file starts with a
// single tab-separated header line followed by the compressed snapshot.
type FileStore struct {
	dir string
}

// OpenFile opens (creating if needed) a save directory.
func OpenFile(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	clean := filepath.Clean(dir)
	if err := os.MkdirAll(clean, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	return &FileStore{dir: clean}, nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(gameID string) (string, error) {
	id := strings.TrimSpace(gameID)
	if id == "" {
		return "", fmt.Errorf("game id is required")
	}
	if id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid game id %q", gameID)
	}
	return filepath.Join(s.dir, id+saveExt), nil
}

// SaveGame writes the snapshot, replacing an earlier save atomically.
func (s *FileStore) SaveGame(ctx context.Context, snapshot *game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc, err := encode(snapshot)
	if err != nil {
		return err
	}
	path, err := s.path(enc.record.GameID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
		enc.record.Checksum, enc.record.State, enc.record.TurnNumber,
		enc.record.SavedAt.Format(time.RFC3339Nano))
	if _, err := w.Write(enc.data); err != nil {
		tmp.Close()
		return fmt.Errorf("write save: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename save: %w", err)
	}
	return nil
}

// LoadGame reads and verifies a save.
func (s *FileStore) LoadGame(ctx context.Context, gameID string) (*game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(gameID)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	header, body, ok := bytes.Cut(content, []byte{'\n'})
	if !ok {
		return nil, fmt.Errorf("%w: missing header", ErrCorrupt)
	}
	rec, err := parseHeader(strings.TrimSuffix(gameID, saveExt), string(header))
	if err != nil {
		return nil, err
	}
	return decode(body, rec.Checksum)
}

// ListGames returns every save, newest first. Unreadable files are skipped.
func (s *FileStore) ListGames(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read save directory: %w", err)
	}
	var records []Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, saveExt) {
			continue
		}
		header, err := readHeader(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		rec, err := parseHeader(strings.TrimSuffix(name, saveExt), header)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].SavedAt.After(records[j].SavedAt)
	})
	return records, nil
}

// DeleteGame removes a save.
func (s *FileStore) DeleteGame(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(gameID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove save: %w", err)
	}
	return nil
}

func readHeader(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

func parseHeader(gameID, header string) (Record, error) {
	fields := strings.Split(header, "\t")
	if len(fields) != 4 {
		return Record{}, fmt.Errorf("%w: malformed header", ErrCorrupt)
	}
	turn, err := strconv.Atoi(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("%w: turn number: %w", ErrCorrupt, err)
	}
	savedAt, err := time.Parse(time.RFC3339Nano, fields[3])
	if err != nil {
		return Record{}, fmt.Errorf("%w: saved at: %w", ErrCorrupt, err)
	}
	return Record{
		GameID:     gameID,
		Checksum:   fields[0],
		State:      fields[1],
		TurnNumber: turn,
		SavedAt:    savedAt,
	}, nil
}
