// Package session keeps the live games of one board process and saves them
// through a storage backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
	"github.com/thraizz/nfc-monopoly-go/internal/storage"
)

// ErrSaveFailed wraps every error from the storage backend.
var ErrSaveFailed = errors.New("save failed")

// Status is the lifecycle of a session as seen by the manager.
type Status int

const (
	StatusLobby Status = iota
	StatusPlaying
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusLobby:
		return "LOBBY"
	case StatusPlaying:
		return "PLAYING"
	case StatusFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Session is one engine plus its save bookkeeping. The engine is not safe for
// concurrent use, so every call goes through the session lock.
type Session struct {
	ID         string
	CreateTime time.Time

	mu        sync.Mutex
	engine    *game.Engine
	lastTurn  int
	lastSaved time.Time
	saves     int
	finished  bool
}

// Info is a consistent copy of a session's bookkeeping.
type Info struct {
	ID         string
	Status     Status
	State      game.State
	TurnNumber int
	Saves      int
	LastSaved  time.Time
	CreateTime time.Time
}

// Info returns the session's bookkeeping.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.engine.View()
	return Info{
		ID:         s.ID,
		Status:     status(v),
		State:      v.State,
		TurnNumber: v.TurnNumber,
		Saves:      s.saves,
		LastSaved:  s.lastSaved,
		CreateTime: s.CreateTime,
	}
}

func status(v game.View) Status {
	switch {
	case v.State == game.StateGameOver:
		return StatusFinished
	case v.TurnNumber > 0:
		return StatusPlaying
	default:
		return StatusLobby
	}
}

// View returns what the renderer draws.
func (s *Session) View() game.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.View()
}

// Standings returns the game-long tallies.
func (s *Session) Standings() game.Standings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Standings()
}

// Render calls draw with the current view when the engine has something new
// to show, then clears the dirty flag. It reports whether draw ran.
func (s *Session) Render(draw func(game.View)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.Dirty() {
		return false
	}
	draw(s.engine.View())
	s.engine.ClearDirty()
	return true
}

// Option configures a Manager.
type Option func(*Manager)

// WithAutosave saves a game at every turn boundary and when it ends.
func WithAutosave(enabled bool) Option {
	return func(m *Manager) {
		m.autosave = enabled
	}
}

// WithReplay records every game and writes the replay when it ends.
func WithReplay(recorder *game.ReplayRecorder) Option {
	return func(m *Manager) {
		m.replay = recorder
	}
}

// WithEngineOptions adds options to every engine the manager builds.
func WithEngineOptions(opts ...game.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// WithClock replaces the clock used for session bookkeeping.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// Manager manages live game sessions.
type Manager struct {
	sessions   map[string]*Session
	mu         sync.RWMutex
	store      storage.Store
	settings   game.Settings
	logger     *zap.Logger
	autosave   bool
	replay     *game.ReplayRecorder
	engineOpts []game.Option
	clock      func() time.Time
}

// NewManager creates a session manager. store may be nil, in which case
// save requests are logged and dropped.
func NewManager(store storage.Store, settings game.Settings, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		settings: settings,
		logger:   logger,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) newEngine(id string) (*game.Engine, error) {
	opts := []game.Option{game.WithGameID(id)}
	if m.replay != nil {
		opts = append(opts, game.WithReplay(m.replay))
	}
	opts = append(opts, m.engineOpts...)
	return game.NewEngine(m.settings, m.logger.With(zap.String("game_id", id)), opts...)
}

func (m *Manager) add(id string, engine *game.Engine) *Session {
	sess := &Session{
		ID:         id,
		CreateTime: m.clock(),
		engine:     engine,
		lastTurn:   engine.View().TurnNumber,
	}
	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	return sess
}

// Create starts a new session sitting on the splash screen.
func (m *Manager) Create() (*Session, error) {
	id := uuid.New().String()
	engine, err := m.newEngine(id)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	sess := m.add(id, engine)
	m.logger.Info("session created", zap.String("game_id", id))
	return sess, nil
}

// Resume loads a saved game into a new session. A game that is already live
// is returned as is.
func (m *Manager) Resume(ctx context.Context, gameID string) (*Session, error) {
	if sess, ok := m.Get(gameID); ok {
		return sess, nil
	}
	if m.store == nil {
		return nil, fmt.Errorf("no storage configured")
	}
	snapshot, err := m.store.LoadGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	engine, err := m.newEngine(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := engine.Restore(snapshot); err != nil {
		return nil, fmt.Errorf("failed to restore game %s: %w", gameID, err)
	}
	sess := m.add(gameID, engine)
	m.logger.Info("session resumed",
		zap.String("game_id", gameID),
		zap.String("state", snapshot.State.String()),
		zap.Int("turn", snapshot.TurnNumber),
	)
	return sess, nil
}

// ResumeLatest resumes the most recently saved game that has not ended.
func (m *Manager) ResumeLatest(ctx context.Context) (*Session, error) {
	if m.store == nil {
		return nil, fmt.Errorf("no storage configured")
	}
	records, err := m.store.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	for _, rec := range records {
		if rec.State == game.StateGameOver.String() {
			continue
		}
		return m.Resume(ctx, rec.GameID)
	}
	return nil, storage.ErrNotFound
}

// Get retrieves a session by id.
func (m *Manager) Get(gameID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[gameID]
	return sess, ok
}

// Remove drops a session without saving it.
func (m *Manager) Remove(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[gameID]; ok {
		delete(m.sessions, gameID)
		m.logger.Info("session removed", zap.String("game_id", gameID))
	}
}

// All returns every session, oldest first.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreateTime.Equal(out[j].CreateTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreateTime.Before(out[j].CreateTime)
	})
	return out
}

// ActiveCount returns the number of sessions whose game has not ended.
func (m *Manager) ActiveCount() int {
	count := 0
	for _, sess := range m.All() {
		if sess.Info().Status != StatusFinished {
			count++
		}
	}
	return count
}

// HandleInput feeds one input to a session and runs the save bookkeeping.
// A rejected input is returned to the caller; the game is unchanged.
func (m *Manager) HandleInput(ctx context.Context, gameID string, in game.Input) error {
	sess, ok := m.Get(gameID)
	if !ok {
		return fmt.Errorf("session %s not found", gameID)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	inputErr := sess.engine.HandleInput(in)
	if err := m.afterStepLocked(ctx, sess); err != nil {
		return err
	}
	return inputErr
}

// Do runs one of the engine's direct action calls (Buy, Build, Bid...) with
// exclusive access and then runs the save bookkeeping.
func (m *Manager) Do(ctx context.Context, gameID string, action func(e *game.Engine) error) error {
	sess, ok := m.Get(gameID)
	if !ok {
		return fmt.Errorf("session %s not found", gameID)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	actionErr := action(sess.engine)
	if err := m.afterStepLocked(ctx, sess); err != nil {
		return err
	}
	return actionErr
}

// Tick advances the timers of every session.
func (m *Manager) Tick(ctx context.Context) error {
	for _, sess := range m.All() {
		if err := m.tickSession(ctx, sess); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) tickSession(ctx context.Context, sess *Session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.engine.Tick(); err != nil {
		m.logger.Error("tick failed", zap.String("game_id", sess.ID), zap.Error(err))
	}
	return m.afterStepLocked(ctx, sess)
}

// afterStepLocked saves on an explicit request, at turn boundaries when
// autosave is on and once when the game ends.
func (m *Manager) afterStepLocked(ctx context.Context, sess *Session) error {
	view := sess.engine.View()
	reason := ""
	if sess.engine.TakeSaveRequest() {
		reason = "requested"
	}
	if m.autosave && view.TurnNumber != sess.lastTurn && view.TurnNumber > 0 {
		if reason == "" {
			reason = "turn"
		}
	}
	sess.lastTurn = view.TurnNumber

	if view.State == game.StateGameOver && !sess.finished {
		sess.finished = true
		m.logStandings(sess.ID, sess.engine.Standings())
		if m.replay != nil {
			if err := m.replay.SaveReplay(sess.ID); err != nil {
				m.logger.Warn("failed to save replay", zap.String("game_id", sess.ID), zap.Error(err))
			}
		}
		if m.autosave && reason == "" {
			reason = "game over"
		}
	}
	if reason == "" {
		return nil
	}
	return m.saveLocked(ctx, sess, reason)
}

// Save writes a session to the store now.
func (m *Manager) Save(ctx context.Context, gameID string) error {
	sess, ok := m.Get(gameID)
	if !ok {
		return fmt.Errorf("session %s not found", gameID)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return m.saveLocked(ctx, sess, "manual")
}

func (m *Manager) saveLocked(ctx context.Context, sess *Session, reason string) error {
	if m.store == nil {
		m.logger.Warn("save dropped, no storage configured",
			zap.String("game_id", sess.ID),
			zap.String("reason", reason),
		)
		return nil
	}
	snapshot := sess.engine.Snapshot()
	if err := m.store.SaveGame(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: game %s: %w", ErrSaveFailed, sess.ID, err)
	}
	sess.saves++
	sess.lastSaved = m.clock()
	m.logger.Info("game saved",
		zap.String("game_id", sess.ID),
		zap.String("reason", reason),
		zap.String("state", snapshot.State.String()),
		zap.Int("turn", snapshot.TurnNumber),
	)
	return nil
}

func (m *Manager) logStandings(gameID string, s game.Standings) {
	fields := []zap.Field{
		zap.String("game_id", gameID),
		zap.Int("winner", s.Winner),
		zap.Ints("placings", s.Placings),
	}
	for _, id := range s.Placings {
		fields = append(fields,
			zap.Int(fmt.Sprintf("player_%d_rent_paid", id), s.RentPaid[id]),
			zap.Int(fmt.Sprintf("player_%d_rent_received", id), s.RentReceived[id]),
			zap.Int(fmt.Sprintf("player_%d_salaries", id), s.Salaries[id]),
			zap.Int(fmt.Sprintf("player_%d_jail_visits", id), s.JailVisits[id]),
		)
	}
	m.logger.Info("final standings", fields...)
}

// Close saves every unfinished session when autosave is on, then closes the store.
func (m *Manager) Close(ctx context.Context) error {
	var firstErr error
	if m.autosave {
		for _, sess := range m.All() {
			sess.mu.Lock()
			if !sess.finished && sess.engine.View().TurnNumber > 0 {
				if err := m.saveLocked(ctx, sess, "shutdown"); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			sess.mu.Unlock()
		}
	}
	if m.store != nil {
		if err := m.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
