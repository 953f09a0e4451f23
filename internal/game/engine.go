package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/dice"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
	"github.com/thraizz/nfc-monopoly-go/internal/game/watchers"
)

// Option configures an Engine.
type Option func(*Engine)

// WithSeed seeds the dice and deck shuffles for a reproducible game.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.roller = dice.NewRoller(seed)
	}
}

// WithDiceSource drives dice and shuffles from a custom source.
func WithDiceSource(src dice.Source) Option {
	return func(e *Engine) {
		e.roller = dice.NewRollerWithSource(src)
	}
}

// WithClock replaces the wall clock used for timers.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithReplay records a snapshot after every accepted input.
func WithReplay(recorder *ReplayRecorder) Option {
	return func(e *Engine) {
		e.replay = recorder
	}
}

// WithGameID fixes the game id instead of generating one.
func WithGameID(id string) Option {
	return func(e *Engine) {
		e.gameID = id
	}
}

// Engine drives one game. It is not safe for concurrent use: a single poll
// loop feeds it inputs and ticks.
type Engine struct {
	logger   *zap.Logger
	game     *Game
	roller   *dice.Roller
	clock    func() time.Time
	bus      *rules.EventBus
	watchers *rules.WatcherRegistry
	outbox   []rules.Event
	replay   *ReplayRecorder
	gameID   string
}

// NewEngine creates an engine sitting on the splash screen.
func NewEngine(settings Settings, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:   logger,
		clock:    time.Now,
		bus:      rules.NewEventBus(),
		watchers: rules.NewWatcherRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.roller == nil {
		e.roller = dice.NewRoller(time.Now().UnixNano())
	}
	if e.gameID == "" {
		e.gameID = uuid.NewString()
	}
	e.game = newGame(e.gameID, settings, e.clock())
	e.watchers.Attach(e.bus)
	e.bus.SubscribeTyped(rules.EventTurnStarted, func(rules.Event) {
		e.watchers.ResetWatchers()
	})
	return e, nil
}

// GameID returns the id of the current game.
func (e *Engine) GameID() string {
	return e.game.ID
}

// State returns the current state machine node.
func (e *Engine) State() State {
	return e.game.State
}

// Events exposes the bus events are published on after each accepted action.
func (e *Engine) Events() *rules.EventBus {
	return e.bus
}

// Watchers exposes the registry of the running game's watchers.
func (e *Engine) Watchers() *rules.WatcherRegistry {
	return e.watchers
}

// Dirty reports whether anything changed since the renderer last drew.
func (e *Engine) Dirty() bool {
	return e.game.Dirty
}

// ClearDirty is called by the renderer after a successful draw.
func (e *Engine) ClearDirty() {
	e.game.Dirty = false
}

// TakeSaveRequest reports, once, that the players asked to save from the quick menu.
func (e *Engine) TakeSaveRequest() bool {
	requested := e.game.SaveRequested
	e.game.SaveRequested = false
	return requested
}

// HandleInput feeds one decoded input event to the state machine.
func (e *Engine) HandleInput(in Input) error {
	if in == nil {
		return fmt.Errorf("%w: nil input", ErrProtocol)
	}
	return e.transact(in.String(), func(g *Game) error {
		switch v := in.(type) {
		case ButtonPress:
			return e.press(g, v)
		case CardTap:
			return e.tap(g, v)
		default:
			return fmt.Errorf("%w: unsupported input %T", ErrProtocol, in)
		}
	})
}

// Tick advances timer-driven states: splash, dice settle, move display,
// auction countdown, input waits and flash expiry.
func (e *Engine) Tick() error {
	return e.transact("tick", func(g *Game) error {
		now := e.clock()
		if g.Flash != "" && !now.Before(g.FlashUntil) {
			g.Flash = ""
			e.touch(g)
		}
		elapsed := now.Sub(g.StateSince)
		switch g.State {
		case StateSplash:
			if elapsed >= g.Settings.SplashDuration {
				e.setState(g, StateMenu)
			}
		case StateRolling:
			if elapsed >= g.Settings.DiceSettle() {
				e.rollAndMove(g)
			}
		case StateMoved:
			if elapsed >= g.Settings.MoveDelay {
				e.resolveTile(g, g.Current(), rentNormal)
			}
		case StateAuction:
			e.tickAuction(g, now)
		case StateWaitCard:
			if !now.Before(g.Deadline) {
				e.timeout(g)
			}
		}
		return nil
	})
}

// transact runs fn against the game context. The context is bookmarked first
// and restored if fn returns an error or panics; events are only published
// once fn succeeds.
func (e *Engine) transact(action string, fn func(g *Game) error) (err error) {
	bookmark := e.game.Clone()
	e.outbox = e.outbox[:0]
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("recovered protocol violation",
				zap.String("game_id", bookmark.ID),
				zap.String("action", action),
				zap.String("state", bookmark.State.String()),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("%w: %v", ErrProtocol, r)
		}
		if err != nil {
			e.game = bookmark
			e.outbox = e.outbox[:0]
			if !errors.Is(err, ErrProtocol) {
				e.logger.Warn("action rejected",
					zap.String("game_id", bookmark.ID),
					zap.String("action", action),
					zap.String("state", bookmark.State.String()),
					zap.Error(err),
				)
			}
			return
		}
		e.commit(bookmark)
	}()
	return fn(e.game)
}

func (e *Engine) commit(before *Game) {
	events := append([]rules.Event(nil), e.outbox...)
	e.outbox = e.outbox[:0]
	e.bus.PublishBatch(events)

	if e.replay != nil && (len(events) > 0 || before.State != e.game.State) {
		e.replay.RecordState(e.game.ID, e.Snapshot())
	}
}

func (e *Engine) emit(g *Game, evt rules.Event) {
	evt.ID = uuid.NewString()
	evt.GameID = g.ID
	evt.Timestamp = e.clock()
	e.outbox = append(e.outbox, evt)
}

func (e *Engine) touch(g *Game) {
	g.Dirty = true
}

func (e *Engine) setState(g *Game, next State) {
	e.touch(g)
	if g.State == next {
		g.StateSince = e.clock()
		return
	}
	e.logger.Debug("state transition",
		zap.String("game_id", g.ID),
		zap.String("from", g.State.String()),
		zap.String("to", next.String()),
	)
	evt := rules.NewEvent(rules.EventStateChanged, e.currentID(g))
	evt.Data = next.String()
	evt.Metadata["from"] = g.State.String()
	e.emit(g, evt)

	g.State = next
	g.StateSince = e.clock()
}

func (e *Engine) flash(g *Game, msg string) {
	g.Flash = msg
	g.FlashUntil = e.clock().Add(g.Settings.FlashDuration)
	e.touch(g)
}

func (e *Engine) currentID(g *Game) int {
	if g.Turns == nil {
		return 0
	}
	return g.Turns.CurrentPlayer()
}

// View is the read-only render snapshot.
type View struct {
	GameID         string
	State          State
	Flash          string
	TurnNumber     int
	CurrentPlayer  int
	Dice           dice.Roll
	FreeParking    int
	Tx             Transaction
	Debts          []Debt
	Trade          *Trade
	Auction        *Auction
	TimeLeft       time.Duration
	Players        []ledger.Player
	Properties     [board.Size]ledger.Property
	HousesLeft     int
	HotelsLeft     int
	Winner         int
	Setup          Setup
	MenuCursor     MenuItem
	QuickCursor    QuickItem
	SettingsCursor SettingItem
	Settings       Settings
	ProgramKind    CardKind
	ProgramValue   int
	Selected       int
	CanResume      bool
}

// View copies out everything a renderer needs.
func (e *Engine) View() View {
	g := e.game.Clone()
	v := View{
		GameID:         g.ID,
		State:          g.State,
		Flash:          g.Flash,
		CurrentPlayer:  e.currentID(g),
		Dice:           g.Dice,
		FreeParking:    g.FreeParking,
		Tx:             g.Tx,
		Debts:          g.Debts,
		Trade:          g.Trade,
		Auction:        g.Auction,
		Properties:     g.Ledger.Props,
		HousesLeft:     g.Ledger.HousesLeft,
		HotelsLeft:     g.Ledger.HotelsLeft,
		Winner:         g.Winner,
		Setup:          g.Setup,
		MenuCursor:     g.MenuCursor,
		QuickCursor:    g.QuickCursor,
		SettingsCursor: g.SettingsCursor,
		Settings:       g.Settings,
		ProgramKind:    g.ProgramKind,
		ProgramValue:   g.ProgramValue,
		Selected:       g.Selected,
		CanResume:      g.HasSuspended,
	}
	if g.Turns != nil {
		v.TurnNumber = g.Turns.TurnNumber()
	}
	if !g.Deadline.IsZero() && (g.State == StateAuction || g.State == StateWaitCard) {
		if left := g.Deadline.Sub(e.clock()); left > 0 {
			v.TimeLeft = left
		}
	}
	for _, p := range g.Ledger.Players {
		v.Players = append(v.Players, *p)
	}
	return v
}

// Standings summarises the game from the watchers.
type Standings struct {
	Winner       int
	Placings     []int
	RentPaid     map[int]int
	RentReceived map[int]int
	Salaries     map[int]int
	JailVisits   map[int]int
}

// Standings reads the game-long tallies kept by the watchers.
func (e *Engine) Standings() Standings {
	s := Standings{
		RentPaid:     make(map[int]int),
		RentReceived: make(map[int]int),
		Salaries:     make(map[int]int),
		JailVisits:   make(map[int]int),
	}
	ids := make([]int, 0, len(e.game.Ledger.Players))
	for _, p := range e.game.Ledger.Players {
		ids = append(ids, p.ID)
	}
	for _, w := range e.watchers.GetAllWatchers() {
		switch tw := w.(type) {
		case *watchers.StandingsWatcher:
			s.Winner = tw.Winner()
			s.Placings = tw.Placings()
		case *watchers.RentWatcher:
			for _, id := range ids {
				s.RentPaid[id] = tw.Paid(id)
				s.RentReceived[id] = tw.Received(id)
			}
		case *watchers.SalaryWatcher:
			for _, id := range ids {
				s.Salaries[id] = tw.Count(id)
			}
		case *watchers.JailWatcher:
			s.JailVisits[tw.GetPlayerID()] = tw.Visits()
		}
	}
	return s
}
