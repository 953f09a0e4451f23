// Package gametest drives a game engine from outside the game package the
// way the board's poll loop does, with a fake clock and queued dice.
package gametest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
	"github.com/thraizz/nfc-monopoly-go/internal/game/dice"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
)

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Table is an engine plus the controls a test needs to play it.
type Table struct {
	T      testing.TB
	Engine *game.Engine
	Clock  *Clock
	Dice   *dice.Scripted
}

// CardID is the bank card id Start registers for a player.
func CardID(player int) string {
	return fmt.Sprintf("card-%d", player)
}

// New builds an engine with a fake clock and scripted dice. Extra options
// are applied after the defaults.
func New(t testing.TB, settings game.Settings, opts ...game.Option) *Table {
	t.Helper()
	tb := &Table{T: t, Clock: NewClock(), Dice: dice.NewScripted(7)}
	opts = append([]game.Option{game.WithDiceSource(tb.Dice), game.WithClock(tb.Clock.Now)}, opts...)
	e, err := game.NewEngine(settings, zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	tb.Engine = e
	return tb
}

// Start walks splash, menu and setup, registering players by card tap.
func (tb *Table) Start(players int) {
	tb.T.Helper()
	tb.Press(game.Short(game.ButtonCenter))
	tb.Press(game.Short(game.ButtonCenter))
	for i := 2; i < players; i++ {
		tb.Press(game.Short(game.ButtonRight))
	}
	tb.Press(game.Short(game.ButtonCenter))
	for i := 1; i <= players; i++ {
		require.NoError(tb.T, tb.Engine.HandleInput(game.CardTap{
			Kind: game.CardPlayer,
			ID:   CardID(i),
			Name: fmt.Sprintf("P%d", i),
		}))
	}
	tb.Press(game.Short(game.ButtonCenter))
	require.Equal(tb.T, game.StateTurnStart, tb.Engine.State())
}

// Press feeds a button press and requires it to be accepted.
func (tb *Table) Press(in game.ButtonPress) {
	tb.T.Helper()
	require.NoError(tb.T, tb.Engine.HandleInput(in))
}

// Tap feeds a player card tap.
func (tb *Table) Tap(player int) error {
	return tb.Engine.HandleInput(game.CardTap{Kind: game.CardPlayer, ID: CardID(player)})
}

// Tick advances the clock and lets the engine's timers fire.
func (tb *Table) Tick(d time.Duration) {
	tb.T.Helper()
	tb.Clock.Advance(d)
	require.NoError(tb.T, tb.Engine.Tick())
}

// Roll throws d1+d2 for the current player and runs the timers until the
// landing tile has been resolved.
func (tb *Table) Roll(d1, d2 int) {
	tb.T.Helper()
	require.Equal(tb.T, game.StateTurnStart, tb.Engine.State())
	settings := tb.Engine.View().Settings
	tb.Dice.Push(d1, d2)
	tb.Press(game.Short(game.ButtonCenter))
	require.Equal(tb.T, game.StateRolling, tb.Engine.State())
	tb.Tick(settings.DiceSettle())
	if tb.Engine.State() == game.StateMoved {
		tb.Tick(settings.MoveDelay)
	}
}

// Player returns a copy of a player's record.
func (tb *Table) Player(id int) ledger.Player {
	tb.T.Helper()
	for _, p := range tb.Engine.View().Players {
		if p.ID == id {
			return p
		}
	}
	tb.T.Fatalf("no player %d", id)
	return ledger.Player{}
}
