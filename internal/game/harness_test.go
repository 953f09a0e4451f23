package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thraizz/nfc-monopoly-go/internal/game/dice"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// harness drives an engine the way the poll loop does, with a fake clock and scripted dice.
type harness struct {
	t      *testing.T
	e      *Engine
	clock  *fakeClock
	events []rules.Event
}

func newHarness(t *testing.T, settings Settings, opts ...Option) *harness {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithSeed(7), WithClock(clock.Now), WithGameID("test-game")}, opts...)
	e, err := NewEngine(settings, zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	h := &harness{t: t, e: e, clock: clock}
	e.Events().Subscribe(func(evt rules.Event) {
		h.events = append(h.events, evt)
	})
	return h
}

func cardID(player int) string {
	return fmt.Sprintf("card-%d", player)
}

// start walks splash, menu and setup and registers players by card tap.
func (h *harness) start(players int) {
	h.t.Helper()
	h.press(Short(ButtonCenter))
	h.press(Short(ButtonCenter))
	for i := 2; i < players; i++ {
		h.press(Short(ButtonRight))
	}
	h.press(Short(ButtonCenter))
	for i := 1; i <= players; i++ {
		require.NoError(h.t, h.e.HandleInput(CardTap{Kind: CardPlayer, ID: cardID(i), Name: fmt.Sprintf("P%d", i)}))
	}
	h.press(Short(ButtonCenter))
	require.Equal(h.t, StateTurnStart, h.e.State())
	h.events = nil
}

func (h *harness) press(in ButtonPress) {
	h.t.Helper()
	require.NoError(h.t, h.e.HandleInput(in))
}

func (h *harness) tapPlayer(id int) error {
	return h.e.HandleInput(CardTap{Kind: CardPlayer, ID: cardID(id)})
}

// dice scripts the next throws, two faces per roll.
func (h *harness) dice(faces ...int) {
	h.e.roller = dice.NewRollerWithSource(dice.NewFixed(faces...))
}

// roll throws d1+d2 for the current player and lets the timers run until
// the landing tile has been resolved.
func (h *harness) roll(d1, d2 int) {
	h.t.Helper()
	require.Equal(h.t, StateTurnStart, h.e.State())
	h.dice(d1, d2)
	h.press(Short(ButtonCenter))
	require.Equal(h.t, StateRolling, h.e.State())
	h.tick(h.e.game.Settings.DiceSettle())
	if h.e.State() == StateMoved {
		h.tick(h.e.game.Settings.MoveDelay)
	}
}

func (h *harness) tick(d time.Duration) {
	h.t.Helper()
	h.clock.Advance(d)
	require.NoError(h.t, h.e.Tick())
}

func (h *harness) player(id int) *ledger.Player {
	return h.e.game.Ledger.Player(id)
}

func (h *harness) own(owner int, tiles ...int) {
	h.t.Helper()
	for _, tile := range tiles {
		require.NoError(h.t, h.e.game.Ledger.Assign(tile, owner))
	}
}

func (h *harness) current() int {
	return h.e.game.Turns.CurrentPlayer()
}

func (h *harness) count(typ rules.EventType) int {
	n := 0
	for _, evt := range h.events {
		if evt.Type == typ {
			n++
		}
	}
	return n
}

func (h *harness) checksum() string {
	h.t.Helper()
	sum, err := h.e.Snapshot().ComputeChecksum()
	require.NoError(h.t, err)
	return sum.Hash
}
