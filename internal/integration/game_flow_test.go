package integration

import (
	"testing"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
	"github.com/thraizz/nfc-monopoly-go/internal/game/gametest"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// playOpening runs five turns of a three-player game:
//
//	P1 buys Oriental Avenue, P2 pays it rent, P3 buys Baltic Avenue,
//	P1 buys St. James Place, P2 throws doubles onto it, pays rent,
//	rolls again and buys New York Avenue.
func playOpening(t *testing.T, tb *gametest.Table) {
	t.Helper()
	center := game.Short(game.ButtonCenter)

	tb.Roll(2, 4)
	tb.Press(center)

	tb.Roll(1, 5)

	tb.Roll(1, 2)
	tb.Press(center)

	tb.Roll(4, 6)
	tb.Press(center)

	tb.Roll(5, 5)
	if got := tb.Engine.View().CurrentPlayer; got != 2 {
		t.Fatalf("doubles should keep the turn with player 2, got %d", got)
	}
	tb.Roll(1, 2)
	tb.Press(center)
}

func TestGameFlow_OpeningTurns(t *testing.T) {
	tb := gametest.New(t, game.DefaultSettings())
	tb.Start(3)
	playOpening(t, tb)

	v := tb.Engine.View()
	if v.State != game.StateTurnStart {
		t.Fatalf("expected TURN_START, got %s", v.State)
	}
	if v.CurrentPlayer != 3 || v.TurnNumber != 6 {
		t.Fatalf("expected player 3 on turn 6, got player %d on turn %d", v.CurrentPlayer, v.TurnNumber)
	}

	balances := map[int]int{1: 1240, 2: 1280, 3: 1440}
	for id, want := range balances {
		if got := tb.Player(id).Balance; got != want {
			t.Errorf("player %d balance: got %d, want %d", id, got, want)
		}
	}

	owners := map[int]int{6: 1, 16: 1, 3: 3, 19: 2}
	for tile, want := range owners {
		if got := v.Properties[tile].Owner; got != want {
			t.Errorf("tile %d owner: got %d, want %d", tile, got, want)
		}
	}
	if got := tb.Player(2).Position; got != 19 {
		t.Errorf("player 2 should stand on New York Avenue, got %d", got)
	}
}

func TestWatcherIntegration_Standings(t *testing.T) {
	tb := gametest.New(t, game.DefaultSettings())
	tb.Start(3)
	playOpening(t, tb)

	st := tb.Engine.Standings()
	if st.RentPaid[2] != 20 {
		t.Errorf("player 2 paid %d rent, want 20", st.RentPaid[2])
	}
	if st.RentReceived[1] != 20 {
		t.Errorf("player 1 received %d rent, want 20", st.RentReceived[1])
	}
	if st.RentPaid[1] != 0 || st.RentPaid[3] != 0 {
		t.Errorf("unexpected rent tallies %v", st.RentPaid)
	}
	for id := 1; id <= 3; id++ {
		if st.Salaries[id] != 0 || st.JailVisits[id] != 0 {
			t.Errorf("player %d: salaries %d jail visits %d, want none", id, st.Salaries[id], st.JailVisits[id])
		}
	}
	if st.Winner != 0 || len(st.Placings) != 0 {
		t.Errorf("game still running, got winner %d placings %v", st.Winner, st.Placings)
	}

	watchers := tb.Engine.Watchers().GetAllWatchers()
	// rent, salary, standings and one jail watcher per player
	if len(watchers) != 6 {
		t.Fatalf("expected 6 watchers, got %d", len(watchers))
	}
	if tb.Engine.Watchers().GetWatcher("2_JailWatcher") == nil {
		t.Error("missing jail watcher for player 2")
	}
}

func TestWatcherIntegration_ExternalSubscribers(t *testing.T) {
	tb := gametest.New(t, game.DefaultSettings())

	counts := make(map[rules.EventType]int)
	var bought []int
	tb.Engine.Events().Subscribe(func(evt rules.Event) {
		counts[evt.Type]++
	})
	tb.Engine.Events().SubscribeTyped(rules.EventPropertyBought, func(evt rules.Event) {
		bought = append(bought, evt.Tile)
	})

	tb.Start(3)
	playOpening(t, tb)

	if counts[rules.EventGameStarted] != 1 {
		t.Errorf("GAME_STARTED seen %d times", counts[rules.EventGameStarted])
	}
	if counts[rules.EventDiceRolled] != 6 {
		t.Errorf("DICE_ROLLED seen %d times, want 6", counts[rules.EventDiceRolled])
	}
	if counts[rules.EventRentPaid] != 2 {
		t.Errorf("RENT_PAID seen %d times, want 2", counts[rules.EventRentPaid])
	}
	want := []int{6, 3, 16, 19}
	if len(bought) != len(want) {
		t.Fatalf("bought %v, want %v", bought, want)
	}
	for i := range want {
		if bought[i] != want[i] {
			t.Fatalf("bought %v, want %v", bought, want)
		}
	}
}

func TestGameFlow_RejectedActionsLeaveNoTrace(t *testing.T) {
	tb := gametest.New(t, game.DefaultSettings())
	tb.Start(2)
	tb.Roll(2, 4)

	before, err := tb.Engine.Snapshot().ComputeChecksum()
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	rejected := []error{
		tb.Engine.Buy(2),
		tb.Engine.Build(1, 6),
		tb.Engine.Mortgage(2, 6),
		tb.Engine.EndTurn(2),
		tb.Engine.HandleInput(game.CardTap{Kind: game.CardProperty, ID: "forty"}),
	}
	for i, err := range rejected {
		if err == nil {
			t.Errorf("action %d should have been rejected", i)
		}
	}
	after, err := tb.Engine.Snapshot().ComputeChecksum()
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	if before.Hash != after.Hash {
		t.Fatal("rejected actions changed the game")
	}
}
