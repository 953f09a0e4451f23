package watchers

import (
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// RentWatcher tallies rent paid and received per player.
type RentWatcher struct {
	*rules.BaseWatcher
	paid     map[int]int
	received map[int]int
}

// NewRentWatcher creates a new rent watcher.
func NewRentWatcher() *RentWatcher {
	return &RentWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, "RentWatcher"),
		paid:        make(map[int]int),
		received:    make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *RentWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventRentPaid || event.Amount <= 0 {
		return
	}
	w.paid[event.PlayerID] += event.Amount
	if event.TargetID != 0 {
		w.received[event.TargetID] += event.Amount
	}
	w.SetCondition(true)
}

// Paid returns the total rent a player has paid.
func (w *RentWatcher) Paid(playerID int) int {
	return w.paid[playerID]
}

// Received returns the total rent a player has collected.
func (w *RentWatcher) Received(playerID int) int {
	return w.received[playerID]
}

// SalaryWatcher counts GO salaries collected per player.
type SalaryWatcher struct {
	*rules.BaseWatcher
	passes map[int]int
}

// NewSalaryWatcher creates a new salary watcher.
func NewSalaryWatcher() *SalaryWatcher {
	return &SalaryWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, "SalaryWatcher"),
		passes:      make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *SalaryWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventPassedGo {
		return
	}
	w.passes[event.PlayerID]++
	w.SetCondition(true)
}

// Count returns how many salaries a player has collected.
func (w *SalaryWatcher) Count(playerID int) int {
	return w.passes[playerID]
}

// JailWatcher counts jail entries for one player.
// Its condition is met when the player went to jail during the current turn.
type JailWatcher struct {
	*rules.BaseWatcher
	visits int
}

// NewJailWatcher creates a jail watcher bound to a player.
func NewJailWatcher(playerID int) *JailWatcher {
	w := &JailWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopePlayer, "JailWatcher"),
	}
	w.SetPlayerID(playerID)
	return w
}

// Watch implements the Watcher interface.
func (w *JailWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventJailed || event.PlayerID != w.GetPlayerID() {
		return
	}
	w.visits++
	w.SetCondition(true)
}

// Visits returns how many times the player has been jailed.
func (w *JailWatcher) Visits() int {
	return w.visits
}

// StandingsWatcher records elimination order and the winner.
type StandingsWatcher struct {
	*rules.BaseWatcher
	eliminated []int
	winner     int
}

// NewStandingsWatcher creates a new standings watcher.
func NewStandingsWatcher() *StandingsWatcher {
	return &StandingsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, "StandingsWatcher"),
	}
}

// Watch implements the Watcher interface.
func (w *StandingsWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventBankrupt:
		w.eliminated = append(w.eliminated, event.PlayerID)
	case rules.EventGameOver:
		w.winner = event.PlayerID
		w.SetCondition(true)
	}
}

// Reset keeps the game-long record; only a finished game has its condition met.
func (w *StandingsWatcher) Reset() {}

// Eliminated returns player ids in the order they went bankrupt.
func (w *StandingsWatcher) Eliminated() []int {
	return append([]int(nil), w.eliminated...)
}

// Winner returns the winning player, or 0 while the game is running.
func (w *StandingsWatcher) Winner() int {
	return w.winner
}

// Placings lists players from winner to first eliminated.
func (w *StandingsWatcher) Placings() []int {
	out := make([]int, 0, len(w.eliminated)+1)
	if w.winner != 0 {
		out = append(out, w.winner)
	}
	for i := len(w.eliminated) - 1; i >= 0; i-- {
		out = append(out, w.eliminated[i])
	}
	return out
}

// Standard builds the watcher set every game registers, including one jail watcher per player.
func Standard(players []int) []rules.Watcher {
	ws := []rules.Watcher{NewRentWatcher(), NewSalaryWatcher(), NewStandingsWatcher()}
	for _, id := range players {
		ws = append(ws, NewJailWatcher(id))
	}
	return ws
}
