package rules

import (
	"errors"
	"fmt"
)

// ErrNoSeats is returned when a turn manager is built without players.
var ErrNoSeats = errors.New("turn order needs at least one seat")

// TurnManager tracks seat order, the player whose turn it is and the turn counter.
type TurnManager struct {
	seats      []int
	current    int
	turnNumber int
}

// NewTurnManager creates a manager for players seated in the given order,
// starting at turn 1 with the first seat.
func NewTurnManager(seats []int) (*TurnManager, error) {
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}
	return &TurnManager{
		seats:      append([]int(nil), seats...),
		turnNumber: 1,
	}, nil
}

// RestoreTurnManager rebuilds a manager from saved counters.
func RestoreTurnManager(seats []int, currentPlayer, turnNumber int) (*TurnManager, error) {
	tm, err := NewTurnManager(seats)
	if err != nil {
		return nil, err
	}
	idx := tm.seatOf(currentPlayer)
	if idx < 0 {
		return nil, fmt.Errorf("player %d is not seated", currentPlayer)
	}
	if turnNumber < 1 {
		return nil, fmt.Errorf("invalid turn number %d", turnNumber)
	}
	tm.current = idx
	tm.turnNumber = turnNumber
	return tm, nil
}

// CurrentPlayer returns the id of the player whose turn it is.
func (tm *TurnManager) CurrentPlayer() int {
	return tm.seats[tm.current]
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Seats returns the seating order.
func (tm *TurnManager) Seats() []int {
	return append([]int(nil), tm.seats...)
}

// Advance passes the turn to the next seat whose player is still alive and
// increments the turn counter. Bankrupt seats are skipped. When no other seat
// is alive the current player keeps the turn.
func (tm *TurnManager) Advance(alive func(player int) bool) int {
	for step := 1; step <= len(tm.seats); step++ {
		idx := (tm.current + step) % len(tm.seats)
		if alive(tm.seats[idx]) {
			tm.current = idx
			break
		}
	}
	tm.turnNumber++
	return tm.CurrentPlayer()
}

// NextAfter returns the first living player seated after player, without advancing.
func (tm *TurnManager) NextAfter(player int, alive func(player int) bool) int {
	start := tm.seatOf(player)
	if start < 0 {
		return player
	}
	for step := 1; step <= len(tm.seats); step++ {
		idx := (start + step) % len(tm.seats)
		if alive(tm.seats[idx]) {
			return tm.seats[idx]
		}
	}
	return player
}

// Clone returns an independent copy.
func (tm *TurnManager) Clone() *TurnManager {
	c := *tm
	c.seats = append([]int(nil), tm.seats...)
	return &c
}

func (tm *TurnManager) seatOf(player int) int {
	for i, id := range tm.seats {
		if id == player {
			return i
		}
	}
	return -1
}
