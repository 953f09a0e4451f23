package game

import (
	"fmt"
	"time"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/deck"
	"github.com/thraizz/nfc-monopoly-go/internal/game/dice"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// SnapshotVersion is bumped whenever the Snapshot layout changes.
const SnapshotVersion = 2

// Snapshot is the flat, serialisable form of a game handed to save/load
// collaborators. It holds no pointers into the live engine.
type Snapshot struct {
	Version    int
	GameID     string
	State      State
	Players    []ledger.Player
	Properties [board.Size]ledger.Property
	HousesLeft int
	HotelsLeft int

	ChanceOrder    []int
	ChancePos      int
	CommunityOrder []int
	CommunityPos   int

	Seats         []int
	CurrentPlayer int
	TurnNumber    int
	Dice          dice.Roll
	Rolled        bool
	FreeParking   int

	Tx            Transaction
	Debts         []Debt
	ResumeState   State
	ResumeEndTurn bool
	Trade         *Trade
	Auction       *Auction
	Winner        int
	Suspended     State
	HasSuspended  bool

	QuickReturn State
	QuickCursor QuickItem
	Selected    int

	Settings  Settings
	Timestamp time.Time
}

// Snapshot copies the running game into a Snapshot.
func (e *Engine) Snapshot() *Snapshot {
	g := e.game.Clone()
	s := &Snapshot{
		Version:       SnapshotVersion,
		GameID:        g.ID,
		State:         g.State,
		Properties:    g.Ledger.Props,
		HousesLeft:    g.Ledger.HousesLeft,
		HotelsLeft:    g.Ledger.HotelsLeft,
		Dice:          g.Dice,
		Rolled:        g.Rolled,
		FreeParking:   g.FreeParking,
		Tx:            g.Tx,
		Debts:         g.Debts,
		ResumeState:   g.ResumeState,
		ResumeEndTurn: g.ResumeEndTurn,
		Trade:         g.Trade,
		Auction:       g.Auction,
		Winner:        g.Winner,
		Suspended:     g.Suspended,
		HasSuspended:  g.HasSuspended,
		QuickReturn:   g.QuickReturn,
		QuickCursor:   g.QuickCursor,
		Selected:      g.Selected,
		Settings:      g.Settings,
		Timestamp:     e.clock(),
	}
	for _, p := range g.Ledger.Players {
		s.Players = append(s.Players, *p)
	}
	if g.Chance != nil {
		s.ChanceOrder = g.Chance.Order()
		s.ChancePos = g.Chance.Position()
	}
	if g.Community != nil {
		s.CommunityOrder = g.Community.Order()
		s.CommunityPos = g.Community.Position()
	}
	if g.Turns != nil {
		s.Seats = g.Turns.Seats()
		s.CurrentPlayer = g.Turns.CurrentPlayer()
		s.TurnNumber = g.Turns.TurnNumber()
	}
	return s
}

// Restore replaces the running game with s. The snapshot is validated first;
// an invalid snapshot returns ErrInvalidSnapshot and leaves the engine as it was.
// Timers that were running when the snapshot was taken restart from now.
func (e *Engine) Restore(s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	restored, err := e.fromSnapshot(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return e.transact("restore", func(g *Game) error {
		*g = *restored
		e.gameID = g.ID
		if g.Turns != nil {
			e.resetWatchers(g.Turns.Seats())
			e.emit(g, rules.NewEvent(rules.EventGameResumed, g.Turns.CurrentPlayer()))
		}
		return nil
	})
}

func (e *Engine) fromSnapshot(s *Snapshot) (*Game, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported version %d", s.Version)
	}
	if err := s.Settings.Validate(); err != nil {
		return nil, err
	}
	if _, ok := stateNames[s.State]; !ok {
		return nil, fmt.Errorf("unknown state %d", s.State)
	}
	if err := s.Dice.Validate(); err != nil {
		return nil, err
	}
	now := e.clock()
	g := newGame(s.GameID, s.Settings, now)
	g.State = s.State

	l := ledger.New()
	if len(s.Players) > board.MaxPlayers {
		return nil, ledger.ErrTooManyPlayers
	}
	for i, p := range s.Players {
		if p.ID != i+1 {
			return nil, fmt.Errorf("player %d stored at slot %d", p.ID, i+1)
		}
		cp := p
		l.Players = append(l.Players, &cp)
	}
	l.Props = s.Properties
	l.HousesLeft = s.HousesLeft
	l.HotelsLeft = s.HotelsLeft
	if err := l.Validate(); err != nil {
		return nil, err
	}
	g.Ledger = l

	if len(s.Seats) > 0 {
		turns, err := rules.RestoreTurnManager(s.Seats, s.CurrentPlayer, s.TurnNumber)
		if err != nil {
			return nil, err
		}
		for _, id := range s.Seats {
			if l.Player(id) == nil {
				return nil, fmt.Errorf("seat for unknown player %d", id)
			}
		}
		g.Turns = turns
		if g.Chance, err = restoreDeck(board.DeckChance, s.ChanceOrder, s.ChancePos); err != nil {
			return nil, err
		}
		if g.Community, err = restoreDeck(board.DeckCommunity, s.CommunityOrder, s.CommunityPos); err != nil {
			return nil, err
		}
	} else if s.State.InPlay() {
		return nil, fmt.Errorf("state %s without seats", s.State)
	}

	g.Dice = s.Dice
	g.Rolled = s.Rolled
	g.FreeParking = s.FreeParking
	g.Tx = s.Tx
	g.Debts = append([]Debt(nil), s.Debts...)
	g.ResumeState = s.ResumeState
	g.ResumeEndTurn = s.ResumeEndTurn
	if s.Trade != nil {
		t := *s.Trade
		g.Trade = &t
	}
	if s.Auction != nil {
		a := *s.Auction
		g.Auction = &a
	}
	g.Winner = s.Winner
	g.Suspended = s.Suspended
	g.HasSuspended = s.HasSuspended
	if s.Selected < -1 || s.Selected >= board.Size {
		return nil, fmt.Errorf("selected tile %d off the board", s.Selected)
	}
	g.Selected = s.Selected
	if s.QuickCursor < 0 || s.QuickCursor >= numQuickItems {
		return nil, fmt.Errorf("unknown quick menu item %d", s.QuickCursor)
	}
	g.QuickCursor = s.QuickCursor
	g.QuickReturn = s.QuickReturn

	switch g.State {
	case StateAuction:
		if g.Auction == nil {
			return nil, fmt.Errorf("auction state without an auction")
		}
		wait := time.Duration(s.Settings.AuctionSeconds) * time.Second
		if g.Auction.Awaiting {
			wait = s.Settings.InputTimeout
		}
		g.Deadline = now.Add(wait)
	case StateWaitCard:
		if g.Tx.Wait == WaitNone {
			return nil, fmt.Errorf("card wait without a reason")
		}
		g.Deadline = now.Add(s.Settings.InputTimeout)
	case StateDebt:
		if len(g.Debts) == 0 {
			return nil, fmt.Errorf("debt state with no debts")
		}
	case StateQuickMenu:
		if g.QuickReturn != StateTurnStart && g.QuickReturn != StateJailTurn {
			return nil, fmt.Errorf("quick menu returning to %s", g.QuickReturn)
		}
	case StateTradeSelect, StateTradeOffer:
		if g.Trade == nil {
			return nil, fmt.Errorf("trade state without a trade")
		}
	}
	return g, nil
}

func restoreDeck(kind board.DeckKind, order []int, pos int) (*deck.Deck, error) {
	if len(order) != board.DeckSize(kind) {
		return nil, fmt.Errorf("%s deck has %d cards, want %d", kind, len(order), board.DeckSize(kind))
	}
	return deck.Restore(order, pos)
}
