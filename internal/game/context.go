package game

import (
	"time"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/deck"
	"github.com/thraizz/nfc-monopoly-go/internal/game/dice"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// Transaction is the pending-action record of the state machine. The zero
// value means nothing is outstanding.
type Transaction struct {
	Kind     TxKind
	Player   int // acting player (buyer, payer, card holder, event target)
	Creditor int // owner collecting rent
	Tile     int
	Amount   int
	Deck     board.DeckKind
	Card     int // card index within Deck, or event id for TxEvent
	Wait     WaitReason
}

// Active reports whether a transaction is outstanding.
func (t Transaction) Active() bool {
	return t.Kind != TxNone
}

// Debt is an obligation a player could not cover in cash.
type Debt struct {
	Debtor   int
	Creditor int // ledger.Bank or a player id
	Amount   int
	Kind     rules.EventType // payment the debt stands in for
}

// Trade is the offer being edited between the current player and a partner.
type Trade struct {
	Partner  int
	Offer    int            // money the current player gives
	Request  int            // money the partner gives
	Give     ledger.TileSet // current player's tiles going to the partner
	Take     ledger.TileSet // partner's tiles going to the current player
	ReturnTo State
}

// Auction is a running bank auction for a declined tile.
type Auction struct {
	Tile     int
	Bid      int
	Bidder   int // 0 until someone identifies with a direct bid
	Awaiting bool
}

// Setup tracks player registration before the first turn.
type Setup struct {
	Count      int
	Registered int
}

// Game is the explicit context the state machine operates on. Every handler
// receives it; nothing about a running game lives outside it.
type Game struct {
	ID       string
	State    State
	Settings Settings
	Ledger   *ledger.Ledger
	Turns    *rules.TurnManager

	Dice      dice.Roll
	Rolled    bool // current player has rolled this turn
	Chance    *deck.Deck
	Community *deck.Deck

	FreeParking int
	Tx          Transaction
	Debts       []Debt
	// ResumeState is entered once the debt queue empties, unless ResumeEndTurn is set.
	ResumeState   State
	ResumeEndTurn bool

	Trade   *Trade
	Auction *Auction
	Winner  int

	Setup          Setup
	MenuCursor     MenuItem
	QuickCursor    QuickItem
	QuickReturn    State
	SettingsCursor SettingItem
	ProgramKind    CardKind
	ProgramValue   int
	Selected       int // tile picked by a property tap, -1 when none
	Suspended      State
	HasSuspended   bool
	SaveRequested  bool

	Flash      string
	FlashUntil time.Time
	StateSince time.Time
	Deadline   time.Time
	Dirty      bool
}

func newGame(id string, settings Settings, now time.Time) *Game {
	return &Game{
		ID:         id,
		State:      StateSplash,
		Settings:   settings,
		Ledger:     ledger.New(),
		Selected:   -1,
		StateSince: now,
		Dirty:      true,
	}
}

// Clone deep-copies the context. It is the bookmark restored when an action is rejected.
func (g *Game) Clone() *Game {
	c := *g
	c.Ledger = g.Ledger.Clone()
	if g.Turns != nil {
		c.Turns = g.Turns.Clone()
	}
	if g.Chance != nil {
		c.Chance = g.Chance.Clone()
	}
	if g.Community != nil {
		c.Community = g.Community.Clone()
	}
	c.Debts = append([]Debt(nil), g.Debts...)
	if g.Trade != nil {
		t := *g.Trade
		c.Trade = &t
	}
	if g.Auction != nil {
		a := *g.Auction
		c.Auction = &a
	}
	return &c
}

// Current returns the player whose turn it is, or nil before the game starts.
func (g *Game) Current() *ledger.Player {
	if g.Turns == nil {
		return nil
	}
	return g.Ledger.Player(g.Turns.CurrentPlayer())
}

func (g *Game) alive(id int) bool {
	p := g.Ledger.Player(id)
	return p != nil && p.Alive()
}

func (g *Game) deckFor(kind board.DeckKind) *deck.Deck {
	if kind == board.DeckChance {
		return g.Chance
	}
	return g.Community
}
