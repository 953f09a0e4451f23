package ledger

import (
	"errors"
	"fmt"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
)

// Bank is the creditor/owner id used for the bank. Real players are 1..board.MaxPlayers.
const Bank = 0

var (
	ErrTooManyPlayers    = errors.New("player table is full")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrNotOwnable        = errors.New("tile cannot be owned")
	ErrHouseShortage     = errors.New("bank has no buildings left")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Player is the mutable per-player record.
type Player struct {
	ID          int
	Name        string
	Color       int
	CardID      string // id of the player's bank card, empty when registered without a card
	Balance     int
	Position    int
	InJail      bool
	JailTurns   int
	HasJailCard bool
	Bankrupt    bool
	Owned       TileSet
	Doubles     int
}

// Alive reports whether the player is still in the game.
func (p *Player) Alive() bool {
	return !p.Bankrupt
}

// Property is the mutable state of an ownable tile.
type Property struct {
	Owner     int // Bank when unowned
	Level     int // 0 none, 1-4 houses, board.MaxLevel hotel
	Mortgaged bool
}

// Owned reports whether a player holds the tile.
func (p Property) Owned() bool {
	return p.Owner != Bank
}

// Ledger holds every player and property record plus the bank's building supply.
type Ledger struct {
	Players    []*Player
	Props      [board.Size]Property
	HousesLeft int
	HotelsLeft int
}

// New returns an empty ledger with a full building supply.
func New() *Ledger {
	return &Ledger{
		HousesLeft: board.TotalHouses,
		HotelsLeft: board.TotalHotels,
	}
}

// AddPlayer appends a player with the next free id.
func (l *Ledger) AddPlayer(name string, color, balance int) (*Player, error) {
	if len(l.Players) >= board.MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	p := &Player{
		ID:      len(l.Players) + 1,
		Name:    name,
		Color:   color,
		Balance: balance,
	}
	l.Players = append(l.Players, p)
	return p, nil
}

// Player returns the player with id, or nil.
func (l *Ledger) Player(id int) *Player {
	if id < 1 || id > len(l.Players) {
		return nil
	}
	return l.Players[id-1]
}

// PlayerByCard finds the player registered with a bank card id.
func (l *Ledger) PlayerByCard(cardID string) *Player {
	if cardID == "" {
		return nil
	}
	for _, p := range l.Players {
		if p.CardID == cardID {
			return p
		}
	}
	return nil
}

// PropertyAt returns the state of tile.
func (l *Ledger) PropertyAt(tile int) Property {
	if !board.Valid(tile) {
		return Property{}
	}
	return l.Props[tile]
}

// Assign transfers tile to owner, moving the ownership bit between players.
// Level and mortgage flag are left untouched.
func (l *Ledger) Assign(tile, owner int) error {
	if !board.Valid(tile) || !board.At(tile).Kind.Ownable() {
		return ErrNotOwnable
	}
	next := l.Player(owner)
	if next == nil {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, owner)
	}
	if prev := l.Player(l.Props[tile].Owner); prev != nil {
		prev.Owned.Remove(tile)
	}
	l.Props[tile].Owner = owner
	next.Owned.Add(tile)
	return nil
}

// Release returns tile to the bank: unowned, unimproved and unmortgaged.
// Buildings on it go back to the supply.
func (l *Ledger) Release(tile int) {
	if !board.Valid(tile) {
		return
	}
	if prev := l.Player(l.Props[tile].Owner); prev != nil {
		prev.Owned.Remove(tile)
	}
	l.ReturnBuildings(tile)
	l.Props[tile] = Property{}
}

// ReturnBuildings clears the improvements on tile back into the bank supply.
func (l *Ledger) ReturnBuildings(tile int) {
	prop := &l.Props[tile]
	if prop.Level == board.MaxLevel {
		l.HotelsLeft++
	} else {
		l.HousesLeft += prop.Level
	}
	prop.Level = 0
}

// Improve raises tile one level, taking a house or swapping four houses for a hotel.
func (l *Ledger) Improve(tile int) error {
	prop := &l.Props[tile]
	if prop.Level == board.MaxLevel-1 {
		if l.HotelsLeft == 0 {
			return ErrHouseShortage
		}
		l.HotelsLeft--
		l.HousesLeft += board.MaxLevel - 1
	} else {
		if l.HousesLeft == 0 {
			return ErrHouseShortage
		}
		l.HousesLeft--
	}
	prop.Level++
	return nil
}

// Unimprove lowers tile one level. Breaking a hotel needs four houses from the supply.
func (l *Ledger) Unimprove(tile int) error {
	prop := &l.Props[tile]
	if prop.Level == board.MaxLevel {
		if l.HousesLeft < board.MaxLevel-1 {
			return ErrHouseShortage
		}
		l.HousesLeft -= board.MaxLevel - 1
		l.HotelsLeft++
	} else {
		l.HousesLeft++
	}
	prop.Level--
	return nil
}

// SetMortgaged sets the mortgage flag on tile.
func (l *Ledger) SetMortgaged(tile int, mortgaged bool) {
	l.Props[tile].Mortgaged = mortgaged
}

// CountInGroup counts tiles of group held by owner.
func (l *Ledger) CountInGroup(owner int, g board.Group) int {
	n := 0
	for _, idx := range board.TilesInGroup(g) {
		if l.Props[idx].Owner == owner {
			n++
		}
	}
	return n
}

// Improvements counts houses and hotels across owner's tiles.
func (l *Ledger) Improvements(owner int) (houses, hotels int) {
	p := l.Player(owner)
	if p == nil {
		return 0, 0
	}
	for _, idx := range p.Owned.Tiles() {
		level := l.Props[idx].Level
		if level == board.MaxLevel {
			hotels++
		} else {
			houses += level
		}
	}
	return houses, hotels
}

// Credit adds amount to a player's balance. The bank is a sink.
func (l *Ledger) Credit(id, amount int) {
	if p := l.Player(id); p != nil {
		p.Balance += amount
	}
}

// Debit removes amount unconditionally; balances may go negative.
func (l *Ledger) Debit(id, amount int) {
	if p := l.Player(id); p != nil {
		p.Balance -= amount
	}
}

// Transfer moves amount from one party to another when the payer can afford it.
func (l *Ledger) Transfer(from, to, amount int) error {
	if p := l.Player(from); p != nil && p.Balance < amount {
		return ErrInsufficientFunds
	}
	l.Debit(from, amount)
	l.Credit(to, amount)
	return nil
}

// AliveCount returns the number of players not bankrupt.
func (l *Ledger) AliveCount() int {
	n := 0
	for _, p := range l.Players {
		if p.Alive() {
			n++
		}
	}
	return n
}

// Alive lists the ids of players still in the game.
func (l *Ledger) Alive() []int {
	ids := make([]int, 0, len(l.Players))
	for _, p := range l.Players {
		if p.Alive() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Clone deep-copies the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Players:    make([]*Player, len(l.Players)),
		Props:      l.Props,
		HousesLeft: l.HousesLeft,
		HotelsLeft: l.HotelsLeft,
	}
	for i, p := range l.Players {
		cp := *p
		c.Players[i] = &cp
	}
	return c
}

// Validate checks the cross-record invariants: ownership bits agree with
// property owners, bankrupt players hold nothing with zero balance and the
// building supply is within bounds.
func (l *Ledger) Validate() error {
	for i, prop := range l.Props {
		if !prop.Owned() {
			if prop.Level != 0 || prop.Mortgaged {
				return fmt.Errorf("unowned tile %d has level %d mortgaged=%v", i, prop.Level, prop.Mortgaged)
			}
			continue
		}
		owner := l.Player(prop.Owner)
		if owner == nil {
			return fmt.Errorf("tile %d owned by unknown player %d", i, prop.Owner)
		}
		if !owner.Owned.Has(i) {
			return fmt.Errorf("tile %d owner %d missing ownership bit", i, prop.Owner)
		}
	}
	for _, p := range l.Players {
		for _, idx := range p.Owned.Tiles() {
			if l.Props[idx].Owner != p.ID {
				return fmt.Errorf("player %d has bit for tile %d owned by %d", p.ID, idx, l.Props[idx].Owner)
			}
		}
		if p.Bankrupt && (!p.Owned.Empty() || p.Balance != 0) {
			return fmt.Errorf("bankrupt player %d still holds assets", p.ID)
		}
	}
	if l.HousesLeft < 0 || l.HousesLeft > board.TotalHouses || l.HotelsLeft < 0 || l.HotelsLeft > board.TotalHotels {
		return fmt.Errorf("building supply out of range: %d houses, %d hotels", l.HousesLeft, l.HotelsLeft)
	}
	return nil
}
