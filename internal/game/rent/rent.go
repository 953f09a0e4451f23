package rent

import (
	"errors"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
)

var (
	ErrNotImprovable  = errors.New("tile cannot be improved")
	ErrNoMonopoly     = errors.New("owner does not hold the full group")
	ErrMortgaged      = errors.New("tile is mortgaged")
	ErrMaxLevel       = errors.New("tile is fully improved")
	ErrUnevenBuild    = errors.New("build evenly across the group")
	ErrUnevenSell     = errors.New("sell evenly across the group")
	ErrNoImprovements = errors.New("tile has no improvements")
	ErrImproved       = errors.New("tile has improvements")
	ErrNotMortgaged   = errors.New("tile is not mortgaged")
)

// Holdings is the read-only view of property state the calculator needs.
type Holdings interface {
	PropertyAt(tile int) ledger.Property
}

// OwnsFullGroup reports whether owner holds every tile of g. GroupNone is never full.
func OwnsFullGroup(h Holdings, owner int, g board.Group) bool {
	if g == board.GroupNone || owner == ledger.Bank {
		return false
	}
	return countOwned(h, owner, g) == board.GroupSize(g)
}

func countOwned(h Holdings, owner int, g board.Group) int {
	n := 0
	for _, idx := range board.TilesInGroup(g) {
		if h.PropertyAt(idx).Owner == owner {
			n++
		}
	}
	return n
}

// Rent computes the rent due on tile for the given dice total.
// Unowned and mortgaged tiles charge nothing.
func Rent(h Holdings, tile, diceTotal int) int {
	prop := h.PropertyAt(tile)
	if !prop.Owned() || prop.Mortgaged {
		return 0
	}
	t := board.At(tile)
	switch t.Kind {
	case board.KindRailroad:
		n := countOwned(h, prop.Owner, board.GroupRailroad)
		if n < 1 {
			return 0
		}
		return t.Rent[n-1]
	case board.KindUtility:
		if countOwned(h, prop.Owner, board.GroupUtility) >= 2 {
			return diceTotal * 10
		}
		return diceTotal * 4
	case board.KindProperty:
		return ForLevel(t, prop.Level, OwnsFullGroup(h, prop.Owner, t.Group))
	default:
		return 0
	}
}

// ForLevel is the street rent at an improvement level; an unimproved full group doubles base rent.
func ForLevel(t board.Tile, level int, fullGroup bool) int {
	if level > 0 {
		if level > board.MaxLevel {
			level = board.MaxLevel
		}
		return t.Rent[level]
	}
	if fullGroup {
		return t.Rent[0] * 2
	}
	return t.Rent[0]
}

// CheckBuild validates adding one improvement to tile for its owner.
// It does not check the owner's balance or the bank's supply.
func CheckBuild(h Holdings, tile int) error {
	t := board.At(tile)
	if t.Kind != board.KindProperty {
		return ErrNotImprovable
	}
	prop := h.PropertyAt(tile)
	if !OwnsFullGroup(h, prop.Owner, t.Group) {
		return ErrNoMonopoly
	}
	if prop.Mortgaged {
		return ErrMortgaged
	}
	if prop.Level >= board.MaxLevel {
		return ErrMaxLevel
	}
	for _, idx := range board.TilesInGroup(t.Group) {
		if idx == tile {
			continue
		}
		sib := h.PropertyAt(idx)
		if sib.Owner == prop.Owner && sib.Level < prop.Level {
			return ErrUnevenBuild
		}
	}
	return nil
}

// CheckSell validates removing one improvement from tile.
func CheckSell(h Holdings, tile int) error {
	t := board.At(tile)
	if t.Kind != board.KindProperty {
		return ErrNotImprovable
	}
	prop := h.PropertyAt(tile)
	if prop.Level == 0 {
		return ErrNoImprovements
	}
	for _, idx := range board.TilesInGroup(t.Group) {
		if idx == tile {
			continue
		}
		sib := h.PropertyAt(idx)
		if sib.Owner == prop.Owner && sib.Level > prop.Level {
			return ErrUnevenSell
		}
	}
	return nil
}

// CheckMortgage validates mortgaging an owned tile.
func CheckMortgage(h Holdings, tile int) error {
	prop := h.PropertyAt(tile)
	if prop.Mortgaged {
		return ErrMortgaged
	}
	if prop.Level > 0 {
		return ErrImproved
	}
	return nil
}

// CheckUnmortgage validates lifting a mortgage; the caller checks the redemption amount.
func CheckUnmortgage(h Holdings, tile int) error {
	if !h.PropertyAt(tile).Mortgaged {
		return ErrNotMortgaged
	}
	return nil
}

// SellValue is what the bank pays back for one improvement on t.
func SellValue(t board.Tile) int {
	return t.ImprovementCost / 2
}

// RepairsCost totals a repairs card for the given building counts.
func RepairsCost(houses, hotels, perHouse, perHotel int) int {
	return houses*perHouse + hotels*perHotel
}
