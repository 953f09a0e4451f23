package ledger

import (
	"math/bits"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
)

// TileSet is a bounded set of board indices (0..board.Size-1) packed into a word.
// Out-of-range indices are ignored by every operation.
type TileSet uint64

// Has reports whether tile is in the set.
func (s TileSet) Has(tile int) bool {
	if !board.Valid(tile) {
		return false
	}
	return s&(1<<uint(tile)) != 0
}

// Add inserts tile.
func (s *TileSet) Add(tile int) {
	if board.Valid(tile) {
		*s |= 1 << uint(tile)
	}
}

// Remove deletes tile.
func (s *TileSet) Remove(tile int) {
	if board.Valid(tile) {
		*s &^= 1 << uint(tile)
	}
}

// Count returns the number of tiles in the set.
func (s TileSet) Count() int {
	return bits.OnesCount64(uint64(s))
}

// Empty reports whether the set has no tiles.
func (s TileSet) Empty() bool {
	return s == 0
}

// ContainsAll reports whether every tile of other is also in s.
func (s TileSet) ContainsAll(other TileSet) bool {
	return other&^s == 0
}

// Tiles lists members in ascending board order.
func (s TileSet) Tiles() []int {
	out := make([]int, 0, s.Count())
	for i := 0; i < board.Size; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// TileSetOf builds a set from indices.
func TileSetOf(tiles ...int) TileSet {
	var s TileSet
	for _, t := range tiles {
		s.Add(t)
	}
	return s
}
