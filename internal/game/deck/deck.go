package deck

import (
	"errors"
	"fmt"
)

// ErrInvalidOrder is returned when restoring a deck from an order that is not a permutation.
var ErrInvalidOrder = errors.New("deck order is not a permutation")

// Shuffler is the random source used for Fisher-Yates shuffles.
type Shuffler interface {
	Intn(n int) int
}

// Deck is a fixed permutation of card indices with a cyclic draw pointer.
// It never runs out: once every card has been drawn the pointer wraps to the
// start of the same permutation.
type Deck struct {
	order []int
	next  int
}

// New creates an unshuffled deck of size cards (identity order).
func New(size int) *Deck {
	order := make([]int, size)
	for i := range order {
		order[i] = i
	}
	return &Deck{order: order}
}

// Shuffle permutes the deck uniformly and rewinds the pointer.
func (d *Deck) Shuffle(r Shuffler) {
	for i := len(d.order) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.order[i], d.order[j] = d.order[j], d.order[i]
	}
	d.next = 0
}

// Draw returns the card index under the pointer and advances it modulo the deck size.
func (d *Deck) Draw() int {
	if len(d.order) == 0 {
		return -1
	}
	card := d.order[d.next]
	d.next = (d.next + 1) % len(d.order)
	return card
}

// Size returns the number of cards.
func (d *Deck) Size() int {
	return len(d.order)
}

// Position returns the draw pointer.
func (d *Deck) Position() int {
	return d.next
}

// Order returns a copy of the permutation.
func (d *Deck) Order() []int {
	return append([]int(nil), d.order...)
}

// Clone returns an independent copy.
func (d *Deck) Clone() *Deck {
	return &Deck{order: d.Order(), next: d.next}
}

// Restore builds a deck from a saved permutation and pointer.
func Restore(order []int, position int) (*Deck, error) {
	seen := make([]bool, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(order) || seen[idx] {
			return nil, ErrInvalidOrder
		}
		seen[idx] = true
	}
	if len(order) > 0 && (position < 0 || position >= len(order)) {
		return nil, fmt.Errorf("deck pointer %d out of range for %d cards", position, len(order))
	}
	return &Deck{order: append([]int(nil), order...), next: position}, nil
}
