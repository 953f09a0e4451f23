package dice

import (
	"errors"
	"math/rand"
)

// Sides of each die.
const Sides = 6

// ErrInvalidRoll is returned when a die value is outside 1..Sides.
var ErrInvalidRoll = errors.New("die value out of range")

// Roll is the outcome of throwing two dice.
type Roll struct {
	D1 int
	D2 int
}

// Total is the sum of both dice.
func (r Roll) Total() int {
	return r.D1 + r.D2
}

// Doubles reports whether both dice show the same value.
func (r Roll) Doubles() bool {
	return r.D1 == r.D2
}

// Validate checks both dice are in range. The zero Roll (not yet rolled) is valid.
func (r Roll) Validate() error {
	if r == (Roll{}) {
		return nil
	}
	if r.D1 < 1 || r.D1 > Sides || r.D2 < 1 || r.D2 > Sides {
		return ErrInvalidRoll
	}
	return nil
}

// Source is the random source the roller and deck shuffles draw from.
type Source interface {
	Intn(n int) int
}

// Roller throws two independent uniform dice.
type Roller struct {
	rng Source
}

// NewRoller returns a roller seeded deterministically.
func NewRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// NewRollerWithSource wraps an existing random source.
func NewRollerWithSource(src Source) *Roller {
	return &Roller{rng: src}
}

// Roll throws both dice.
func (r *Roller) Roll() Roll {
	return Roll{D1: r.rng.Intn(Sides) + 1, D2: r.rng.Intn(Sides) + 1}
}

// Intn exposes the underlying source so decks can shuffle from the same stream.
func (r *Roller) Intn(n int) int {
	return r.rng.Intn(n)
}

// Fixed is a Source that replays scripted dice values, then repeats the last one.
// Values are die faces (1..6); Intn returns face-1 when n equals Sides and the
// face reduced modulo n otherwise.
type Fixed struct {
	faces []int
	next  int
}

// NewFixed builds a scripted source from die faces.
func NewFixed(faces ...int) *Fixed {
	return &Fixed{faces: append([]int(nil), faces...)}
}

// Intn implements Source.
func (f *Fixed) Intn(n int) int {
	if len(f.faces) == 0 {
		return 0
	}
	face := f.faces[len(f.faces)-1]
	if f.next < len(f.faces) {
		face = f.faces[f.next]
		f.next++
	}
	if n == Sides {
		return face - 1
	}
	return face % n
}

// Scripted draws from a seeded random source until faces are queued with
// Push; queued faces then answer the next Intn(Sides) calls in order.
type Scripted struct {
	rng    *rand.Rand
	queued []int
}

// NewScripted returns a scripted source seeded deterministically.
func NewScripted(seed int64) *Scripted {
	return &Scripted{rng: rand.New(rand.NewSource(seed))}
}

// Push queues die faces.
func (s *Scripted) Push(faces ...int) {
	s.queued = append(s.queued, faces...)
}

// Pending returns how many queued faces are left.
func (s *Scripted) Pending() int {
	return len(s.queued)
}

// Intn implements Source.
func (s *Scripted) Intn(n int) int {
	if n == Sides && len(s.queued) > 0 {
		face := s.queued[0]
		s.queued = s.queued[1:]
		return face - 1
	}
	return s.rng.Intn(n)
}
