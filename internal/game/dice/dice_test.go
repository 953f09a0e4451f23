package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoublesIffFacesEqual(t *testing.T) {
	for d1 := 1; d1 <= Sides; d1++ {
		for d2 := 1; d2 <= Sides; d2++ {
			r := Roll{D1: d1, D2: d2}
			if r.Doubles() != (d1 == d2) {
				t.Fatalf("roll %d+%d reported doubles=%v", d1, d2, r.Doubles())
			}
			assert.Equal(t, d1+d2, r.Total())
			assert.NoError(t, r.Validate())
		}
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	assert.NoError(t, Roll{}.Validate())
	assert.ErrorIs(t, Roll{D1: 7, D2: 1}.Validate(), ErrInvalidRoll)
	assert.ErrorIs(t, Roll{D1: 3, D2: 0}.Validate(), ErrInvalidRoll)
}

func TestRollerStaysInRange(t *testing.T) {
	r := NewRoller(42)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		roll := r.Roll()
		if err := roll.Validate(); err != nil {
			t.Fatalf("roll %d produced %+v", i, roll)
		}
		seen[roll.D1] = true
	}
	assert.Len(t, seen, Sides)
}

func TestRollerIsDeterministicPerSeed(t *testing.T) {
	a, b := NewRoller(7), NewRoller(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Roll(), b.Roll())
	}
}

func TestFixedSourceReplaysFaces(t *testing.T) {
	r := NewRollerWithSource(NewFixed(2, 3, 6, 6))
	assert.Equal(t, Roll{D1: 2, D2: 3}, r.Roll())
	assert.Equal(t, Roll{D1: 6, D2: 6}, r.Roll())
	// exhausted: repeats the last face
	assert.Equal(t, Roll{D1: 6, D2: 6}, r.Roll())
}

func TestScriptedSourceUsesQueueThenRandom(t *testing.T) {
	src := NewScripted(3)
	r := NewRollerWithSource(src)
	src.Push(4, 4, 1, 2)
	assert.Equal(t, 4, src.Pending())
	assert.Equal(t, Roll{D1: 4, D2: 4}, r.Roll())
	assert.Equal(t, Roll{D1: 1, D2: 2}, r.Roll())
	assert.Equal(t, 0, src.Pending())

	// queued faces are not spent on shuffles of other sizes
	src.Push(5, 5)
	_ = src.Intn(16)
	assert.Equal(t, 2, src.Pending())
	assert.NoError(t, r.Roll().Validate())
}
