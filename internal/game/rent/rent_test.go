package rent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
)

func setup(t *testing.T, owners map[int]int) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	for i := 0; i < 3; i++ {
		_, err := l.AddPlayer("P", i, board.StartingMoney)
		require.NoError(t, err)
	}
	for tile, owner := range owners {
		require.NoError(t, l.Assign(tile, owner))
	}
	return l
}

func TestRentUnownedOrMortgagedIsZero(t *testing.T) {
	l := setup(t, map[int]int{3: 1})
	assert.Equal(t, 0, Rent(l, 1, 7))
	l.SetMortgaged(3, true)
	assert.Equal(t, 0, Rent(l, 3, 7))
}

func TestFullGroupDoublesBaseRent(t *testing.T) {
	l := setup(t, map[int]int{11: 1, 13: 1})
	assert.Equal(t, 10, Rent(l, 11, 0))

	require.NoError(t, l.Assign(14, 1))
	assert.True(t, OwnsFullGroup(l, 1, board.GroupPink))
	assert.Equal(t, 2*board.At(11).Rent[0], Rent(l, 11, 0))
	assert.Equal(t, 24, Rent(l, 14, 0))
}

func TestGroupNoneNeverFull(t *testing.T) {
	l := setup(t, nil)
	assert.False(t, OwnsFullGroup(l, 1, board.GroupNone))
	assert.False(t, OwnsFullGroup(l, ledger.Bank, board.GroupBrown))
}

func TestImprovedRentUsesSchedule(t *testing.T) {
	l := setup(t, map[int]int{37: 2, 39: 2})
	prev := 0
	for level := 0; level <= board.MaxLevel; level++ {
		l.Props[39].Level = level
		got := Rent(l, 39, 0)
		if got < prev {
			t.Fatalf("rent dropped at level %d: %d < %d", level, got, prev)
		}
		prev = got
	}
	assert.Equal(t, 2000, prev)
}

func TestRailroadRentByCount(t *testing.T) {
	l := setup(t, map[int]int{5: 1})
	assert.Equal(t, 25, Rent(l, 5, 0))
	require.NoError(t, l.Assign(15, 1))
	assert.Equal(t, 50, Rent(l, 5, 0))
	require.NoError(t, l.Assign(25, 1))
	require.NoError(t, l.Assign(35, 1))
	assert.Equal(t, 200, Rent(l, 35, 0))

	require.NoError(t, l.Assign(35, 2))
	assert.Equal(t, 100, Rent(l, 5, 0))
	assert.Equal(t, 25, Rent(l, 35, 0))
}

func TestUtilityRentMultipliers(t *testing.T) {
	l := setup(t, map[int]int{12: 1})
	for total := 2; total <= 12; total++ {
		assert.Equal(t, total*4, Rent(l, 12, total))
	}
	require.NoError(t, l.Assign(28, 1))
	for total := 2; total <= 12; total++ {
		assert.Equal(t, total*10, Rent(l, 28, total))
	}
}

func TestEvenBuildRule(t *testing.T) {
	l := setup(t, map[int]int{1: 1, 3: 1})
	require.NoError(t, CheckBuild(l, 1))
	l.Props[1].Level = 1
	assert.ErrorIs(t, CheckBuild(l, 1), ErrUnevenBuild)
	assert.NoError(t, CheckBuild(l, 3))

	l.Props[1].Level = board.MaxLevel
	l.Props[3].Level = board.MaxLevel
	assert.ErrorIs(t, CheckBuild(l, 1), ErrMaxLevel)
}

func TestBuildPreconditions(t *testing.T) {
	l := setup(t, map[int]int{1: 1, 5: 1})
	assert.ErrorIs(t, CheckBuild(l, 1), ErrNoMonopoly)
	assert.ErrorIs(t, CheckBuild(l, 5), ErrNotImprovable)

	require.NoError(t, l.Assign(3, 1))
	l.SetMortgaged(1, true)
	assert.ErrorIs(t, CheckBuild(l, 1), ErrMortgaged)
}

func TestEvenSellRule(t *testing.T) {
	l := setup(t, map[int]int{6: 1, 8: 1, 9: 1})
	assert.ErrorIs(t, CheckSell(l, 6), ErrNoImprovements)

	l.Props[6].Level = 2
	l.Props[8].Level = 2
	l.Props[9].Level = 3
	assert.ErrorIs(t, CheckSell(l, 6), ErrUnevenSell)
	assert.NoError(t, CheckSell(l, 9))
}

func TestMortgageChecks(t *testing.T) {
	l := setup(t, map[int]int{1: 1, 3: 1})
	assert.NoError(t, CheckMortgage(l, 1))
	assert.ErrorIs(t, CheckUnmortgage(l, 1), ErrNotMortgaged)

	l.Props[3].Level = 1
	assert.ErrorIs(t, CheckMortgage(l, 3), ErrImproved)

	l.SetMortgaged(1, true)
	assert.ErrorIs(t, CheckMortgage(l, 1), ErrMortgaged)
	assert.NoError(t, CheckUnmortgage(l, 1))
}

func TestRepairsAndSellValue(t *testing.T) {
	assert.Equal(t, 3*25+2*100, RepairsCost(3, 2, 25, 100))
	assert.Equal(t, 100, SellValue(board.At(37)))
}
