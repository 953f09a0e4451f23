package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
)

func newLedger(t *testing.T, players int) *Ledger {
	t.Helper()
	l := New()
	for i := 0; i < players; i++ {
		_, err := l.AddPlayer("P", i, board.StartingMoney)
		require.NoError(t, err)
	}
	return l
}

func TestTileSetOperations(t *testing.T) {
	var s TileSet
	s.Add(1)
	s.Add(39)
	s.Add(39)
	s.Add(40) // ignored
	s.Add(-1) // ignored

	assert.True(t, s.Has(1))
	assert.True(t, s.Has(39))
	assert.False(t, s.Has(40))
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []int{1, 39}, s.Tiles())

	s.Remove(1)
	assert.False(t, s.Has(1))
	assert.Equal(t, 1, s.Count())
	assert.True(t, TileSetOf(1, 3, 39).ContainsAll(TileSetOf(3, 39)))
	assert.False(t, TileSetOf(3).ContainsAll(TileSetOf(3, 5)))
}

func TestAddPlayerLimit(t *testing.T) {
	l := newLedger(t, board.MaxPlayers)
	_, err := l.AddPlayer("extra", 0, 0)
	assert.ErrorIs(t, err, ErrTooManyPlayers)
	assert.Equal(t, board.MaxPlayers, l.Player(board.MaxPlayers).ID)
	assert.Nil(t, l.Player(Bank))
}

func TestAssignMovesOwnershipBit(t *testing.T) {
	l := newLedger(t, 2)
	require.NoError(t, l.Assign(1, 1))
	assert.True(t, l.Player(1).Owned.Has(1))

	require.NoError(t, l.Assign(1, 2))
	assert.False(t, l.Player(1).Owned.Has(1))
	assert.True(t, l.Player(2).Owned.Has(1))
	assert.Equal(t, 2, l.PropertyAt(1).Owner)
	require.NoError(t, l.Validate())

	assert.ErrorIs(t, l.Assign(0, 1), ErrNotOwnable)
	assert.ErrorIs(t, l.Assign(1, 5), ErrUnknownPlayer)
}

func TestBuildingSupply(t *testing.T) {
	l := newLedger(t, 1)
	require.NoError(t, l.Assign(1, 1))

	for i := 0; i < 4; i++ {
		require.NoError(t, l.Improve(1))
	}
	assert.Equal(t, board.TotalHouses-4, l.HousesLeft)

	require.NoError(t, l.Improve(1))
	assert.Equal(t, board.MaxLevel, l.PropertyAt(1).Level)
	assert.Equal(t, board.TotalHouses, l.HousesLeft, "hotel returns four houses")
	assert.Equal(t, board.TotalHotels-1, l.HotelsLeft)

	l.HousesLeft = 3
	assert.ErrorIs(t, l.Unimprove(1), ErrHouseShortage)
	assert.Equal(t, board.MaxLevel, l.PropertyAt(1).Level)

	l.HousesLeft = 4
	require.NoError(t, l.Unimprove(1))
	assert.Equal(t, 4, l.PropertyAt(1).Level)
	assert.Equal(t, 0, l.HousesLeft)
	assert.Equal(t, board.TotalHotels, l.HotelsLeft)
}

func TestImproveFailsWhenSupplyExhausted(t *testing.T) {
	l := newLedger(t, 1)
	require.NoError(t, l.Assign(1, 1))
	l.HousesLeft = 0
	assert.ErrorIs(t, l.Improve(1), ErrHouseShortage)
	assert.Equal(t, 0, l.PropertyAt(1).Level)
}

func TestReleaseReturnsBuildings(t *testing.T) {
	l := newLedger(t, 1)
	require.NoError(t, l.Assign(39, 1))
	require.NoError(t, l.Improve(39))
	require.NoError(t, l.Improve(39))

	l.Release(39)
	assert.Equal(t, Property{}, l.PropertyAt(39))
	assert.Equal(t, board.TotalHouses, l.HousesLeft)
	assert.True(t, l.Player(1).Owned.Empty())
}

func TestImprovementsCount(t *testing.T) {
	l := newLedger(t, 1)
	require.NoError(t, l.Assign(1, 1))
	require.NoError(t, l.Assign(3, 1))
	l.Props[1].Level = 3
	l.Props[3].Level = board.MaxLevel

	houses, hotels := l.Improvements(1)
	assert.Equal(t, 3, houses)
	assert.Equal(t, 1, hotels)
}

func TestTransferAndAliveCount(t *testing.T) {
	l := newLedger(t, 3)
	require.NoError(t, l.Transfer(1, 2, 100))
	assert.Equal(t, 1400, l.Player(1).Balance)
	assert.Equal(t, 1600, l.Player(2).Balance)
	assert.ErrorIs(t, l.Transfer(1, 2, 5000), ErrInsufficientFunds)

	require.NoError(t, l.Transfer(3, Bank, 100))
	assert.Equal(t, 1400, l.Player(3).Balance)

	l.Player(2).Bankrupt = true
	l.Player(2).Balance = 0
	assert.Equal(t, 2, l.AliveCount())
	assert.Equal(t, []int{1, 3}, l.Alive())
}

func TestCloneIsDeep(t *testing.T) {
	l := newLedger(t, 2)
	require.NoError(t, l.Assign(5, 1))
	c := l.Clone()

	c.Player(1).Balance = 0
	c.Props[5].Level = 2
	c.Player(1).Owned.Remove(5)

	assert.Equal(t, board.StartingMoney, l.Player(1).Balance)
	assert.Equal(t, 0, l.PropertyAt(5).Level)
	assert.True(t, l.Player(1).Owned.Has(5))
}

func TestValidateCatchesInconsistency(t *testing.T) {
	l := newLedger(t, 2)
	require.NoError(t, l.Assign(5, 1))
	l.Player(1).Owned.Remove(5)
	assert.Error(t, l.Validate())

	l = newLedger(t, 2)
	l.Player(2).Bankrupt = true
	assert.Error(t, l.Validate(), "bankrupt player with balance")
}

func TestPlayerByCard(t *testing.T) {
	l := newLedger(t, 2)
	l.Player(2).CardID = "04A1B2"
	assert.Equal(t, 2, l.PlayerByCard("04A1B2").ID)
	assert.Nil(t, l.PlayerByCard(""))
	assert.Nil(t, l.PlayerByCard("zz"))
}
