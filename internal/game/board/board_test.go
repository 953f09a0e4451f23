package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardIndicesMatchPositions(t *testing.T) {
	for i, tile := range Tiles() {
		if tile.Index != i {
			t.Fatalf("tile %q at position %d has index %d", tile.Name, i, tile.Index)
		}
	}
}

func TestGroupSizesMatchTable(t *testing.T) {
	for g := GroupBrown; g < numGroups; g++ {
		assert.Len(t, TilesInGroup(g), GroupSize(g), "group %s", g)
	}
	assert.Equal(t, 0, GroupSize(GroupNone))
	assert.Empty(t, TilesInGroup(GroupNone))
	assert.Equal(t, 0, GroupSize(Group(99)))
}

func TestOwnableTilesHavePriceAndMortgage(t *testing.T) {
	ownable := 0
	for _, tile := range Tiles() {
		if !tile.Kind.Ownable() {
			continue
		}
		ownable++
		assert.Positive(t, tile.Price, tile.Name)
		assert.Equal(t, tile.Price/2, tile.Mortgage, tile.Name)
		assert.NotEqual(t, GroupNone, tile.Group, tile.Name)
	}
	assert.Equal(t, 28, ownable)
}

func TestStreetRentScheduleIsIncreasing(t *testing.T) {
	for _, tile := range Tiles() {
		if tile.Kind != KindProperty {
			continue
		}
		for level := 1; level <= MaxLevel; level++ {
			if tile.Rent[level] <= tile.Rent[level-1] {
				t.Fatalf("%s: rent at level %d (%d) not above level %d (%d)",
					tile.Name, level, tile.Rent[level], level-1, tile.Rent[level-1])
			}
		}
	}
}

func TestAtWrapsPositions(t *testing.T) {
	assert.Equal(t, "GO", At(40).Name)
	assert.Equal(t, "Boardwalk", At(-1).Name)
	assert.Equal(t, 7, Wrap(47))
	assert.True(t, Valid(39))
	assert.False(t, Valid(40))
	assert.False(t, Valid(-1))
}

func TestRedemptionIsMortgagePlusTenPercent(t *testing.T) {
	assert.Equal(t, 33, At(1).Redemption())
	assert.Equal(t, 220, At(39).Redemption())
}

func TestNextOfKind(t *testing.T) {
	cases := []struct {
		from    int
		kind    Kind
		want    int
		crossGo bool
	}{
		{7, KindRailroad, 15, false},
		{22, KindRailroad, 25, false},
		{36, KindRailroad, 5, true},
		{35, KindRailroad, 5, true},
		{7, KindUtility, 12, false},
		{22, KindUtility, 28, false},
		{36, KindUtility, 12, true},
		{12, KindUtility, 28, false},
	}
	for _, tc := range cases {
		got, crossed := NextOfKind(tc.from, tc.kind)
		assert.Equal(t, tc.want, got, "from %d to %s", tc.from, tc.kind)
		assert.Equal(t, tc.crossGo, crossed, "from %d to %s", tc.from, tc.kind)
	}
}

func TestDecksHaveSixteenCards(t *testing.T) {
	assert.Equal(t, 16, DeckSize(DeckChance))
	assert.Equal(t, 16, DeckSize(DeckCommunity))

	card, err := CardAt(DeckChance, 9)
	require.NoError(t, err)
	assert.Equal(t, EffectRepairs, card.Effect)
	assert.Equal(t, 25, card.Value1)
	assert.Equal(t, 100, card.Value2)

	_, err = CardAt(DeckCommunity, 16)
	assert.Error(t, err)
}

func TestMovingCardTargetsAreOnBoard(t *testing.T) {
	for _, d := range []DeckKind{DeckChance, DeckCommunity} {
		for i := 0; i < DeckSize(d); i++ {
			card, err := CardAt(d, i)
			require.NoError(t, err)
			if card.Effect == EffectMoveTo {
				assert.True(t, Valid(card.Value1), "%s card %d", d, i)
			}
		}
	}
}

func TestEventCards(t *testing.T) {
	card, ok := EventCard(3)
	require.True(t, ok)
	assert.Equal(t, EffectGoJail, card.Effect)

	_, ok = EventCard(42)
	assert.False(t, ok)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "FREE_PARKING", KindFreeParking.String())
	assert.Equal(t, "KIND_77", Kind(77).String())
	assert.Equal(t, "DARK_BLUE", GroupDarkBlue.String())
	assert.Equal(t, "NEAREST_RR", EffectNearestRailroad.String())
	assert.Equal(t, "COMMUNITY", DeckCommunity.String())
	assert.Len(t, Kinds(), len(kindNames))
}
