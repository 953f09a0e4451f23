package board

import "fmt"

// Effect is what applying a card does to the acting player.
type Effect int

const (
	EffectMoveTo Effect = iota
	EffectMoveRel
	EffectCollect
	EffectPay
	EffectCollectEach
	EffectPayEach
	EffectJailFree
	EffectGoJail
	EffectRepairs
	EffectNearestRailroad
	EffectNearestUtility
	EffectRentBoost
)

var effectNames = map[Effect]string{
	EffectMoveTo:          "MOVETO",
	EffectMoveRel:         "MOVEREL",
	EffectCollect:         "COLLECT",
	EffectPay:             "PAY",
	EffectCollectEach:     "COLLECT_EACH",
	EffectPayEach:         "PAY_EACH",
	EffectJailFree:        "JAIL_FREE",
	EffectGoJail:          "GO_JAIL",
	EffectRepairs:         "REPAIRS",
	EffectNearestRailroad: "NEAREST_RR",
	EffectNearestUtility:  "NEAREST_UTIL",
	EffectRentBoost:       "RENT_BOOST",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EFFECT_%d", int(e))
}

// Moves reports whether the effect relocates the player to a tile that may need resolving.
func (e Effect) Moves() bool {
	switch e {
	case EffectMoveTo, EffectMoveRel, EffectNearestRailroad, EffectNearestUtility:
		return true
	default:
		return false
	}
}

// DeckKind selects one of the card decks.
type DeckKind int

const (
	DeckChance DeckKind = iota
	DeckCommunity
)

func (d DeckKind) String() string {
	switch d {
	case DeckChance:
		return "CHANCE"
	case DeckCommunity:
		return "COMMUNITY"
	default:
		return fmt.Sprintf("DECK_%d", int(d))
	}
}

// Card is immutable text/effect data.
// For repairs Value1 is the per-house charge and Value2 the per-hotel charge.
type Card struct {
	Text   string
	Effect Effect
	Value1 int
	Value2 int
}

var chanceCards = []Card{
	{"Advance to GO.\nCollect $200.", EffectMoveTo, 0, 0},
	{"Advance to Illinois Ave.", EffectMoveTo, 24, 0},
	{"Advance to St. Charles Place.", EffectMoveTo, 11, 0},
	{"Advance to nearest Utility.\nPay 10x dice if owned.", EffectNearestUtility, 0, 0},
	{"Advance to nearest Railroad.\nPay double rent.", EffectNearestRailroad, 0, 0},
	{"Bank pays you dividend of $50.", EffectCollect, 50, 0},
	{"Get out of Jail free!", EffectJailFree, 0, 0},
	{"Go back 3 spaces.", EffectMoveRel, -3, 0},
	{"Go directly to Jail.", EffectGoJail, 0, 0},
	{"Make general repairs.\n$25/house, $100/hotel.", EffectRepairs, 25, 100},
	{"Pay poor tax of $15.", EffectPay, 15, 0},
	{"Take a ride on Reading RR.", EffectMoveTo, 5, 0},
	{"Take a walk on Boardwalk.", EffectMoveTo, 39, 0},
	{"You are elected chairman.\nPay each player $50.", EffectPayEach, 50, 0},
	{"Building loan matures.\nCollect $150.", EffectCollect, 150, 0},
	{"You won a crossword\ncompetition! Collect $100.", EffectCollect, 100, 0},
}

var communityCards = []Card{
	{"Advance to GO.\nCollect $200.", EffectMoveTo, 0, 0},
	{"Bank error in your favour.\nCollect $200.", EffectCollect, 200, 0},
	{"Doctor's fee. Pay $50.", EffectPay, 50, 0},
	{"From sale of stock\nyou get $50.", EffectCollect, 50, 0},
	{"Get out of Jail free!", EffectJailFree, 0, 0},
	{"Go directly to Jail.", EffectGoJail, 0, 0},
	{"Grand Opera Night.\nCollect $50 from each player.", EffectCollectEach, 50, 0},
	{"Holiday fund matures.\nCollect $100.", EffectCollect, 100, 0},
	{"Income tax refund.\nCollect $20.", EffectCollect, 20, 0},
	{"It's your birthday!\nCollect $10 from each player.", EffectCollectEach, 10, 0},
	{"Life insurance matures.\nCollect $100.", EffectCollect, 100, 0},
	{"Hospital fees. Pay $100.", EffectPay, 100, 0},
	{"School fees. Pay $50.", EffectPay, 50, 0},
	{"Receive consultancy fee.\nCollect $25.", EffectCollect, 25, 0},
	{"Street repairs.\n$40/house, $115/hotel.", EffectRepairs, 40, 115},
	{"2nd prize beauty contest.\nCollect $10.", EffectCollect, 10, 0},
}

// eventCards are the physical tap-in cards, keyed by the id printed on the tag.
var eventCards = map[int]Card{
	1: {"Windfall. Collect $200.", EffectCollect, 200, 0},
	2: {"Fine. Pay $150.", EffectPay, 150, 0},
	3: {"Go directly to Jail.", EffectGoJail, 0, 0},
	4: {"Rent boost. One free improvement.", EffectRentBoost, 1, 0},
	5: {"Dividend. Collect $100.", EffectCollect, 100, 0},
	6: {"Penalty. Pay $200.", EffectPay, 200, 0},
}

// DeckSize returns the number of cards in a deck.
func DeckSize(d DeckKind) int {
	return len(deckCards(d))
}

// CardAt returns the card at index in deck d.
func CardAt(d DeckKind, index int) (Card, error) {
	cards := deckCards(d)
	if index < 0 || index >= len(cards) {
		return Card{}, fmt.Errorf("card %d out of range for %s deck", index, d)
	}
	return cards[index], nil
}

// EventCard returns the tap-in event card with the given id.
func EventCard(id int) (Card, bool) {
	card, ok := eventCards[id]
	return card, ok
}

func deckCards(d DeckKind) []Card {
	if d == DeckChance {
		return chanceCards
	}
	return communityCards
}
