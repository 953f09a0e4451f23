package board

import "fmt"

// Board-wide constants.
const (
	Size             = 40
	GoPosition       = 0
	JailPosition     = 10
	GoToJailPosition = 30
	GoSalary         = 200
	JailFine         = 50
	MaxLevel         = 5 // hotel
	MaxPlayers       = 8
	StartingMoney    = 1500
	TotalHouses      = 32
	TotalHotels      = 12
)

// Kind is the category of a board tile.
type Kind int

const (
	KindGo Kind = iota
	KindProperty
	KindRailroad
	KindUtility
	KindChance
	KindCommunity
	KindTax
	KindJail
	KindFreeParking
	KindGoToJail
)

var kindNames = map[Kind]string{
	KindGo:          "GO",
	KindProperty:    "PROPERTY",
	KindRailroad:    "RAILROAD",
	KindUtility:     "UTILITY",
	KindChance:      "CHANCE",
	KindCommunity:   "COMMUNITY",
	KindTax:         "TAX",
	KindJail:        "JAIL",
	KindFreeParking: "FREE_PARKING",
	KindGoToJail:    "GO_TO_JAIL",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// Kinds lists every tile kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindGo, KindProperty, KindRailroad, KindUtility, KindChance,
		KindCommunity, KindTax, KindJail, KindFreeParking, KindGoToJail,
	}
}

// Ownable reports whether tiles of this kind can be bought.
func (k Kind) Ownable() bool {
	return k == KindProperty || k == KindRailroad || k == KindUtility
}

// Group is a colour set (or the railroad/utility sets) used for monopoly checks.
type Group int

const (
	GroupNone Group = iota
	GroupBrown
	GroupLightBlue
	GroupPink
	GroupOrange
	GroupRed
	GroupYellow
	GroupGreen
	GroupDarkBlue
	GroupRailroad
	GroupUtility
	numGroups
)

var groupNames = map[Group]string{
	GroupNone:      "NONE",
	GroupBrown:     "BROWN",
	GroupLightBlue: "LIGHT_BLUE",
	GroupPink:      "PINK",
	GroupOrange:    "ORANGE",
	GroupRed:       "RED",
	GroupYellow:    "YELLOW",
	GroupGreen:     "GREEN",
	GroupDarkBlue:  "DARK_BLUE",
	GroupRailroad:  "RAILROAD",
	GroupUtility:   "UTILITY",
}

func (g Group) String() string {
	if name, ok := groupNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GROUP_%d", int(g))
}

var groupSizes = [numGroups]int{0, 2, 3, 3, 3, 3, 3, 3, 2, 4, 2}

// GroupSize returns how many tiles belong to the group. GroupNone has size 0.
func GroupSize(g Group) int {
	if g < 0 || g >= numGroups {
		return 0
	}
	return groupSizes[g]
}

// Tile is one immutable board position.
type Tile struct {
	Index           int
	Name            string
	Kind            Kind
	Group           Group
	Price           int    // purchase price, or the amount due for tax tiles
	Rent            [6]int // base, 1-4 houses, hotel; railroads use entries 0-3 by count owned
	ImprovementCost int
	Mortgage        int
}

// Redemption is the amount needed to lift the mortgage: value plus ten percent.
func (t Tile) Redemption() int {
	return t.Mortgage + t.Mortgage/10
}

var tiles = [Size]Tile{
	{0, "GO", KindGo, GroupNone, 0, [6]int{}, 0, 0},
	{1, "Mediterranean Ave", KindProperty, GroupBrown, 60, [6]int{2, 10, 30, 90, 160, 250}, 50, 30},
	{2, "Community Chest", KindCommunity, GroupNone, 0, [6]int{}, 0, 0},
	{3, "Baltic Ave", KindProperty, GroupBrown, 60, [6]int{4, 20, 60, 180, 320, 450}, 50, 30},
	{4, "Income Tax", KindTax, GroupNone, 200, [6]int{}, 0, 0},
	{5, "Reading Railroad", KindRailroad, GroupRailroad, 200, [6]int{25, 50, 100, 200, 0, 0}, 0, 100},
	{6, "Oriental Ave", KindProperty, GroupLightBlue, 100, [6]int{6, 30, 90, 270, 400, 550}, 50, 50},
	{7, "Chance", KindChance, GroupNone, 0, [6]int{}, 0, 0},
	{8, "Vermont Ave", KindProperty, GroupLightBlue, 100, [6]int{6, 30, 90, 270, 400, 550}, 50, 50},
	{9, "Connecticut Ave", KindProperty, GroupLightBlue, 120, [6]int{8, 40, 100, 300, 450, 600}, 50, 60},
	{10, "Jail", KindJail, GroupNone, 0, [6]int{}, 0, 0},
	{11, "St. Charles Pl", KindProperty, GroupPink, 140, [6]int{10, 50, 150, 450, 625, 750}, 100, 70},
	{12, "Electric Company", KindUtility, GroupUtility, 150, [6]int{}, 0, 75},
	{13, "States Ave", KindProperty, GroupPink, 140, [6]int{10, 50, 150, 450, 625, 750}, 100, 70},
	{14, "Virginia Ave", KindProperty, GroupPink, 160, [6]int{12, 60, 180, 500, 700, 900}, 100, 80},
	{15, "Pennsylvania RR", KindRailroad, GroupRailroad, 200, [6]int{25, 50, 100, 200, 0, 0}, 0, 100},
	{16, "St. James Pl", KindProperty, GroupOrange, 180, [6]int{14, 70, 200, 550, 750, 950}, 100, 90},
	{17, "Community Chest", KindCommunity, GroupNone, 0, [6]int{}, 0, 0},
	{18, "Tennessee Ave", KindProperty, GroupOrange, 180, [6]int{14, 70, 200, 550, 750, 950}, 100, 90},
	{19, "New York Ave", KindProperty, GroupOrange, 200, [6]int{16, 80, 220, 600, 800, 1000}, 100, 100},
	{20, "Free Parking", KindFreeParking, GroupNone, 0, [6]int{}, 0, 0},
	{21, "Kentucky Ave", KindProperty, GroupRed, 220, [6]int{18, 90, 250, 700, 875, 1050}, 150, 110},
	{22, "Chance", KindChance, GroupNone, 0, [6]int{}, 0, 0},
	{23, "Indiana Ave", KindProperty, GroupRed, 220, [6]int{18, 90, 250, 700, 875, 1050}, 150, 110},
	{24, "Illinois Ave", KindProperty, GroupRed, 240, [6]int{20, 100, 300, 750, 925, 1100}, 150, 120},
	{25, "B&O Railroad", KindRailroad, GroupRailroad, 200, [6]int{25, 50, 100, 200, 0, 0}, 0, 100},
	{26, "Atlantic Ave", KindProperty, GroupYellow, 260, [6]int{22, 110, 330, 800, 975, 1150}, 150, 130},
	{27, "Ventnor Ave", KindProperty, GroupYellow, 260, [6]int{22, 110, 330, 800, 975, 1150}, 150, 130},
	{28, "Water Works", KindUtility, GroupUtility, 150, [6]int{}, 0, 75},
	{29, "Marvin Gardens", KindProperty, GroupYellow, 280, [6]int{24, 120, 360, 850, 1025, 1200}, 150, 140},
	{30, "Go To Jail", KindGoToJail, GroupNone, 0, [6]int{}, 0, 0},
	{31, "Pacific Ave", KindProperty, GroupGreen, 300, [6]int{26, 130, 390, 900, 1100, 1275}, 200, 150},
	{32, "N. Carolina Ave", KindProperty, GroupGreen, 300, [6]int{26, 130, 390, 900, 1100, 1275}, 200, 150},
	{33, "Community Chest", KindCommunity, GroupNone, 0, [6]int{}, 0, 0},
	{34, "Pennsylvania Ave", KindProperty, GroupGreen, 320, [6]int{28, 150, 450, 1000, 1200, 1400}, 200, 160},
	{35, "Short Line RR", KindRailroad, GroupRailroad, 200, [6]int{25, 50, 100, 200, 0, 0}, 0, 100},
	{36, "Chance", KindChance, GroupNone, 0, [6]int{}, 0, 0},
	{37, "Park Place", KindProperty, GroupDarkBlue, 350, [6]int{35, 175, 500, 1100, 1300, 1500}, 200, 175},
	{38, "Luxury Tax", KindTax, GroupNone, 100, [6]int{}, 0, 0},
	{39, "Boardwalk", KindProperty, GroupDarkBlue, 400, [6]int{50, 200, 600, 1400, 1700, 2000}, 200, 200},
}

var groupMembers = buildGroupMembers()

func buildGroupMembers() map[Group][]int {
	members := make(map[Group][]int)
	for _, t := range tiles {
		if t.Group == GroupNone {
			continue
		}
		members[t.Group] = append(members[t.Group], t.Index)
	}
	return members
}

// Valid reports whether index names a board position.
func Valid(index int) bool {
	return index >= 0 && index < Size
}

// At returns the tile at index. The index is reduced modulo the board size,
// so every integer maps onto a tile.
func At(index int) Tile {
	return tiles[Wrap(index)]
}

// Wrap reduces any position onto the board.
func Wrap(position int) int {
	position %= Size
	if position < 0 {
		position += Size
	}
	return position
}

// TilesInGroup returns the tile indices of a group in board order.
func TilesInGroup(g Group) []int {
	return append([]int(nil), groupMembers[g]...)
}

// Tiles returns a copy of the full board.
func Tiles() []Tile {
	out := make([]Tile, Size)
	copy(out, tiles[:])
	return out
}

// NextOfKind returns the first tile of kind k strictly clockwise from position,
// wrapping past GO. The second result reports whether the move crosses GO.
func NextOfKind(position int, k Kind) (int, bool) {
	position = Wrap(position)
	for step := 1; step <= Size; step++ {
		idx := (position + step) % Size
		if tiles[idx].Kind == k {
			return idx, idx < position
		}
	}
	return position, false
}
