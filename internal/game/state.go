package game

import "fmt"

// State is a node of the turn/transaction state machine.
type State int

const (
	StateSplash State = iota
	StateMenu
	StateSetupCount
	StateSetupPlayers
	StateTurnStart
	StateRolling
	StateMoved
	StateTileAction
	StateCardDraw
	StateJailTurn
	StateTradeSelect
	StateTradeOffer
	StateQuickMenu
	StateProgramming
	StateSettings
	StateAuction
	StateDebt
	StateWaitCard
	StateGameOver
)

var stateNames = map[State]string{
	StateSplash:       "SPLASH",
	StateMenu:         "MENU",
	StateSetupCount:   "SETUP_COUNT",
	StateSetupPlayers: "SETUP_PLAYERS",
	StateTurnStart:    "TURN_START",
	StateRolling:      "ROLLING",
	StateMoved:        "MOVED",
	StateTileAction:   "TILE_ACTION",
	StateCardDraw:     "CARD_DRAW",
	StateJailTurn:     "JAIL_TURN",
	StateTradeSelect:  "TRADE_SELECT",
	StateTradeOffer:   "TRADE_OFFER",
	StateQuickMenu:    "QUICK_MENU",
	StateProgramming:  "PROGRAMMING",
	StateSettings:     "SETTINGS",
	StateAuction:      "AUCTION",
	StateDebt:         "DEBT",
	StateWaitCard:     "WAIT_CARD",
	StateGameOver:     "GAME_OVER",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

// InPlay reports whether the state belongs to a running game (suspendable to the menu).
func (s State) InPlay() bool {
	switch s {
	case StateTurnStart, StateRolling, StateMoved, StateTileAction, StateCardDraw, StateJailTurn,
		StateTradeSelect, StateTradeOffer, StateQuickMenu, StateAuction, StateDebt, StateWaitCard:
		return true
	default:
		return false
	}
}

// WaitReason says whose card tap a WaitCard state expects.
type WaitReason int

const (
	WaitNone WaitReason = iota
	WaitBuyPlayer
	WaitRentPayer
	WaitEventTarget
)

var waitNames = map[WaitReason]string{
	WaitNone:        "NONE",
	WaitBuyPlayer:   "BUY_PLAYER",
	WaitRentPayer:   "RENT_PAYER",
	WaitEventTarget: "EVENT_TARGET",
}

func (w WaitReason) String() string {
	if name, ok := waitNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WAIT_%d", int(w))
}

// Cancellable reports whether the wait may be backed out of with a button.
func (w WaitReason) Cancellable() bool {
	return w == WaitBuyPlayer || w == WaitRentPayer
}

// TxKind identifies the outstanding action of a transaction context.
type TxKind int

const (
	TxNone TxKind = iota
	TxBuy
	TxRent
	TxTax
	TxImprove
	TxCard
	TxEvent
	TxNotice
)

var txNames = map[TxKind]string{
	TxNone:    "NONE",
	TxBuy:     "BUY",
	TxRent:    "RENT",
	TxTax:     "TAX",
	TxImprove: "IMPROVE",
	TxCard:    "CARD",
	TxEvent:   "EVENT",
	TxNotice:  "NOTICE",
}

func (k TxKind) String() string {
	if name, ok := txNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TX_%d", int(k))
}

// MenuItem is an entry of the main menu.
type MenuItem int

const (
	MenuNewGame MenuItem = iota
	MenuResume
	MenuProgram
	MenuSettings
	numMenuItems
)

func (m MenuItem) String() string {
	switch m {
	case MenuNewGame:
		return "NEW_GAME"
	case MenuResume:
		return "RESUME"
	case MenuProgram:
		return "PROGRAM"
	case MenuSettings:
		return "SETTINGS"
	default:
		return fmt.Sprintf("MENU_%d", int(m))
	}
}

// QuickItem is an entry of the in-turn quick menu.
type QuickItem int

const (
	QuickBack QuickItem = iota
	QuickEndTurn
	QuickSave
	QuickQuit
	numQuickItems
)

func (q QuickItem) String() string {
	switch q {
	case QuickBack:
		return "BACK"
	case QuickEndTurn:
		return "END_TURN"
	case QuickSave:
		return "SAVE"
	case QuickQuit:
		return "QUIT"
	default:
		return fmt.Sprintf("QUICK_%d", int(q))
	}
}

// Flash messages shown briefly after a settled transaction.
const (
	FlashPurchase    = "PURCHASE"
	FlashRentPaid    = "RENT PAID"
	FlashTaxPaid     = "TAX PAID"
	FlashDebtCleared = "DEBT CLEARED"
	FlashBankrupt    = "BANKRUPT"
	FlashTimeout     = "TIMEOUT"
	FlashAuctionOK   = "AUCTION OK"
	FlashNoSale      = "NO SALE"
	FlashTrade       = "TRADE DONE"
	FlashJailed      = "JAILED"
	FlashFreed       = "FREED"
	FlashSaved       = "SAVED"
	FlashParking     = "FREE PARKING"
	FlashWritten     = "CARD WRITTEN"
)
