package game

import (
	"errors"

	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
)

// Rejected actions. The engine leaves all state unchanged when it returns one of these.
var (
	ErrWrongState        = errors.New("action not allowed in current state")
	ErrNotYourTurn       = errors.New("not this player's turn")
	ErrNotOwner          = errors.New("player does not own the tile")
	ErrAlreadyOwned      = errors.New("tile is already owned")
	ErrNotForSale        = errors.New("tile cannot be bought")
	ErrInsufficientFunds = ledger.ErrInsufficientFunds
	ErrHouseShortage     = ledger.ErrHouseShortage
	ErrTradeInvalid      = errors.New("trade is not valid")
	ErrNoJailCard        = errors.New("player holds no get-out-of-jail card")
	ErrNotInJail         = errors.New("player is not in jail")
	ErrBidTooLow         = errors.New("bid must exceed the current bid")
	ErrNotSurrenderable  = errors.New("tile cannot be surrendered")
	ErrUnknownCard       = errors.New("card is not registered")
	ErrDuplicateCard     = errors.New("card already registered")
	ErrNoGame            = errors.New("no game to resume")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")

	// ErrProtocol reports the machine was driven out of protocol. The engine
	// recovers, restores the previous state and logs it.
	ErrProtocol = errors.New("protocol violation")
)
