package game

import (
	"fmt"
	"time"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
)

// BankruptcyPolicy decides where a bankrupt player's tiles go.
type BankruptcyPolicy string

const (
	// BankruptcyToCreditor hands tiles to a player creditor (mortgages kept).
	BankruptcyToCreditor BankruptcyPolicy = "creditor"
	// BankruptcyToBank always returns tiles to the bank, unowned and unmortgaged.
	BankruptcyToBank BankruptcyPolicy = "bank"
)

// Settings are the rule and presentation options a game runs with.
type Settings struct {
	StartingMoney   int
	FreeParkingPool bool
	JailMaxTurns    int
	AutoRent        bool
	CardPayments    bool // buying and rent wait for the payer's card tap
	DiceSpeed       int  // 1 slow .. 3 fast
	Volume          int  // 0 mute .. 5
	Extension       bool // auction and debt settlement
	Bankruptcy      BankruptcyPolicy

	InputTimeout     time.Duration
	AuctionSeconds   int
	AuctionIncrement int
	SplashDuration   time.Duration
	MoveDelay        time.Duration
	FlashDuration    time.Duration
}

// DefaultSettings returns the factory configuration.
func DefaultSettings() Settings {
	return Settings{
		StartingMoney:    board.StartingMoney,
		FreeParkingPool:  true,
		JailMaxTurns:     3,
		AutoRent:         true,
		CardPayments:     false,
		DiceSpeed:        2,
		Volume:           3,
		Extension:        true,
		Bankruptcy:       BankruptcyToCreditor,
		InputTimeout:     20 * time.Second,
		AuctionSeconds:   10,
		AuctionIncrement: 20,
		SplashDuration:   2500 * time.Millisecond,
		MoveDelay:        800 * time.Millisecond,
		FlashDuration:    1500 * time.Millisecond,
	}
}

// Validate rejects out-of-range settings.
func (s Settings) Validate() error {
	if s.StartingMoney <= 0 {
		return fmt.Errorf("starting money must be positive, got %d", s.StartingMoney)
	}
	if s.JailMaxTurns < 1 || s.JailMaxTurns > 5 {
		return fmt.Errorf("jail max turns must be 1..5, got %d", s.JailMaxTurns)
	}
	if s.DiceSpeed < 1 || s.DiceSpeed > 3 {
		return fmt.Errorf("dice speed must be 1..3, got %d", s.DiceSpeed)
	}
	if s.Volume < 0 || s.Volume > 5 {
		return fmt.Errorf("volume must be 0..5, got %d", s.Volume)
	}
	switch s.Bankruptcy {
	case BankruptcyToCreditor, BankruptcyToBank:
	default:
		return fmt.Errorf("unknown bankruptcy policy %q", s.Bankruptcy)
	}
	if s.InputTimeout <= 0 {
		return fmt.Errorf("input timeout must be positive")
	}
	if s.AuctionSeconds <= 0 || s.AuctionIncrement <= 0 {
		return fmt.Errorf("auction duration and increment must be positive")
	}
	return nil
}

// DiceSettle is how long the dice animate before the roll is taken.
func (s Settings) DiceSettle() time.Duration {
	switch s.DiceSpeed {
	case 1:
		return 1800 * time.Millisecond
	case 3:
		return 600 * time.Millisecond
	default:
		return 1200 * time.Millisecond
	}
}

// SettingItem is an entry on the settings screen.
type SettingItem int

const (
	SettingStartingMoney SettingItem = iota
	SettingFreeParking
	SettingJailTurns
	SettingAutoRent
	SettingCardPayments
	SettingDiceSpeed
	SettingVolume
	numSettingItems
)

var settingNames = map[SettingItem]string{
	SettingStartingMoney: "STARTING_MONEY",
	SettingFreeParking:   "FREE_PARKING_POOL",
	SettingJailTurns:     "JAIL_MAX_TURNS",
	SettingAutoRent:      "AUTO_RENT",
	SettingCardPayments:  "NFC_REQUIRED",
	SettingDiceSpeed:     "DICE_SPEED",
	SettingVolume:        "VOLUME",
}

func (i SettingItem) String() string {
	if name, ok := settingNames[i]; ok {
		return name
	}
	return fmt.Sprintf("SETTING_%d", int(i))
}

// Cycle advances one setting to its next value the way the settings screen does.
func (s *Settings) Cycle(item SettingItem) {
	switch item {
	case SettingStartingMoney:
		switch s.StartingMoney {
		case 1500:
			s.StartingMoney = 2000
		case 2000:
			s.StartingMoney = 2500
		case 2500:
			s.StartingMoney = 1000
		default:
			s.StartingMoney = 1500
		}
	case SettingFreeParking:
		s.FreeParkingPool = !s.FreeParkingPool
	case SettingJailTurns:
		s.JailMaxTurns = s.JailMaxTurns%5 + 1
	case SettingAutoRent:
		s.AutoRent = !s.AutoRent
	case SettingCardPayments:
		s.CardPayments = !s.CardPayments
	case SettingDiceSpeed:
		s.DiceSpeed = s.DiceSpeed%3 + 1
	case SettingVolume:
		s.Volume = (s.Volume + 1) % 6
	}
}
