package game

import "fmt"

// Button identifies one of the three physical buttons.
type Button int

const (
	ButtonLeft Button = iota
	ButtonCenter
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "LEFT"
	case ButtonCenter:
		return "CENTER"
	case ButtonRight:
		return "RIGHT"
	default:
		return fmt.Sprintf("BUTTON_%d", int(b))
	}
}

// PressKind distinguishes short and long presses.
type PressKind int

const (
	PressShort PressKind = iota
	PressLong
)

func (k PressKind) String() string {
	if k == PressLong {
		return "LONG"
	}
	return "SHORT"
}

// CardKind is the category printed on an NFC card.
type CardKind int

const (
	CardPlayer CardKind = iota
	CardProperty
	CardEvent
)

func (k CardKind) String() string {
	switch k {
	case CardPlayer:
		return "PLAYER"
	case CardProperty:
		return "PROPERTY"
	case CardEvent:
		return "EVENT"
	default:
		return fmt.Sprintf("CARD_%d", int(k))
	}
}

// Input is a discrete, already-decoded event from an input collaborator.
type Input interface {
	isInput()
	String() string
}

// ButtonPress is a classified button press.
type ButtonPress struct {
	Button Button
	Kind   PressKind
}

func (ButtonPress) isInput() {}

func (b ButtonPress) String() string {
	return fmt.Sprintf("press %s %s", b.Button, b.Kind)
}

// CardTap is a decoded NFC card read. For player cards ID is the card's
// unique id and Name the registered display name; property cards carry the
// tile index and event cards the event id in ID.
type CardTap struct {
	Kind CardKind
	ID   string
	Name string
}

func (CardTap) isInput() {}

func (c CardTap) String() string {
	return fmt.Sprintf("tap %s %s", c.Kind, c.ID)
}

// Short and Long build button presses.
func Short(b Button) ButtonPress { return ButtonPress{Button: b, Kind: PressShort} }
func Long(b Button) ButtonPress  { return ButtonPress{Button: b, Kind: PressLong} }
