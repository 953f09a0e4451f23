package game

import (
	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

func (e *Engine) pressJailTurn(g *Game, in ButtonPress) error {
	p := g.Current()
	switch in.Button {
	case ButtonCenter:
		e.jailRoll(g, p)
		return nil
	case ButtonLeft:
		return e.payJailFine(g, p.ID)
	default:
		return e.useJailCard(g, p.ID)
	}
}

// jailRoll is the roll of a jailed player. Doubles free them and they move
// with no extra roll; otherwise the jail turn counts, and the last allowed
// turn forces the fine and moves them by the same roll.
func (e *Engine) jailRoll(g *Game, p *ledger.Player) {
	roll := e.roller.Roll()
	g.Dice = roll
	g.Rolled = true
	evt := rules.NewEventWithAmount(rules.EventDiceRolled, p.ID, 0, roll.Total())
	evt.Flag = roll.Doubles()
	e.emit(g, evt)

	if roll.Doubles() {
		p.Doubles = 0
		e.release(g, p)
		e.move(g, p, roll.Total())
		e.setState(g, StateMoved)
		return
	}
	p.JailTurns++
	if p.JailTurns < g.Settings.JailMaxTurns {
		e.logger.Debug("stays in jail",
			zap.String("game_id", g.ID),
			zap.Int("player", p.ID),
			zap.Int("jail_turns", p.JailTurns),
		)
		e.finishTurn(g)
		return
	}
	e.charge(g, p.ID, ledger.Bank, board.JailFine, rules.EventPaymentMade, board.JailPosition)
	if !p.Alive() {
		e.finishTurn(g)
		return
	}
	e.release(g, p)
	e.move(g, p, roll.Total())
	e.proceed(g, StateMoved)
}

func (e *Engine) release(g *Game, p *ledger.Player) {
	p.InJail = false
	p.JailTurns = 0
	e.flash(g, FlashFreed)
	e.emit(g, rules.NewTileEvent(rules.EventReleasedFromJail, p.ID, board.JailPosition, 0))
}

func (e *Engine) jailedCurrent(g *Game, playerID int) (*ledger.Player, error) {
	if g.State != StateJailTurn {
		return nil, ErrWrongState
	}
	if playerID != e.currentID(g) {
		return nil, ErrNotYourTurn
	}
	p := g.Ledger.Player(playerID)
	if !p.InJail {
		return nil, ErrNotInJail
	}
	return p, nil
}

func (e *Engine) payJailFine(g *Game, playerID int) error {
	p, err := e.jailedCurrent(g, playerID)
	if err != nil {
		return err
	}
	if p.Balance < board.JailFine {
		return ErrInsufficientFunds
	}
	e.charge(g, p.ID, ledger.Bank, board.JailFine, rules.EventPaymentMade, board.JailPosition)
	e.release(g, p)
	e.setState(g, StateTurnStart)
	return nil
}

func (e *Engine) useJailCard(g *Game, playerID int) error {
	p, err := e.jailedCurrent(g, playerID)
	if err != nil {
		return err
	}
	if !p.HasJailCard {
		return ErrNoJailCard
	}
	p.HasJailCard = false
	e.release(g, p)
	e.setState(g, StateTurnStart)
	return nil
}
