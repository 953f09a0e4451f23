package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rent"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// applyDrawnCard applies the card shown in CardDraw to the current player.
func (e *Engine) applyDrawnCard(g *Game) error {
	tx := g.Tx
	if tx.Kind != TxCard {
		panic(fmt.Sprintf("card draw with pending %s", tx.Kind))
	}
	card, err := board.CardAt(tx.Deck, tx.Card)
	if err != nil {
		panic(err)
	}
	p := g.Ledger.Player(tx.Player)
	g.Tx = Transaction{}

	moved, mode := e.applyCard(g, p, card)
	if g.State == StateGameOver {
		return nil
	}
	if moved && p.Alive() && !p.InJail && board.At(p.Position).Kind.Ownable() {
		if len(g.Debts) > 0 {
			e.proceed(g, StateMoved)
			return nil
		}
		e.resolveTile(g, p, mode)
		return nil
	}
	e.finishTurn(g)
	return nil
}

// applyCard performs a card effect for p. It reports whether p was relocated
// and, if so, how rent on the landing tile is computed.
func (e *Engine) applyCard(g *Game, p *ledger.Player, card board.Card) (bool, rentMode) {
	evt := rules.NewEventWithAmount(rules.EventCardApplied, p.ID, 0, card.Value1)
	evt.Data = card.Effect.String()
	e.emit(g, evt)

	switch card.Effect {
	case board.EffectMoveTo:
		e.moveTo(g, p, card.Value1)
		return true, rentNormal
	case board.EffectMoveRel:
		p.Position = board.Wrap(p.Position + card.Value1)
		e.emit(g, rules.NewTileEvent(rules.EventPlayerMoved, p.ID, p.Position, card.Value1))
		return true, rentNormal
	case board.EffectCollect:
		p.Balance += card.Value1
	case board.EffectPay:
		e.charge(g, p.ID, ledger.Bank, card.Value1, rules.EventPaymentMade, -1)
	case board.EffectCollectEach:
		for _, other := range g.Ledger.Alive() {
			if other != p.ID {
				e.charge(g, other, p.ID, card.Value1, rules.EventPaymentMade, -1)
			}
		}
	case board.EffectPayEach:
		for _, other := range g.Ledger.Alive() {
			if other != p.ID {
				e.charge(g, p.ID, other, card.Value1, rules.EventPaymentMade, -1)
			}
		}
	case board.EffectJailFree:
		p.HasJailCard = true
	case board.EffectGoJail:
		e.sendToJail(g, p)
	case board.EffectRepairs:
		houses, hotels := g.Ledger.Improvements(p.ID)
		cost := rent.RepairsCost(houses, hotels, card.Value1, card.Value2)
		e.charge(g, p.ID, ledger.Bank, cost, rules.EventPaymentMade, -1)
	case board.EffectNearestRailroad:
		e.advanceTo(g, p, board.KindRailroad)
		return true, rentDoubleRailroad
	case board.EffectNearestUtility:
		e.advanceTo(g, p, board.KindUtility)
		return true, rentTenTimesDice
	case board.EffectRentBoost:
		e.rentBoost(g, p)
	default:
		panic(fmt.Sprintf("unhandled card effect %s", card.Effect))
	}
	e.touch(g)
	return false, rentNormal
}

func (e *Engine) advanceTo(g *Game, p *ledger.Player, kind board.Kind) {
	dest, crossed := board.NextOfKind(p.Position, kind)
	if crossed {
		e.paySalary(g, p)
	}
	p.Position = dest
	e.emit(g, rules.NewTileEvent(rules.EventPlayerMoved, p.ID, dest, 0))
}

// rentBoost adds one free improvement on the first tile p may legally build on.
func (e *Engine) rentBoost(g *Game, p *ledger.Player) {
	for _, tile := range p.Owned.Tiles() {
		if rent.CheckBuild(g.Ledger, tile) != nil {
			continue
		}
		if g.Ledger.Improve(tile) != nil {
			continue
		}
		e.emit(g, rules.NewTileEvent(rules.EventImprovementBuilt, p.ID, tile, 0))
		return
	}
}

// openEvent starts a tap-in event: the next player card tapped receives it.
func (e *Engine) openEvent(g *Game, id int) error {
	card, ok := board.EventCard(id)
	if !ok {
		return fmt.Errorf("%w: event %d", ErrUnknownCard, id)
	}
	p := g.Current()
	evt := rules.NewEvent(rules.EventCardDrawn, p.ID)
	evt.Data = card.Text
	evt.Metadata["deck"] = "EVENT"
	e.emit(g, evt)
	g.Tx = Transaction{Kind: TxEvent, Player: p.ID, Card: id}
	e.awaitCard(g, WaitEventTarget)
	return nil
}

func (e *Engine) applyEvent(g *Game, target *ledger.Player) error {
	card, ok := board.EventCard(g.Tx.Card)
	if !ok {
		panic(fmt.Sprintf("pending event %d has no card", g.Tx.Card))
	}
	if !target.Alive() {
		return ErrUnknownCard
	}
	g.Tx = Transaction{}
	g.Deadline = time.Time{}
	e.applyCard(g, target, card)
	if g.State == StateGameOver {
		return nil
	}
	cur := g.Current()
	if !cur.Alive() || cur.InJail {
		e.finishTurn(g)
		return nil
	}
	e.proceed(g, StateTurnStart)
	return nil
}

func (e *Engine) awaitCard(g *Game, reason WaitReason) {
	g.Tx.Wait = reason
	g.Deadline = e.clock().Add(g.Settings.InputTimeout)
	e.setState(g, StateWaitCard)
}

// resolveWait hands a player card tap to the pending wait.
func (e *Engine) resolveWait(g *Game, p *ledger.Player) error {
	switch g.Tx.Wait {
	case WaitBuyPlayer:
		return e.buy(g, p.ID)
	case WaitRentPayer:
		return e.payRent(g, p.ID)
	case WaitEventTarget:
		return e.applyEvent(g, p)
	default:
		panic(fmt.Sprintf("waiting for a card with reason %s", g.Tx.Wait))
	}
}

func (e *Engine) pressWaitCard(g *Game, in ButtonPress) error {
	if in.Button != ButtonLeft || !g.Tx.Wait.Cancellable() {
		return ErrWrongState
	}
	g.Tx.Wait = WaitNone
	g.Deadline = time.Time{}
	e.setState(g, StateTileAction)
	return nil
}

// timeout discards the pending context of an expired wait. A player who
// already rolled loses the rest of the turn; otherwise play returns to TurnStart.
func (e *Engine) timeout(g *Game) {
	e.logger.Warn("input timeout",
		zap.String("game_id", g.ID),
		zap.String("state", g.State.String()),
		zap.String("tx", g.Tx.Kind.String()),
		zap.String("wait", g.Tx.Wait.String()),
	)
	evt := rules.NewEvent(rules.EventInputTimeout, e.currentID(g))
	evt.Data = g.Tx.Kind.String()
	e.emit(g, evt)
	e.flash(g, FlashTimeout)
	g.Tx = Transaction{}
	g.Auction = nil
	g.Deadline = time.Time{}
	if g.Rolled {
		e.finishTurn(g)
		return
	}
	e.setState(g, StateTurnStart)
}
