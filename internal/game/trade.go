package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// tradeStep is the cash increment of the trade money buttons.
const tradeStep = 50

func (e *Engine) openTrade(g *Game) error {
	cur := e.currentID(g)
	partner := g.Turns.NextAfter(cur, g.alive)
	if partner == cur {
		return fmt.Errorf("%w: nobody to trade with", ErrTradeInvalid)
	}
	g.Trade = &Trade{Partner: partner, ReturnTo: g.State}
	e.setState(g, StateTradeSelect)
	return nil
}

func (e *Engine) pressTradeSelect(g *Game, in ButtonPress) error {
	switch in.Button {
	case ButtonRight:
		next := g.Turns.NextAfter(g.Trade.Partner, g.alive)
		if next == e.currentID(g) {
			next = g.Turns.NextAfter(next, g.alive)
		}
		g.Trade.Partner = next
		e.touch(g)
	case ButtonLeft:
		e.cancelTrade(g)
	case ButtonCenter:
		e.setState(g, StateTradeOffer)
	}
	return nil
}

func (e *Engine) selectTradePartner(g *Game, partner int) error {
	if g.State != StateTradeSelect || g.Trade == nil {
		return ErrWrongState
	}
	if partner == e.currentID(g) || !g.alive(partner) {
		return fmt.Errorf("%w: bad partner %d", ErrTradeInvalid, partner)
	}
	if partner != g.Trade.Partner {
		g.Trade.Partner = partner
		g.Trade.Take = 0
		g.Trade.Request = 0
	}
	e.setState(g, StateTradeOffer)
	return nil
}

func (e *Engine) pressTradeOffer(g *Game, in ButtonPress) error {
	t := g.Trade
	switch {
	case in.Button == ButtonCenter:
		return e.executeTrade(g)
	case in.Button == ButtonRight && in.Kind == PressLong:
		t.Request += tradeStep
	case in.Button == ButtonRight:
		t.Offer += tradeStep
	case in.Button == ButtonLeft && in.Kind == PressLong:
		t.Offer = 0
		t.Request = 0
	default:
		e.cancelTrade(g)
		return nil
	}
	e.touch(g)
	return nil
}

func (e *Engine) cancelTrade(g *Game) {
	back := g.Trade.ReturnTo
	g.Trade = nil
	e.setState(g, back)
}

// toggleTradeProperty flips a tile in or out of the trade. The side is picked
// by the tile's owner. Improved tiles cannot be added.
func (e *Engine) toggleTradeProperty(g *Game, tile int) error {
	if g.State != StateTradeOffer || g.Trade == nil {
		return ErrWrongState
	}
	if !board.Valid(tile) {
		return ErrNotOwner
	}
	t := g.Trade
	prop := g.Ledger.PropertyAt(tile)
	var side *ledger.TileSet
	switch prop.Owner {
	case e.currentID(g):
		side = &t.Give
	case t.Partner:
		side = &t.Take
	default:
		return ErrNotOwner
	}
	if side.Has(tile) {
		side.Remove(tile)
	} else {
		if prop.Level > 0 {
			return fmt.Errorf("%w: %s is improved", ErrTradeInvalid, board.At(tile).Name)
		}
		side.Add(tile)
	}
	e.touch(g)
	return nil
}

// executeTrade checks every leg against the ledger as it is now, then swaps
// cash and tiles. Nothing changes unless every check passes.
func (e *Engine) executeTrade(g *Game) error {
	if g.State != StateTradeOffer || g.Trade == nil {
		return ErrWrongState
	}
	t := *g.Trade
	cur := g.Current()
	partner := g.Ledger.Player(t.Partner)
	if partner == nil || !partner.Alive() || partner.ID == cur.ID {
		return fmt.Errorf("%w: partner %d not in game", ErrTradeInvalid, t.Partner)
	}
	if t.Offer < 0 || t.Request < 0 {
		return fmt.Errorf("%w: negative amount", ErrTradeInvalid)
	}
	if cur.Balance < t.Offer || partner.Balance < t.Request {
		return fmt.Errorf("%w: %w", ErrTradeInvalid, ErrInsufficientFunds)
	}
	if !cur.Owned.ContainsAll(t.Give) || !partner.Owned.ContainsAll(t.Take) {
		return fmt.Errorf("%w: %w", ErrTradeInvalid, ErrNotOwner)
	}
	for _, tile := range append(t.Give.Tiles(), t.Take.Tiles()...) {
		if g.Ledger.PropertyAt(tile).Level > 0 {
			return fmt.Errorf("%w: %s is improved", ErrTradeInvalid, board.At(tile).Name)
		}
	}

	cur.Balance += t.Request - t.Offer
	partner.Balance += t.Offer - t.Request
	for _, tile := range t.Give.Tiles() {
		if err := g.Ledger.Assign(tile, partner.ID); err != nil {
			return err
		}
	}
	for _, tile := range t.Take.Tiles() {
		if err := g.Ledger.Assign(tile, cur.ID); err != nil {
			return err
		}
	}

	e.logger.Info("trade executed",
		zap.String("game_id", g.ID),
		zap.Int("player", cur.ID),
		zap.Int("partner", partner.ID),
		zap.Int("offer", t.Offer),
		zap.Int("request", t.Request),
		zap.Ints("give", t.Give.Tiles()),
		zap.Ints("take", t.Take.Tiles()),
	)
	evt := rules.NewEventWithAmount(rules.EventTradeExecuted, cur.ID, partner.ID, t.Offer-t.Request)
	evt.Metadata["give"] = joinInts(t.Give.Tiles())
	evt.Metadata["take"] = joinInts(t.Take.Tiles())
	e.emit(g, evt)
	e.flash(g, FlashTrade)
	g.Trade = nil
	e.setState(g, t.ReturnTo)
	return nil
}
