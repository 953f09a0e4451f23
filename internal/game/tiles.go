package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rent"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// rentMode selects how rent is computed when a card sends a player to a tile.
type rentMode int

const (
	rentNormal rentMode = iota
	rentDoubleRailroad
	rentTenTimesDice
)

type tileHandler func(e *Engine, g *Game, p *ledger.Player, mode rentMode)

// tileHandlers has one entry per board.Kind.
var tileHandlers map[board.Kind]tileHandler

func init() {
	tileHandlers = map[board.Kind]tileHandler{
		board.KindGo:          (*Engine).landNotice,
		board.KindProperty:    (*Engine).landOwnable,
		board.KindRailroad:    (*Engine).landOwnable,
		board.KindUtility:     (*Engine).landOwnable,
		board.KindChance:      (*Engine).landCard,
		board.KindCommunity:   (*Engine).landCard,
		board.KindTax:         (*Engine).landTax,
		board.KindJail:        (*Engine).landNotice,
		board.KindFreeParking: (*Engine).landFreeParking,
		board.KindGoToJail:    (*Engine).landGoToJail,
	}
}

// resolveTile dispatches on the kind of the tile p stands on.
func (e *Engine) resolveTile(g *Game, p *ledger.Player, mode rentMode) {
	if p == nil {
		panic("resolving a tile with no current player")
	}
	t := board.At(p.Position)
	handle, ok := tileHandlers[t.Kind]
	if !ok {
		panic(fmt.Sprintf("no handler for tile kind %s", t.Kind))
	}
	e.logger.Debug("resolving tile",
		zap.String("game_id", g.ID),
		zap.Int("player", p.ID),
		zap.Int("tile", t.Index),
		zap.String("kind", t.Kind.String()),
	)
	handle(e, g, p, mode)
}

func (e *Engine) landNotice(g *Game, p *ledger.Player, _ rentMode) {
	g.Tx = Transaction{Kind: TxNotice, Player: p.ID, Tile: p.Position}
	e.setState(g, StateTileAction)
}

func (e *Engine) landOwnable(g *Game, p *ledger.Player, mode rentMode) {
	tile := p.Position
	t := board.At(tile)
	prop := g.Ledger.PropertyAt(tile)
	switch {
	case !prop.Owned():
		g.Tx = Transaction{Kind: TxBuy, Player: p.ID, Tile: tile, Amount: t.Price}
		e.setState(g, StateTileAction)
	case prop.Owner == p.ID:
		g.Tx = Transaction{Kind: TxImprove, Player: p.ID, Tile: tile, Amount: t.ImprovementCost}
		e.setState(g, StateTileAction)
	case prop.Mortgaged:
		g.Tx = Transaction{Kind: TxNotice, Player: p.ID, Creditor: prop.Owner, Tile: tile}
		e.setState(g, StateTileAction)
	default:
		g.Tx = Transaction{
			Kind:     TxRent,
			Player:   p.ID,
			Creditor: prop.Owner,
			Tile:     tile,
			Amount:   e.rentDue(g, tile, mode),
		}
		if g.Settings.AutoRent && !g.Settings.CardPayments {
			e.settleRent(g)
			return
		}
		e.setState(g, StateTileAction)
	}
}

func (e *Engine) rentDue(g *Game, tile int, mode rentMode) int {
	t := board.At(tile)
	switch {
	case mode == rentDoubleRailroad && t.Kind == board.KindRailroad:
		return 2 * rent.Rent(g.Ledger, tile, g.Dice.Total())
	case mode == rentTenTimesDice && t.Kind == board.KindUtility:
		return 10 * g.Dice.Total()
	default:
		return rent.Rent(g.Ledger, tile, g.Dice.Total())
	}
}

func (e *Engine) landTax(g *Game, p *ledger.Player, _ rentMode) {
	t := board.At(p.Position)
	g.Tx = Transaction{Kind: TxTax, Player: p.ID, Creditor: ledger.Bank, Tile: t.Index, Amount: t.Price}
	e.setState(g, StateTileAction)
}

func (e *Engine) landFreeParking(g *Game, p *ledger.Player, _ rentMode) {
	if g.Settings.FreeParkingPool && g.FreeParking > 0 {
		pool := g.FreeParking
		g.FreeParking = 0
		p.Balance += pool
		e.emit(g, rules.NewTileEvent(rules.EventFreeParking, p.ID, p.Position, pool))
		e.flash(g, FlashParking)
	}
	e.landNotice(g, p, rentNormal)
}

func (e *Engine) landGoToJail(g *Game, p *ledger.Player, _ rentMode) {
	e.sendToJail(g, p)
	e.finishTurn(g)
}

func (e *Engine) landCard(g *Game, p *ledger.Player, _ rentMode) {
	kind := board.DeckCommunity
	if board.At(p.Position).Kind == board.KindChance {
		kind = board.DeckChance
	}
	idx := g.deckFor(kind).Draw()
	card, err := board.CardAt(kind, idx)
	if err != nil {
		panic(err)
	}
	evt := rules.NewTileEvent(rules.EventCardDrawn, p.ID, p.Position, idx)
	evt.Data = card.Text
	evt.Metadata["deck"] = kind.String()
	e.emit(g, evt)

	g.Tx = Transaction{Kind: TxCard, Player: p.ID, Tile: p.Position, Deck: kind, Card: idx}
	e.setState(g, StateCardDraw)
}

// pressTileAction confirms or declines the pending tile transaction.
func (e *Engine) pressTileAction(g *Game, in ButtonPress) error {
	switch g.Tx.Kind {
	case TxBuy:
		switch in.Button {
		case ButtonCenter:
			if g.Settings.CardPayments {
				e.awaitCard(g, WaitBuyPlayer)
				return nil
			}
			return e.buy(g, g.Tx.Player)
		case ButtonRight:
			e.declineBuy(g)
			return nil
		}
	case TxRent:
		if in.Button == ButtonCenter {
			if g.Settings.CardPayments {
				e.awaitCard(g, WaitRentPayer)
				return nil
			}
			return e.payRent(g, g.Tx.Player)
		}
	case TxTax:
		if in.Button == ButtonCenter {
			e.payTax(g)
			return nil
		}
	case TxImprove:
		switch in.Button {
		case ButtonCenter:
			if err := e.build(g, g.Tx.Player, g.Tx.Tile); err != nil {
				return err
			}
			e.finishTurn(g)
			return nil
		case ButtonRight:
			e.finishTurn(g)
			return nil
		}
	case TxNotice:
		if in.Button != ButtonLeft {
			e.finishTurn(g)
			return nil
		}
	default:
		panic(fmt.Sprintf("tile action with no pending transaction (tx %s)", g.Tx.Kind))
	}
	return ErrWrongState
}
