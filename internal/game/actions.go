package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rent"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// Buy purchases the tile the player landed on.
func (e *Engine) Buy(playerID int) error {
	return e.transact("buy", func(g *Game) error {
		return e.buy(g, playerID)
	})
}

// PayRent settles the pending rent when rent is not automatic.
func (e *Engine) PayRent(playerID int) error {
	return e.transact("pay rent", func(g *Game) error {
		return e.payRent(g, playerID)
	})
}

// Build adds one improvement to tile.
func (e *Engine) Build(playerID, tile int) error {
	return e.transact("build", func(g *Game) error {
		return e.build(g, playerID, tile)
	})
}

// Sell removes one improvement from tile for half its cost.
func (e *Engine) Sell(playerID, tile int) error {
	return e.transact("sell", func(g *Game) error {
		return e.sell(g, playerID, tile)
	})
}

// Mortgage mortgages an unimproved tile for its mortgage value.
func (e *Engine) Mortgage(playerID, tile int) error {
	return e.transact("mortgage", func(g *Game) error {
		return e.mortgage(g, playerID, tile)
	})
}

// Unmortgage lifts a mortgage for the redemption amount.
func (e *Engine) Unmortgage(playerID, tile int) error {
	return e.transact("unmortgage", func(g *Game) error {
		return e.unmortgage(g, playerID, tile)
	})
}

// PayJailFine frees a jailed player for the fine before rolling.
func (e *Engine) PayJailFine(playerID int) error {
	return e.transact("pay jail fine", func(g *Game) error {
		return e.payJailFine(g, playerID)
	})
}

// UseJailCard frees a jailed player with a get-out-of-jail card.
func (e *Engine) UseJailCard(playerID int) error {
	return e.transact("use jail card", func(g *Game) error {
		return e.useJailCard(g, playerID)
	})
}

// SelectTradePartner opens (or retargets) a trade with partner.
func (e *Engine) SelectTradePartner(partner int) error {
	return e.transact("select trade partner", func(g *Game) error {
		if g.State == StateTurnStart {
			if err := e.openTrade(g); err != nil {
				return err
			}
		}
		return e.selectTradePartner(g, partner)
	})
}

// SetTradeMoney sets the cash each side puts into the trade.
func (e *Engine) SetTradeMoney(offer, request int) error {
	return e.transact("set trade money", func(g *Game) error {
		if g.State != StateTradeOffer || g.Trade == nil {
			return ErrWrongState
		}
		if offer < 0 || request < 0 {
			return fmt.Errorf("%w: negative amount", ErrTradeInvalid)
		}
		g.Trade.Offer = offer
		g.Trade.Request = request
		e.touch(g)
		return nil
	})
}

// ToggleTradeProperty adds tile to, or removes it from, the trade.
func (e *Engine) ToggleTradeProperty(tile int) error {
	return e.transact("toggle trade property", func(g *Game) error {
		return e.toggleTradeProperty(g, tile)
	})
}

// ExecuteTrade validates and applies the trade atomically.
func (e *Engine) ExecuteTrade() error {
	return e.transact("execute trade", func(g *Game) error {
		return e.executeTrade(g)
	})
}

// Bid places an identified bid in the running auction.
func (e *Engine) Bid(playerID, amount int) error {
	return e.transact("bid", func(g *Game) error {
		return e.bid(g, playerID, amount)
	})
}

// SurrenderProperty hands a tile to the creditor of the head debt.
func (e *Engine) SurrenderProperty(tile int) error {
	return e.transact("surrender", func(g *Game) error {
		return e.surrender(g, tile)
	})
}

// EndTurn ends the current player's turn, forfeiting any doubles re-roll.
func (e *Engine) EndTurn(playerID int) error {
	return e.transact("end turn", func(g *Game) error {
		switch g.State {
		case StateTurnStart, StateQuickMenu, StateJailTurn:
		case StateTileAction:
			if g.Tx.Kind != TxImprove && g.Tx.Kind != TxNotice {
				return ErrWrongState
			}
		default:
			return ErrWrongState
		}
		if playerID != e.currentID(g) {
			return ErrNotYourTurn
		}
		return e.forceEndTurn(g)
	})
}

// manager returns the player allowed to manage property right now: the
// current player during their turn, or the head debtor while in debt.
func (e *Engine) manager(g *Game, playerID int, raising bool) (*ledger.Player, error) {
	switch g.State {
	case StateTurnStart, StateTileAction, StateQuickMenu, StateJailTurn:
		if playerID != e.currentID(g) {
			return nil, ErrNotYourTurn
		}
	case StateDebt:
		if !raising || len(g.Debts) == 0 || g.Debts[0].Debtor != playerID {
			return nil, ErrWrongState
		}
	default:
		return nil, ErrWrongState
	}
	p := g.Ledger.Player(playerID)
	if p == nil || !p.Alive() {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

func (e *Engine) build(g *Game, playerID, tile int) error {
	p, err := e.manager(g, playerID, false)
	if err != nil {
		return err
	}
	if !board.Valid(tile) || !p.Owned.Has(tile) {
		return ErrNotOwner
	}
	if err := rent.CheckBuild(g.Ledger, tile); err != nil {
		return err
	}
	cost := board.At(tile).ImprovementCost
	if p.Balance < cost {
		return ErrInsufficientFunds
	}
	if err := g.Ledger.Improve(tile); err != nil {
		return err
	}
	p.Balance -= cost
	e.emit(g, rules.NewTileEvent(rules.EventImprovementBuilt, p.ID, tile, cost))
	e.touch(g)
	return nil
}

func (e *Engine) sell(g *Game, playerID, tile int) error {
	p, err := e.manager(g, playerID, true)
	if err != nil {
		return err
	}
	if !board.Valid(tile) || !p.Owned.Has(tile) {
		return ErrNotOwner
	}
	if err := rent.CheckSell(g.Ledger, tile); err != nil {
		return err
	}
	if err := g.Ledger.Unimprove(tile); err != nil {
		return err
	}
	value := rent.SellValue(board.At(tile))
	p.Balance += value
	e.emit(g, rules.NewTileEvent(rules.EventImprovementSold, p.ID, tile, value))
	e.touch(g)
	if g.State == StateDebt {
		e.checkDebts(g)
	}
	return nil
}

func (e *Engine) mortgage(g *Game, playerID, tile int) error {
	p, err := e.manager(g, playerID, true)
	if err != nil {
		return err
	}
	if !board.Valid(tile) || !p.Owned.Has(tile) {
		return ErrNotOwner
	}
	if err := rent.CheckMortgage(g.Ledger, tile); err != nil {
		return err
	}
	value := board.At(tile).Mortgage
	g.Ledger.SetMortgaged(tile, true)
	p.Balance += value
	e.logger.Debug("property mortgaged",
		zap.String("game_id", g.ID),
		zap.Int("player", p.ID),
		zap.Int("tile", tile),
	)
	e.emit(g, rules.NewTileEvent(rules.EventMortgaged, p.ID, tile, value))
	e.touch(g)
	if g.State == StateDebt {
		e.checkDebts(g)
	}
	return nil
}

func (e *Engine) unmortgage(g *Game, playerID, tile int) error {
	p, err := e.manager(g, playerID, false)
	if err != nil {
		return err
	}
	if !board.Valid(tile) || !p.Owned.Has(tile) {
		return ErrNotOwner
	}
	if err := rent.CheckUnmortgage(g.Ledger, tile); err != nil {
		return err
	}
	cost := board.At(tile).Redemption()
	if p.Balance < cost {
		return ErrInsufficientFunds
	}
	p.Balance -= cost
	g.Ledger.SetMortgaged(tile, false)
	e.emit(g, rules.NewTileEvent(rules.EventUnmortgaged, p.ID, tile, cost))
	e.touch(g)
	return nil
}
