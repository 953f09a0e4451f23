package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// declineBuy passes on a purchase. With the extension the bank auctions the tile.
func (e *Engine) declineBuy(g *Game) {
	tile := g.Tx.Tile
	g.Tx = Transaction{}
	if !g.Settings.Extension {
		e.finishTurn(g)
		return
	}
	g.Auction = &Auction{Tile: tile}
	g.Deadline = e.clock().Add(time.Duration(g.Settings.AuctionSeconds) * time.Second)
	e.logger.Debug("auction started",
		zap.String("game_id", g.ID),
		zap.Int("tile", tile),
	)
	e.emit(g, rules.NewTileEvent(rules.EventAuctionStarted, e.currentID(g), tile, 0))
	e.setState(g, StateAuction)
}

// pressAuction raises the running bid by one increment.
func (e *Engine) pressAuction(g *Game, in ButtonPress) error {
	a := g.Auction
	if in.Button != ButtonCenter || a.Awaiting {
		return ErrWrongState
	}
	a.Bid += g.Settings.AuctionIncrement
	a.Bidder = 0
	e.emit(g, rules.NewTileEvent(rules.EventAuctionBid, 0, a.Tile, a.Bid))
	e.touch(g)
	return nil
}

func (e *Engine) bid(g *Game, playerID, amount int) error {
	if g.State != StateAuction || g.Auction == nil || g.Auction.Awaiting {
		return ErrWrongState
	}
	if !g.alive(playerID) {
		return ErrUnknownCard
	}
	a := g.Auction
	if amount <= a.Bid {
		return ErrBidTooLow
	}
	a.Bid = amount
	a.Bidder = playerID
	e.emit(g, rules.NewTileEvent(rules.EventAuctionBid, playerID, a.Tile, amount))
	e.touch(g)
	return nil
}

// tickAuction closes bidding at the deadline. Anonymous bids then wait for
// the winner to tap their card.
func (e *Engine) tickAuction(g *Game, now time.Time) {
	a := g.Auction
	if now.Before(g.Deadline) {
		return
	}
	if a.Awaiting {
		e.timeout(g)
		return
	}
	switch {
	case a.Bid == 0:
		g.Auction = nil
		g.Deadline = time.Time{}
		e.flash(g, FlashNoSale)
		e.finishTurn(g)
	case a.Bidder != 0:
		e.settleAuction(g, g.Ledger.Player(a.Bidder))
	default:
		a.Awaiting = true
		g.Deadline = now.Add(g.Settings.InputTimeout)
		e.touch(g)
	}
}

func (e *Engine) auctionWinnerTap(g *Game, p *ledger.Player) error {
	if g.Auction == nil || !g.Auction.Awaiting {
		return ErrWrongState
	}
	if !p.Alive() {
		return ErrUnknownCard
	}
	e.settleAuction(g, p)
	return nil
}

// settleAuction sells the tile to the winner. A winner short of their own bid
// pays what they hold, owes the rest and does not get the tile.
func (e *Engine) settleAuction(g *Game, p *ledger.Player) {
	a := *g.Auction
	g.Auction = nil
	g.Deadline = time.Time{}
	if p.Balance < a.Bid {
		e.logger.Info("auction winner short of bid",
			zap.String("game_id", g.ID),
			zap.Int("player", p.ID),
			zap.Int("bid", a.Bid),
			zap.Int("balance", p.Balance),
		)
		e.charge(g, p.ID, ledger.Bank, a.Bid, rules.EventAuctionWon, a.Tile)
		e.finishTurn(g)
		return
	}
	p.Balance -= a.Bid
	if err := g.Ledger.Assign(a.Tile, p.ID); err != nil {
		panic(err)
	}
	e.logger.Info("auction won",
		zap.String("game_id", g.ID),
		zap.Int("player", p.ID),
		zap.String("tile", board.At(a.Tile).Name),
		zap.Int("bid", a.Bid),
	)
	e.emit(g, rules.NewTileEvent(rules.EventAuctionWon, p.ID, a.Tile, a.Bid))
	e.flash(g, FlashAuctionOK)
	e.finishTurn(g)
}
