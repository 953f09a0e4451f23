package game

import (
	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

func (e *Engine) enterDebt(g *Game) {
	if len(g.Debts) > 0 {
		g.Selected = firstSelectable(g, g.Debts[0].Debtor)
	}
	e.setState(g, StateDebt)
	e.checkDebts(g)
}

// checkDebts settles what it can of the debt queue: cash on hand is applied to
// the head debt, cleared debts are dropped and a debtor with nothing left to
// surrender goes bankrupt. Once the queue is empty play resumes.
func (e *Engine) checkDebts(g *Game) {
	for len(g.Debts) > 0 {
		d := &g.Debts[0]
		p := g.Ledger.Player(d.Debtor)
		if p == nil || !p.Alive() {
			g.Debts = g.Debts[1:]
			continue
		}
		if p.Balance > 0 && d.Amount > 0 {
			pay := min(p.Balance, d.Amount)
			p.Balance -= pay
			d.Amount -= pay
			e.receive(g, d.Creditor, pay, d.Kind)
			evt := rules.NewEventWithAmount(rules.EventDebtSettled, p.ID, d.Creditor, pay)
			evt.Flag = d.Amount == 0
			e.emit(g, evt)
		}
		if d.Amount == 0 {
			g.Debts = g.Debts[1:]
			e.flash(g, FlashDebtCleared)
			continue
		}
		if hasUnmortgaged(g, p) {
			if !selectable(g, p.ID, g.Selected) {
				g.Selected = firstSelectable(g, p.ID)
			}
			e.touch(g)
			return
		}
		e.bankrupt(g, p, d.Creditor)
		if g.State == StateGameOver {
			return
		}
	}
	e.resumeAfterDebt(g)
}

func (e *Engine) resumeAfterDebt(g *Game) {
	g.Selected = -1
	if g.State == StateGameOver {
		return
	}
	cur := g.Current()
	if g.ResumeEndTurn || cur == nil || !cur.Alive() {
		g.ResumeEndTurn = false
		e.endTurn(g)
		return
	}
	next := g.ResumeState
	g.ResumeState = StateTurnStart
	e.setState(g, next)
}

func hasUnmortgaged(g *Game, p *ledger.Player) bool {
	for _, tile := range p.Owned.Tiles() {
		if !g.Ledger.PropertyAt(tile).Mortgaged {
			return true
		}
	}
	return false
}

func surrenderable(g *Game, debtor, tile int) bool {
	prop := g.Ledger.PropertyAt(tile)
	return selectable(g, debtor, tile) && prop.Level == 0
}

// selectable tiles can raise money for a debt: improvements are sold first,
// then the tile is mortgaged or surrendered.
func selectable(g *Game, debtor, tile int) bool {
	if debtor == ledger.Bank || !board.Valid(tile) {
		return false
	}
	prop := g.Ledger.PropertyAt(tile)
	return prop.Owner == debtor && !prop.Mortgaged
}

func firstSelectable(g *Game, debtor int) int {
	p := g.Ledger.Player(debtor)
	if p == nil {
		return -1
	}
	for _, tile := range p.Owned.Tiles() {
		if selectable(g, debtor, tile) {
			return tile
		}
	}
	return -1
}

func cycleSelectable(g *Game, debtor, dir int) int {
	start := g.Selected
	if start < 0 {
		start = 0
	}
	for step := 1; step <= board.Size; step++ {
		tile := board.Wrap(start + dir*step)
		if selectable(g, debtor, tile) {
			return tile
		}
	}
	return -1
}

func (e *Engine) pressDebt(g *Game, in ButtonPress) error {
	if len(g.Debts) == 0 {
		panic("debt state with an empty debt queue")
	}
	debtor := g.Debts[0].Debtor
	switch {
	case in.Button == ButtonLeft:
		g.Selected = cycleSelectable(g, debtor, -1)
		e.touch(g)
		return nil
	case in.Button == ButtonRight && in.Kind == PressLong:
		if !selectable(g, debtor, g.Selected) {
			return ErrNotSurrenderable
		}
		return e.mortgage(g, debtor, g.Selected)
	case in.Button == ButtonRight:
		g.Selected = cycleSelectable(g, debtor, 1)
		e.touch(g)
		return nil
	}
	if !selectable(g, debtor, g.Selected) {
		return ErrNotSurrenderable
	}
	if g.Ledger.PropertyAt(g.Selected).Level > 0 {
		return e.sell(g, debtor, g.Selected)
	}
	return e.surrender(g, g.Selected)
}

// surrender hands an unimproved, unmortgaged tile to the head debt's creditor.
// Its price reduces the debt; any excess is paid back to the debtor.
func (e *Engine) surrender(g *Game, tile int) error {
	if g.State != StateDebt || len(g.Debts) == 0 {
		return ErrWrongState
	}
	d := &g.Debts[0]
	p := g.Ledger.Player(d.Debtor)
	if !board.Valid(tile) || !p.Owned.Has(tile) {
		return ErrNotOwner
	}
	if !surrenderable(g, p.ID, tile) {
		return ErrNotSurrenderable
	}
	value := board.At(tile).Price
	if g.alive(d.Creditor) {
		if err := g.Ledger.Assign(tile, d.Creditor); err != nil {
			return err
		}
	} else {
		g.Ledger.Release(tile)
	}
	applied := min(value, d.Amount)
	d.Amount -= applied
	if d.Creditor == ledger.Bank {
		e.receive(g, ledger.Bank, applied, d.Kind)
	}
	p.Balance += value - applied

	e.logger.Info("property surrendered",
		zap.String("game_id", g.ID),
		zap.Int("debtor", p.ID),
		zap.Int("creditor", d.Creditor),
		zap.Int("tile", tile),
		zap.Int("remaining", d.Amount),
	)
	evt := rules.NewTileEvent(rules.EventPropertySurrendered, p.ID, tile, value)
	evt.TargetID = d.Creditor
	e.emit(g, evt)
	g.Selected = -1
	e.checkDebts(g)
	return nil
}

// bankrupt removes p from the game. Tiles pass to a living player creditor
// under the creditor policy and otherwise revert to the bank.
func (e *Engine) bankrupt(g *Game, p *ledger.Player, creditor int) {
	toCreditor := g.Settings.Bankruptcy == BankruptcyToCreditor && creditor != p.ID && g.alive(creditor)
	tiles := p.Owned.Tiles()
	for _, tile := range tiles {
		if toCreditor {
			g.Ledger.ReturnBuildings(tile)
			if err := g.Ledger.Assign(tile, creditor); err != nil {
				panic(err)
			}
			continue
		}
		g.Ledger.Release(tile)
	}
	p.Balance = 0
	p.Bankrupt = true
	p.InJail = false
	p.JailTurns = 0
	p.HasJailCard = false
	p.Doubles = 0

	debts := make([]Debt, 0, len(g.Debts))
	for _, d := range g.Debts {
		if d.Debtor == p.ID {
			continue
		}
		if d.Creditor == p.ID {
			d.Creditor = ledger.Bank
		}
		debts = append(debts, d)
	}
	g.Debts = debts

	e.logger.Info("player bankrupt",
		zap.String("game_id", g.ID),
		zap.Int("player", p.ID),
		zap.Int("creditor", creditor),
		zap.Int("tiles", len(tiles)),
		zap.Bool("to_creditor", toCreditor),
	)
	e.emit(g, rules.NewEventWithAmount(rules.EventBankrupt, p.ID, creditor, len(tiles)))
	e.flash(g, FlashBankrupt)
	e.checkWin(g)
}

// checkWin ends the game when exactly one player is left.
func (e *Engine) checkWin(g *Game) {
	if g.Ledger.AliveCount() != 1 {
		return
	}
	g.Winner = g.Ledger.Alive()[0]
	g.Debts = nil
	g.Tx = Transaction{}
	g.Trade = nil
	g.Auction = nil
	g.ResumeEndTurn = false
	g.HasSuspended = false
	e.logger.Info("game over",
		zap.String("game_id", g.ID),
		zap.Int("winner", g.Winner),
		zap.Int("turns", g.Turns.TurnNumber()),
	)
	e.emit(g, rules.NewEvent(rules.EventGameOver, g.Winner))
	e.setState(g, StateGameOver)
}
