package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// charge collects amount from payer for creditor. The payer hands over what
// they hold; with the extension enabled the rest becomes a queued debt,
// otherwise the payer goes bankrupt on the spot.
func (e *Engine) charge(g *Game, payer, creditor, amount int, evtType rules.EventType, tile int) {
	if amount <= 0 {
		return
	}
	p := g.Ledger.Player(payer)
	if p == nil || !p.Alive() {
		return
	}
	paid := amount
	if p.Balance < amount {
		paid = max(p.Balance, 0)
	}
	p.Balance -= paid
	e.receive(g, creditor, paid, evtType)

	evt := rules.NewTileEvent(evtType, payer, tile, paid)
	evt.TargetID = creditor
	e.emit(g, evt)

	short := amount - paid
	if short == 0 {
		return
	}
	if !g.Settings.Extension {
		e.bankrupt(g, p, creditor)
		return
	}
	g.Debts = append(g.Debts, Debt{Debtor: payer, Creditor: creditor, Amount: short, Kind: evtType})
	e.logger.Info("debt opened",
		zap.String("game_id", g.ID),
		zap.Int("debtor", payer),
		zap.Int("creditor", creditor),
		zap.Int("amount", short),
	)
	e.emit(g, rules.NewEventWithAmount(rules.EventDebtOpened, payer, creditor, short))
}

// receive credits a player, or the bank. Taxes and card fines paid to the
// bank feed the free parking pool when it is enabled, including the part
// settled later through a debt.
func (e *Engine) receive(g *Game, creditor, amount int, evtType rules.EventType) {
	if amount <= 0 {
		return
	}
	if creditor != ledger.Bank {
		g.Ledger.Credit(creditor, amount)
		return
	}
	if g.Settings.FreeParkingPool && (evtType == rules.EventTaxPaid || evtType == rules.EventPaymentMade) {
		g.FreeParking += amount
	}
}

func (e *Engine) buy(g *Game, playerID int) error {
	if g.Tx.Kind != TxBuy || (g.State != StateTileAction && g.State != StateWaitCard) {
		return ErrWrongState
	}
	if playerID != g.Tx.Player {
		return ErrNotYourTurn
	}
	tile := g.Tx.Tile
	t := board.At(tile)
	if !t.Kind.Ownable() {
		return ErrNotForSale
	}
	if g.Ledger.PropertyAt(tile).Owned() {
		return ErrAlreadyOwned
	}
	p := g.Ledger.Player(playerID)
	if p.Balance < t.Price {
		return ErrInsufficientFunds
	}
	if err := g.Ledger.Assign(tile, p.ID); err != nil {
		return err
	}
	p.Balance -= t.Price

	e.logger.Info("property bought",
		zap.String("game_id", g.ID),
		zap.Int("player", p.ID),
		zap.String("tile", t.Name),
		zap.Int("price", t.Price),
	)
	e.emit(g, rules.NewTileEvent(rules.EventPropertyBought, p.ID, tile, t.Price))
	e.flash(g, FlashPurchase)
	g.Tx = Transaction{}
	g.Deadline = time.Time{}
	e.finishTurn(g)
	return nil
}

func (e *Engine) payRent(g *Game, playerID int) error {
	if g.Tx.Kind != TxRent || (g.State != StateTileAction && g.State != StateWaitCard) {
		return ErrWrongState
	}
	if playerID != g.Tx.Player {
		return ErrNotYourTurn
	}
	e.settleRent(g)
	return nil
}

func (e *Engine) settleRent(g *Game) {
	tx := g.Tx
	if tx.Kind != TxRent {
		panic("settling rent with no pending rent")
	}
	e.charge(g, tx.Player, tx.Creditor, tx.Amount, rules.EventRentPaid, tx.Tile)
	e.flash(g, FlashRentPaid)
	g.Tx = Transaction{}
	g.Deadline = time.Time{}
	e.finishTurn(g)
}

func (e *Engine) payTax(g *Game) {
	tx := g.Tx
	if tx.Kind != TxTax {
		panic("paying tax with no pending tax")
	}
	e.charge(g, tx.Player, ledger.Bank, tx.Amount, rules.EventTaxPaid, tx.Tile)
	e.flash(g, FlashTaxPaid)
	g.Tx = Transaction{}
	e.finishTurn(g)
}
