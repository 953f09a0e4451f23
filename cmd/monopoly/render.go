package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
)

// render writes a one-screen text rendition of the view, standing in for the
// board's display.
func render(w io.Writer, v game.View) {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s", v.State)
	if v.TurnNumber > 0 {
		fmt.Fprintf(&b, "  turn %d  player %d", v.TurnNumber, v.CurrentPlayer)
	}
	if v.Dice.D1 > 0 {
		fmt.Fprintf(&b, "  dice %d+%d", v.Dice.D1, v.Dice.D2)
	}
	if v.Flash != "" {
		fmt.Fprintf(&b, "  [%s]", v.Flash)
	}
	b.WriteString("\n")

	if v.Tx.Active() {
		fmt.Fprintf(&b, "   %s player %d", v.Tx.Kind, v.Tx.Player)
		if board.Valid(v.Tx.Tile) {
			fmt.Fprintf(&b, " %s", board.At(v.Tx.Tile).Name)
		}
		if v.Tx.Amount != 0 {
			fmt.Fprintf(&b, " $%d", v.Tx.Amount)
		}
		b.WriteString("\n")
	}
	for _, d := range v.Debts {
		fmt.Fprintf(&b, "   debt %d -> %d $%d\n", d.Debtor, d.Creditor, d.Amount)
	}
	if a := v.Auction; a != nil {
		fmt.Fprintf(&b, "   auction %s bid $%d", board.At(a.Tile).Name, a.Bid)
		if v.TimeLeft > 0 {
			fmt.Fprintf(&b, " %.0fs", v.TimeLeft.Seconds())
		}
		b.WriteString("\n")
	}
	if t := v.Trade; t != nil {
		fmt.Fprintf(&b, "   trade with %d give $%d take $%d\n", t.Partner, t.Offer, t.Request)
	}
	for _, p := range v.Players {
		status := ""
		switch {
		case p.Bankrupt:
			status = " BANKRUPT"
		case p.InJail:
			status = " JAIL"
		}
		fmt.Fprintf(&b, "   %d %-10s $%-5d %-22s %d tiles%s\n",
			p.ID, p.Name, p.Balance, board.At(p.Position).Name, len(p.Owned.Tiles()), status)
	}
	if v.Winner != 0 {
		fmt.Fprintf(&b, "   winner: player %d\n", v.Winner)
	}
	io.WriteString(w, b.String())
}
