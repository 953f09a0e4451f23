package game

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game/board"
	"github.com/thraizz/nfc-monopoly-go/internal/game/deck"
	"github.com/thraizz/nfc-monopoly-go/internal/game/ledger"
	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
	"github.com/thraizz/nfc-monopoly-go/internal/game/watchers"
)

func (e *Engine) press(g *Game, in ButtonPress) error {
	if in.Kind == PressLong && in.Button == ButtonCenter && g.State.InPlay() {
		return e.suspend(g)
	}
	switch g.State {
	case StateSplash:
		e.setState(g, StateMenu)
		return nil
	case StateMenu:
		return e.pressMenu(g, in)
	case StateSetupCount:
		return e.pressSetupCount(g, in)
	case StateSetupPlayers:
		return e.pressSetupPlayers(g, in)
	case StateTurnStart:
		return e.pressTurnStart(g, in)
	case StateRolling:
		return ErrWrongState
	case StateMoved:
		if in.Button == ButtonCenter {
			e.resolveTile(g, g.Current(), rentNormal)
			return nil
		}
		return ErrWrongState
	case StateTileAction:
		return e.pressTileAction(g, in)
	case StateCardDraw:
		if in.Button == ButtonCenter {
			return e.applyDrawnCard(g)
		}
		return ErrWrongState
	case StateJailTurn:
		return e.pressJailTurn(g, in)
	case StateTradeSelect:
		return e.pressTradeSelect(g, in)
	case StateTradeOffer:
		return e.pressTradeOffer(g, in)
	case StateQuickMenu:
		return e.pressQuickMenu(g, in)
	case StateProgramming:
		return e.pressProgramming(g, in)
	case StateSettings:
		return e.pressSettings(g, in)
	case StateAuction:
		return e.pressAuction(g, in)
	case StateDebt:
		return e.pressDebt(g, in)
	case StateWaitCard:
		return e.pressWaitCard(g, in)
	case StateGameOver:
		if in.Button == ButtonCenter {
			e.clearGame(g)
			e.setState(g, StateMenu)
			return nil
		}
		return ErrWrongState
	default:
		panic(fmt.Sprintf("no button handler for state %s", g.State))
	}
}

func (e *Engine) tap(g *Game, in CardTap) error {
	switch in.Kind {
	case CardPlayer:
		switch g.State {
		case StateSetupPlayers:
			return e.registerPlayer(g, in.ID, in.Name)
		case StateWaitCard:
			p := g.Ledger.PlayerByCard(in.ID)
			if p == nil {
				return ErrUnknownCard
			}
			return e.resolveWait(g, p)
		case StateAuction:
			p := g.Ledger.PlayerByCard(in.ID)
			if p == nil {
				return ErrUnknownCard
			}
			return e.auctionWinnerTap(g, p)
		case StateTradeSelect:
			p := g.Ledger.PlayerByCard(in.ID)
			if p == nil {
				return ErrUnknownCard
			}
			return e.selectTradePartner(g, p.ID)
		}
	case CardProperty:
		tile, err := strconv.Atoi(in.ID)
		if err != nil || !board.Valid(tile) {
			return fmt.Errorf("%w: bad property id %q", ErrUnknownCard, in.ID)
		}
		switch g.State {
		case StateTurnStart, StateJailTurn:
			g.QuickReturn = g.State
			g.QuickCursor = QuickBack
			g.Selected = tile
			e.setState(g, StateQuickMenu)
			return nil
		case StateQuickMenu:
			g.Selected = tile
			e.touch(g)
			return nil
		case StateTradeOffer:
			return e.toggleTradeProperty(g, tile)
		case StateDebt:
			return e.surrender(g, tile)
		}
	case CardEvent:
		id, err := strconv.Atoi(in.ID)
		if err != nil {
			return fmt.Errorf("%w: bad event id %q", ErrUnknownCard, in.ID)
		}
		if g.State == StateTurnStart {
			return e.openEvent(g, id)
		}
	}
	if g.State == StateProgramming {
		// Reading back a card while programming just shows it.
		g.ProgramKind = in.Kind
		e.touch(g)
		return nil
	}
	return ErrWrongState
}

// Menu

func (e *Engine) pressMenu(g *Game, in ButtonPress) error {
	switch in.Button {
	case ButtonLeft:
		g.MenuCursor = (g.MenuCursor + numMenuItems - 1) % numMenuItems
		e.touch(g)
	case ButtonRight:
		g.MenuCursor = (g.MenuCursor + 1) % numMenuItems
		e.touch(g)
	case ButtonCenter:
		switch g.MenuCursor {
		case MenuNewGame:
			e.clearGame(g)
			g.Setup = Setup{Count: 2}
			e.setState(g, StateSetupCount)
		case MenuResume:
			return e.resume(g)
		case MenuProgram:
			g.ProgramKind = CardPlayer
			g.ProgramValue = 1
			e.setState(g, StateProgramming)
		case MenuSettings:
			g.SettingsCursor = SettingStartingMoney
			e.setState(g, StateSettings)
		}
	}
	return nil
}

func (e *Engine) suspend(g *Game) error {
	g.Suspended = g.State
	g.HasSuspended = true
	g.MenuCursor = MenuResume
	e.logger.Info("game suspended",
		zap.String("game_id", g.ID),
		zap.String("state", g.State.String()),
	)
	e.setState(g, StateMenu)
	return nil
}

func (e *Engine) resume(g *Game) error {
	if !g.HasSuspended || g.Turns == nil {
		return ErrNoGame
	}
	next := g.Suspended
	g.HasSuspended = false
	if next == StateAuction || next == StateWaitCard {
		g.Deadline = e.clock().Add(g.Settings.InputTimeout)
	}
	e.emit(g, rules.NewEvent(rules.EventGameResumed, e.currentID(g)))
	e.setState(g, next)
	return nil
}

func (e *Engine) clearGame(g *Game) {
	state := g.State
	*g = *newGame(g.ID, g.Settings, e.clock())
	g.State = state
	g.MenuCursor = MenuNewGame
}

// Setup

func (e *Engine) pressSetupCount(g *Game, in ButtonPress) error {
	switch in.Button {
	case ButtonLeft:
		if g.Setup.Count > 2 {
			g.Setup.Count--
		}
		e.touch(g)
	case ButtonRight:
		if g.Setup.Count < board.MaxPlayers {
			g.Setup.Count++
		}
		e.touch(g)
	case ButtonCenter:
		g.Setup.Registered = 0
		g.Ledger = ledger.New()
		e.setState(g, StateSetupPlayers)
	}
	return nil
}

func (e *Engine) pressSetupPlayers(g *Game, in ButtonPress) error {
	switch in.Button {
	case ButtonCenter:
		if g.Setup.Registered < g.Setup.Count {
			return e.registerPlayer(g, "", "")
		}
		return e.startGame(g)
	case ButtonLeft:
		g.Ledger = ledger.New()
		g.Setup.Registered = 0
		e.setState(g, StateSetupCount)
		return nil
	}
	return ErrWrongState
}

func (e *Engine) registerPlayer(g *Game, cardID, name string) error {
	if g.Setup.Registered >= g.Setup.Count {
		return ErrWrongState
	}
	if cardID != "" && g.Ledger.PlayerByCard(cardID) != nil {
		return ErrDuplicateCard
	}
	seat := g.Setup.Registered + 1
	if name == "" {
		name = fmt.Sprintf("Player %d", seat)
	}
	p, err := g.Ledger.AddPlayer(name, seat-1, g.Settings.StartingMoney)
	if err != nil {
		return err
	}
	p.CardID = cardID
	g.Setup.Registered++
	e.touch(g)
	return nil
}

func (e *Engine) startGame(g *Game) error {
	seats := make([]int, 0, len(g.Ledger.Players))
	for _, p := range g.Ledger.Players {
		seats = append(seats, p.ID)
	}
	turns, err := rules.NewTurnManager(seats)
	if err != nil {
		return err
	}
	g.Turns = turns
	g.Chance = deck.New(board.DeckSize(board.DeckChance))
	g.Chance.Shuffle(e.roller)
	g.Community = deck.New(board.DeckSize(board.DeckCommunity))
	g.Community.Shuffle(e.roller)
	g.FreeParking = 0
	g.Winner = 0

	e.resetWatchers(seats)
	if e.replay != nil {
		e.replay.StartRecording(g.ID)
	}
	e.logger.Info("game started",
		zap.String("game_id", g.ID),
		zap.Int("players", len(seats)),
		zap.Int("starting_money", g.Settings.StartingMoney),
	)
	evt := rules.NewEventWithAmount(rules.EventGameStarted, 0, 0, len(seats))
	e.emit(g, evt)
	e.beginTurn(g)
	return nil
}

func (e *Engine) resetWatchers(seats []int) {
	for _, w := range e.watchers.GetAllWatchers() {
		e.watchers.RemoveWatcher(w.GetKey())
	}
	for _, w := range watchers.Standard(seats) {
		e.watchers.AddWatcher(w)
	}
}

// Turn

func (e *Engine) beginTurn(g *Game) {
	p := g.Current()
	g.Rolled = false
	g.Tx = Transaction{}
	g.Selected = -1
	e.emit(g, rules.NewEventWithAmount(rules.EventTurnStarted, p.ID, 0, g.Turns.TurnNumber()))
	if p.InJail {
		e.setState(g, StateJailTurn)
		return
	}
	e.setState(g, StateTurnStart)
}

func (e *Engine) pressTurnStart(g *Game, in ButtonPress) error {
	switch in.Button {
	case ButtonCenter:
		e.setState(g, StateRolling)
	case ButtonLeft:
		return e.openTrade(g)
	case ButtonRight:
		g.QuickReturn = StateTurnStart
		g.QuickCursor = QuickBack
		e.setState(g, StateQuickMenu)
	}
	return nil
}

func (e *Engine) rollAndMove(g *Game) {
	p := g.Current()
	roll := e.roller.Roll()
	g.Dice = roll
	g.Rolled = true
	evt := rules.NewEventWithAmount(rules.EventDiceRolled, p.ID, 0, roll.Total())
	evt.Flag = roll.Doubles()
	e.emit(g, evt)

	if roll.Doubles() {
		p.Doubles++
	} else {
		p.Doubles = 0
	}
	if p.Doubles >= 3 {
		e.logger.Debug("third doubles, going to jail",
			zap.String("game_id", g.ID),
			zap.Int("player", p.ID),
		)
		e.sendToJail(g, p)
		e.finishTurn(g)
		return
	}
	e.move(g, p, roll.Total())
	e.setState(g, StateMoved)
}

// move advances p by steps, paying salary once when the move wraps past or onto GO.
func (e *Engine) move(g *Game, p *ledger.Player, steps int) {
	from := p.Position
	to := board.Wrap(from + steps)
	if steps > 0 && to < from {
		e.paySalary(g, p)
	}
	p.Position = to
	e.emit(g, rules.NewTileEvent(rules.EventPlayerMoved, p.ID, to, steps))
	e.touch(g)
}

// moveTo relocates p directly. Salary is paid when the destination lies behind
// the current position, unless the destination is the jail.
func (e *Engine) moveTo(g *Game, p *ledger.Player, dest int) {
	if dest < p.Position && dest != board.JailPosition {
		e.paySalary(g, p)
	}
	p.Position = dest
	e.emit(g, rules.NewTileEvent(rules.EventPlayerMoved, p.ID, dest, 0))
	e.touch(g)
}

func (e *Engine) paySalary(g *Game, p *ledger.Player) {
	p.Balance += board.GoSalary
	e.emit(g, rules.NewEventWithAmount(rules.EventPassedGo, p.ID, 0, board.GoSalary))
}

func (e *Engine) sendToJail(g *Game, p *ledger.Player) {
	p.Position = board.JailPosition
	p.InJail = true
	p.JailTurns = 0
	p.Doubles = 0
	e.flash(g, FlashJailed)
	e.emit(g, rules.NewTileEvent(rules.EventJailed, p.ID, board.JailPosition, 0))
}

// finishTurn ends the current player's turn once the debt queue is empty.
func (e *Engine) finishTurn(g *Game) {
	if g.State == StateGameOver {
		return
	}
	g.Tx = Transaction{}
	if len(g.Debts) > 0 {
		g.ResumeEndTurn = true
		e.enterDebt(g)
		return
	}
	e.endTurn(g)
}

// proceed enters next once the debt queue is empty.
func (e *Engine) proceed(g *Game, next State) {
	if g.State == StateGameOver {
		return
	}
	if len(g.Debts) > 0 {
		g.ResumeState = next
		g.ResumeEndTurn = false
		e.enterDebt(g)
		return
	}
	e.setState(g, next)
}

func (e *Engine) endTurn(g *Game) {
	p := g.Current()
	g.Tx = Transaction{}
	g.Trade = nil
	g.Auction = nil
	e.emit(g, rules.NewEvent(rules.EventTurnEnded, p.ID))

	if p.Alive() && !p.InJail && g.Rolled && g.Dice.Doubles() && p.Doubles > 0 {
		g.Rolled = false
		e.beginTurn(g)
		return
	}
	p.Doubles = 0
	g.Turns.Advance(g.alive)
	e.beginTurn(g)
}

// Quick menu

func (e *Engine) pressQuickMenu(g *Game, in ButtonPress) error {
	switch in.Button {
	case ButtonLeft:
		g.Selected = -1
		e.setState(g, g.QuickReturn)
		return nil
	case ButtonRight:
		g.QuickCursor = (g.QuickCursor + 1) % numQuickItems
		e.touch(g)
		return nil
	}
	switch g.QuickCursor {
	case QuickBack:
		g.Selected = -1
		e.setState(g, g.QuickReturn)
	case QuickEndTurn:
		return e.forceEndTurn(g)
	case QuickSave:
		g.SaveRequested = true
		e.flash(g, FlashSaved)
	case QuickQuit:
		return e.suspend(g)
	}
	return nil
}

// forceEndTurn ends the turn from the quick menu, forfeiting a doubles re-roll.
func (e *Engine) forceEndTurn(g *Game) error {
	p := g.Current()
	if p == nil {
		return ErrWrongState
	}
	p.Doubles = 0
	g.Selected = -1
	e.finishTurn(g)
	return nil
}

// Programming and settings

func (e *Engine) pressProgramming(g *Game, in ButtonPress) error {
	switch in.Button {
	case ButtonLeft:
		g.ProgramKind = (g.ProgramKind + 1) % (CardEvent + 1)
		g.ProgramValue = programMin(g.ProgramKind)
	case ButtonRight:
		g.ProgramValue++
		if g.ProgramValue > programMax(g.ProgramKind) {
			g.ProgramValue = programMin(g.ProgramKind)
		}
	case ButtonCenter:
		if in.Kind == PressLong {
			e.setState(g, StateMenu)
			return nil
		}
		e.flash(g, FlashWritten)
	}
	e.touch(g)
	return nil
}

func programMin(k CardKind) int {
	if k == CardProperty {
		return 0
	}
	return 1
}

func programMax(k CardKind) int {
	switch k {
	case CardPlayer:
		return board.MaxPlayers
	case CardProperty:
		return board.Size - 1
	default:
		return 6
	}
}

func (e *Engine) pressSettings(g *Game, in ButtonPress) error {
	switch in.Button {
	case ButtonLeft:
		g.SettingsCursor = (g.SettingsCursor + numSettingItems - 1) % numSettingItems
	case ButtonRight:
		g.SettingsCursor = (g.SettingsCursor + 1) % numSettingItems
	case ButtonCenter:
		if in.Kind == PressLong {
			e.setState(g, StateMenu)
			return nil
		}
		g.Settings.Cycle(g.SettingsCursor)
	}
	e.touch(g)
	return nil
}
