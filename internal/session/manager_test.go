package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
	"github.com/thraizz/nfc-monopoly-go/internal/game/dice"
	"github.com/thraizz/nfc-monopoly-go/internal/game/gametest"
	"github.com/thraizz/nfc-monopoly-go/internal/storage"
)

type rig struct {
	t     *testing.T
	ctx   context.Context
	m     *Manager
	clock *gametest.Clock
	dice  *dice.Scripted
}

func newRig(t *testing.T, settings game.Settings, store storage.Store, logger *zap.Logger, opts ...Option) *rig {
	t.Helper()
	if logger == nil {
		logger = zaptest.NewLogger(t)
	}
	r := &rig{t: t, ctx: context.Background(), clock: gametest.NewClock(), dice: dice.NewScripted(11)}
	opts = append([]Option{
		WithClock(r.clock.Now),
		WithEngineOptions(game.WithClock(r.clock.Now), game.WithDiceSource(r.dice)),
	}, opts...)
	r.m = NewManager(store, settings, logger, opts...)
	return r
}

func (r *rig) press(id string, in game.ButtonPress) {
	r.t.Helper()
	require.NoError(r.t, r.m.HandleInput(r.ctx, id, in))
}

func (r *rig) start(id string, players int) {
	r.t.Helper()
	r.press(id, game.Short(game.ButtonCenter))
	r.press(id, game.Short(game.ButtonCenter))
	for i := 2; i < players; i++ {
		r.press(id, game.Short(game.ButtonRight))
	}
	r.press(id, game.Short(game.ButtonCenter))
	for i := 1; i <= players; i++ {
		require.NoError(r.t, r.m.HandleInput(r.ctx, id, game.CardTap{
			Kind: game.CardPlayer,
			ID:   gametest.CardID(i),
			Name: fmt.Sprintf("P%d", i),
		}))
	}
	r.press(id, game.Short(game.ButtonCenter))
}

func (r *rig) roll(id string, d1, d2 int) {
	r.t.Helper()
	sess, ok := r.m.Get(id)
	require.True(r.t, ok)
	settings := sess.View().Settings
	r.dice.Push(d1, d2)
	r.press(id, game.Short(game.ButtonCenter))
	r.clock.Advance(settings.DiceSettle())
	require.NoError(r.t, r.m.Tick(r.ctx))
	if sess.View().State == game.StateMoved {
		r.clock.Advance(settings.MoveDelay)
		require.NoError(r.t, r.m.Tick(r.ctx))
	}
}

func fileStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.OpenFile(filepath.Join(t.TempDir(), "saves"))
	require.NoError(t, err)
	return s
}

func TestCreateGetRemove(t *testing.T) {
	r := newRig(t, game.DefaultSettings(), nil, nil)

	sess, err := r.m.Create()
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, sess.View().GameID)

	info := sess.Info()
	assert.Equal(t, StatusLobby, info.Status)
	assert.Equal(t, game.StateSplash, info.State)
	assert.Equal(t, r.clock.Now(), info.CreateTime)

	got, ok := r.m.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Len(t, r.m.All(), 1)
	assert.Equal(t, 1, r.m.ActiveCount())

	r.m.Remove(sess.ID)
	_, ok = r.m.Get(sess.ID)
	assert.False(t, ok)
	assert.Error(t, r.m.HandleInput(r.ctx, sess.ID, game.Short(game.ButtonCenter)))
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "LOBBY", StatusLobby.String())
	assert.Equal(t, "PLAYING", StatusPlaying.String())
	assert.Equal(t, "FINISHED", StatusFinished.String())
	assert.Equal(t, "UNKNOWN", Status(42).String())
}

func TestTickRunsEngineTimers(t *testing.T) {
	r := newRig(t, game.DefaultSettings(), nil, nil)
	sess, err := r.m.Create()
	require.NoError(t, err)

	require.NoError(t, r.m.Tick(r.ctx))
	assert.Equal(t, game.StateSplash, sess.View().State)

	r.clock.Advance(game.DefaultSettings().SplashDuration)
	require.NoError(t, r.m.Tick(r.ctx))
	assert.Equal(t, game.StateMenu, sess.View().State)
}

func TestRenderOnlyWhenDirty(t *testing.T) {
	r := newRig(t, game.DefaultSettings(), nil, nil)
	sess, err := r.m.Create()
	require.NoError(t, err)

	draws := 0
	draw := func(v game.View) { draws++ }
	assert.True(t, sess.Render(draw))
	assert.False(t, sess.Render(draw))

	r.press(sess.ID, game.Short(game.ButtonCenter))
	assert.True(t, sess.Render(draw))
	assert.Equal(t, 2, draws)
}

func TestRejectedInputIsReturned(t *testing.T) {
	r := newRig(t, game.DefaultSettings(), nil, nil)
	sess, err := r.m.Create()
	require.NoError(t, err)
	r.start(sess.ID, 2)

	err = r.m.HandleInput(r.ctx, sess.ID, game.CardTap{Kind: game.CardPlayer, ID: "stranger"})
	assert.Error(t, err)
	assert.Equal(t, game.StateTurnStart, sess.View().State)
}

func TestAutosaveAtTurnBoundaries(t *testing.T) {
	store := fileStore(t)
	r := newRig(t, game.DefaultSettings(), store, nil, WithAutosave(true))
	sess, err := r.m.Create()
	require.NoError(t, err)

	r.start(sess.ID, 2)
	assert.Equal(t, 1, sess.Info().Saves, "starting the game opens turn 1")
	assert.Equal(t, StatusPlaying, sess.Info().Status)

	r.roll(sess.ID, 1, 2)
	require.Equal(t, game.TxBuy, sess.View().Tx.Kind)
	assert.Equal(t, 1, sess.Info().Saves)

	r.press(sess.ID, game.Short(game.ButtonCenter))
	info := sess.Info()
	assert.Equal(t, 2, info.TurnNumber)
	assert.Equal(t, 2, info.Saves)
	assert.Equal(t, r.clock.Now(), info.LastSaved)

	saved, err := store.LoadGame(r.ctx, sess.ID)
	require.NoError(t, err)
	fresh := gametest.New(t, game.DefaultSettings())
	require.NoError(t, fresh.Engine.Restore(saved))
	v := fresh.Engine.View()
	assert.Equal(t, 1, v.Properties[3].Owner)
	assert.Equal(t, 2, v.CurrentPlayer)
	assert.True(t, fresh.Player(1).Owned.Has(3))
}

func TestDirectActionsRunBookkeeping(t *testing.T) {
	store := fileStore(t)
	r := newRig(t, game.DefaultSettings(), store, nil, WithAutosave(true))
	sess, err := r.m.Create()
	require.NoError(t, err)
	r.start(sess.ID, 3)
	require.Equal(t, 1, sess.Info().Saves)

	err = r.m.Do(r.ctx, sess.ID, func(e *game.Engine) error { return e.EndTurn(2) })
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	assert.Equal(t, 1, sess.Info().Saves)

	require.NoError(t, r.m.Do(r.ctx, sess.ID, func(e *game.Engine) error { return e.EndTurn(1) }))
	assert.Equal(t, 2, sess.View().CurrentPlayer)
	assert.Equal(t, 2, sess.Info().Saves)

	assert.Error(t, r.m.Do(r.ctx, "missing", func(e *game.Engine) error { return nil }))
}

func TestSaveRequestFromQuickMenu(t *testing.T) {
	store := fileStore(t)
	r := newRig(t, game.DefaultSettings(), store, nil)
	sess, err := r.m.Create()
	require.NoError(t, err)
	r.start(sess.ID, 2)
	assert.Equal(t, 0, sess.Info().Saves, "autosave is off")

	require.NoError(t, r.m.HandleInput(r.ctx, sess.ID, game.CardTap{Kind: game.CardProperty, ID: "6"}))
	require.Equal(t, game.StateQuickMenu, sess.View().State)
	r.press(sess.ID, game.Short(game.ButtonRight))
	r.press(sess.ID, game.Short(game.ButtonRight))
	r.press(sess.ID, game.Short(game.ButtonCenter))
	assert.Equal(t, 1, sess.Info().Saves)

	records, err := store.ListGames(r.ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, sess.ID, records[0].GameID)
	assert.Equal(t, game.StateQuickMenu.String(), records[0].State)
}

func TestSaveWithoutStoreIsDropped(t *testing.T) {
	r := newRig(t, game.DefaultSettings(), nil, nil, WithAutosave(true))
	sess, err := r.m.Create()
	require.NoError(t, err)
	r.start(sess.ID, 2)
	require.NoError(t, r.m.Save(r.ctx, sess.ID))
	assert.Equal(t, 0, sess.Info().Saves)

	_, err = r.m.Resume(r.ctx, "anything")
	assert.Error(t, err)
	_, err = r.m.ResumeLatest(r.ctx)
	assert.Error(t, err)
}

func TestResumeFromStore(t *testing.T) {
	store := fileStore(t)
	first := newRig(t, game.DefaultSettings(), store, nil, WithAutosave(true))
	sess, err := first.m.Create()
	require.NoError(t, err)
	first.start(sess.ID, 2)
	first.roll(sess.ID, 1, 2)
	require.NoError(t, first.m.Save(first.ctx, sess.ID))

	second := newRig(t, game.DefaultSettings(), store, nil)
	resumed, err := second.m.ResumeLatest(second.ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, resumed.ID)
	assert.Equal(t, game.StateTileAction, resumed.View().State)
	assert.Equal(t, game.TxBuy, resumed.View().Tx.Kind)
	assert.Equal(t, StatusPlaying, resumed.Info().Status)

	again, err := second.m.Resume(second.ctx, sess.ID)
	require.NoError(t, err)
	assert.Same(t, resumed, again)

	second.press(sess.ID, game.Short(game.ButtonCenter))
	assert.Equal(t, 2, resumed.View().CurrentPlayer)

	_, err = second.m.Resume(second.ctx, "no-such-game")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestGameOverLogsStandingsAndWritesReplay(t *testing.T) {
	settings := game.DefaultSettings()
	settings.StartingMoney = 150
	settings.Extension = false

	core, logs := observer.New(zap.InfoLevel)
	store := fileStore(t)
	replayDir := t.TempDir()
	recorder := game.NewReplayRecorder(zaptest.NewLogger(t), replayDir)
	r := newRig(t, settings, store, zap.New(core), WithAutosave(true), WithReplay(recorder))

	sess, err := r.m.Create()
	require.NoError(t, err)
	r.start(sess.ID, 2)
	r.roll(sess.ID, 1, 3)
	require.Equal(t, game.TxTax, sess.View().Tx.Kind)
	r.press(sess.ID, game.Short(game.ButtonCenter))

	require.Equal(t, game.StateGameOver, sess.View().State)
	assert.Equal(t, StatusFinished, sess.Info().Status)
	assert.Equal(t, 0, r.m.ActiveCount())

	over := logs.FilterMessage("final standings").All()
	require.Len(t, over, 1)
	fields := over[0].ContextMap()
	assert.Equal(t, int64(2), fields["winner"])
	assert.Equal(t, sess.ID, fields["game_id"])

	st := sess.Standings()
	assert.Equal(t, []int{2, 1}, st.Placings)

	replay, err := game.LoadReplayFromFile(replayDir, sess.ID)
	require.NoError(t, err)
	assert.Greater(t, replay.Size(), 1)

	records, err := store.ListGames(r.ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, game.StateGameOver.String(), records[0].State)

	// a finished game is never offered for resume
	_, err = newRig(t, settings, store, nil).m.ResumeLatest(r.ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// further steps do not log the result again
	require.NoError(t, r.m.Tick(r.ctx))
	assert.Len(t, logs.FilterMessage("final standings").All(), 1)
}

func TestCloseSavesUnfinishedGames(t *testing.T) {
	store := fileStore(t)
	r := newRig(t, game.DefaultSettings(), store, nil, WithAutosave(true))
	playing, err := r.m.Create()
	require.NoError(t, err)
	r.start(playing.ID, 2)
	r.roll(playing.ID, 1, 2)

	lobby, err := r.m.Create()
	require.NoError(t, err)

	require.NoError(t, r.m.Close(r.ctx))

	saved, err := store.LoadGame(r.ctx, playing.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StateTileAction, saved.State)

	_, err = store.LoadGame(r.ctx, lobby.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorageFailureSurfaces(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	r := newRig(t, game.DefaultSettings(), store, nil, WithAutosave(true))
	sess, err := r.m.Create()
	require.NoError(t, err)
	r.press(sess.ID, game.Short(game.ButtonCenter))

	err = r.m.Save(r.ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.Equal(t, 0, sess.Info().Saves)
}
