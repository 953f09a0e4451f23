package game

import (
	"compress/gzip"
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thraizz/nfc-monopoly-go/internal/game/rules"
)

// debtSnapshot is a game stopped in Debt after a rent shortfall.
func debtSnapshot(t *testing.T) *Snapshot {
	h := newHarness(t, DefaultSettings())
	h.start(3)
	h.own(2, 12, 28)
	h.own(1, 1)
	h.player(1).Balance = 40
	h.roll(6, 6)
	require.Equal(t, StateDebt, h.e.State())
	return h.e.Snapshot()
}

// tradeSnapshot is a game with an offer of tile 1 and 50 to player 2 on screen.
func tradeSnapshot(t *testing.T) *Snapshot {
	h := newHarness(t, DefaultSettings())
	h.start(2)
	h.own(1, 1)
	h.openOffer(2)
	require.NoError(t, h.e.ToggleTradeProperty(1))
	require.NoError(t, h.e.SetTradeMoney(50, 0))
	return h.e.Snapshot()
}

// auctionSnapshot is a game auctioning tile 3 after the buy was declined.
func auctionSnapshot(t *testing.T) *Snapshot {
	h := newHarness(t, DefaultSettings())
	h.start(2)
	h.roll(1, 2)
	h.press(Short(ButtonRight))
	require.Equal(t, StateAuction, h.e.State())
	return h.e.Snapshot()
}

func TestReplayFileKeepsPendingContexts(t *testing.T) {
	dir := t.TempDir()
	snaps := []*Snapshot{debtSnapshot(t), tradeSnapshot(t), auctionSnapshot(t)}

	replay := NewReplay("test-game")
	for _, s := range snaps {
		replay.RecordState(s)
	}
	require.NoError(t, replay.SaveToFile(dir))

	loaded, err := LoadReplayFromFile(dir, "test-game")
	require.NoError(t, err)
	require.Equal(t, len(snaps), loaded.Size())
	assert.Equal(t, "test-game", loaded.GameID)

	for i, want := range snaps {
		sum, err := want.ComputeChecksum()
		require.NoError(t, err)
		ok, err := loaded.GetStateAt(i).VerifyChecksum(sum)
		require.NoError(t, err)
		if !ok {
			t.Fatalf("state %d (%s) changed on disk", i, want.State)
		}
	}

	debt := loaded.GetStateAt(0)
	require.Len(t, debt.Debts, 1)
	assert.Equal(t, Debt{Debtor: 1, Creditor: 2, Amount: 80, Kind: rules.EventRentPaid}, debt.Debts[0])

	trade := loaded.GetStateAt(1)
	require.NotNil(t, trade.Trade)
	assert.Equal(t, 2, trade.Trade.Partner)
	assert.Equal(t, 50, trade.Trade.Offer)
	assert.True(t, trade.Trade.Give.Has(1))
	assert.Equal(t, StateTurnStart, trade.Trade.ReturnTo)

	auction := loaded.GetStateAt(2)
	require.NotNil(t, auction.Auction)
	assert.Equal(t, 3, auction.Auction.Tile)
	assert.False(t, auction.Auction.Awaiting)

	// Every recorded state can be picked up again.
	for i := 0; i < loaded.Size(); i++ {
		other := newHarness(t, DefaultSettings())
		require.NoError(t, other.e.Restore(loaded.GetStateAt(i)))
		assert.Equal(t, snaps[i].State, other.e.State())
	}
}

func TestEngineReplayPlayback(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)
	h := newHarness(t, DefaultSettings(), WithReplay(recorder))
	h.start(2)
	h.roll(2, 4)
	require.NoError(t, h.e.Buy(1))
	h.roll(1, 2)
	require.NoError(t, h.e.Buy(2))

	require.NoError(t, recorder.SaveReplay("test-game"))
	_, ok := recorder.GetReplay("test-game")
	assert.False(t, ok, "saved replays leave memory")

	loaded, err := recorder.LoadReplay("test-game")
	require.NoError(t, err)
	n := loaded.Size()
	require.Greater(t, n, 3)

	loaded.Start()
	assert.Nil(t, loaded.Previous())
	turn := 0
	for i := 0; i < n; i++ {
		s := loaded.Next()
		require.NotNil(t, s)
		if s.TurnNumber < turn {
			t.Fatalf("turn went back from %d to %d at state %d", turn, s.TurnNumber, i)
		}
		turn = s.TurnNumber
	}
	assert.Nil(t, loaded.Next())

	last := loaded.GetStateAt(n - 1)
	assert.Equal(t, 1, last.Properties[6].Owner)
	assert.Equal(t, 2, last.Properties[3].Owner)
	assert.Equal(t, 3, last.TurnNumber)

	assert.Same(t, last, loaded.Skip(100))
	assert.Same(t, loaded.GetStateAt(n-2), loaded.Previous())
	assert.Same(t, loaded.GetStateAt(0), loaded.Skip(-100))
	assert.Nil(t, NewReplay("empty").Skip(1))
	assert.Nil(t, loaded.GetStateAt(n))
}

func TestReplayRecorderStopAndClear(t *testing.T) {
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	h := newHarness(t, DefaultSettings(), WithReplay(recorder))
	h.start(2)

	replay, ok := recorder.GetReplay("test-game")
	require.True(t, ok)
	recorder.StopRecording("test-game")
	assert.False(t, recorder.IsRecording("test-game"))

	size := replay.Size()
	h.roll(2, 4)
	assert.Equal(t, size, replay.Size(), "a stopped replay records nothing")

	recorder.ClearReplay("test-game")
	_, ok = recorder.GetReplay("test-game")
	assert.False(t, ok)
	assert.Error(t, recorder.SaveReplay("test-game"))
	_, err := recorder.LoadReplay("test-game")
	assert.Error(t, err)
}

func TestLoadReplayRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.replay"), []byte("not gzip"), 0o644))
	_, err := LoadReplayFromFile(dir, "junk")
	assert.Error(t, err)

	f, err := os.Create(filepath.Join(dir, "future.replay"))
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	require.NoError(t, gob.NewEncoder(zw).Encode(&replayMetadata{GameID: "future", Version: replayVersion + 1}))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	_, err = LoadReplayFromFile(dir, "future")
	assert.ErrorContains(t, err, "unsupported replay version")

	f, err = os.Create(filepath.Join(dir, "short.replay"))
	require.NoError(t, err)
	zw = gzip.NewWriter(f)
	require.NoError(t, gob.NewEncoder(zw).Encode(&replayMetadata{GameID: "short", Version: replayVersion, StateCount: 2}))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	_, err = LoadReplayFromFile(dir, "short")
	assert.ErrorContains(t, err, "failed to decode state 0")
}
