package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEngineRecordsReplay(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)
	h := newHarness(t, DefaultSettings(), WithReplay(recorder))
	h.start(2)

	require.True(t, recorder.IsRecording("test-game"))
	replay, ok := recorder.GetReplay("test-game")
	require.True(t, ok)
	afterStart := replay.Size()
	require.Greater(t, afterStart, 0)

	h.roll(2, 4)
	require.NoError(t, h.e.Buy(1))
	assert.Greater(t, replay.Size(), afterStart)

	last := replay.GetStateAt(replay.Size() - 1)
	require.NotNil(t, last)
	assert.Equal(t, 1, last.Properties[6].Owner)
	assert.Equal(t, 2, last.CurrentPlayer)

	// Rejected actions record nothing.
	size := replay.Size()
	assert.Error(t, h.e.Buy(1))
	assert.Equal(t, size, replay.Size())

	require.NoError(t, recorder.SaveReplay("test-game"))
	loaded, err := LoadReplayFromFile(dir, "test-game")
	require.NoError(t, err)
	assert.Equal(t, size, loaded.Size())

	loaded.Start()
	first := loaded.Next()
	require.NotNil(t, first)
	assert.Equal(t, StateTurnStart, first.State)
	assert.Equal(t, 1, first.CurrentPlayer)

	other := newHarness(t, DefaultSettings())
	require.NoError(t, other.e.Restore(loaded.GetStateAt(loaded.Size()-1)))
	assert.Equal(t, 1, other.e.game.Ledger.PropertyAt(6).Owner)
}
