package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatcherRegistry(t *testing.T) {
	registry := NewWatcherRegistry()

	testWatcher := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame, "TestWatcher")}
	registry.AddWatcher(testWatcher)

	retrieved := registry.GetWatcher("TestWatcher")
	if retrieved == nil {
		t.Fatal("should retrieve TestWatcher")
	}

	gameWatchers := registry.GetWatchersByScope(WatcherScopeGame)
	if len(gameWatchers) != 1 {
		t.Fatalf("expected 1 game watcher, got %d", len(gameWatchers))
	}

	registry.NotifyWatchers(NewEvent(EventBankrupt, 2))
	if !testWatcher.ConditionMet() {
		t.Fatal("testWatcher should have condition met")
	}

	registry.ResetWatchers()
	if testWatcher.ConditionMet() {
		t.Fatal("watcher should not have condition met after reset")
	}

	registry.RemoveWatcher("TestWatcher")
	if registry.GetWatcher("TestWatcher") != nil {
		t.Fatal("watcher should be removed")
	}
	assert.Empty(t, registry.GetWatchersByScope(WatcherScopeGame))
}

func TestPlayerScopedKeys(t *testing.T) {
	w := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopePlayer, "Jail")}
	w.SetPlayerID(3)
	assert.Equal(t, "3_Jail", w.GetKey())

	w.SetKey("custom")
	assert.Equal(t, "custom", w.GetKey())
	assert.Equal(t, "PLAYER", WatcherScopePlayer.String())
}

func TestAddWatcherReplacesSameKey(t *testing.T) {
	registry := NewWatcherRegistry()
	registry.AddWatcher(&testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame, "W")})
	registry.AddWatcher(&testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame, "W")})

	assert.Len(t, registry.GetAllWatchers(), 1)
	assert.Len(t, registry.GetWatchersByScope(WatcherScopeGame), 1)
}

func TestRegistryAttachedToBus(t *testing.T) {
	bus := NewEventBus()
	registry := NewWatcherRegistry()
	w := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame, "W")}
	registry.AddWatcher(w)

	handle := registry.Attach(bus)
	bus.Publish(NewEvent(EventBankrupt, 1))
	assert.True(t, w.ConditionMet())

	w.Reset()
	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventBankrupt, 1))
	assert.False(t, w.ConditionMet())
}

// testWatcherImpl flags any bankruptcy.
type testWatcherImpl struct {
	*BaseWatcher
}

func (t *testWatcherImpl) Watch(event Event) {
	if event.Type == EventBankrupt {
		t.SetCondition(true)
	}
}
