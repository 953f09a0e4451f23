package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a game event.
type EventType string

const (
	// Session events
	EventGameStarted  EventType = "GAME_STARTED"
	EventGameResumed  EventType = "GAME_RESUMED"
	EventGameOver     EventType = "GAME_OVER"
	EventStateChanged EventType = "STATE_CHANGED"
	EventInputTimeout EventType = "INPUT_TIMEOUT"

	// Turn events
	EventTurnStarted EventType = "TURN_STARTED"
	EventTurnEnded   EventType = "TURN_ENDED"
	EventDiceRolled  EventType = "DICE_ROLLED"
	EventPlayerMoved EventType = "PLAYER_MOVED"
	EventPassedGo    EventType = "PASSED_GO"

	// Money events
	EventPropertyBought   EventType = "PROPERTY_BOUGHT"
	EventRentPaid         EventType = "RENT_PAID"
	EventTaxPaid          EventType = "TAX_PAID"
	EventFreeParking      EventType = "FREE_PARKING"
	EventPaymentMade      EventType = "PAYMENT_MADE"
	EventImprovementBuilt EventType = "IMPROVEMENT_BUILT"
	EventImprovementSold  EventType = "IMPROVEMENT_SOLD"
	EventMortgaged        EventType = "MORTGAGED"
	EventUnmortgaged      EventType = "UNMORTGAGED"

	// Card events
	EventCardDrawn   EventType = "CARD_DRAWN"
	EventCardApplied EventType = "CARD_APPLIED"

	// Jail events
	EventJailed           EventType = "JAILED"
	EventReleasedFromJail EventType = "RELEASED_FROM_JAIL"

	// Trade and auction events
	EventTradeExecuted  EventType = "TRADE_EXECUTED"
	EventAuctionStarted EventType = "AUCTION_STARTED"
	EventAuctionBid     EventType = "AUCTION_BID"
	EventAuctionWon     EventType = "AUCTION_WON"

	// Debt events
	EventDebtOpened          EventType = "DEBT_OPENED"
	EventDebtSettled         EventType = "DEBT_SETTLED"
	EventPropertySurrendered EventType = "PROPERTY_SURRENDERED"
	EventBankrupt            EventType = "BANKRUPT"
)

// IsMoney returns true if the event moves money between parties.
func (et EventType) IsMoney() bool {
	switch et {
	case EventPropertyBought, EventRentPaid, EventTaxPaid, EventFreeParking, EventPaymentMade,
		EventImprovementBuilt, EventImprovementSold, EventMortgaged, EventUnmortgaged, EventPassedGo:
		return true
	default:
		return false
	}
}

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	ID          string            // Unique event ID
	GameID      string            // Game the event belongs to
	PlayerID    int               // Acting player (0 = bank or none)
	TargetID    int               // Counterparty player (creditor, owner, trade partner)
	Tile        int               // Board tile the event relates to (-1 = none)
	Amount      int               // Money or count
	Flag        bool              // Doubles, forced fine and similar
	Data        string            // Additional string data
	Timestamp   time.Time         // When the event occurred
	Metadata    map[string]string // Additional metadata
	Description string            // Human-readable description
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered for all events or for one type.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
// Catch-all listeners run in subscription order, then typed listeners.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for handle := 0; handle < bus.nextHandle; handle++ {
		if listener, ok := bus.listeners[handle]; ok {
			listener(event)
		}
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, playerID int) Event {
	return Event{
		Type:      eventType,
		PlayerID:  playerID,
		Tile:      -1,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates an event carrying a counterparty and an amount.
func NewEventWithAmount(eventType EventType, playerID, targetID, amount int) Event {
	evt := NewEvent(eventType, playerID)
	evt.TargetID = targetID
	evt.Amount = amount
	return evt
}

// NewTileEvent creates an event about a board tile.
func NewTileEvent(eventType EventType, playerID, tile, amount int) Event {
	evt := NewEvent(eventType, playerID)
	evt.Tile = tile
	evt.Amount = amount
	return evt
}
