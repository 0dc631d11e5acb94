package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Turn events
	EventTurnStarted EventType = "TURN_STARTED"
	EventTurnEnded   EventType = "TURN_ENDED"

	// Unit lifecycle events. UNIT_PLAYED fires only for cards placed from a
	// player's hand; UNIT_SUMMONED fires for units created by effects.
	EventUnitPlayed   EventType = "UNIT_PLAYED"
	EventUnitSummoned EventType = "UNIT_SUMMONED"
	EventUnitDied     EventType = "UNIT_DIED"

	// Combat events
	EventAttackCompleted    EventType = "ATTACK_COMPLETED"
	EventUnitSurvivedDamage EventType = "UNIT_SURVIVED_DAMAGE"
	EventUnitSurvivedAttack EventType = "UNIT_SURVIVED_ATTACK"
	EventPlayerDamaged      EventType = "PLAYER_DAMAGED"
	EventPlayerHealed       EventType = "PLAYER_HEALED"

	// Ability events
	EventManachargeActivated EventType = "MANACHARGE_ACTIVATED"
	EventStatsChanged        EventType = "STATS_CHANGED"
	EventSlotBuffChanged     EventType = "SLOT_BUFF_CHANGED"
	EventAbilityGranted      EventType = "ABILITY_GRANTED"
	EventSoulsGained         EventType = "SOULS_GAINED"

	// Card economy events
	EventCardDrawn         EventType = "CARD_DRAWN"
	EventCardAddedToHand   EventType = "CARD_ADDED_TO_HAND"
	EventDraftStarted      EventType = "DRAFT_STARTED"
	EventDraftRerolled     EventType = "DRAFT_REROLLED"
	EventDraftCardSelected EventType = "DRAFT_CARD_SELECTED"

	// Match events
	EventMatchStarted EventType = "MATCH_STARTED"
	EventMatchOver    EventType = "MATCH_OVER"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	ID          string            // Unique event ID
	TargetID    string            // Instance ID of the unit or player acted on
	SourceID    string            // Instance ID of the unit or ability that caused it
	Controller  string            // Player ID of the controller
	PlayerID    string            // Player ID (often same as Controller, but can differ)
	Amount      int               // Numeric value (damage, buff size, souls, etc.)
	Flag        bool              // Boolean flag (banished, free draw, etc.)
	Data        string            // Additional string data
	Slot        int               // Battlefield slot the event relates to (-1 = none)
	Targets     []string          // Multiple targets (for multi-target events)
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
	listeners      map[int]Listener              // All listeners
	typedListeners map[EventType][]TypedListener // Listeners filtered by event type
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
	listener := TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	}
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], listener)
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
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
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}

	if typedListeners, ok := bus.typedListeners[event.Type]; ok {
		for _, listener := range typedListeners {
			listener.Callback(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, controllerID string) Event {
	return Event{
		Type:       eventType,
		TargetID:   targetID,
		SourceID:   sourceID,
		Controller: controllerID,
		PlayerID:   controllerID,
		Slot:       -1,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, controllerID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, controllerID)
	evt.Amount = amount
	return evt
}

// NewEventWithSlot creates a new event tied to a battlefield slot.
func NewEventWithSlot(eventType EventType, targetID, sourceID, controllerID string, slot int) Event {
	evt := NewEvent(eventType, targetID, sourceID, controllerID)
	evt.Slot = slot
	return evt
}
