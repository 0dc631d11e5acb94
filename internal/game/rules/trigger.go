package rules

import (
	"sync"

	"github.com/google/uuid"
)

// AbilityTrigger encapsulates the logic for reacting to a specific event and
// producing reactions when the conditions are satisfied.
type AbilityTrigger struct {
	ID         string
	SourceID   string
	Controller string
	EventType  EventType
	Condition  func(Event) bool
	Build      func(Event) []Reaction
	Once       bool
}

// TriggerManager stores and evaluates ability triggers against events.
// Triggers fire in registration order so cascades resolve deterministically.
type TriggerManager struct {
	mu       sync.Mutex
	triggers map[string]AbilityTrigger
	order    []string
}

// NewTriggerManager creates an empty trigger manager.
func NewTriggerManager() *TriggerManager {
	return &TriggerManager{
		triggers: make(map[string]AbilityTrigger),
	}
}

// Register adds a new trigger to the manager.
func (tm *TriggerManager) Register(trigger AbilityTrigger) string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if trigger.ID == "" {
		trigger.ID = uuid.NewString()
	}
	if _, exists := tm.triggers[trigger.ID]; !exists {
		tm.order = append(tm.order, trigger.ID)
	}
	tm.triggers[trigger.ID] = trigger
	return trigger.ID
}

// Unregister removes a trigger by ID.
func (tm *TriggerManager) Unregister(id string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.remove(id)
}

func (tm *TriggerManager) remove(id string) {
	if _, exists := tm.triggers[id]; !exists {
		return
	}
	delete(tm.triggers, id)
	for i, oid := range tm.order {
		if oid == id {
			tm.order = append(tm.order[:i], tm.order[i+1:]...)
			break
		}
	}
}

// Handle evaluates the provided event against all registered triggers and
// returns the reactions they produce, in registration order.
func (tm *TriggerManager) Handle(event Event) []Reaction {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if len(tm.triggers) == 0 {
		return nil
	}

	var (
		reactions []Reaction
		toRemove  []string
	)

	for _, id := range tm.order {
		trigger := tm.triggers[id]
		if trigger.EventType != event.Type {
			continue
		}
		if trigger.Condition != nil && !trigger.Condition(event) {
			continue
		}
		if trigger.Build == nil {
			continue
		}

		for _, item := range trigger.Build(event) {
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			reactions = append(reactions, item)
		}

		if trigger.Once {
			toRemove = append(toRemove, id)
		}
	}

	for _, id := range toRemove {
		tm.remove(id)
	}

	return reactions
}
