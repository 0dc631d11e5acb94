package rules

import (
	"testing"
	"time"
)

func TestTriggerManagerHandle(t *testing.T) {
	manager := NewTriggerManager()

	callCount := 0
	manager.Register(AbilityTrigger{
		EventType: EventUnitPlayed,
		Condition: func(e Event) bool {
			return e.Metadata["ability"] == "Unleash: Deal 2 damage to a random enemy unit"
		},
		Build: func(e Event) []Reaction {
			callCount++
			return []Reaction{{
				Controller:  e.Controller,
				Description: "Deal 2 damage",
				Kind:        ReactionKindUnleash,
			}}
		},
	})

	items := manager.Handle(Event{
		Type:       EventUnitPlayed,
		Controller: "Alice",
		Timestamp:  time.Now(),
		Metadata: map[string]string{
			"ability": "Unleash: Deal 2 damage to a random enemy unit",
		},
	})

	if len(items) != 1 {
		t.Fatalf("expected 1 reaction, got %d", len(items))
	}
	if items[0].Controller != "Alice" {
		t.Fatalf("expected controller Alice, got %s", items[0].Controller)
	}
	if callCount != 1 {
		t.Fatalf("expected build to be called once, got %d", callCount)
	}
}

func TestTriggerManagerFiresInRegistrationOrder(t *testing.T) {
	manager := NewTriggerManager()

	for _, name := range []string{"unleash", "manacharge", "kindred"} {
		name := name
		manager.Register(AbilityTrigger{
			ID:        name,
			EventType: EventUnitPlayed,
			Build: func(e Event) []Reaction {
				return []Reaction{{Description: name}}
			},
		})
	}

	items := manager.Handle(NewEvent(EventUnitPlayed, "unit1", "unit1", "Alice"))

	want := []string{"unleash", "manacharge", "kindred"}
	if len(items) != len(want) {
		t.Fatalf("expected %d reactions, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i].Description != want[i] {
			t.Fatalf("expected reaction %d to be %s, got %s", i, want[i], items[i].Description)
		}
	}
}

func TestTriggerManagerOnce(t *testing.T) {
	manager := NewTriggerManager()

	manager.Register(AbilityTrigger{
		ID:        "one-shot",
		EventType: EventTurnStarted,
		Once:      true,
		Build: func(e Event) []Reaction {
			return []Reaction{{Description: "fires once"}}
		},
	})

	first := manager.Handle(NewEvent(EventTurnStarted, "", "", "Alice"))
	if len(first) != 1 {
		t.Fatalf("expected 1 reaction on first event, got %d", len(first))
	}

	second := manager.Handle(NewEvent(EventTurnStarted, "", "", "Alice"))
	if len(second) != 0 {
		t.Fatalf("expected 0 reactions after once trigger consumed, got %d", len(second))
	}
}
