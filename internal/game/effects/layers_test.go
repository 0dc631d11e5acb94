package effects

import (
	"testing"

	"github.com/gridspire/arena-server-go/internal/game/ability"
)

func TestLayerSystemAppliesConditionalEffects(t *testing.T) {
	system := NewLayerSystem()
	system.AddEffect(NewTurnAttackEffect("u1", 2))

	snapshot := NewSnapshot("u1", "Alice", nil, 3, 3, false, true)
	system.Apply(snapshot)
	if snapshot.Attack != 5 {
		t.Fatalf("expected 5 attack on owner's turn, got %d", snapshot.Attack)
	}

	snapshot = NewSnapshot("u1", "Alice", nil, 3, 3, false, false)
	system.Apply(snapshot)
	if snapshot.Attack != 3 {
		t.Fatalf("expected base attack off turn, got %d", snapshot.Attack)
	}
}

func TestLayerSystemFrontRowEffect(t *testing.T) {
	system := NewLayerSystem()
	system.AddEffect(NewFrontRowAttackEffect("u1", 1))

	front := NewSnapshot("u1", "Alice", nil, 2, 2, true, true)
	system.Apply(front)
	if front.Attack != 3 {
		t.Fatalf("expected 3 attack in front row, got %d", front.Attack)
	}

	back := NewSnapshot("u1", "Alice", nil, 2, 2, false, true)
	system.Apply(back)
	if back.Attack != 2 {
		t.Fatalf("expected base attack in back row, got %d", back.Attack)
	}
}

func TestTagAuraExcludesSourceAndOpponents(t *testing.T) {
	system := NewLayerSystem()
	system.AddEffect(NewTagAuraEffect("aura-source", "Alice", "goblin", 1))

	other := NewSnapshot("u2", "Alice", []string{"Goblin"}, 1, 1, true, true)
	system.Apply(other)
	if other.Attack != 2 {
		t.Fatalf("expected aura to buff friendly goblin, got %d", other.Attack)
	}

	self := NewSnapshot("aura-source", "Alice", []string{"Goblin"}, 1, 1, true, true)
	system.Apply(self)
	if self.Attack != 1 {
		t.Fatalf("aura must not buff its own source, got %d", self.Attack)
	}

	enemy := NewSnapshot("u3", "Bob", []string{"Goblin"}, 1, 1, true, true)
	system.Apply(enemy)
	if enemy.Attack != 1 {
		t.Fatalf("aura must not buff enemy units, got %d", enemy.Attack)
	}

	untagged := NewSnapshot("u4", "Alice", []string{"Beast"}, 1, 1, true, true)
	system.Apply(untagged)
	if untagged.Attack != 1 {
		t.Fatalf("aura must not buff units without the tag, got %d", untagged.Attack)
	}
}

func TestLayerSystemRemoveSource(t *testing.T) {
	system := NewLayerSystem()
	system.AddEffect(NewTagAuraEffect("dying", "Alice", "beast", 2))
	system.AddEffect(NewTurnAttackEffect("dying", 1))
	system.AddEffect(NewTagAuraEffect("survivor", "Alice", "beast", 1))

	system.RemoveSource("dying")

	snapshot := NewSnapshot("u2", "Alice", []string{"Beast"}, 1, 1, true, true)
	system.Apply(snapshot)
	if snapshot.Attack != 2 {
		t.Fatalf("expected only the surviving aura to apply, got %d", snapshot.Attack)
	}
}

func TestEffectsForBridgesParsedStatics(t *testing.T) {
	statics := ability.Statics("This unit has +2 Attack on your turn. Your other Goblins have +1 Attack")
	effects := EffectsFor("u1", "Alice", statics)
	if len(effects) != 2 {
		t.Fatalf("expected 2 effects, got %d", len(effects))
	}

	system := NewLayerSystem()
	for _, e := range effects {
		system.AddEffect(e)
	}

	self := NewSnapshot("u1", "Alice", []string{"Goblin"}, 1, 1, true, true)
	system.Apply(self)
	if self.Attack != 3 {
		t.Fatalf("expected turn bonus without self-aura, got %d", self.Attack)
	}

	other := NewSnapshot("u2", "Alice", []string{"Goblin"}, 1, 1, true, true)
	system.Apply(other)
	if other.Attack != 2 {
		t.Fatalf("expected aura on the other goblin, got %d", other.Attack)
	}
}

func TestSnapshotResetBetweenApplies(t *testing.T) {
	system := NewLayerSystem()
	system.AddEffect(NewTurnAttackEffect("u1", 2))

	snapshot := NewSnapshot("u1", "Alice", nil, 3, 3, false, true)
	system.Apply(snapshot)
	system.Apply(snapshot)
	if snapshot.Attack != 5 {
		t.Fatalf("apply must not stack across evaluations, got %d", snapshot.Attack)
	}
}
