package game

import (
	"testing"
)

// TestSurvivedDamageTrigger verifies the survivor bonus on the defending side
func TestSurvivedDamageTrigger(t *testing.T) {
	h := NewMatchTestHarness(t, "test-survived-damage", []string{"Alice", "Bob"})

	h.PlaceAttacker("Alice", 0, "Raider", 2, 9)
	hide := h.PlaceUnit(UnitSpec{
		Name:    "Thick Hide",
		Owner:   "Bob",
		Slot:    0,
		Attack:  1,
		Health:  5,
		Ability: "When this unit survives damage, gain +1/+1.",
	})

	outcome := h.Attack("Alice", 0)

	if !containsTrigger(outcome.Triggered, "Survived damage: Thick Hide") {
		t.Fatalf("expected the survival trigger, got %v", outcome.Triggered)
	}
	if hide.Health != 6 || hide.Attack != 2 {
		t.Errorf("hide should grow to 2/6, got %d/%d", hide.Attack, hide.Health)
	}
	if hide.CurrentHealth != 4 {
		t.Errorf("current health should be 3 damage-adjusted plus 1, got %d", hide.CurrentHealth)
	}
}

// TestSurvivedDamageOnReturnBlow verifies the attacker's survival of the
// defender's return damage counts too
func TestSurvivedDamageOnReturnBlow(t *testing.T) {
	h := NewMatchTestHarness(t, "test-survived-return", []string{"Alice", "Bob"})

	veteran := h.PlaceUnit(UnitSpec{
		Name:    "Scarred Veteran",
		Owner:   "Alice",
		Slot:    1,
		Attack:  2,
		Health:  6,
		Ability: "When this unit survives damage, gain +1/+1.",
		Ready:   true,
	})
	h.PlaceDefender("Bob", 1, "Guard", 2, 9)

	h.Attack("Alice", 1)

	if veteran.Health != 7 {
		t.Errorf("veteran should have grown from surviving the return blow, health %d", veteran.Health)
	}
}

// TestSurvivedAttackingTrigger verifies the bonus lands only after trading
// with a unit
func TestSurvivedAttackingTrigger(t *testing.T) {
	h := NewMatchTestHarness(t, "test-survived-attacking", []string{"Alice", "Bob"})

	duelist := h.PlaceUnit(UnitSpec{
		Name:    "Pit Duelist",
		Owner:   "Alice",
		Slot:    0,
		Attack:  3,
		Health:  6,
		Ability: "When this unit survives attacking, gain +1/+1.",
		Ready:   true,
	})
	h.PlaceDefender("Bob", 0, "Guard", 2, 9)

	outcome := h.Attack("Alice", 0)

	if !containsTrigger(outcome.Triggered, "Survived attacking: Pit Duelist") {
		t.Fatalf("expected the trigger, got %v", outcome.Triggered)
	}
	if duelist.Attack != 4 || duelist.Health != 7 {
		t.Errorf("duelist should be 4/7, got %d/%d", duelist.Attack, duelist.Health)
	}
}

// TestSurvivedAttackingSkipsDirectHits verifies a free swing at the player is
// not surviving an exchange
func TestSurvivedAttackingSkipsDirectHits(t *testing.T) {
	h := NewMatchTestHarness(t, "test-survived-direct", []string{"Alice", "Bob"})

	duelist := h.PlaceUnit(UnitSpec{
		Name:    "Pit Duelist",
		Owner:   "Alice",
		Slot:    0,
		Attack:  3,
		Health:  6,
		Ability: "When this unit survives attacking, gain +1/+1.",
		Ready:   true,
	})

	outcome := h.Attack("Alice", 0)

	if outcome.TargetKind != targetKindPlayer {
		t.Fatalf("expected a direct attack, got %s", outcome.TargetKind)
	}
	if containsTrigger(outcome.Triggered, "Survived attacking: Pit Duelist") {
		t.Errorf("direct hits must not count, got %v", outcome.Triggered)
	}
	if duelist.Attack != 3 {
		t.Errorf("duelist should be unchanged, attack %d", duelist.Attack)
	}
}

// TestAfterAttackTrigger verifies the generic variant fires on any completed
// attack
func TestAfterAttackTrigger(t *testing.T) {
	h := NewMatchTestHarness(t, "test-after-attack", []string{"Alice", "Bob"})

	raider := h.PlaceUnit(UnitSpec{
		Name:    "Momentum Raider",
		Owner:   "Alice",
		Slot:    2,
		Attack:  2,
		Health:  6,
		Ability: "After this unit attacks, gain +1/+1.",
		Ready:   true,
	})
	h.PlaceDefender("Bob", 2, "Guard", 1, 9)

	outcome := h.Attack("Alice", 2)
	if !containsTrigger(outcome.Triggered, "After attack: Momentum Raider") {
		t.Fatalf("expected the after-attack trigger, got %v", outcome.Triggered)
	}
	if raider.Attack != 3 {
		t.Errorf("raider should be 3/7, got %d/%d", raider.Attack, raider.Health)
	}

	// The next turn's direct swing counts as well.
	h.EndTurn("Alice")
	h.EndTurn("Bob")
	st := h.GetMatchState()
	st.mu.Lock()
	st.removeUnit(st.unitAt("Bob", 2))
	st.mu.Unlock()

	outcome = h.Attack("Alice", 2)
	if outcome.TargetKind != targetKindPlayer {
		t.Fatalf("expected a direct attack, got %s", outcome.TargetKind)
	}
	if raider.Attack != 4 {
		t.Errorf("raider should be 4/8 after the direct swing, got %d/%d", raider.Attack, raider.Health)
	}
}

// TestAfterAttackPlayerVariant verifies the player-only wording ignores unit
// trades
func TestAfterAttackPlayerVariant(t *testing.T) {
	h := NewMatchTestHarness(t, "test-after-attack-player", []string{"Alice", "Bob"})

	reaver := h.PlaceUnit(UnitSpec{
		Name:    "Soul Reaver",
		Owner:   "Alice",
		Slot:    0,
		Attack:  2,
		Health:  8,
		Ability: "After this unit attacks the enemy player, gain 1 dragon soul.",
		Ready:   true,
	})
	h.PlaceDefender("Bob", 0, "Guard", 1, 9)

	// Trading with the guard pays nothing.
	h.Attack("Alice", 0)
	if h.GetPlayerSouls("Alice") != 0 {
		t.Fatalf("unit trades must not pay souls, got %d", h.GetPlayerSouls("Alice"))
	}

	// Clearing the column and swinging at Bob does.
	h.EndTurn("Alice")
	h.EndTurn("Bob")
	st := h.GetMatchState()
	st.mu.Lock()
	st.removeUnit(st.unitAt("Bob", 0))
	st.mu.Unlock()

	h.Attack("Alice", 0)
	if h.GetPlayerSouls("Alice") != 1 {
		t.Errorf("the direct hit should pay 1 soul, got %d", h.GetPlayerSouls("Alice"))
	}
	if reaver.CurrentHealth != 7 {
		t.Errorf("reaver should only carry the guard's return damage, health %d", reaver.CurrentHealth)
	}
}

// TestAfterAttackDeadAttackerFizzles verifies no trigger fires for an
// attacker that died in its own exchange
func TestAfterAttackDeadAttackerFizzles(t *testing.T) {
	h := NewMatchTestHarness(t, "test-after-attack-dead", []string{"Alice", "Bob"})

	h.PlaceUnit(UnitSpec{
		Name:    "Reckless Raider",
		Owner:   "Alice",
		Slot:    1,
		Attack:  2,
		Health:  1,
		Ability: "After this unit attacks, gain +1/+1.",
		Ready:   true,
	})
	h.PlaceDefender("Bob", 1, "Spiked Wall", 4, 9)

	outcome := h.Attack("Alice", 1)

	if h.UnitAt("Alice", 1) != nil {
		t.Error("raider should be dead")
	}
	if containsTrigger(outcome.Triggered, "After attack: Reckless Raider") {
		t.Errorf("dead attackers trigger nothing, got %v", outcome.Triggered)
	}
}
