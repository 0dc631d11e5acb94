package rules

import "testing"

func TestTurnManagerAlternates(t *testing.T) {
	tm := NewTurnManager("Alice", "Bob")

	if tm.TurnNumber() != 1 {
		t.Fatalf("expected turn 1, got %d", tm.TurnNumber())
	}
	if tm.ActivePlayer() != "Alice" {
		t.Fatalf("expected Alice active on turn 1, got %s", tm.ActivePlayer())
	}

	next := tm.Advance()
	if next != "Bob" {
		t.Fatalf("expected Bob after advance, got %s", next)
	}
	if tm.TurnNumber() != 2 {
		t.Fatalf("expected turn 2 after advance, got %d", tm.TurnNumber())
	}

	next = tm.Advance()
	if next != "Alice" {
		t.Fatalf("expected Alice after second advance, got %s", next)
	}
	if tm.TurnNumber() != 3 {
		t.Fatalf("expected turn 3 after second advance, got %d", tm.TurnNumber())
	}
}

func TestTurnManagerOpponent(t *testing.T) {
	tm := NewTurnManager("Alice", "Bob")

	if opp := tm.Opponent("Alice"); opp != "Bob" {
		t.Fatalf("expected Bob as Alice's opponent, got %s", opp)
	}
	if opp := tm.Opponent("Bob"); opp != "Alice" {
		t.Fatalf("expected Alice as Bob's opponent, got %s", opp)
	}
	if opp := tm.Opponent("Mallory"); opp != "" {
		t.Fatalf("expected empty opponent for unknown player, got %s", opp)
	}
}

func TestTurnManagerIsActive(t *testing.T) {
	tm := NewTurnManager("Alice", "Bob")

	if !tm.IsActive("Alice") {
		t.Fatal("expected Alice to be active")
	}
	if tm.IsActive("Bob") {
		t.Fatal("expected Bob to be inactive")
	}
	if tm.IsActive("") {
		t.Fatal("expected empty player ID to never be active")
	}

	tm.Advance()
	if !tm.IsActive("Bob") {
		t.Fatal("expected Bob to be active after advance")
	}
}
