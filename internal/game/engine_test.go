package game

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestStartMatchValidation(t *testing.T) {
	engine := NewEngine(zaptest.NewLogger(t), harnessCardSource{})

	cases := []struct {
		name    string
		matchID string
		players []string
	}{
		{"empty match id", "", []string{"Alice", "Bob"}},
		{"one player", "m1", []string{"Alice"}},
		{"three players", "m2", []string{"Alice", "Bob", "Carol"}},
		{"blank player", "m3", []string{"Alice", ""}},
		{"duplicate players", "m4", []string{"Alice", "Alice"}},
	}
	for _, tc := range cases {
		if err := engine.StartMatch(tc.matchID, tc.players); err == nil {
			t.Errorf("%s: expected StartMatch to fail", tc.name)
		}
	}

	if err := engine.StartMatch("m5", []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("valid start failed: %v", err)
	}
	if err := engine.StartMatch("m5", []string{"Carol", "Dave"}); err == nil {
		t.Errorf("expected duplicate match ID to fail")
	}
}

func TestStartMatchInitialState(t *testing.T) {
	h := NewMatchTestHarness(t, "initial-state", []string{"Alice", "Bob"})

	view, err := h.engine.GetMatchView(h.matchID, "Alice")
	if err != nil {
		t.Fatalf("failed to get view: %v", err)
	}

	if view.Phase != MatchInProgress {
		t.Errorf("expected phase %s, got %s", MatchInProgress, view.Phase)
	}
	if view.ActivePlayer != "Alice" {
		t.Errorf("expected the first seated player to open, got %s", view.ActivePlayer)
	}
	if view.Turn != 1 {
		t.Errorf("expected turn 1, got %d", view.Turn)
	}
	if view.Winner != "" {
		t.Errorf("expected no winner yet, got %s", view.Winner)
	}

	for _, p := range []PlayerView{view.You, view.Opponent} {
		if p.Health != maxPlayerHealth {
			t.Errorf("player %s: expected %d health, got %d", p.ID, maxPlayerHealth, p.Health)
		}
		if p.Gold != startingGold || p.MaxGold != startingGold {
			t.Errorf("player %s: expected %d/%d gold, got %d/%d", p.ID, startingGold, startingGold, p.Gold, p.MaxGold)
		}
		if p.Souls != 0 || p.HandSize != 0 || p.DeckSize != 0 {
			t.Errorf("player %s: expected empty hand, deck and souls", p.ID)
		}
		if len(p.Battlefield) != BattlefieldSlots {
			t.Errorf("player %s: expected %d battlefield slots, got %d", p.ID, BattlefieldSlots, len(p.Battlefield))
		}
	}
}

func TestPlayCardPlacementRules(t *testing.T) {
	h := NewMatchTestHarness(t, "placement-rules", []string{"Alice", "Bob"})

	poolID := h.AddToHand("Alice", Card{ID: "grunt", Name: "Grunt", Attack: 2, Health: 2})

	_, err := h.engine.PlayCard(h.matchID, "Alice", poolID, -1)
	expectRuleCode(t, err, CodeInvalidPlacement)
	_, err = h.engine.PlayCard(h.matchID, "Alice", poolID, BattlefieldSlots)
	expectRuleCode(t, err, CodeInvalidPlacement)

	// Wrong turn is a placement refusal too.
	bobPool := h.AddToHand("Bob", Card{ID: "grunt", Name: "Grunt", Attack: 2, Health: 2})
	_, err = h.engine.PlayCard(h.matchID, "Bob", bobPool, 0)
	expectRuleCode(t, err, CodeInvalidPlacement)

	_, err = h.engine.PlayCard(h.matchID, "Alice", "bogus-pool-id", 0)
	expectRuleCode(t, err, CodeCardNotInHand)
	if h.GetHandSize("Alice") != 1 {
		t.Fatalf("refusals should not consume the hand card")
	}

	h.PlaceDefender("Alice", 2, "Squatter", 1, 1)
	_, err = h.engine.PlayCard(h.matchID, "Alice", poolID, 2)
	expectRuleCode(t, err, CodeInvalidPlacement)
}

func TestPlayCardPlacesUnit(t *testing.T) {
	h := NewMatchTestHarness(t, "play-places", []string{"Alice", "Bob"})

	poolID := h.AddToHand("Alice", Card{ID: "grunt", Name: "Grunt", Attack: 2, Health: 3, Tags: []string{"Goblin"}})
	result := h.PlayFromHand("Alice", poolID, 4)

	if result.Unit.Name != "Grunt" || result.Unit.Slot != 4 {
		t.Errorf("unexpected unit in play result: %+v", result.Unit)
	}
	if h.GetHandSize("Alice") != 0 {
		t.Errorf("expected the card to leave the hand")
	}

	unit := h.UnitAt("Alice", 4)
	if unit == nil {
		t.Fatalf("expected a unit at slot 4")
	}
	if unit.CurrentHealth != 3 || unit.CanAttack {
		t.Errorf("fresh unit should arrive at full health with summoning sickness")
	}
}

func TestGoldCapOverManyTurns(t *testing.T) {
	h := NewMatchTestHarness(t, "gold-cap", []string{"Alice", "Bob"})

	for i := 0; i < 9; i++ {
		h.EndTurn("Alice")
		h.EndTurn("Bob")
	}

	view, err := h.engine.GetMatchView(h.matchID, "Alice")
	if err != nil {
		t.Fatalf("failed to get view: %v", err)
	}
	if view.You.MaxGold != maxGoldCap || view.You.Gold != maxGoldCap {
		t.Errorf("expected Alice at the %d gold cap, got %d/%d", maxGoldCap, view.You.Gold, view.You.MaxGold)
	}
	if view.Opponent.MaxGold != maxGoldCap {
		t.Errorf("expected Bob capped too, got %d", view.Opponent.MaxGold)
	}
}

func TestEndTurnAdvancesTurnCount(t *testing.T) {
	h := NewMatchTestHarness(t, "turn-count", []string{"Alice", "Bob"})

	result := h.EndTurn("Alice")
	if result.ActivePlayer != "Bob" {
		t.Errorf("expected Bob to open, got %s", result.ActivePlayer)
	}
	result = h.EndTurn("Bob")
	if result.ActivePlayer != "Alice" {
		t.Errorf("expected the turn back with Alice, got %s", result.ActivePlayer)
	}
	if result.Turn != 2 {
		t.Errorf("expected turn 2 after a full cycle, got %d", result.Turn)
	}
}

func TestPlayerConcede(t *testing.T) {
	h := NewMatchTestHarness(t, "concede", []string{"Alice", "Bob"})

	if err := h.engine.PlayerConcede(h.matchID, "Carol"); err == nil {
		t.Fatalf("expected concede by a stranger to fail")
	}
	if err := h.engine.PlayerConcede(h.matchID, "Bob"); err != nil {
		t.Fatalf("concede failed: %v", err)
	}

	view, err := h.engine.GetMatchView(h.matchID, "Alice")
	if err != nil {
		t.Fatalf("failed to get view: %v", err)
	}
	if view.Phase != MatchFinished || view.Winner != "Alice" {
		t.Errorf("expected Alice to win by concession, got phase=%s winner=%s", view.Phase, view.Winner)
	}

	err = h.engine.PlayerConcede(h.matchID, "Alice")
	expectRuleCode(t, err, CodeMatchOver)
	_, err = h.engine.EndTurn(h.matchID, "Alice")
	expectRuleCode(t, err, CodeMatchOver)
}

func TestMatchNotFound(t *testing.T) {
	engine := NewEngine(zaptest.NewLogger(t), harnessCardSource{})

	_, err := engine.EndTurn("nowhere", "Alice")
	expectRuleCode(t, err, CodeMatchNotFound)
	_, err = engine.GetMatchView("nowhere", "Alice")
	expectRuleCode(t, err, CodeMatchNotFound)
}

func TestMatchesListedInStableOrder(t *testing.T) {
	engine := NewEngine(zaptest.NewLogger(t), harnessCardSource{})

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if err := engine.StartMatch(id, []string{"Alice", "Bob"}); err != nil {
			t.Fatalf("failed to start %s: %v", id, err)
		}
	}

	ids := engine.Matches()
	want := []string{"alpha", "bravo", "charlie"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d matches, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected sorted IDs %v, got %v", want, ids)
		}
	}
}

func TestSeededMatchesDraftIdentically(t *testing.T) {
	names := func(t *testing.T) []string {
		t.Helper()
		engine := NewEngine(zaptest.NewLogger(t), harnessCardSource{})
		engine.SetSeed(99)
		if err := engine.StartMatch("seeded", []string{"Alice", "Bob"}); err != nil {
			t.Fatalf("failed to start match: %v", err)
		}
		view, err := engine.StartDraft("seeded", "Alice", 1)
		if err != nil {
			t.Fatalf("failed to start draft: %v", err)
		}
		got := make([]string, 0, len(view.Options))
		for _, option := range view.Options {
			got = append(got, option.Name)
		}
		return got
	}

	first := names(t)
	second := names(t)
	if strings.Join(first, "|") != strings.Join(second, "|") {
		t.Errorf("expected identical draft options for the same seed: %v vs %v", first, second)
	}
}

func TestNotificationsReachHandler(t *testing.T) {
	engine := NewEngine(zaptest.NewLogger(t), harnessCardSource{})
	engine.SetSeed(7)

	received := make(chan MatchNotification, 64)
	engine.SetNotificationHandler(func(n MatchNotification) {
		received <- n
	})

	if err := engine.StartMatch("notify", []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("failed to start match: %v", err)
	}

	seen := make(map[string]bool)
	deadline := time.After(2 * time.Second)
	for !seen["MATCH_STARTED"] || !seen["TURN_STARTED"] {
		select {
		case n := <-received:
			if n.MatchID != "notify" {
				t.Fatalf("notification for the wrong match: %+v", n)
			}
			seen[n.Type] = true
		case <-deadline:
			t.Fatalf("timed out waiting for notifications, saw %v", seen)
		}
	}
}
