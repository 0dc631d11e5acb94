package game

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
)

// MatchTestHarness provides utilities for setting up and running match tests
type MatchTestHarness struct {
	t       *testing.T
	engine  *Engine
	matchID string
	players []string
}

// harnessCardSource serves a small fixed pool so matches start without a
// card database behind them
type harnessCardSource struct{}

func (harnessCardSource) CardsForTier(tier int) ([]Card, error) {
	tags := []string{"Goblin", "Beast", "Elemental", "Soldier"}
	colors := []Color{ColorRed, ColorGreen, ColorBlue, ColorYellow}
	cards := make([]Card, 0, len(tags))
	for i := range tags {
		cards = append(cards, Card{
			ID:     fmt.Sprintf("stock-t%d-%d", tier, i),
			Name:   fmt.Sprintf("Stock %s %d", tags[i], tier),
			Attack: tier,
			Health: tier + 1,
			Tags:   []string{tags[i]},
			Color:  colors[i],
		})
	}
	return cards, nil
}

// NewMatchTestHarness starts a deterministic two-player match wrapped for
// direct state manipulation
func NewMatchTestHarness(t *testing.T, matchID string, players []string) *MatchTestHarness {
	logger := zaptest.NewLogger(t)
	engine := NewEngine(logger, harnessCardSource{})
	engine.SetSeed(7)

	if err := engine.StartMatch(matchID, players); err != nil {
		t.Fatalf("failed to start match: %v", err)
	}

	return &MatchTestHarness{
		t:       t,
		engine:  engine,
		matchID: matchID,
		players: players,
	}
}

// Engine exposes the wrapped engine for calls the harness has no helper for
func (h *MatchTestHarness) Engine() *Engine {
	return h.engine
}

// GetMatchState returns the internal match state for direct manipulation
func (h *MatchTestHarness) GetMatchState() *matchState {
	h.engine.mu.RLock()
	st := h.engine.matches[h.matchID]
	h.engine.mu.RUnlock()
	return st
}

// UnitSpec defines the properties of a test unit
type UnitSpec struct {
	Name    string
	Owner   string
	Slot    int
	Attack  int
	Health  int
	Ability string
	Tags    []string
	Color   Color
	Ready   bool
}

func (spec UnitSpec) card() Card {
	return Card{
		ID:      spec.Name,
		Name:    spec.Name,
		Attack:  spec.Attack,
		Health:  spec.Health,
		Ability: spec.Ability,
		Tags:    spec.Tags,
		Color:   spec.Color,
		Tier:    1,
	}
}

// PlaceUnit puts a unit straight onto the battlefield, bypassing hand and
// gold. Ready units can attack immediately.
func (h *MatchTestHarness) PlaceUnit(spec UnitSpec) *Unit {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	unit := newUnit(spec.card(), spec.Owner, spec.Slot)
	if spec.Ready {
		unit.SummonedThisTurn = false
		unit.CanAttack = true
	}
	if !st.placeUnit(unit, spec.Slot) {
		h.t.Fatalf("failed to place %s at slot %d for %s", spec.Name, spec.Slot, spec.Owner)
	}
	return unit
}

// PlaceAttacker places a ready vanilla unit for the attacking side
func (h *MatchTestHarness) PlaceAttacker(owner string, slot int, name string, attack, health int) *Unit {
	return h.PlaceUnit(UnitSpec{
		Name:   name,
		Owner:  owner,
		Slot:   slot,
		Attack: attack,
		Health: health,
		Color:  ColorRed,
		Ready:  true,
	})
}

// PlaceDefender places a vanilla unit on the defending side
func (h *MatchTestHarness) PlaceDefender(owner string, slot int, name string, attack, health int) *Unit {
	return h.PlaceUnit(UnitSpec{
		Name:   name,
		Owner:  owner,
		Slot:   slot,
		Attack: attack,
		Health: health,
		Color:  ColorYellow,
	})
}

// AddToHand puts a card into the player's hand and returns its pool ID
func (h *MatchTestHarness) AddToHand(playerID string, card Card) string {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	if card.PoolID == "" {
		card.PoolID = uuid.NewString()
	}
	if card.Tier == 0 {
		card.Tier = 1
	}
	p.hand = append(p.hand, card)
	return card.PoolID
}

// AddToDeck appends a card to the bottom of the player's deck
func (h *MatchTestHarness) AddToDeck(playerID string, card Card) string {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	if card.PoolID == "" {
		card.PoolID = uuid.NewString()
	}
	if card.Tier == 0 {
		card.Tier = 1
	}
	p.deck = append(p.deck, card)
	return card.PoolID
}

// SetGold pins a player's current gold
func (h *MatchTestHarness) SetGold(playerID string, gold int) {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	p.gold = gold
}

// SetHealth pins a player's health total
func (h *MatchTestHarness) SetHealth(playerID string, health int) {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	p.health = health
}

// PlayUnit fabricates a card, puts it in the hand and plays it through the
// engine so the full trigger pipeline runs
func (h *MatchTestHarness) PlayUnit(spec UnitSpec) *PlayResult {
	poolID := h.AddToHand(spec.Owner, spec.card())
	return h.PlayFromHand(spec.Owner, poolID, spec.Slot)
}

// PlayFromHand plays a hand card onto the slot, failing the test on rejection
func (h *MatchTestHarness) PlayFromHand(playerID, poolID string, slot int) *PlayResult {
	result, err := h.engine.PlayCard(h.matchID, playerID, poolID, slot)
	if err != nil {
		h.t.Fatalf("playing %s to slot %d failed: %v", poolID, slot, err)
	}
	return result
}

// Attack resolves an attack from the slot, failing the test on rejection
func (h *MatchTestHarness) Attack(playerID string, slot int) *AttackOutcome {
	outcome, err := h.engine.Attack(h.matchID, playerID, slot)
	if err != nil {
		h.t.Fatalf("attack from slot %d failed: %v", slot, err)
	}
	return outcome
}

// EndTurn passes the turn, failing the test on rejection
func (h *MatchTestHarness) EndTurn(playerID string) *TurnResult {
	result, err := h.engine.EndTurn(h.matchID, playerID)
	if err != nil {
		h.t.Fatalf("end turn for %s failed: %v", playerID, err)
	}
	return result
}

// ActivePlayer returns the player whose turn it is
func (h *MatchTestHarness) ActivePlayer() string {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.activePlayer()
}

// GetPlayerHealth returns the current health total for a player
func (h *MatchTestHarness) GetPlayerHealth(playerID string) int {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	return p.health
}

// GetPlayerGold returns the player's current gold
func (h *MatchTestHarness) GetPlayerGold(playerID string) int {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	return p.gold
}

// GetPlayerSouls returns the player's soul count
func (h *MatchTestHarness) GetPlayerSouls(playerID string) int {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	return p.souls
}

// GetHandSize returns the number of cards in the player's hand
func (h *MatchTestHarness) GetHandSize(playerID string) int {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	return len(p.hand)
}

// GetDeckSize returns the number of cards in the player's deck
func (h *MatchTestHarness) GetDeckSize(playerID string) int {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.player(playerID)
	if p == nil {
		h.t.Fatalf("player %s not found", playerID)
	}
	return len(p.deck)
}

// UnitAt returns the occupant of a slot, nil when empty
func (h *MatchTestHarness) UnitAt(playerID string, slot int) *Unit {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.unitAt(playerID, slot)
}

// IsUnitGone reports whether the unit has left the battlefield
func (h *MatchTestHarness) IsUnitGone(u *Unit) bool {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()
	return !st.occupantIs(u)
}

// EffectiveStats returns the unit's stats with continuous modifiers applied
func (h *MatchTestHarness) EffectiveStats(u *Unit) (int, int) {
	st := h.GetMatchState()
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.effectiveStats(u)
}
