package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAttackTracking_MarkedOncePerAttack tests that an attack marks the slot
func TestAttackTracking_MarkedOncePerAttack(t *testing.T) {
	h := NewMatchTestHarness(t, "track-1", []string{"Alice", "Bob"})

	h.PlaceAttacker("Alice", 2, "Grizzly Bears", 2, 2)
	h.Attack("Alice", 2)

	st := h.GetMatchState()
	st.mu.Lock()
	attacked := st.player("Alice").hasAttacked[2]
	st.mu.Unlock()
	assert.True(t, attacked, "slot 2 should be marked as attacked")

	_, err := h.engine.Attack(h.matchID, "Alice", 2)
	re, ok := AsRuleError(err)
	require.True(t, ok, "second attack should fail with a rule error")
	assert.Equal(t, CodeAlreadyAttacked, re.Code)
}

// TestAttackTracking_ClearedWhenTurnOpens tests the set clears for the player
// whose turn starts, not the one who just finished
func TestAttackTracking_ClearedWhenTurnOpens(t *testing.T) {
	h := NewMatchTestHarness(t, "track-2", []string{"Alice", "Bob"})

	h.PlaceAttacker("Alice", 0, "Grizzly Bears", 2, 2)
	h.Attack("Alice", 0)

	// Passing to Bob leaves Alice's marks in place.
	h.EndTurn("Alice")
	st := h.GetMatchState()
	st.mu.Lock()
	attacked := st.player("Alice").hasAttacked[0]
	st.mu.Unlock()
	assert.True(t, attacked, "Alice's marks persist through Bob's turn")

	// Passing back to Alice clears them.
	h.EndTurn("Bob")
	st.mu.Lock()
	attacked = st.player("Alice").hasAttacked[0]
	st.mu.Unlock()
	assert.False(t, attacked, "marks clear when the owner's turn opens")

	outcome := h.Attack("Alice", 0)
	assert.Equal(t, AttackCompleted, outcome.State)
}

// TestAttackTracking_DeadAttackerStillMarked tests the mark lands even when
// the attacker dies in the exchange
func TestAttackTracking_DeadAttackerStillMarked(t *testing.T) {
	h := NewMatchTestHarness(t, "track-3", []string{"Alice", "Bob"})

	attacker := h.PlaceAttacker("Alice", 1, "Fragile Raider", 2, 1)
	h.PlaceDefender("Bob", 1, "Spiked Wall", 5, 8)

	outcome := h.Attack("Alice", 1)
	require.Contains(t, outcome.Deaths, "Fragile Raider")
	assert.True(t, h.IsUnitGone(attacker))

	st := h.GetMatchState()
	st.mu.Lock()
	attacked := st.player("Alice").hasAttacked[1]
	st.mu.Unlock()
	assert.True(t, attacked, "the slot keeps its mark for the rest of the turn")
}

// TestAttackTracking_EachUnitAttacksIndependently tests per-slot bookkeeping
func TestAttackTracking_EachUnitAttacksIndependently(t *testing.T) {
	h := NewMatchTestHarness(t, "track-4", []string{"Alice", "Bob"})

	h.PlaceAttacker("Alice", 0, "Left Raider", 1, 2)
	h.PlaceAttacker("Alice", 1, "Mid Raider", 1, 2)
	h.PlaceAttacker("Alice", 2, "Right Raider", 1, 2)

	h.Attack("Alice", 0)
	h.Attack("Alice", 2)

	_, err := h.engine.Attack(h.matchID, "Alice", 0)
	re, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, CodeAlreadyAttacked, re.Code)

	outcome := h.Attack("Alice", 1)
	assert.Equal(t, AttackCompleted, outcome.State, "untouched slot still attacks")
	assert.Equal(t, maxPlayerHealth-3, h.GetPlayerHealth("Bob"))
}
