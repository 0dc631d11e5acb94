package rules

import (
	"strings"
)

// TurnManager tracks turn order and progression for a two-player match. Turn
// numbers are 1-based and increment every time the active player changes.
type TurnManager struct {
	players      [2]string
	activeIndex  int
	turnNumber   int
}

// NewTurnManager creates a turn manager with the first player active at turn 1.
func NewTurnManager(first, second string) *TurnManager {
	return &TurnManager{
		players:    [2]string{strings.TrimSpace(first), strings.TrimSpace(second)},
		turnNumber: 1,
	}
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.players[tm.activeIndex]
}

// Opponent returns the player opposing the given player. An unknown player ID
// returns the empty string.
func (tm *TurnManager) Opponent(playerID string) string {
	switch playerID {
	case tm.players[0]:
		return tm.players[1]
	case tm.players[1]:
		return tm.players[0]
	default:
		return ""
	}
}

// IsActive reports whether the given player currently has the turn.
func (tm *TurnManager) IsActive(playerID string) bool {
	return playerID != "" && tm.ActivePlayer() == playerID
}

// Players returns both player IDs in seating order.
func (tm *TurnManager) Players() [2]string {
	return tm.players
}

// Advance passes the turn to the other player, increments the turn number and
// returns the new active player.
func (tm *TurnManager) Advance() string {
	tm.activeIndex = 1 - tm.activeIndex
	tm.turnNumber++
	return tm.ActivePlayer()
}
