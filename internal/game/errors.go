package game

import (
	"errors"
	"fmt"
)

// Stable rejection codes returned to callers. These are part of the public
// surface: clients key user-facing messages off them.
const (
	CodeMatchNotFound     = "match_not_found"
	CodeMatchOver         = "match_over"
	CodeUnknownPlayer     = "unknown_player"
	CodeNotPlayersTurn    = "not_players_turn"
	CodeInvalidPlacement  = "invalid_placement"
	CodeCardNotInHand     = "card_not_in_hand"
	CodeInvalidSlot       = "invalid_slot"
	CodeCannotAttack      = "cannot_attack"
	CodeAlreadyAttacked   = "already_attacked"
	CodeSummoningSickness = "summoning_sickness"
	CodeGoblinColumns     = "goblin_column_requirement"
	CodeInsufficientGold  = "insufficient_gold"
	CodeHandFull          = "hand_full"
	CodeEmptyDeck         = "empty_deck"
	CodeDraftInProgress   = "draft_in_progress"
	CodeNoActiveDraft     = "no_active_draft"
	CodeInvalidTier       = "invalid_tier"
	CodeEmptyPool         = "empty_pool"
	CodeInvalidSelection  = "invalid_selection"
)

// RuleError is a validation rejection: the request was understood but is
// currently illegal. Rule errors never leave partial mutations behind.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newRuleError(code, format string, args ...interface{}) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsRuleError unwraps a RuleError from err if one is present.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
