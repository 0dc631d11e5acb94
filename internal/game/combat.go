package game

import (
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/game/ability"
	"github.com/gridspire/arena-server-go/internal/game/rules"
)

// AttackState names the stations of the combat state machine. Every attack
// passes Requested through Completed, or stops at Rejected without touching
// state.
type AttackState string

const (
	AttackRequested      AttackState = "REQUESTED"
	AttackValidated      AttackState = "VALIDATED"
	AttackTargetResolved AttackState = "TARGET_RESOLVED"
	AttackDamageApplied  AttackState = "DAMAGE_APPLIED"
	AttackDeathCheck     AttackState = "DEATH_CHECK"
	AttackCompleted      AttackState = "COMPLETED"
	AttackRejected       AttackState = "REJECTED"
)

const (
	targetKindUnit   = "unit"
	targetKindPlayer = "player"
)

// AttackOutcome reports a resolved attack back to the caller.
type AttackOutcome struct {
	State        AttackState `json:"state"`
	Attacker     string      `json:"attacker"`
	AttackerSlot int         `json:"attacker_slot"`
	TargetKind   string      `json:"target_kind"`
	Target       string      `json:"target"`
	Damage       int         `json:"damage"`
	ReturnDamage int         `json:"return_damage"`
	Trample      int         `json:"trample,omitempty"`
	Deaths       []string    `json:"deaths,omitempty"`
	Triggered    []string    `json:"triggered,omitempty"`
}

// resolveAttack drives one attack through the state machine. The caller holds
// the match lock and drains the reaction queue afterward.
func (e *Engine) resolveAttack(st *matchState, playerID string, attackerSlot int) (*AttackOutcome, error) {
	outcome := &AttackOutcome{State: AttackRequested, AttackerSlot: attackerSlot}

	attacker, err := validateAttack(st, playerID, attackerSlot)
	if err != nil {
		outcome.State = AttackRejected
		if e.logger != nil {
			e.logger.Debug("attack rejected",
				zap.String("match_id", st.matchID),
				zap.String("player", playerID),
				zap.Int("slot", attackerSlot),
				zap.Error(err),
			)
		}
		return outcome, err
	}
	outcome.Attacker = attacker.Name
	e.advanceAttack(st, outcome, AttackValidated)

	enemy := st.opponentOf(playerID)
	defender, hitsPlayer := resolveAttackTarget(attacker, enemy)
	e.advanceAttack(st, outcome, AttackTargetResolved)

	attack, _ := st.effectiveStats(attacker)
	outcome.Damage = attack

	if hitsPlayer {
		outcome.TargetKind = targetKindPlayer
		outcome.Target = enemy.id
		st.damagePlayer(enemy.id, attack)
		attacker.HasAttackedPlayer = true
		st.markAttacked(playerID, attackerSlot)
		e.advanceAttack(st, outcome, AttackDamageApplied)

		completed := rules.NewEventWithSlot(rules.EventAttackCompleted, enemy.id, attacker.UID, playerID, attackerSlot)
		completed.Data = targetKindPlayer
		completed.Amount = attack
		completed.Description = attacker.Name
		st.bus.Publish(completed)

		e.advanceAttack(st, outcome, AttackCompleted)
		return outcome, nil
	}

	outcome.TargetKind = targetKindUnit
	outcome.Target = defender.Name

	// Both sides hit with their pre-damage effective attack. First Strike
	// suppresses the return blow when the defender dies to the opening one;
	// Trample overflow is measured against the defender's health before any
	// damage lands.
	returnDamage, _ := st.effectiveStats(defender)
	defenderHealth := defender.CurrentHealth

	defenderSurvived := st.damageUnit(defender, attack)
	if attacker.hasKeyword(ability.KeywordFirstStrike) && !defenderSurvived {
		returnDamage = 0
	}
	if returnDamage > 0 {
		st.damageUnit(attacker, returnDamage)
	}
	outcome.ReturnDamage = returnDamage

	if attacker.hasKeyword(ability.KeywordTrample) && attack > defenderHealth {
		outcome.Trample = attack - defenderHealth
		st.damagePlayer(enemy.id, outcome.Trample)
	}

	st.markAttacked(playerID, attackerSlot)
	e.advanceAttack(st, outcome, AttackDamageApplied)

	outcome.Deaths = e.sweepDeaths(st)
	e.advanceAttack(st, outcome, AttackDeathCheck)

	if st.occupantIs(attacker) {
		survived := rules.NewEventWithSlot(rules.EventUnitSurvivedAttack, attacker.UID, attacker.UID, playerID, attacker.Slot)
		survived.Description = attacker.Name
		st.bus.Publish(survived)
	}

	completed := rules.NewEventWithSlot(rules.EventAttackCompleted, defender.UID, attacker.UID, playerID, attackerSlot)
	completed.Data = targetKindUnit
	completed.Amount = attack
	completed.Description = attacker.Name
	st.bus.Publish(completed)

	e.advanceAttack(st, outcome, AttackCompleted)
	return outcome, nil
}

func (e *Engine) advanceAttack(st *matchState, outcome *AttackOutcome, next AttackState) {
	outcome.State = next
	if e.logger != nil {
		e.logger.Debug("attack state",
			zap.String("match_id", st.matchID),
			zap.String("attacker", outcome.Attacker),
			zap.String("state", string(next)),
		)
	}
}

// validateAttack applies the rejection rules in order. A rejected attack
// mutates nothing.
func validateAttack(st *matchState, playerID string, slot int) (*Unit, error) {
	attacker := st.unitAt(playerID, slot)
	if attacker == nil {
		return nil, newRuleError(CodeInvalidSlot, "no unit in slot %d", slot)
	}
	if ability.CannotAttack(attacker.Ability) {
		return nil, newRuleError(CodeCannotAttack, "%s can't attack", attacker.Name)
	}
	if st.activePlayer() != playerID {
		return nil, newRuleError(CodeNotPlayersTurn, "it is not %s's turn", playerID)
	}
	if st.player(playerID).hasAttacked[slot] {
		return nil, newRuleError(CodeAlreadyAttacked, "unit in slot %d has already attacked", slot)
	}
	if !attacker.CanAttack && !attacker.hasKeyword(ability.KeywordRush) {
		return nil, newRuleError(CodeSummoningSickness, "%s entered the battlefield this turn", attacker.Name)
	}
	if ability.RequiresGoblinColumns(attacker.Ability) && !st.player(playerID).hasTagInEveryColumn("Goblin") {
		return nil, newRuleError(CodeGoblinColumns, "%s needs a Goblin in every column", attacker.Name)
	}
	return attacker, nil
}

// resolveAttackTarget applies the column-deterministic targeting rules. The
// boolean return reports a direct attack on the enemy player.
func resolveAttackTarget(attacker *Unit, enemy *playerState) (*Unit, bool) {
	col := columnOf(attacker.Slot)
	front := enemy.battlefield[col]
	back := enemy.battlefield[col+rowWidth]

	switch {
	case attacker.hasKeyword(ability.KeywordSneaky) && !attacker.HasAttackedPlayer:
		// First attack slips past the column entirely; afterwards the unit
		// falls through to whatever its other keywords dictate.
		return nil, true
	case attacker.hasKeyword(ability.KeywordFlying):
		if front != nil && front.hasKeyword(ability.KeywordFlying) {
			return front, false
		}
		if back != nil && back.hasKeyword(ability.KeywordFlying) {
			return back, false
		}
		return nil, true
	case attacker.hasKeyword(ability.KeywordRanged):
		if back != nil {
			return back, false
		}
		return nil, true
	default:
		if front != nil {
			return front, false
		}
		if back != nil {
			return back, false
		}
		return nil, true
	}
}
