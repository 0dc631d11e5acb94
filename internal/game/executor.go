package game

import (
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/game/ability"
	"github.com/gridspire/arena-server-go/internal/game/rules"
)

// resolveAbilityText parses an effect tail and executes every recognized
// effect in order. Clauses that match a category filter but no pattern are
// logged and dropped; unrecognized text never fails a turn.
func (e *Engine) resolveAbilityText(st *matchState, source *Unit, controller, text string) {
	effects, misses := st.parser.Parse(text)
	for _, miss := range misses {
		if e.logger != nil {
			e.logger.Debug("ability text matched no pattern",
				zap.String("match_id", st.matchID),
				zap.String("category", miss.Category),
				zap.String("text", miss.Text),
			)
		}
	}
	for _, eff := range effects {
		e.executeEffect(st, source, controller, eff)
	}
}

// executeEffect applies one parsed effect against live state. Targets that
// disappeared mid-cascade fizzle through the stat primitive's occupancy
// check rather than erroring.
func (e *Engine) executeEffect(st *matchState, source *Unit, controller string, eff ability.Effect) {
	switch eff.Kind {
	case ability.KindDamage:
		e.executeDamage(st, source, controller, eff)
	case ability.KindBuff:
		for _, u := range e.buffTargets(st, source, controller, eff) {
			if !st.adjustUnitStats(u, eff.Attack, eff.Health, !eff.Temporary) {
				e.fault(st, SeverityWarning, "buff target vanished",
					zap.String("unit", u.Name), zap.Int("slot", u.Slot))
			}
		}
	case ability.KindSlotBuff:
		for _, slot := range e.slotTargets(st, source, controller, eff) {
			if !st.buffSlot(controller, slot, eff.Attack, eff.Health) {
				e.fault(st, SeverityWarning, "slot buff out of range", zap.Int("slot", slot))
			}
		}
	case ability.KindGrant:
		e.executeGrant(st, source, controller, eff)
	case ability.KindSummon:
		e.executeSummon(st, controller, eff)
	case ability.KindDraw:
		e.executeDraw(st, controller, eff)
	case ability.KindHeal:
		st.healPlayer(controller, eff.Amount)
	case ability.KindSouls:
		st.addSouls(controller, eff.Amount)
	case ability.KindBanish:
		e.executeBanish(st, source)
	}
}

func (e *Engine) executeDamage(st *matchState, source *Unit, controller string, eff ability.Effect) {
	enemy := st.opponentOf(controller)

	switch eff.Target {
	case ability.TargetBothPlayers:
		st.damagePlayer(st.order[0], eff.Amount)
		st.damagePlayer(st.order[1], eff.Amount)
		return
	case ability.TargetEnemyPlayer:
		st.damagePlayer(enemy.id, eff.Amount)
		return
	case ability.TargetColumn:
		if source == nil {
			e.fault(st, SeverityError, "column damage without a source unit")
			return
		}
		col := columnOf(source.Slot)
		target := enemy.battlefield[col]
		if target == nil {
			target = enemy.battlefield[col+rowWidth]
		}
		if target != nil {
			st.damageUnit(target, eff.Amount)
			e.sweepDeaths(st)
		}
		return
	}

	var candidates []*Unit
	switch eff.Target {
	case ability.TargetEnemyUnit:
		candidates = enemy.units()
	case ability.TargetEnemyBackRow:
		candidates = rowUnits(enemy, false)
	case ability.TargetEnemyFrontRow:
		candidates = rowUnits(enemy, true)
	case ability.TargetFriendlyUnit:
		candidates = st.player(controller).units()
	}
	if len(candidates) == 0 {
		return
	}

	if eff.Mode == ability.ModeAll {
		for _, u := range candidates {
			st.damageUnit(u, eff.Amount)
		}
	} else {
		// Targeted selection has no click path in a headless engine, so it
		// degrades to the random default.
		st.damageUnit(candidates[st.rng.Intn(len(candidates))], eff.Amount)
	}
	e.sweepDeaths(st)
}

func rowUnits(p *playerState, front bool) []*Unit {
	var units []*Unit
	for slot, u := range p.battlefield {
		if u != nil && isFrontRow(slot) == front {
			units = append(units, u)
		}
	}
	return units
}

func (e *Engine) buffTargets(st *matchState, source *Unit, controller string, eff ability.Effect) []*Unit {
	owner := st.player(controller)
	if owner == nil {
		return nil
	}

	switch eff.Target {
	case ability.TargetSelf:
		if source == nil {
			return nil
		}
		return []*Unit{source}
	case ability.TargetAllFriendlyUnits:
		return owner.units()
	case ability.TargetFrontRowUnits:
		return rowUnits(owner, true)
	case ability.TargetMultiTag:
		var targets []*Unit
		for _, u := range owner.units() {
			for _, tag := range eff.Tags {
				if u.hasTag(tag) {
					targets = append(targets, u)
					break
				}
			}
		}
		return targets
	case ability.TargetUnitsWithKeyword:
		var pool []*Unit
		for _, u := range owner.units() {
			if eff.ExcludeSelf && source != nil && u.UID == source.UID {
				continue
			}
			if u.hasKeyword(eff.Keyword) {
				pool = append(pool, u)
			}
		}
		return e.pickByMode(st, pool, eff.Mode)
	case ability.TargetUnitsWithTag:
		var pool []*Unit
		for _, u := range owner.units() {
			if eff.ExcludeSelf && source != nil && u.UID == source.UID {
				continue
			}
			if u.hasTag(eff.Tag) {
				pool = append(pool, u)
			}
		}
		return e.pickByMode(st, pool, eff.Mode)
	default:
		return nil
	}
}

func (e *Engine) pickByMode(st *matchState, pool []*Unit, mode ability.Mode) []*Unit {
	if len(pool) == 0 {
		return nil
	}
	if mode == ability.ModeAll {
		return pool
	}
	return []*Unit{pool[st.rng.Intn(len(pool))]}
}

func (e *Engine) slotTargets(st *matchState, source *Unit, controller string, eff ability.Effect) []int {
	owner := st.player(controller)
	if owner == nil {
		return nil
	}

	switch eff.Target {
	case ability.TargetThisSlot:
		if source == nil {
			return nil
		}
		return []int{source.Slot}
	case ability.TargetOtherSlotInColumn:
		if source == nil {
			return nil
		}
		return []int{partnerSlot(source.Slot)}
	case ability.TargetOtherSlotsInRow:
		if source == nil {
			return nil
		}
		return rowmateSlots(source.Slot)
	case ability.TargetAdjacentSlots:
		if source == nil {
			return nil
		}
		return adjacentSlots(source.Slot)
	case ability.TargetSlotsWithTag:
		var slots []int
		for slot, u := range owner.battlefield {
			if u != nil && u.hasTag(eff.Tag) {
				slots = append(slots, slot)
			}
		}
		return slots
	case ability.TargetRandomSlot:
		return []int{st.rng.Intn(BattlefieldSlots)}
	case ability.TargetRandomBackRowSlot:
		return []int{rowWidth + st.rng.Intn(rowWidth)}
	default:
		return nil
	}
}

// executeGrant appends a keyword to the target's ability string. Granting a
// keyword the unit already has is a no-op; Rush additionally clears
// summoning sickness on the spot.
func (e *Engine) executeGrant(st *matchState, source *Unit, controller string, eff ability.Effect) {
	owner := st.player(controller)
	if owner == nil {
		return
	}

	var target *Unit
	switch eff.Target {
	case ability.TargetSelf:
		target = source
	case ability.TargetFriendlyUnit:
		if units := owner.units(); len(units) > 0 {
			target = units[st.rng.Intn(len(units))]
		}
	case ability.TargetUnitsWithTag:
		var pool []*Unit
		for _, u := range owner.units() {
			if u.hasTag(eff.Tag) {
				pool = append(pool, u)
			}
		}
		if len(pool) > 0 {
			target = pool[st.rng.Intn(len(pool))]
		}
	}
	if target == nil || !st.occupantIs(target) {
		return
	}

	keyword := ability.CanonicalKeyword(eff.Keyword)
	target.Ability = ability.AppendKeyword(target.Ability, keyword)
	if keyword == ability.KeywordRush {
		target.CanAttack = true
	}

	event := rules.NewEvent(rules.EventAbilityGranted, target.UID, target.UID, target.Owner)
	event.Slot = target.Slot
	event.Description = keyword
	st.bus.Publish(event)
}

// executeSummon instantiates a token template either into the hand or onto
// the first empty battlefield slot. A full battlefield drops the summon
// silently.
func (e *Engine) executeSummon(st *matchState, controller string, eff ability.Effect) {
	card, ok := tokenCard(eff.Token)
	if !ok {
		e.fault(st, SeverityError, "unknown summon token", zap.String("token", eff.Token))
		return
	}

	if eff.ToHand {
		st.addCardToHand(controller, card)
		return
	}

	owner := st.player(controller)
	if owner == nil {
		return
	}
	slot, ok := owner.firstEmptySlot()
	if !ok {
		return
	}
	unit := newUnit(card, controller, slot)
	if !st.placeUnit(unit, slot) {
		return
	}

	event := rules.NewEventWithSlot(rules.EventUnitSummoned, unit.UID, unit.UID, controller, slot)
	event.Description = unit.Name
	st.bus.Publish(event)
}

// executeDraw moves cards between decks and the controller's hand. Ability
// draws are always free and bypass the hand limit; an empty deck fizzles.
func (e *Engine) executeDraw(st *matchState, controller string, eff ability.Effect) {
	from := controller
	if eff.FromOpponentDeck {
		from = st.opponentOf(controller).id
	}
	for i := 0; i < eff.Amount; i++ {
		if _, ok := st.drawTopCard(from, controller); !ok {
			return
		}
	}
}

// executeBanish flags the source so it never returns to its owner's deck.
// A living source is removed from the battlefield immediately; a source
// already dying stays in place for the death sweep, which honors the flag.
func (e *Engine) executeBanish(st *matchState, source *Unit) {
	if source == nil {
		return
	}
	source.Banished = true
	if source.CurrentHealth > 0 && st.occupantIs(source) {
		st.removeUnit(source)

		event := rules.NewEventWithSlot(rules.EventUnitDied, source.UID, source.UID, source.Owner, source.Slot)
		event.Description = source.Name
		event.Flag = true
		st.bus.Publish(event)
	}
}

// sweepDeaths removes every unit observed at or below zero health and
// returns their names in removal order. Last Gasp resolves inline before
// removal so a banish effect can still suppress the deck return; cascades
// from those effects are swept in the same loop.
func (e *Engine) sweepDeaths(st *matchState) []string {
	var removed []string
	for {
		var dead []*Unit
		for _, playerID := range st.order {
			for _, u := range st.player(playerID).units() {
				if u.CurrentHealth <= 0 && !u.dying {
					dead = append(dead, u)
				}
			}
		}
		if len(dead) == 0 {
			return removed
		}

		for _, u := range dead {
			if !st.occupantIs(u) || u.dying {
				continue
			}
			u.dying = true

			if text, ok := ability.TriggerText(u.Ability, ability.TriggerLastGasp); ok {
				st.resolved = append(st.resolved, reactionLabel(rules.ReactionKindLastGasp, u.Name))
				e.resolveAbilityText(st, u, u.Owner, text)
			}

			st.removeUnit(u)
			removed = append(removed, u.Name)
			if !u.Banished {
				st.returnToDeck(u.Owner, u.asCard())
			}

			event := rules.NewEventWithSlot(rules.EventUnitDied, u.UID, u.UID, u.Owner, u.Slot)
			event.Description = u.Name
			event.Flag = u.Banished
			st.bus.Publish(event)

			if e.logger != nil {
				e.logger.Debug("unit died",
					zap.String("match_id", st.matchID),
					zap.String("unit", u.Name),
					zap.String("owner", u.Owner),
					zap.Bool("banished", u.Banished),
				)
			}
		}
	}
}
