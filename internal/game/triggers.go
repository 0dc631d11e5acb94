package game

import (
	"regexp"
	"strconv"

	"github.com/gridspire/arena-server-go/internal/game/ability"
	"github.com/gridspire/arena-server-go/internal/game/rules"
)

// reactionLabels map queue kinds to the descriptions reported back through
// operation results.
var reactionLabels = map[rules.ReactionKind]string{
	rules.ReactionKindUnleash:        "Unleash",
	rules.ReactionKindLastGasp:       "Last Gasp",
	rules.ReactionKindManacharge:     "Manacharge",
	rules.ReactionKindKindred:        "Kindred",
	rules.ReactionKindTurnStart:      "Start of turn",
	rules.ReactionKindTurnEnd:        "End of turn",
	rules.ReactionKindSurvivedDamage: "Survived damage",
	rules.ReactionKindSurvivedAttack: "Survived attacking",
	rules.ReactionKindAfterAttack:    "After attack",
	rules.ReactionKindOpponentSummon: "Opponent summon",
}

func reactionLabel(kind rules.ReactionKind, unitName string) string {
	label, ok := reactionLabels[kind]
	if !ok {
		label = string(kind)
	}
	return label + ": " + unitName
}

// takesDamageRE matches the opponent-summon self-damage vocabulary.
var takesDamageRE = regexp.MustCompile(`takes (\d+) damage`)

// wireMatch connects the event bus to the trigger routes and the reaction
// queue, and forwards every event to the notification handler. Routes are
// evaluated in registration order, so for a single played card the queue
// drains Unleash before Kindred before opponent-summon before Manacharge.
func (e *Engine) wireMatch(st *matchState) {
	st.bus.Subscribe(func(event rules.Event) {
		st.queue.EnqueueAll(st.triggers.Handle(event))
		e.emitNotification(MatchNotification{
			Type:      string(event.Type),
			MatchID:   st.matchID,
			PlayerID:  event.Controller,
			Timestamp: event.Timestamp,
			Data: map[string]interface{}{
				"target":      event.TargetID,
				"source":      event.SourceID,
				"amount":      event.Amount,
				"slot":        event.Slot,
				"description": event.Description,
			},
		})
	})

	e.registerUnleashRoute(st)
	e.registerKindredRoutes(st)
	e.registerOpponentSummonRoute(st)
	e.registerManachargeRoute(st)
	e.registerTurnRoutes(st)
	e.registerCombatRoutes(st)
}

// unitReaction snapshots the reacting unit's identity. Resolution happens
// later in queue order, so the closure re-reads the slot and fizzles when the
// unit already left the battlefield. A front-row condition in the effect text
// is evaluated against the unit's slot at resolution time, not at build time.
func (e *Engine) unitReaction(st *matchState, u *Unit, kind rules.ReactionKind, effect string) rules.Reaction {
	uid, owner, slot := u.UID, u.Owner, u.Slot
	return rules.Reaction{
		Controller:  owner,
		Description: reactionLabel(kind, u.Name),
		Kind:        kind,
		SourceID:    uid,
		Resolve: func() error {
			unit := st.unitAt(owner, slot)
			if unit == nil || unit.UID != uid {
				return nil
			}
			text, conditional := ability.StripFrontRowCondition(effect)
			if conditional && !isFrontRow(unit.Slot) {
				return nil
			}
			e.resolveAbilityText(st, unit, unit.Owner, text)
			return nil
		},
	}
}

// Unleash fires only for cards placed from hand, never for effect summons.
func (e *Engine) registerUnleashRoute(st *matchState) {
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-unleash",
		EventType: rules.EventUnitPlayed,
		Build: func(event rules.Event) []rules.Reaction {
			u := st.unitAt(event.Controller, event.Slot)
			if u == nil || u.UID != event.TargetID {
				return nil
			}
			text, ok := ability.TriggerText(u.Ability, ability.TriggerUnleash)
			if !ok {
				return nil
			}
			return []rules.Reaction{e.unitReaction(st, u, rules.ReactionKindUnleash, text)}
		},
	})
}

// Kindred pairs the newcomer against every other friendly unit sharing a tag.
// Both sides of each pairing fire when they carry Kindred text; a unit never
// triggers against itself.
func (e *Engine) registerKindredRoutes(st *matchState) {
	build := func(event rules.Event) []rules.Reaction {
		newcomer := st.unitAt(event.Controller, event.Slot)
		if newcomer == nil || newcomer.UID != event.TargetID {
			return nil
		}

		var reactions []rules.Reaction
		for _, existing := range st.player(event.Controller).units() {
			if existing.UID == newcomer.UID || !sharesTag(existing, newcomer) {
				continue
			}
			if text, ok := ability.TriggerText(existing.Ability, ability.KeywordKindred); ok {
				reactions = append(reactions, e.unitReaction(st, existing, rules.ReactionKindKindred, text))
			}
			if text, ok := ability.TriggerText(newcomer.Ability, ability.KeywordKindred); ok {
				reactions = append(reactions, e.unitReaction(st, newcomer, rules.ReactionKindKindred, text))
			}
		}
		return reactions
	}

	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-kindred-played",
		EventType: rules.EventUnitPlayed,
		Build:     build,
	})
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-kindred-summoned",
		EventType: rules.EventUnitSummoned,
		Build:     build,
	})
}

func sharesTag(a, b *Unit) bool {
	for _, tag := range a.Tags {
		if b.hasTag(tag) {
			return true
		}
	}
	return false
}

// Opponent-summon watchers react to every card the other player plays. The
// usual text reads "this unit takes N damage", which has no home in the
// effect parser's target vocabulary, so the route resolves the self-damage
// directly and hands anything else to the parser.
func (e *Engine) registerOpponentSummonRoute(st *matchState) {
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-opponent-summon",
		EventType: rules.EventUnitPlayed,
		Build: func(event rules.Event) []rules.Reaction {
			var reactions []rules.Reaction
			for _, u := range st.opponentOf(event.Controller).units() {
				tail, ok := ability.PhraseText(u.Ability, ability.PhraseOpponentSummons)
				if !ok {
					continue
				}
				reactions = append(reactions, e.watcherReaction(st, u, tail))
			}
			return reactions
		},
	})
}

func (e *Engine) watcherReaction(st *matchState, u *Unit, tail string) rules.Reaction {
	uid, owner, slot := u.UID, u.Owner, u.Slot
	return rules.Reaction{
		Controller:  owner,
		Description: reactionLabel(rules.ReactionKindOpponentSummon, u.Name),
		Kind:        rules.ReactionKindOpponentSummon,
		SourceID:    uid,
		Resolve: func() error {
			unit := st.unitAt(owner, slot)
			if unit == nil || unit.UID != uid {
				return nil
			}
			if m := takesDamageRE.FindStringSubmatch(tail); m != nil {
				amount, _ := strconv.Atoi(m[1])
				st.damageUnit(unit, amount)
				e.sweepDeaths(st)
				return nil
			}
			e.resolveAbilityText(st, unit, unit.Owner, tail)
			return nil
		},
	}
}

// Manacharge activation carries its owner in the event payload, so the route
// scans exactly that player's battlefield and can never fire for the
// opponent's units.
func (e *Engine) registerManachargeRoute(st *matchState) {
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-manacharge",
		EventType: rules.EventManachargeActivated,
		Build: func(event rules.Event) []rules.Reaction {
			owner := st.player(event.Controller)
			if owner == nil {
				return nil
			}
			var reactions []rules.Reaction
			for _, u := range owner.units() {
				text, ok := ability.TriggerText(u.Ability, ability.KeywordManacharge)
				if !ok {
					continue
				}
				reactions = append(reactions, e.unitReaction(st, u, rules.ReactionKindManacharge, text))
			}
			return reactions
		},
	})
}

func (e *Engine) registerTurnRoutes(st *matchState) {
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-turn-start",
		EventType: rules.EventTurnStarted,
		Build: func(event rules.Event) []rules.Reaction {
			return e.phraseReactions(st, event.Controller, ability.PhraseStartOfTurn, rules.ReactionKindTurnStart)
		},
	})
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-turn-end",
		EventType: rules.EventTurnEnded,
		Build: func(event rules.Event) []rules.Reaction {
			return e.phraseReactions(st, event.Controller, ability.PhraseEndOfTurn, rules.ReactionKindTurnEnd)
		},
	})
}

// phraseReactions builds one reaction per battlefield unit of the player
// whose ability text carries the phrase, in slot order.
func (e *Engine) phraseReactions(st *matchState, playerID, phrase string, kind rules.ReactionKind) []rules.Reaction {
	p := st.player(playerID)
	if p == nil {
		return nil
	}
	var reactions []rules.Reaction
	for _, u := range p.units() {
		if tail, ok := ability.PhraseText(u.Ability, phrase); ok {
			reactions = append(reactions, e.unitReaction(st, u, kind, tail))
		}
	}
	return reactions
}

func (e *Engine) registerCombatRoutes(st *matchState) {
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-survived-damage",
		EventType: rules.EventUnitSurvivedDamage,
		Build: func(event rules.Event) []rules.Reaction {
			u := st.unitAt(event.Controller, event.Slot)
			if u == nil || u.UID != event.TargetID {
				return nil
			}
			tail, ok := ability.PhraseText(u.Ability, ability.PhraseSurvivedDamage)
			if !ok {
				return nil
			}
			return []rules.Reaction{e.unitReaction(st, u, rules.ReactionKindSurvivedDamage, tail)}
		},
	})
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-survived-attack",
		EventType: rules.EventUnitSurvivedAttack,
		Build: func(event rules.Event) []rules.Reaction {
			u := st.unitAt(event.Controller, event.Slot)
			if u == nil || u.UID != event.TargetID {
				return nil
			}
			tail, ok := ability.PhraseText(u.Ability, ability.PhraseSurvivedAttack)
			if !ok {
				return nil
			}
			return []rules.Reaction{e.unitReaction(st, u, rules.ReactionKindSurvivedAttack, tail)}
		},
	})
	st.triggers.Register(rules.AbilityTrigger{
		ID:        "route-after-attack",
		EventType: rules.EventAttackCompleted,
		Build: func(event rules.Event) []rules.Reaction {
			u := st.unitAt(event.Controller, event.Slot)
			if u == nil || u.UID != event.SourceID {
				return nil
			}
			// The player-only variant embeds the generic phrase, so it is
			// checked first and claims the text when present.
			if tail, ok := ability.PhraseText(u.Ability, ability.PhraseAfterAttackPlayer); ok {
				if event.Data != targetKindPlayer {
					return nil
				}
				return []rules.Reaction{e.unitReaction(st, u, rules.ReactionKindAfterAttack, tail)}
			}
			tail, ok := ability.PhraseText(u.Ability, ability.PhraseAfterAttack)
			if !ok {
				return nil
			}
			return []rules.Reaction{e.unitReaction(st, u, rules.ReactionKindAfterAttack, tail)}
		},
	})
}
