package effects

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gridspire/arena-server-go/internal/game/ability"
)

// TurnAttackEffect grants its source bonus attack while its owner is the
// active player.
type TurnAttackEffect struct {
	id       string
	sourceID string
	attack   int
}

// NewTurnAttackEffect creates an on-your-turn attack bonus for the source unit.
func NewTurnAttackEffect(sourceID string, attack int) *TurnAttackEffect {
	source := strings.TrimSpace(sourceID)
	seed := fmt.Sprintf("turn|%s|%d", source, attack)
	return &TurnAttackEffect{
		id:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		sourceID: source,
		attack:   attack,
	}
}

// ID returns the unique identifier.
func (e *TurnAttackEffect) ID() string {
	return e.id
}

// Source returns the unit contributing the effect.
func (e *TurnAttackEffect) Source() string {
	return e.sourceID
}

// Layer identifies the layer in which the effect applies.
func (e *TurnAttackEffect) Layer() Layer {
	return LayerConditional
}

// AppliesTo determines whether the snapshot should receive the modification.
func (e *TurnAttackEffect) AppliesTo(snapshot *Snapshot) bool {
	if snapshot == nil {
		return false
	}
	return snapshot.UnitID == e.sourceID && snapshot.OwnerActive
}

// Apply mutates the snapshot.
func (e *TurnAttackEffect) Apply(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}
	snapshot.Attack += e.attack
}

// FrontRowAttackEffect grants its source bonus attack while it occupies a
// front row slot.
type FrontRowAttackEffect struct {
	id       string
	sourceID string
	attack   int
}

// NewFrontRowAttackEffect creates a front-row attack bonus for the source unit.
func NewFrontRowAttackEffect(sourceID string, attack int) *FrontRowAttackEffect {
	source := strings.TrimSpace(sourceID)
	seed := fmt.Sprintf("frontrow|%s|%d", source, attack)
	return &FrontRowAttackEffect{
		id:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		sourceID: source,
		attack:   attack,
	}
}

// ID returns the unique identifier.
func (e *FrontRowAttackEffect) ID() string {
	return e.id
}

// Source returns the unit contributing the effect.
func (e *FrontRowAttackEffect) Source() string {
	return e.sourceID
}

// Layer identifies the layer in which the effect applies.
func (e *FrontRowAttackEffect) Layer() Layer {
	return LayerConditional
}

// AppliesTo determines whether the snapshot should receive the modification.
func (e *FrontRowAttackEffect) AppliesTo(snapshot *Snapshot) bool {
	if snapshot == nil {
		return false
	}
	return snapshot.UnitID == e.sourceID && snapshot.FrontRow
}

// Apply mutates the snapshot.
func (e *FrontRowAttackEffect) Apply(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}
	snapshot.Attack += e.attack
}

// TagAuraEffect grants bonus attack to the controller's other units sharing a
// tag. The source never buffs itself.
type TagAuraEffect struct {
	id         string
	sourceID   string
	controller string
	tag        string
	attack     int
}

// NewTagAuraEffect creates a tag aura contributed by the source unit.
func NewTagAuraEffect(sourceID, controller, tag string, attack int) *TagAuraEffect {
	source := strings.TrimSpace(sourceID)
	owner := strings.TrimSpace(controller)
	tag = strings.ToLower(strings.TrimSpace(tag))
	seed := fmt.Sprintf("aura|%s|%s|%s|%d", source, owner, tag, attack)
	return &TagAuraEffect{
		id:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		sourceID:   source,
		controller: owner,
		tag:        tag,
		attack:     attack,
	}
}

// ID returns the unique identifier.
func (e *TagAuraEffect) ID() string {
	return e.id
}

// Source returns the unit contributing the effect.
func (e *TagAuraEffect) Source() string {
	return e.sourceID
}

// Layer identifies the layer in which the effect applies.
func (e *TagAuraEffect) Layer() Layer {
	return LayerAura
}

// AppliesTo determines whether the snapshot should receive the modification.
func (e *TagAuraEffect) AppliesTo(snapshot *Snapshot) bool {
	if snapshot == nil {
		return false
	}
	if snapshot.Controller != e.controller {
		return false
	}
	if snapshot.UnitID == e.sourceID {
		return false
	}
	return snapshot.HasTag(e.tag)
}

// Apply mutates the snapshot.
func (e *TagAuraEffect) Apply(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}
	snapshot.Attack += e.attack
}

// EffectsFor converts the continuous modifiers parsed from a unit's ability
// text into registrable effects. Called when the unit enters the battlefield;
// RemoveSource cleans them up when it leaves.
func EffectsFor(unitID, controller string, statics []ability.Static) []ContinuousEffect {
	var effects []ContinuousEffect
	for _, s := range statics {
		switch s.Kind {
		case ability.StaticOnYourTurn:
			effects = append(effects, NewTurnAttackEffect(unitID, s.Attack))
		case ability.StaticFrontRow:
			effects = append(effects, NewFrontRowAttackEffect(unitID, s.Attack))
		case ability.StaticTagAura:
			effects = append(effects, NewTagAuraEffect(unitID, controller, s.Tag, s.Attack))
		}
	}
	return effects
}
