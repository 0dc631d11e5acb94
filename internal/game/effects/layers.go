package effects

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Layer orders continuous effects when deriving a unit's effective stats.
// Conditional self-modifiers apply before auras contributed by other units.
type Layer int

const (
	LayerConditional Layer = 1 + iota
	LayerAura
)

var layerOrder = []Layer{
	LayerConditional,
	LayerAura,
}

// Snapshot represents the characteristics of a unit while evaluating
// continuous effects. Attack and Health start from the unit's current stats
// and accumulate modifier deltas; the stored unit is never mutated.
type Snapshot struct {
	UnitID      string
	Controller  string
	Tags        []string
	FrontRow    bool
	OwnerActive bool

	BaseAttack int
	BaseHealth int
	Attack     int
	Health     int
}

// NewSnapshot constructs a snapshot for evaluation. attack and health are the
// unit's current stats, which already include permanent buffs, temporary
// buffs, and slot buffs applied at placement.
func NewSnapshot(unitID, controller string, tags []string, attack, health int, frontRow, ownerActive bool) *Snapshot {
	s := &Snapshot{
		UnitID:      unitID,
		Controller:  controller,
		Tags:        append([]string(nil), tags...),
		FrontRow:    frontRow,
		OwnerActive: ownerActive,
		BaseAttack:  attack,
		BaseHealth:  health,
	}
	s.Reset()
	return s
}

// Reset restores derived stats to their base values.
func (s *Snapshot) Reset() {
	s.Attack = s.BaseAttack
	s.Health = s.BaseHealth
}

// HasTag returns true if the snapshot carries the provided tag.
func (s *Snapshot) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range s.Tags {
		if strings.ToLower(strings.TrimSpace(t)) == tag {
			return true
		}
	}
	return false
}

// ContinuousEffect defines behaviour for modifying unit stats on read.
type ContinuousEffect interface {
	ID() string
	Source() string
	Layer() Layer
	AppliesTo(*Snapshot) bool
	Apply(*Snapshot)
}

// LayerSystem manages registration and evaluation of continuous effects.
// Effects register when their source unit enters the battlefield and are
// removed by source when it leaves.
type LayerSystem struct {
	mu      sync.RWMutex
	effects map[Layer]map[string]ContinuousEffect
	index   map[string]Layer
}

// NewLayerSystem constructs an empty layer system.
func NewLayerSystem() *LayerSystem {
	return &LayerSystem{
		effects: make(map[Layer]map[string]ContinuousEffect),
		index:   make(map[string]Layer),
	}
}

// AddEffect registers a new continuous effect and returns its identifier.
func (ls *LayerSystem) AddEffect(effect ContinuousEffect) string {
	if effect == nil {
		return ""
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	layer := effect.Layer()
	if layer == 0 {
		layer = LayerAura
	}

	id := effect.ID()
	if id == "" {
		id = uuid.NewString()
	}

	if _, ok := ls.effects[layer]; !ok {
		ls.effects[layer] = make(map[string]ContinuousEffect)
	}
	ls.effects[layer][id] = effect
	ls.index[id] = layer
	return id
}

// RemoveEffect removes a registered effect by ID.
func (ls *LayerSystem) RemoveEffect(id string) {
	if id == "" {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.removeLocked(id)
}

// RemoveSource removes every effect contributed by the given source unit.
func (ls *LayerSystem) RemoveSource(sourceID string) {
	if sourceID == "" {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	var stale []string
	for id, layer := range ls.index {
		if effect, ok := ls.effects[layer][id]; ok && effect.Source() == sourceID {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		ls.removeLocked(id)
	}
}

func (ls *LayerSystem) removeLocked(id string) {
	layer, ok := ls.index[id]
	if !ok {
		return
	}
	delete(ls.index, id)
	if layerMap, ok := ls.effects[layer]; ok {
		delete(layerMap, id)
		if len(layerMap) == 0 {
			delete(ls.effects, layer)
		}
	}
}

// Apply executes all relevant continuous effects across layers against the
// snapshot. Effects within a layer are additive, so their relative order does
// not matter.
func (ls *LayerSystem) Apply(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	snapshot.Reset()
	for _, layer := range layerOrder {
		layerEffects := ls.effects[layer]
		if len(layerEffects) == 0 {
			continue
		}
		for _, effect := range layerEffects {
			if effect.AppliesTo(snapshot) {
				effect.Apply(snapshot)
			}
		}
	}
}
