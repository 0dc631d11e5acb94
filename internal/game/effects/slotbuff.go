package effects

import "fmt"

// SlotBuff is a persistent stat bonus attached to a battlefield slot rather
// than to a unit. It applies to whatever unit occupies the slot and survives
// that unit's death.
type SlotBuff struct {
	Attack int
	Health int
}

// Add accumulates a bonus into the buff.
func (b *SlotBuff) Add(attack, health int) {
	b.Attack += attack
	b.Health += health
}

// IsZero returns true if the buff grants nothing.
func (b SlotBuff) IsZero() bool {
	return b.Attack == 0 && b.Health == 0
}

// Label renders the buff in "+1/+1" display form.
func (b SlotBuff) Label() string {
	return fmt.Sprintf("+%d/+%d", b.Attack, b.Health)
}

// SlotBuffs holds one accumulator per battlefield slot for a single player.
type SlotBuffs [6]SlotBuff

// Add accumulates a bonus into the given slot. Out-of-range slots are
// rejected so a bad index never panics mid-resolution.
func (s *SlotBuffs) Add(slot, attack, health int) bool {
	if slot < 0 || slot >= len(s) {
		return false
	}
	s[slot].Add(attack, health)
	return true
}

// At returns the accumulated buff for the slot.
func (s *SlotBuffs) At(slot int) SlotBuff {
	if slot < 0 || slot >= len(s) {
		return SlotBuff{}
	}
	return s[slot]
}

// Any returns true if any slot carries a non-zero buff.
func (s *SlotBuffs) Any() bool {
	for _, b := range s {
		if !b.IsZero() {
			return true
		}
	}
	return false
}

// Copy returns a value copy of the accumulators.
func (s *SlotBuffs) Copy() SlotBuffs {
	return *s
}
