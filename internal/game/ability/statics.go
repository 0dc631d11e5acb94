package ability

import (
	"regexp"
	"strings"
)

// StaticKind identifies a continuous stat modifier described in ability text.
// Statics are evaluated on read by the stat calculator and never mutate the
// unit they apply to.
type StaticKind string

const (
	// StaticOnYourTurn adds attack while the owner is the active player.
	StaticOnYourTurn StaticKind = "ON_YOUR_TURN"
	// StaticFrontRow adds attack while the unit occupies a front row slot.
	StaticFrontRow StaticKind = "FRONT_ROW"
	// StaticTagAura adds attack to the owner's other units sharing the tag.
	StaticTagAura StaticKind = "TAG_AURA"
)

// Static is one parsed continuous modifier.
type Static struct {
	Kind   StaticKind
	Attack int
	Tag    string
}

var (
	staticTurnRE     = regexp.MustCompile(`this unit has \+(\d+) attack on your turn`)
	staticFrontRowRE = regexp.MustCompile(`this unit has \+(\d+) attack while in the front row`)
	staticAuraRE     = regexp.MustCompile(`your other ([a-z]+?)s? have \+(\d+) attack`)
)

// Statics extracts the continuous modifiers from a full ability string.
func Statics(abilityText string) []Static {
	if abilityText == "" {
		return nil
	}
	lower := strings.ToLower(abilityText)

	var statics []Static
	if m := staticTurnRE.FindStringSubmatch(lower); m != nil {
		statics = append(statics, Static{Kind: StaticOnYourTurn, Attack: atoi(m[1])})
	}
	if m := staticFrontRowRE.FindStringSubmatch(lower); m != nil {
		statics = append(statics, Static{Kind: StaticFrontRow, Attack: atoi(m[1])})
	}
	if m := staticAuraRE.FindStringSubmatch(lower); m != nil {
		statics = append(statics, Static{Kind: StaticTagAura, Tag: normalizeTag(m[1]), Attack: atoi(m[2])})
	}
	return statics
}
