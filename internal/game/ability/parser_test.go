package ability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, text string) Effect {
	t.Helper()
	effects, _ := NewParser().Parse(text)
	require.Len(t, effects, 1, "expected exactly one effect for %q", text)
	return effects[0]
}

func TestParseDamagePatterns(t *testing.T) {
	tests := []struct {
		text   string
		target TargetGroup
		mode   Mode
		amount int
	}{
		{"Deal 1 damage to both players", TargetBothPlayers, "", 1},
		{"Deal 2 damage to the enemy unit in this column", TargetColumn, "", 2},
		{"Deal 2 damage to a random enemy unit", TargetEnemyUnit, ModeRandom, 2},
		{"Deal 1 damage to all enemy units", TargetEnemyUnit, ModeAll, 1},
		{"Deal 3 damage to a target enemy unit", TargetEnemyUnit, ModeTargeted, 3},
		{"Deal 1 damage to all enemy units in the back row", TargetEnemyBackRow, ModeAll, 1},
		{"Deal 2 damage to all enemy units in the front row", TargetEnemyFrontRow, ModeAll, 2},
		{"Deal 2 damage to the enemy player", TargetEnemyPlayer, ModeRandom, 2},
		{"Deal 1 damage to a random friendly unit", TargetFriendlyUnit, ModeRandom, 1},
		{"Deal 10 damage to the enemy player", TargetEnemyPlayer, ModeRandom, 10},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			eff := parseOne(t, tt.text)
			assert.Equal(t, KindDamage, eff.Kind)
			assert.Equal(t, tt.target, eff.Target)
			assert.Equal(t, tt.amount, eff.Amount)
			if tt.mode != "" {
				assert.Equal(t, tt.mode, eff.Mode)
			}
		})
	}
}

func TestParseUnitBuffPatterns(t *testing.T) {
	tests := []struct {
		text    string
		check   func(t *testing.T, eff Effect)
	}{
		{"Give another random unit with Manacharge +1/+1", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetUnitsWithKeyword, eff.Target)
			assert.Equal(t, "manacharge", eff.Keyword)
			assert.True(t, eff.ExcludeSelf)
			assert.Equal(t, 1, eff.Attack)
			assert.Equal(t, 1, eff.Health)
		}},
		{"Give all your units +2 Health", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetAllFriendlyUnits, eff.Target)
			assert.Equal(t, 0, eff.Attack)
			assert.Equal(t, 2, eff.Health)
		}},
		{"Give your Beasts and Dragons +1/+1", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetMultiTag, eff.Target)
			assert.Equal(t, []string{"beast", "dragon"}, eff.Tags)
			assert.False(t, eff.Temporary)
		}},
		{"Give your Beasts and Dragons +1/+0 this turn", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetMultiTag, eff.Target)
			assert.True(t, eff.Temporary)
			assert.Equal(t, 1, eff.Attack)
			assert.Equal(t, 0, eff.Health)
		}},
		{"Give your front row units +0/+2", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetFrontRowUnits, eff.Target)
			assert.Equal(t, 0, eff.Attack)
			assert.Equal(t, 2, eff.Health)
		}},
		{"Give your other Goblins +1/+1", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetUnitsWithTag, eff.Target)
			assert.Equal(t, "goblin", eff.Tag)
			assert.True(t, eff.ExcludeSelf)
			assert.Equal(t, ModeAll, eff.Mode)
		}},
		{"Give your Beasts +1/+1", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetUnitsWithTag, eff.Target)
			assert.Equal(t, "beast", eff.Tag)
			assert.False(t, eff.ExcludeSelf)
			assert.Equal(t, ModeAll, eff.Mode)
		}},
		{"Give an Undead +1/+1", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetUnitsWithTag, eff.Target)
			assert.Equal(t, "undead", eff.Tag)
			assert.Equal(t, ModeRandom, eff.Mode)
		}},
		{"Gain +2 Attack this turn", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetSelf, eff.Target)
			assert.Equal(t, 2, eff.Attack)
			assert.Equal(t, 0, eff.Health)
			assert.True(t, eff.Temporary)
		}},
		{"Gain +1/+1", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetSelf, eff.Target)
			assert.False(t, eff.Temporary)
		}},
		{"Gains +2/+2", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetSelf, eff.Target)
			assert.Equal(t, 2, eff.Attack)
		}},
		{"Gain +1/+1 this turn", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetSelf, eff.Target)
			assert.True(t, eff.Temporary)
		}},
		{"Give all friendly units +1/+1", func(t *testing.T, eff Effect) {
			assert.Equal(t, TargetAllFriendlyUnits, eff.Target)
			assert.Equal(t, ModeAll, eff.Mode)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			eff := parseOne(t, tt.text)
			require.Equal(t, KindBuff, eff.Kind)
			tt.check(t, eff)
		})
	}
}

func TestParseSlotBuffPatterns(t *testing.T) {
	tests := []struct {
		text   string
		target TargetGroup
		attack int
		health int
	}{
		{"Give the other slots in this row +1/+1", TargetOtherSlotsInRow, 1, 1},
		{"Give the other slot in this column +2/+2", TargetOtherSlotInColumn, 2, 2},
		{"Give adjacent slots +1/+1", TargetAdjacentSlots, 1, 1},
		{"Give each slot with a Goblin +1/+1", TargetSlotsWithTag, 1, 1},
		{"Give this slot +1/+1", TargetThisSlot, 1, 1},
		{"Give a random slot +1/+1", TargetRandomSlot, 1, 1},
		{"Give a random back row slot +2/+0", TargetRandomBackRowSlot, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			eff := parseOne(t, tt.text)
			assert.Equal(t, KindSlotBuff, eff.Kind)
			assert.Equal(t, tt.target, eff.Target)
			assert.Equal(t, tt.attack, eff.Attack)
			assert.Equal(t, tt.health, eff.Health)
		})
	}
}

func TestParseGrantPatterns(t *testing.T) {
	eff := parseOne(t, "Gains Flying")
	assert.Equal(t, KindGrant, eff.Kind)
	assert.Equal(t, TargetSelf, eff.Target)
	assert.Equal(t, "flying", eff.Keyword)

	eff = parseOne(t, "Give a friendly unit Rush")
	assert.Equal(t, KindGrant, eff.Kind)
	assert.Equal(t, TargetFriendlyUnit, eff.Target)
	assert.Equal(t, "rush", eff.Keyword)

	eff = parseOne(t, "Give a Goblin Ranged")
	assert.Equal(t, KindGrant, eff.Kind)
	assert.Equal(t, TargetUnitsWithTag, eff.Target)
	assert.Equal(t, "goblin", eff.Tag)
	assert.Equal(t, "ranged", eff.Keyword)
}

func TestParseSummonPatterns(t *testing.T) {
	eff := parseOne(t, "Summon a Skeleton")
	assert.Equal(t, KindSummon, eff.Kind)
	assert.Equal(t, TokenSkeleton, eff.Token)
	assert.False(t, eff.ToHand)

	eff = parseOne(t, "Add a Mana Surge to your hand")
	assert.Equal(t, KindSummon, eff.Kind)
	assert.Equal(t, TokenManaSurge, eff.Token)
	assert.True(t, eff.ToHand)
}

func TestParseDrawPatterns(t *testing.T) {
	eff := parseOne(t, "Draw a card from your deck")
	assert.Equal(t, KindDraw, eff.Kind)
	assert.Equal(t, 1, eff.Amount)
	assert.False(t, eff.FromOpponentDeck)

	eff = parseOne(t, "Draw a card from your opponent's deck")
	assert.Equal(t, KindDraw, eff.Kind)
	assert.True(t, eff.FromOpponentDeck)

	eff = parseOne(t, "Draw 2 cards from your deck")
	assert.Equal(t, 2, eff.Amount)
}

func TestParseHealSoulsBanish(t *testing.T) {
	eff := parseOne(t, "Heal your player for 3")
	assert.Equal(t, KindHeal, eff.Kind)
	assert.Equal(t, 3, eff.Amount)

	eff = parseOne(t, "Heal yourself for 2")
	assert.Equal(t, KindHeal, eff.Kind)
	assert.Equal(t, 2, eff.Amount)

	eff = parseOne(t, "Gain 2 dragon souls")
	assert.Equal(t, KindSouls, eff.Kind)
	assert.Equal(t, 2, eff.Amount)

	eff = parseOne(t, "Banish this")
	assert.Equal(t, KindBanish, eff.Kind)
	assert.Equal(t, TargetSelf, eff.Target)
}

func TestParseCompoundThenSequence(t *testing.T) {
	effects, misses := NewParser().Parse("Deal 1 damage to a random enemy unit, then gain +1/+1")
	require.Len(t, effects, 2)
	assert.Empty(t, misses)
	assert.Equal(t, KindDamage, effects[0].Kind)
	assert.Equal(t, KindBuff, effects[1].Kind)
	assert.Equal(t, TargetSelf, effects[1].Target)
}

func TestParseMultipleCategoriesInOneClause(t *testing.T) {
	effects, _ := NewParser().Parse("Deal 1 damage to a random enemy unit and gain +1/+1")
	require.Len(t, effects, 2)
	assert.Equal(t, KindDamage, effects[0].Kind)
	assert.Equal(t, KindBuff, effects[1].Kind)
}

// A clause that matches a category filter but none of its patterns yields
// nothing for that category. The miss is reported for logging only.
func TestParseMissIsSilent(t *testing.T) {
	effects, misses := NewParser().Parse("Give your champion a mighty blessing")
	assert.Empty(t, effects)
	require.Len(t, misses, 1)
	assert.Equal(t, "buff", misses[0].Category)
}

func TestParseGrantAlsoReportsBuffMiss(t *testing.T) {
	effects, misses := NewParser().Parse("Gains Flying")
	require.Len(t, effects, 1)
	assert.Equal(t, KindGrant, effects[0].Kind)

	// "gains" satisfies the buff filter too; no buff pattern matches.
	require.Len(t, misses, 1)
	assert.Equal(t, "buff", misses[0].Category)
}

func TestParseUnrecognizedTextYieldsNothing(t *testing.T) {
	effects, misses := NewParser().Parse("Taunt all nearby enemies")
	assert.Empty(t, effects)
	assert.Empty(t, misses)
}

func TestParseEmptyText(t *testing.T) {
	effects, misses := NewParser().Parse("")
	assert.Empty(t, effects)
	assert.Empty(t, misses)
}
