package ability

import (
	"regexp"
	"strconv"
	"strings"
)

// pattern pairs a regular expression with a builder that turns its captures
// into a structured effect. Builders may reject a match (second return false)
// to let less specific patterns in the same category try the clause.
type pattern struct {
	re    *regexp.Regexp
	build func(m []string) (Effect, bool)
}

// category groups the ordered patterns for one effect kind behind a cheap
// keyword filter. Patterns run most specific first; the first structured
// match wins the clause for that category.
type category struct {
	name     string
	applies  func(text string) bool
	patterns []pattern
}

// Parser converts free-text ability clauses into structured effects. The
// recognized vocabulary is closed: a clause either matches one of the ordered
// patterns per category or yields nothing for that category.
type Parser struct {
	categories []category
}

var (
	modeAllRE    = regexp.MustCompile(`\ball\b`)
	modeTargetRE = regexp.MustCompile(`\btarget\b`)

	grantFilterRE = regexp.MustCompile(`\b(?:gains?|give)\b.*\b(?:rush|flying|ranged)\b`)
)

// NewParser builds a parser with the full recognized vocabulary.
func NewParser() *Parser {
	return &Parser{categories: []category{
		damageCategory(),
		buffCategory(),
		grantCategory(),
		summonCategory(),
		drawCategory(),
		healCategory(),
		soulsCategory(),
		banishCategory(),
	}}
}

// Parse converts ability effect text (trigger prefix already stripped) into
// zero or more effects. Clauses joined with ", then " parse independently and
// keep their order. The second return lists category filters that matched
// with no recognized pattern; callers log these, they are never errors.
func (p *Parser) Parse(text string) ([]Effect, []Miss) {
	var (
		effects []Effect
		misses  []Miss
	)

	for _, chunk := range splitClauses(text) {
		clause := normalizeClause(chunk)
		if clause == "" {
			continue
		}

		for _, cat := range p.categories {
			if !cat.applies(clause) {
				continue
			}

			matched := false
			for _, pat := range cat.patterns {
				m := pat.re.FindStringSubmatch(clause)
				if m == nil {
					continue
				}
				eff, ok := pat.build(m)
				if !ok {
					continue
				}
				eff.Raw = clause
				if eff.Kind == KindBuff && strings.Contains(clause, "this turn") {
					eff.Temporary = true
				}
				effects = append(effects, eff)
				matched = true
				break
			}

			if !matched {
				misses = append(misses, Miss{Category: cat.name, Text: clause})
			}
		}
	}

	return effects, misses
}

// splitClauses breaks a compound ability on the literal ", then " separator.
func splitClauses(text string) []string {
	return strings.Split(strings.ToLower(text), ", then ")
}

func normalizeClause(chunk string) string {
	clause := strings.TrimSpace(chunk)
	clause = strings.TrimSuffix(clause, ".")
	return strings.TrimSpace(clause)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// normalizeTag lowercases a captured tag word and strips a plural "s" so
// "goblins" and "Goblin" compare equal at execution time.
func normalizeTag(word string) string {
	tag := strings.ToLower(strings.TrimSpace(word))
	if len(tag) > 3 && strings.HasSuffix(tag, "s") && !strings.HasSuffix(tag, "ss") {
		tag = strings.TrimSuffix(tag, "s")
	}
	return tag
}

func damageMode(targetText string) Mode {
	switch {
	case modeAllRE.MatchString(targetText):
		return ModeAll
	case modeTargetRE.MatchString(targetText):
		return ModeTargeted
	default:
		return ModeRandom
	}
}

func classifyDamageTarget(targetText string) (TargetGroup, bool) {
	switch {
	case strings.Contains(targetText, "enemy player"), strings.Contains(targetText, "your opponent"):
		return TargetEnemyPlayer, true
	case strings.Contains(targetText, "back row"):
		return TargetEnemyBackRow, true
	case strings.Contains(targetText, "front row"):
		return TargetEnemyFrontRow, true
	case strings.Contains(targetText, "friendly"):
		return TargetFriendlyUnit, true
	case strings.Contains(targetText, "enemy unit"):
		return TargetEnemyUnit, true
	default:
		return "", false
	}
}

func damageCategory() category {
	return category{
		name: "damage",
		applies: func(t string) bool {
			return strings.Contains(t, "deal") && strings.Contains(t, "damage")
		},
		patterns: []pattern{
			{
				re: regexp.MustCompile(`deal (\d+) damage to both players`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindDamage, Target: TargetBothPlayers, Amount: atoi(m[1])}, true
				},
			},
			{
				re: regexp.MustCompile(`deal (\d+) damage to the enemy unit in this column`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindDamage, Target: TargetColumn, Amount: atoi(m[1])}, true
				},
			},
			{
				re: regexp.MustCompile(`deal (\d+) damage to (.+)$`),
				build: func(m []string) (Effect, bool) {
					group, ok := classifyDamageTarget(m[2])
					if !ok {
						return Effect{}, false
					}
					return Effect{
						Kind:   KindDamage,
						Target: group,
						Mode:   damageMode(m[2]),
						Amount: atoi(m[1]),
					}, true
				},
			},
		},
	}
}

func classifyBuffTarget(desc string) (Effect, bool) {
	switch {
	case strings.Contains(desc, "back row slot"):
		return Effect{Kind: KindSlotBuff, Target: TargetRandomBackRowSlot, Mode: ModeRandom}, true
	case strings.Contains(desc, "random slot"):
		return Effect{Kind: KindSlotBuff, Target: TargetRandomSlot, Mode: ModeRandom}, true
	case strings.Contains(desc, "this slot"):
		return Effect{Kind: KindSlotBuff, Target: TargetThisSlot}, true
	case strings.Contains(desc, "other slot in this column"):
		return Effect{Kind: KindSlotBuff, Target: TargetOtherSlotInColumn}, true
	case strings.Contains(desc, "all friendly units"):
		return Effect{Kind: KindBuff, Target: TargetAllFriendlyUnits, Mode: ModeAll}, true
	default:
		return Effect{}, false
	}
}

func buffCategory() category {
	return category{
		name: "buff",
		applies: func(t string) bool {
			return strings.Contains(t, "give") || strings.Contains(t, "gain")
		},
		patterns: []pattern{
			{
				re: regexp.MustCompile(`give another (?:random )?unit with (rush|flying|ranged|sneaky|trample|first strike|manacharge|kindred) \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:        KindBuff,
						Target:      TargetUnitsWithKeyword,
						Mode:        ModeRandom,
						Keyword:     m[1],
						Attack:      atoi(m[2]),
						Health:      atoi(m[3]),
						ExcludeSelf: true,
					}, true
				},
			},
			{
				re: regexp.MustCompile(`give all (?:your |friendly )?units \+(\d+) health`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:   KindBuff,
						Target: TargetAllFriendlyUnits,
						Mode:   ModeAll,
						Health: atoi(m[1]),
					}, true
				},
			},
			{
				re: regexp.MustCompile(`give your ([a-z]+) and ([a-z]+) \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:   KindBuff,
						Target: TargetMultiTag,
						Mode:   ModeAll,
						Tags:   []string{normalizeTag(m[1]), normalizeTag(m[2])},
						Attack: atoi(m[3]),
						Health: atoi(m[4]),
					}, true
				},
			},
			{
				re: regexp.MustCompile(`give your front row units \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:   KindBuff,
						Target: TargetFrontRowUnits,
						Mode:   ModeAll,
						Attack: atoi(m[1]),
						Health: atoi(m[2]),
					}, true
				},
			},
			{
				re: regexp.MustCompile(`give the other slots in this row \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindSlotBuff, Target: TargetOtherSlotsInRow, Attack: atoi(m[1]), Health: atoi(m[2])}, true
				},
			},
			{
				re: regexp.MustCompile(`give the other slot in this column \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindSlotBuff, Target: TargetOtherSlotInColumn, Attack: atoi(m[1]), Health: atoi(m[2])}, true
				},
			},
			{
				re: regexp.MustCompile(`give (?:the )?adjacent slots \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindSlotBuff, Target: TargetAdjacentSlots, Attack: atoi(m[1]), Health: atoi(m[2])}, true
				},
			},
			{
				re: regexp.MustCompile(`give each slot with an? ([a-z]+) \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:   KindSlotBuff,
						Target: TargetSlotsWithTag,
						Mode:   ModeAll,
						Tag:    normalizeTag(m[1]),
						Attack: atoi(m[2]),
						Health: atoi(m[3]),
					}, true
				},
			},
			{
				re: regexp.MustCompile(`give (?:your )?other ([a-z]+?)s? \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:        KindBuff,
						Target:      TargetUnitsWithTag,
						Mode:        ModeAll,
						Tag:         normalizeTag(m[1]),
						Attack:      atoi(m[2]),
						Health:      atoi(m[3]),
						ExcludeSelf: true,
					}, true
				},
			},
			{
				re: regexp.MustCompile(`give (?:all )?your ([a-z]+?)s? \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					tag := normalizeTag(m[1])
					if tag == "unit" || tag == "front" {
						return Effect{}, false
					}
					return Effect{
						Kind:   KindBuff,
						Target: TargetUnitsWithTag,
						Mode:   ModeAll,
						Tag:    tag,
						Attack: atoi(m[2]),
						Health: atoi(m[3]),
					}, true
				},
			},
			{
				re: regexp.MustCompile(`give an? ([a-z]+) \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:   KindBuff,
						Target: TargetUnitsWithTag,
						Mode:   ModeRandom,
						Tag:    normalizeTag(m[1]),
						Attack: atoi(m[2]),
						Health: atoi(m[3]),
					}, true
				},
			},
			{
				re: regexp.MustCompile(`gain \+(\d+) attack this turn`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:      KindBuff,
						Target:    TargetSelf,
						Attack:    atoi(m[1]),
						Temporary: true,
					}, true
				},
			},
			{
				re: regexp.MustCompile(`gains? \+(\d+)/\+(\d+)$`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindBuff, Target: TargetSelf, Attack: atoi(m[1]), Health: atoi(m[2])}, true
				},
			},
			{
				re: regexp.MustCompile(`gains? \+(\d+)/\+(\d+) this turn`),
				build: func(m []string) (Effect, bool) {
					return Effect{
						Kind:      KindBuff,
						Target:    TargetSelf,
						Attack:    atoi(m[1]),
						Health:    atoi(m[2]),
						Temporary: true,
					}, true
				},
			},
			{
				re: regexp.MustCompile(`give (.+?) \+(\d+)/\+(\d+)`),
				build: func(m []string) (Effect, bool) {
					eff, ok := classifyBuffTarget(m[1])
					if !ok {
						return Effect{}, false
					}
					eff.Attack = atoi(m[2])
					eff.Health = atoi(m[3])
					return eff, true
				},
			},
		},
	}
}

func grantCategory() category {
	return category{
		name: "grant",
		applies: func(t string) bool {
			return grantFilterRE.MatchString(t)
		},
		patterns: []pattern{
			{
				re: regexp.MustCompile(`^(?:this unit )?gains? (rush|flying|ranged)$`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindGrant, Target: TargetSelf, Keyword: m[1]}, true
				},
			},
			{
				re: regexp.MustCompile(`give a friendly unit (rush|flying|ranged)`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindGrant, Target: TargetFriendlyUnit, Mode: ModeRandom, Keyword: m[1]}, true
				},
			},
			{
				re: regexp.MustCompile(`give an? ([a-z]+) (rush|flying|ranged)`),
				build: func(m []string) (Effect, bool) {
					tag := normalizeTag(m[1])
					if tag == "friendly" {
						return Effect{}, false
					}
					return Effect{
						Kind:    KindGrant,
						Target:  TargetUnitsWithTag,
						Mode:    ModeRandom,
						Tag:     tag,
						Keyword: m[2],
					}, true
				},
			},
		},
	}
}

func summonCategory() category {
	return category{
		name: "summon",
		applies: func(t string) bool {
			return strings.Contains(t, "summon") || strings.Contains(t, "add")
		},
		patterns: []pattern{
			{
				re: regexp.MustCompile(`summon an? skeleton`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindSummon, Token: TokenSkeleton}, true
				},
			},
			{
				re: regexp.MustCompile(`add an? mana surge to your hand`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindSummon, Token: TokenManaSurge, ToHand: true}, true
				},
			},
		},
	}
}

func drawCategory() category {
	return category{
		name: "draw",
		applies: func(t string) bool {
			return strings.Contains(t, "draw")
		},
		patterns: []pattern{
			{
				re: regexp.MustCompile(`draw a card from your opponent'?s deck`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindDraw, Amount: 1, FromOpponentDeck: true}, true
				},
			},
			{
				re: regexp.MustCompile(`draw (\d+) cards? from your deck`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindDraw, Amount: atoi(m[1])}, true
				},
			},
			{
				re: regexp.MustCompile(`draw a card(?: from your deck)?$`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindDraw, Amount: 1}, true
				},
			},
		},
	}
}

func healCategory() category {
	return category{
		name: "heal",
		applies: func(t string) bool {
			return strings.Contains(t, "heal")
		},
		patterns: []pattern{
			{
				re: regexp.MustCompile(`heal (?:your player|yourself) for (\d+)`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindHeal, Target: TargetOwnPlayer, Amount: atoi(m[1])}, true
				},
			},
		},
	}
}

func soulsCategory() category {
	return category{
		name: "dragon soul",
		applies: func(t string) bool {
			return strings.Contains(t, "dragon soul")
		},
		patterns: []pattern{
			{
				re: regexp.MustCompile(`gain (\d+) dragon souls?`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindSouls, Target: TargetOwnPlayer, Amount: atoi(m[1])}, true
				},
			},
		},
	}
}

func banishCategory() category {
	return category{
		name: "banish",
		applies: func(t string) bool {
			return strings.Contains(t, "banish")
		},
		patterns: []pattern{
			{
				re: regexp.MustCompile(`banish this(?: unit)?$`),
				build: func(m []string) (Effect, bool) {
					return Effect{Kind: KindBanish, Target: TargetSelf}, true
				},
			},
		},
	}
}
