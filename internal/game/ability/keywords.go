package ability

import (
	"regexp"
	"strings"
)

// Combat and trigger keywords recognized in ability text.
const (
	KeywordRush        = "Rush"
	KeywordFlying      = "Flying"
	KeywordRanged      = "Ranged"
	KeywordSneaky      = "Sneaky"
	KeywordTrample     = "Trample"
	KeywordFirstStrike = "First Strike"
	KeywordManacharge  = "Manacharge"
	KeywordKindred     = "Kindred"

	TriggerUnleash  = "Unleash"
	TriggerLastGasp = "Last Gasp"
)

// Token templates the summon vocabulary can instantiate.
const (
	TokenSkeleton  = "Skeleton"
	TokenManaSurge = "Mana Surge"
)

// Fixed phrases that trigger routing and combat validation match on.
const (
	PhraseStartOfTurn       = "at the start of your turn"
	PhraseEndOfTurn         = "end of your turn"
	PhraseSurvivedDamage    = "when this unit survives damage"
	PhraseSurvivedAttack    = "when this unit survives attacking"
	PhraseAfterAttackPlayer = "after this unit attacks the enemy player"
	PhraseAfterAttack       = "after this unit attacks"
	PhraseOpponentSummons   = "when your opponent summons a unit"
	PhraseCannotAttack      = "can't attack"
	PhraseGoblinColumns     = "goblin in every column"
	PhraseFrontRowCondition = "if this unit is in the front row"
)

// grantPhraseRE matches the grant vocabulary so that a unit whose text merely
// GRANTS a keyword does not itself count as having it.
var grantPhraseRE = regexp.MustCompile(`(?i)(?:gains? |give a friendly unit |give an? [a-z]+ )(?:rush|flying|ranged)\b`)

// HasKeyword reports whether the ability text carries the keyword. Grant
// phrases are excluded first, so "Give a friendly unit Flying" does not make
// the granting unit a flyer.
func HasKeyword(abilityText, keyword string) bool {
	if abilityText == "" || keyword == "" {
		return false
	}
	cleaned := grantPhraseRE.ReplaceAllString(abilityText, "")
	return strings.Contains(strings.ToLower(cleaned), strings.ToLower(keyword))
}

// AppendKeyword grants a keyword by appending it to the ability string.
// Granting a keyword the unit already has returns the text unchanged.
func AppendKeyword(abilityText, keyword string) string {
	canonical := CanonicalKeyword(keyword)
	if HasKeyword(abilityText, canonical) {
		return abilityText
	}
	if strings.TrimSpace(abilityText) == "" {
		return canonical
	}
	return abilityText + ", " + canonical
}

// CanonicalKeyword maps a lowercase keyword capture to its display form.
func CanonicalKeyword(keyword string) string {
	switch strings.ToLower(strings.TrimSpace(keyword)) {
	case "rush":
		return KeywordRush
	case "flying":
		return KeywordFlying
	case "ranged":
		return KeywordRanged
	case "sneaky":
		return KeywordSneaky
	case "trample":
		return KeywordTrample
	case "first strike":
		return KeywordFirstStrike
	case "manacharge":
		return KeywordManacharge
	case "kindred":
		return KeywordKindred
	default:
		return strings.TrimSpace(keyword)
	}
}

// TriggerText returns the effect text following a "<Trigger>:" prefix, such
// as "Unleash: Deal 2 damage to a random enemy unit".
func TriggerText(abilityText, trigger string) (string, bool) {
	lower := strings.ToLower(abilityText)
	marker := strings.ToLower(trigger) + ":"
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(abilityText[idx+len(marker):]), true
}

// PhraseText returns the effect text following an inline trigger phrase, such
// as "At the start of your turn, give this slot +1/+1".
func PhraseText(abilityText, phrase string) (string, bool) {
	lower := strings.ToLower(abilityText)
	idx := strings.Index(lower, strings.ToLower(phrase))
	if idx < 0 {
		return "", false
	}
	tail := abilityText[idx+len(phrase):]
	tail = strings.TrimLeft(tail, ",: ")
	return strings.TrimSpace(tail), true
}

// StripFrontRowCondition removes the front-row condition clause from effect
// text. The second return reports whether the clause was present; callers
// check the unit's current row before executing the remainder.
func StripFrontRowCondition(text string) (string, bool) {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, PhraseFrontRowCondition)
	if idx < 0 {
		return text, false
	}
	stripped := text[:idx] + text[idx+len(PhraseFrontRowCondition):]
	return strings.Trim(stripped, ", "), true
}

// CannotAttack reports whether the ability text forbids attacking.
func CannotAttack(abilityText string) bool {
	return strings.Contains(strings.ToLower(abilityText), PhraseCannotAttack)
}

// RequiresGoblinColumns reports whether the ability text carries the
// every-column Goblin attack requirement.
func RequiresGoblinColumns(abilityText string) bool {
	return strings.Contains(strings.ToLower(abilityText), PhraseGoblinColumns)
}
