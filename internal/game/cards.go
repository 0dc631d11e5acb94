package game

import (
	"github.com/google/uuid"

	"github.com/gridspire/arena-server-go/internal/game/ability"
)

// Color is a card's color identity. Blue cards activate Manacharge when
// played from hand.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

// Card is an immutable template drawn from the per-tier pools. PoolID is
// unique per pool entry so duplicate named cards can coexist undrafted.
type Card struct {
	ID      string
	PoolID  string
	Name    string
	Attack  int
	Health  int
	Ability string
	Tags    []string
	Color   Color
	Tier    int
}

// Unit is a battlefield instance of a card. Attack and Health are the base
// stats, mutated only by permanent buffs; the Current fields absorb temporary
// buffs and damage. UID is unique per instance so two copies of the same card
// never alias in the stat registry.
type Unit struct {
	UID    string
	CardID string
	Name   string
	Owner  string
	Slot   int

	Attack        int
	Health        int
	CurrentAttack int
	CurrentHealth int
	MaxHealth     int

	Ability string
	Tags    []string
	Color   Color
	Tier    int

	CanAttack         bool
	SummonedThisTurn  bool
	HasAttackedPlayer bool
	Banished          bool

	// dying marks a unit whose death is mid-processing, so a Last Gasp that
	// cascades back into the death sweep cannot fire twice.
	dying bool
}

// newUnit instantiates a battlefield unit from a card template. Rush
// overrides summoning sickness immediately.
func newUnit(card Card, owner string, slot int) *Unit {
	return &Unit{
		UID:              uuid.NewString(),
		CardID:           card.ID,
		Name:             card.Name,
		Owner:            owner,
		Slot:             slot,
		Attack:           card.Attack,
		Health:           card.Health,
		CurrentAttack:    card.Attack,
		CurrentHealth:    card.Health,
		MaxHealth:        card.Health,
		Ability:          card.Ability,
		Tags:             append([]string(nil), card.Tags...),
		Color:            card.Color,
		Tier:             card.Tier,
		CanAttack:        ability.HasKeyword(card.Ability, ability.KeywordRush),
		SummonedThisTurn: true,
	}
}

// hasTag reports whether the unit carries the tag, case-insensitively and
// tolerant of the singular form the parser normalizes to.
func (u *Unit) hasTag(tag string) bool {
	for _, t := range u.Tags {
		if equalTag(t, tag) {
			return true
		}
	}
	return false
}

func (u *Unit) hasKeyword(keyword string) bool {
	return ability.HasKeyword(u.Ability, keyword)
}

// asCard reconstructs the card that returns to its owner's deck when the
// unit dies. Base stats carry permanent buffs forward; the ability string
// keeps granted keywords. Temporary buffs and damage are lost with the unit.
func (u *Unit) asCard() Card {
	return Card{
		ID:      u.CardID,
		PoolID:  u.CardID,
		Name:    u.Name,
		Attack:  u.Attack,
		Health:  u.Health,
		Ability: u.Ability,
		Tags:    append([]string(nil), u.Tags...),
		Color:   u.Color,
		Tier:    u.Tier,
	}
}

// Token templates instantiated by summon effects.

func skeletonCard() Card {
	card := Card{
		ID:      "token-" + uuid.NewString(),
		Name:    ability.TokenSkeleton,
		Attack:  1,
		Health:  1,
		Ability: "Last Gasp: Banish this",
		Tags:    []string{"Undead"},
		Color:   ColorPurple,
		Tier:    1,
	}
	card.PoolID = card.ID
	return card
}

func manaSurgeCard() Card {
	card := Card{
		ID:      "token-" + uuid.NewString(),
		Name:    ability.TokenManaSurge,
		Attack:  1,
		Health:  1,
		Ability: "Unleash: Banish this",
		Color:   ColorBlue,
		Tier:    1,
	}
	card.PoolID = card.ID
	return card
}

func tokenCard(name string) (Card, bool) {
	switch name {
	case ability.TokenSkeleton:
		return skeletonCard(), true
	case ability.TokenManaSurge:
		return manaSurgeCard(), true
	default:
		return Card{}, false
	}
}
