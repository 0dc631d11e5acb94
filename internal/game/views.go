package game

import (
	"sort"
	"time"

	"github.com/gridspire/arena-server-go/internal/game/ability"
)

// CardView is the client-facing shape of a card.
type CardView struct {
	ID      string   `json:"id"`
	PoolID  string   `json:"pool_id"`
	Name    string   `json:"name"`
	Attack  int      `json:"attack"`
	Health  int      `json:"health"`
	Ability string   `json:"ability"`
	Tags    []string `json:"tags,omitempty"`
	Color   string   `json:"color"`
	Tier    int      `json:"tier"`
}

// UnitView is the client-facing shape of a battlefield unit. Attack and
// Health are the effective read-time stats; the base and current fields
// expose the layers underneath for clients that render buff breakdowns.
type UnitView struct {
	UID           string   `json:"uid"`
	CardID        string   `json:"card_id"`
	Name          string   `json:"name"`
	Slot          int      `json:"slot"`
	Attack        int      `json:"attack"`
	Health        int      `json:"health"`
	BaseAttack    int      `json:"base_attack"`
	BaseHealth    int      `json:"base_health"`
	CurrentAttack int      `json:"current_attack"`
	CurrentHealth int      `json:"current_health"`
	MaxHealth     int      `json:"max_health"`
	Ability       string   `json:"ability"`
	Tags          []string `json:"tags,omitempty"`
	Color         string   `json:"color"`
	Tier          int      `json:"tier"`
	CanAttack     bool     `json:"can_attack"`
	HasAttacked   bool     `json:"has_attacked"`
}

// SlotBuffView reports a slot's accumulated persistent buff.
type SlotBuffView struct {
	Slot   int    `json:"slot"`
	Attack int    `json:"attack"`
	Health int    `json:"health"`
	Label  string `json:"label"`
}

// PlayerView is one player's half of the match. Hand is populated only for
// the viewing player; opponents see the count.
type PlayerView struct {
	ID          string         `json:"id"`
	Health      int            `json:"health"`
	Gold        int            `json:"gold"`
	MaxGold     int            `json:"max_gold"`
	Souls       int            `json:"souls"`
	HandSize    int            `json:"hand_size"`
	Hand        []CardView     `json:"hand,omitempty"`
	DeckSize    int            `json:"deck_size"`
	Battlefield []*UnitView    `json:"battlefield"`
	SlotBuffs   []SlotBuffView `json:"slot_buffs,omitempty"`
	HasAttacked []int          `json:"has_attacked,omitempty"`
}

// DraftView lists the open draft options.
type DraftView struct {
	Tier    int        `json:"tier"`
	Options []CardView `json:"options"`
}

// MatchView is a viewer-relative snapshot of the whole match.
type MatchView struct {
	MatchID      string     `json:"match_id"`
	Phase        MatchPhase `json:"phase"`
	Turn         int        `json:"turn"`
	ActivePlayer string     `json:"active_player"`
	Winner       string     `json:"winner,omitempty"`
	You          PlayerView `json:"you"`
	Opponent     PlayerView `json:"opponent"`
	Draft        *DraftView `json:"draft,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
}

// GetMatchView snapshots the match from one player's perspective. The
// opponent's hand is redacted to a count, and an open draft shows only to
// its owner.
func (e *Engine) GetMatchView(matchID, playerID string) (*MatchView, error) {
	st, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	viewer := st.player(playerID)
	if viewer == nil {
		return nil, newRuleError(CodeUnknownPlayer, "player %s is not seated in this match", playerID)
	}

	view := &MatchView{
		MatchID:      st.matchID,
		Phase:        st.phase,
		Turn:         st.turns.TurnNumber(),
		ActivePlayer: st.activePlayer(),
		Winner:       st.winner,
		You:          newPlayerView(st, viewer, true),
		Opponent:     newPlayerView(st, st.opponentOf(playerID), false),
		StartedAt:    st.startedAt,
	}
	if st.draft.active && st.draft.player == playerID {
		view.Draft = newDraftView(st.draft)
	}
	return view, nil
}

func newCardView(card Card) CardView {
	return CardView{
		ID:      card.ID,
		PoolID:  card.PoolID,
		Name:    card.Name,
		Attack:  card.Attack,
		Health:  card.Health,
		Ability: card.Ability,
		Tags:    append([]string(nil), card.Tags...),
		Color:   string(card.Color),
		Tier:    card.Tier,
	}
}

func newUnitView(st *matchState, u *Unit) UnitView {
	attack, health := st.effectiveStats(u)
	hasAttacked := false
	if p := st.player(u.Owner); p != nil {
		hasAttacked = p.hasAttacked[u.Slot]
	}
	return UnitView{
		UID:           u.UID,
		CardID:        u.CardID,
		Name:          u.Name,
		Slot:          u.Slot,
		Attack:        attack,
		Health:        health,
		BaseAttack:    u.Attack,
		BaseHealth:    u.Health,
		CurrentAttack: u.CurrentAttack,
		CurrentHealth: u.CurrentHealth,
		MaxHealth:     u.MaxHealth,
		Ability:       u.Ability,
		Tags:          append([]string(nil), u.Tags...),
		Color:         string(u.Color),
		Tier:          u.Tier,
		CanAttack:     u.CanAttack || u.hasKeyword(ability.KeywordRush),
		HasAttacked:   hasAttacked,
	}
}

func newPlayerView(st *matchState, p *playerState, includeHand bool) PlayerView {
	view := PlayerView{
		ID:          p.id,
		Health:      p.health,
		Gold:        p.gold,
		MaxGold:     p.maxGold,
		Souls:       p.souls,
		HandSize:    len(p.hand),
		DeckSize:    len(p.deck),
		Battlefield: make([]*UnitView, BattlefieldSlots),
	}
	if includeHand {
		view.Hand = make([]CardView, 0, len(p.hand))
		for _, card := range p.hand {
			view.Hand = append(view.Hand, newCardView(card))
		}
	}
	for slot, u := range p.battlefield {
		if u == nil {
			continue
		}
		unitView := newUnitView(st, u)
		view.Battlefield[slot] = &unitView
	}
	for slot := 0; slot < BattlefieldSlots; slot++ {
		if buff := p.slotBuffs.At(slot); !buff.IsZero() {
			view.SlotBuffs = append(view.SlotBuffs, SlotBuffView{
				Slot:   slot,
				Attack: buff.Attack,
				Health: buff.Health,
				Label:  buff.Label(),
			})
		}
	}
	for slot := range p.hasAttacked {
		view.HasAttacked = append(view.HasAttacked, slot)
	}
	sort.Ints(view.HasAttacked)
	return view
}

func newDraftView(draft draftState) *DraftView {
	view := &DraftView{
		Tier:    draft.tier,
		Options: make([]CardView, 0, len(draft.options)),
	}
	for _, card := range draft.options {
		view.Options = append(view.Options, newCardView(card))
	}
	return view
}
