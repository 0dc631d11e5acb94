package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gridspire/arena-server-go/internal/game/ability"
	"github.com/gridspire/arena-server-go/internal/game/effects"
	"github.com/gridspire/arena-server-go/internal/game/rules"
)

// MatchPhase is the lifecycle state of a match.
type MatchPhase string

const (
	MatchInProgress MatchPhase = "IN_PROGRESS"
	MatchFinished   MatchPhase = "FINISHED"
)

// Battlefield geometry. Six slots per player: 0-2 front row, 3-5 back row.
// The two slots sharing slot%3 form a column.
const (
	BattlefieldSlots = 6
	rowWidth         = 3

	maxPlayerHealth = 20
	maxGoldCap      = 10
	startingGold    = 3

	// HandLimit caps cards in hand; drafts and draws reject beyond it.
	HandLimit = 8

	// MaxTier is the highest tier a draft can request.
	MaxTier = 5

	// DeckDrawCost and RerollCost are the flat gold prices of buying the top
	// card of your own deck and of rerolling an open draft.
	DeckDrawCost = 3
	RerollCost   = 1

	draftOptionCnt  = 3
	draftCostFactor = 2
)

// DraftCost is the gold price of opening a draft at the given tier.
func DraftCost(tier int) int {
	return tier * draftCostFactor
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < BattlefieldSlots
}

func isFrontRow(slot int) bool {
	return slot >= 0 && slot < rowWidth
}

func columnOf(slot int) int {
	return slot % rowWidth
}

// partnerSlot is the other slot in the same column.
func partnerSlot(slot int) int {
	if isFrontRow(slot) {
		return slot + rowWidth
	}
	return slot - rowWidth
}

// rowmateSlots are the other slots in the same row.
func rowmateSlots(slot int) []int {
	base := 0
	if !isFrontRow(slot) {
		base = rowWidth
	}
	mates := make([]int, 0, rowWidth-1)
	for i := base; i < base+rowWidth; i++ {
		if i != slot {
			mates = append(mates, i)
		}
	}
	return mates
}

// adjacentSlots are the horizontal neighbors in the same row.
func adjacentSlots(slot int) []int {
	var adj []int
	col := columnOf(slot)
	if col > 0 {
		adj = append(adj, slot-1)
	}
	if col < rowWidth-1 {
		adj = append(adj, slot+1)
	}
	return adj
}

func equalTag(a, b string) bool {
	return normalizeTagWord(a) == normalizeTagWord(b)
}

func normalizeTagWord(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if len(tag) > 3 && strings.HasSuffix(tag, "s") && !strings.HasSuffix(tag, "ss") {
		tag = strings.TrimSuffix(tag, "s")
	}
	return tag
}

// playerState owns one player's resources. All mutation goes through the
// matchState named mutations below.
type playerState struct {
	id          string
	health      int
	gold        int
	maxGold     int
	souls       int
	hand        []Card
	deck        []Card
	battlefield [BattlefieldSlots]*Unit
	slotBuffs   effects.SlotBuffs
	hasAttacked map[int]bool
}

func newPlayerState(id string) *playerState {
	return &playerState{
		id:          id,
		health:      maxPlayerHealth,
		gold:        startingGold,
		maxGold:     startingGold,
		hand:        make([]Card, 0),
		deck:        make([]Card, 0),
		hasAttacked: make(map[int]bool),
	}
}

func (p *playerState) units() []*Unit {
	var units []*Unit
	for _, u := range p.battlefield {
		if u != nil {
			units = append(units, u)
		}
	}
	return units
}

func (p *playerState) firstEmptySlot() (int, bool) {
	for i, u := range p.battlefield {
		if u == nil {
			return i, true
		}
	}
	return 0, false
}

// hasTagInEveryColumn reports whether each of the three columns holds at
// least one unit with the tag.
func (p *playerState) hasTagInEveryColumn(tag string) bool {
	for col := 0; col < rowWidth; col++ {
		found := false
		for _, slot := range []int{col, col + rowWidth} {
			if u := p.battlefield[slot]; u != nil && u.hasTag(tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// draftState tracks an open draft for the current player.
type draftState struct {
	active  bool
	tier    int
	player  string
	options []Card
}

// matchState is the canonical state tree for one match. Exactly one
// operation mutates it at a time; the mutex serializes callers, and within
// an operation everything resolves synchronously to completion.
type matchState struct {
	matchID string
	phase   MatchPhase
	winner  string

	players map[string]*playerState
	order   [2]string

	turns    *rules.TurnManager
	bus      *rules.EventBus
	triggers *rules.TriggerManager
	queue    *rules.ReactionQueue
	layers   *effects.LayerSystem
	parser   *ability.Parser
	rng      *rand.Rand

	pools map[int][]Card
	draft draftState

	// resolved collects descriptions of reactions resolved during the
	// current operation, reported back to the caller.
	resolved []string

	startedAt time.Time
	mu        sync.Mutex
}

func (st *matchState) player(id string) *playerState {
	return st.players[id]
}

func (st *matchState) opponentOf(id string) *playerState {
	if st.order[0] == id {
		return st.players[st.order[1]]
	}
	return st.players[st.order[0]]
}

func (st *matchState) unitAt(playerID string, slot int) *Unit {
	p := st.player(playerID)
	if p == nil || !validSlot(slot) {
		return nil
	}
	return p.battlefield[slot]
}

// occupantIs verifies the slot still holds the exact unit instance. Effects
// resolve against live slots; a stale reference means the target left the
// battlefield mid-cascade and the mutation must fizzle.
func (st *matchState) occupantIs(u *Unit) bool {
	if u == nil {
		return false
	}
	return st.unitAt(u.Owner, u.Slot) == u
}

func (st *matchState) activePlayer() string {
	return st.turns.ActivePlayer()
}

// effectiveStats derives the unit's read-time stats: current stats plus
// whatever conditional and aura modifiers apply right now.
func (st *matchState) effectiveStats(u *Unit) (attack, health int) {
	snap := effects.NewSnapshot(u.UID, u.Owner, u.Tags, u.CurrentAttack, u.CurrentHealth,
		isFrontRow(u.Slot), st.activePlayer() == u.Owner)
	st.layers.Apply(snap)
	return snap.Attack, snap.Health
}

// placeUnit occupies a slot and applies the slot's accumulated buff to the
// unit's current stats, never its base stats. Continuous modifiers parsed
// from the ability text register against the layer system here.
func (st *matchState) placeUnit(u *Unit, slot int) bool {
	p := st.player(u.Owner)
	if p == nil || !validSlot(slot) || p.battlefield[slot] != nil {
		return false
	}
	u.Slot = slot
	p.battlefield[slot] = u

	if buff := p.slotBuffs.At(slot); !buff.IsZero() {
		u.CurrentAttack += buff.Attack
		u.CurrentHealth += buff.Health
		u.MaxHealth += buff.Health
	}

	for _, eff := range effects.EffectsFor(u.UID, u.Owner, ability.Statics(u.Ability)) {
		st.layers.AddEffect(eff)
	}
	return true
}

// removeUnit clears a slot and unregisters the occupant's continuous
// modifiers. Deck return is the caller's concern.
func (st *matchState) removeUnit(u *Unit) {
	p := st.player(u.Owner)
	if p == nil {
		return
	}
	if validSlot(u.Slot) && p.battlefield[u.Slot] == u {
		p.battlefield[u.Slot] = nil
	}
	st.layers.RemoveSource(u.UID)
}

// adjustUnitStats is the single stat-update primitive: it validates the
// target slot still holds the unit, applies the delta, and publishes a
// stats-changed event. Permanent deltas write base stats and mirror into the
// current fields; temporary deltas touch only the current fields.
func (st *matchState) adjustUnitStats(u *Unit, attack, health int, permanent bool) bool {
	if !st.occupantIs(u) {
		return false
	}
	if permanent {
		u.Attack += attack
		u.Health += health
	}
	u.CurrentAttack += attack
	u.CurrentHealth += health
	u.MaxHealth += health

	event := rules.NewEvent(rules.EventStatsChanged, u.UID, u.UID, u.Owner)
	event.Amount = attack
	event.Slot = u.Slot
	event.Description = u.Name
	st.bus.Publish(event)
	return true
}

// damageUnit marks damage on a unit and reports whether it survived.
// Survival publishes the survived-damage event immediately; lethality is
// handled by the death sweep at the resolution boundary.
func (st *matchState) damageUnit(u *Unit, amount int) bool {
	if !st.occupantIs(u) || amount <= 0 {
		return u != nil && u.CurrentHealth > 0
	}
	u.CurrentHealth -= amount

	event := rules.NewEventWithAmount(rules.EventStatsChanged, u.UID, u.UID, u.Owner, -amount)
	event.Slot = u.Slot
	event.Description = u.Name
	st.bus.Publish(event)

	if u.CurrentHealth > 0 {
		survived := rules.NewEventWithAmount(rules.EventUnitSurvivedDamage, u.UID, u.UID, u.Owner, amount)
		survived.Slot = u.Slot
		survived.Description = u.Name
		st.bus.Publish(survived)
		return true
	}
	return false
}

func (st *matchState) damagePlayer(playerID string, amount int) {
	p := st.player(playerID)
	if p == nil || amount <= 0 {
		return
	}
	p.health -= amount
	st.bus.Publish(rules.NewEventWithAmount(rules.EventPlayerDamaged, playerID, "", playerID, amount))
}

func (st *matchState) healPlayer(playerID string, amount int) {
	p := st.player(playerID)
	if p == nil || amount <= 0 {
		return
	}
	p.health += amount
	if p.health > maxPlayerHealth {
		p.health = maxPlayerHealth
	}
	st.bus.Publish(rules.NewEventWithAmount(rules.EventPlayerHealed, playerID, "", playerID, amount))
}

func (st *matchState) addSouls(playerID string, amount int) {
	p := st.player(playerID)
	if p == nil || amount <= 0 {
		return
	}
	p.souls += amount
	st.bus.Publish(rules.NewEventWithAmount(rules.EventSoulsGained, playerID, "", playerID, amount))
}

func (st *matchState) spendGold(playerID string, amount int) bool {
	p := st.player(playerID)
	if p == nil || p.gold < amount {
		return false
	}
	p.gold -= amount
	return true
}

// buffSlot accumulates a persistent bonus on the slot and applies the delta
// to the current occupant's current stats, so the buff is visible at once
// and survives the occupant's death.
func (st *matchState) buffSlot(playerID string, slot, attack, health int) bool {
	p := st.player(playerID)
	if p == nil || !p.slotBuffs.Add(slot, attack, health) {
		return false
	}
	if u := p.battlefield[slot]; u != nil {
		u.CurrentAttack += attack
		u.CurrentHealth += health
		u.MaxHealth += health
	}

	event := rules.NewEventWithSlot(rules.EventSlotBuffChanged, playerID, "", playerID, slot)
	event.Amount = attack
	st.bus.Publish(event)
	return true
}

// addCardToHand appends without a hand-size check; gold-gated operations
// pre-check the limit, ability-granted cards never drop.
func (st *matchState) addCardToHand(playerID string, card Card) {
	p := st.player(playerID)
	if p == nil {
		return
	}
	p.hand = append(p.hand, card)
	event := rules.NewEvent(rules.EventCardAddedToHand, card.PoolID, "", playerID)
	event.Description = card.Name
	st.bus.Publish(event)
}

func (st *matchState) removeCardFromHand(playerID, poolID string) (Card, bool) {
	p := st.player(playerID)
	if p == nil {
		return Card{}, false
	}
	for i, c := range p.hand {
		if c.PoolID == poolID {
			p.hand = append(p.hand[:i], p.hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// handIndex locates a card's position in the player's hand, -1 when absent.
func (st *matchState) handIndex(playerID, poolID string) int {
	p := st.player(playerID)
	if p == nil {
		return -1
	}
	for i, c := range p.hand {
		if c.PoolID == poolID {
			return i
		}
	}
	return -1
}

// drawTopCard moves the top deck card of from's deck into to's hand.
func (st *matchState) drawTopCard(from, to string) (Card, bool) {
	src := st.player(from)
	dst := st.player(to)
	if src == nil || dst == nil || len(src.deck) == 0 {
		return Card{}, false
	}
	card := src.deck[0]
	src.deck = src.deck[1:]
	dst.hand = append(dst.hand, card)

	event := rules.NewEvent(rules.EventCardDrawn, card.PoolID, "", to)
	event.Description = card.Name
	st.bus.Publish(event)
	return card, true
}

func (st *matchState) returnToDeck(playerID string, card Card) {
	p := st.player(playerID)
	if p == nil {
		return
	}
	p.deck = append(p.deck, card)
}

// markAttacked records the attacker's slot for this turn. The set accepts a
// slot exactly once per attack; combat validation already rejects repeats.
func (st *matchState) markAttacked(playerID string, slot int) {
	p := st.player(playerID)
	if p == nil {
		return
	}
	p.hasAttacked[slot] = true
}
