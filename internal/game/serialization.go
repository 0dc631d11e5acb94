package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// checksumVersion changes whenever the canonical representation does, so
// fingerprints from different builds never compare equal by accident.
const checksumVersion = 1

// StateChecksum is a deterministic fingerprint of one match's rules state.
// It covers everything the rules can observe and deliberately omits the
// match ID, pool IDs, unit UIDs and timestamps, so a match replayed under a
// fresh ID still hashes equal to its recording. Two matches driven by the
// same seed and the same actions hash equal even across processes.
type StateChecksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

// StateChecksum computes the fingerprint of a hosted match.
func (e *Engine) StateChecksum(matchID string) (StateChecksum, error) {
	st, err := e.match(matchID)
	if err != nil {
		return StateChecksum{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	var buf bytes.Buffer
	writeCanonicalMatch(&buf, st)

	sum := sha256.Sum256(buf.Bytes())
	return StateChecksum{
		Hash:    hex.EncodeToString(sum[:]),
		Version: checksumVersion,
	}, nil
}

// writeCanonicalMatch renders the match state in a fixed field and
// iteration order. Players follow seating order, slots follow index order
// and cards follow their in-zone order, so equal states produce equal bytes.
func writeCanonicalMatch(buf *bytes.Buffer, st *matchState) {
	fmt.Fprintf(buf, "MATCH:%s|%s|%d|%s\n",
		st.phase,
		st.winner,
		st.turns.TurnNumber(),
		st.activePlayer(),
	)

	for _, id := range st.order {
		p := st.player(id)
		fmt.Fprintf(buf, "PLAYER:%s|%d|%d|%d|%d\n",
			p.id, p.health, p.gold, p.maxGold, p.souls,
		)

		for i, card := range p.hand {
			fmt.Fprintf(buf, "HAND:%d|%s\n", i, canonicalCard(card))
		}
		for i, card := range p.deck {
			fmt.Fprintf(buf, "DECK:%d|%s\n", i, canonicalCard(card))
		}

		for slot := 0; slot < BattlefieldSlots; slot++ {
			u := p.battlefield[slot]
			if u == nil {
				fmt.Fprintf(buf, "SLOT:%d|empty\n", slot)
				continue
			}
			attack, health := st.effectiveStats(u)
			fmt.Fprintf(buf, "SLOT:%d|%s|%d|%d\n", slot, canonicalUnit(u), attack, health)
		}

		for slot := 0; slot < BattlefieldSlots; slot++ {
			buff := p.slotBuffs.At(slot)
			fmt.Fprintf(buf, "BUFF:%d|%d|%d\n", slot, buff.Attack, buff.Health)
		}
		for slot := 0; slot < BattlefieldSlots; slot++ {
			fmt.Fprintf(buf, "ATTACKED:%d|%t\n", slot, p.hasAttacked[slot])
		}
	}

	fmt.Fprintf(buf, "DRAFT:%t|%d|%s\n", st.draft.active, st.draft.tier, st.draft.player)
	for i, card := range st.draft.options {
		fmt.Fprintf(buf, "OPTION:%d|%s\n", i, canonicalCard(card))
	}

	for tier := 1; tier <= MaxTier; tier++ {
		for i, card := range st.pools[tier] {
			fmt.Fprintf(buf, "POOL:%d|%d|%s\n", tier, i, canonicalCard(card))
		}
	}
}

// canonicalCard renders a card without its pool ID.
func canonicalCard(card Card) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s|%s|%s|%d",
		card.ID,
		card.Name,
		card.Attack,
		card.Health,
		card.Ability,
		strings.Join(card.Tags, ","),
		card.Color,
		card.Tier,
	)
}

// canonicalUnit renders a battlefield unit without its UID.
func canonicalUnit(u *Unit) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d|%d|%s|%s|%s|%d|%t|%t|%t|%t",
		u.CardID,
		u.Name,
		u.Owner,
		u.Attack,
		u.Health,
		u.CurrentAttack,
		u.CurrentHealth,
		u.MaxHealth,
		u.Ability,
		strings.Join(u.Tags, ","),
		u.Color,
		u.Tier,
		u.CanAttack,
		u.SummonedThisTurn,
		u.HasAttackedPlayer,
		u.Banished,
	)
}
