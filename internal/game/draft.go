package game

import (
	"github.com/gridspire/arena-server-go/internal/game/rules"
)

// StartDraft opens a draft of options drawn from the tier pool. Cost scales
// with tier; the options stay in the pool until one is selected, so rerolls
// and later drafts can surface them again.
func (e *Engine) StartDraft(matchID, playerID string, tier int) (*DraftView, error) {
	st, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.beginTurnOp(playerID); err != nil {
		return nil, err
	}
	if st.draft.active {
		return nil, newRuleError(CodeDraftInProgress, "a draft is already open")
	}
	if tier < 1 || tier > MaxTier {
		return nil, newRuleError(CodeInvalidTier, "tier %d is out of range", tier)
	}
	if len(st.player(playerID).hand) >= HandLimit {
		return nil, newRuleError(CodeHandFull, "hand holds the maximum of %d cards", HandLimit)
	}
	if len(st.pools[tier]) == 0 {
		return nil, newRuleError(CodeEmptyPool, "tier %d pool is exhausted", tier)
	}
	if !st.spendGold(playerID, DraftCost(tier)) {
		return nil, newRuleError(CodeInsufficientGold, "a tier %d draft costs %d gold", tier, DraftCost(tier))
	}

	st.draft = draftState{
		active:  true,
		tier:    tier,
		player:  playerID,
		options: st.draftOptions(tier),
	}

	event := rules.NewEventWithAmount(rules.EventDraftStarted, playerID, "", playerID, tier)
	st.bus.Publish(event)
	e.recordAction(matchID, ReplayAction{Kind: ReplayStartDraft, Player: playerID, Tier: tier})

	return newDraftView(st.draft), nil
}

// RerollDraft redraws the open draft's options for a flat gold cost.
func (e *Engine) RerollDraft(matchID, playerID string, tier int) (*DraftView, error) {
	st, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.beginTurnOp(playerID); err != nil {
		return nil, err
	}
	if !st.draft.active || st.draft.player != playerID {
		return nil, newRuleError(CodeNoActiveDraft, "no draft to reroll")
	}
	if tier != st.draft.tier {
		return nil, newRuleError(CodeInvalidTier, "open draft is tier %d", st.draft.tier)
	}
	if !st.spendGold(playerID, RerollCost) {
		return nil, newRuleError(CodeInsufficientGold, "a reroll costs %d gold", RerollCost)
	}

	st.draft.options = st.draftOptions(st.draft.tier)

	event := rules.NewEventWithAmount(rules.EventDraftRerolled, playerID, "", playerID, st.draft.tier)
	st.bus.Publish(event)
	e.recordAction(matchID, ReplayAction{Kind: ReplayRerollDraft, Player: playerID, Tier: st.draft.tier})

	return newDraftView(st.draft), nil
}

// SelectDraftCard takes one option into the hand and retires it from the
// tier pool. The unpicked options remain draftable later.
func (e *Engine) SelectDraftCard(matchID, playerID, poolID string) (*CardView, error) {
	st, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.beginTurnOp(playerID); err != nil {
		return nil, err
	}
	if !st.draft.active || st.draft.player != playerID {
		return nil, newRuleError(CodeNoActiveDraft, "no draft to pick from")
	}

	var picked *Card
	optionIndex := -1
	for i := range st.draft.options {
		if st.draft.options[i].PoolID == poolID {
			picked = &st.draft.options[i]
			optionIndex = i
			break
		}
	}
	if picked == nil {
		return nil, newRuleError(CodeInvalidSelection, "card %s is not among the draft options", poolID)
	}
	if len(st.player(playerID).hand) >= HandLimit {
		return nil, newRuleError(CodeHandFull, "hand holds the maximum of %d cards", HandLimit)
	}

	card := *picked
	st.removeFromPool(st.draft.tier, card.PoolID)
	st.draft = draftState{}
	st.addCardToHand(playerID, card)

	event := rules.NewEvent(rules.EventDraftCardSelected, card.PoolID, "", playerID)
	event.Description = card.Name
	st.bus.Publish(event)
	e.recordAction(matchID, ReplayAction{Kind: ReplaySelectDraft, Player: playerID, Index: optionIndex})

	view := newCardView(card)
	return &view, nil
}

// DrawFromDeck pays the flat draw cost and moves the player's own top deck
// card to hand. Ability-driven draws bypass this path and its cost entirely.
func (e *Engine) DrawFromDeck(matchID, playerID string) (*CardView, error) {
	st, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.beginTurnOp(playerID); err != nil {
		return nil, err
	}
	p := st.player(playerID)
	if len(p.deck) == 0 {
		return nil, newRuleError(CodeEmptyDeck, "deck is empty")
	}
	if len(p.hand) >= HandLimit {
		return nil, newRuleError(CodeHandFull, "hand holds the maximum of %d cards", HandLimit)
	}
	if !st.spendGold(playerID, DeckDrawCost) {
		return nil, newRuleError(CodeInsufficientGold, "drawing costs %d gold", DeckDrawCost)
	}

	card, _ := st.drawTopCard(playerID, playerID)
	e.recordAction(matchID, ReplayAction{Kind: ReplayDrawDeck, Player: playerID})
	view := newCardView(card)
	return &view, nil
}

// draftOptions samples distinct pool entries without removing them.
func (st *matchState) draftOptions(tier int) []Card {
	pool := st.pools[tier]
	n := draftOptionCnt
	if n > len(pool) {
		n = len(pool)
	}
	options := make([]Card, 0, n)
	for _, idx := range st.rng.Perm(len(pool))[:n] {
		options = append(options, pool[idx])
	}
	return options
}

func (st *matchState) removeFromPool(tier int, poolID string) {
	pool := st.pools[tier]
	for i := range pool {
		if pool[i].PoolID == poolID {
			st.pools[tier] = append(pool[:i], pool[i+1:]...)
			return
		}
	}
}
