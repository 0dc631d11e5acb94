package rules

import (
	"errors"
	"sync"
)

// ReactionKind describes the trigger category that produced a reaction.
type ReactionKind string

const (
	ReactionKindUnleash        ReactionKind = "UNLEASH"
	ReactionKindLastGasp       ReactionKind = "LAST_GASP"
	ReactionKindManacharge     ReactionKind = "MANACHARGE"
	ReactionKindKindred        ReactionKind = "KINDRED"
	ReactionKindTurnStart      ReactionKind = "TURN_START"
	ReactionKindTurnEnd        ReactionKind = "TURN_END"
	ReactionKindSurvivedDamage ReactionKind = "SURVIVED_DAMAGE"
	ReactionKindSurvivedAttack ReactionKind = "SURVIVED_ATTACK"
	ReactionKindAfterAttack    ReactionKind = "AFTER_ATTACK"
	ReactionKindOpponentSummon ReactionKind = "OPPONENT_SUMMON"
)

// Reaction represents a single queued ability resolution.
type Reaction struct {
	ID          string
	Controller  string
	Description string
	Kind        ReactionKind
	SourceID    string
	Metadata    map[string]string
	Resolve     func() error
}

// ReactionQueue holds pending reactions in first-in-first-out order. Ability
// cascades enqueue here and the engine drains the queue to exhaustion before
// a public operation returns.
type ReactionQueue struct {
	mu    sync.Mutex
	items []Reaction
}

// NewReactionQueue creates a new reaction queue.
func NewReactionQueue() *ReactionQueue {
	return &ReactionQueue{
		items: make([]Reaction, 0, 16),
	}
}

// Enqueue adds a reaction to the tail of the queue.
func (rq *ReactionQueue) Enqueue(item Reaction) {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	rq.items = append(rq.items, item)
}

// EnqueueAll adds reactions to the tail of the queue preserving their order.
func (rq *ReactionQueue) EnqueueAll(items []Reaction) {
	if len(items) == 0 {
		return
	}
	rq.mu.Lock()
	defer rq.mu.Unlock()
	rq.items = append(rq.items, items...)
}

// Dequeue removes the reaction at the head of the queue.
func (rq *ReactionQueue) Dequeue() (Reaction, error) {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	if len(rq.items) == 0 {
		return Reaction{}, errors.New("reaction queue empty")
	}

	item := rq.items[0]
	rq.items = rq.items[1:]
	return item, nil
}

// Remove deletes a reaction from anywhere in the queue by ID.
func (rq *ReactionQueue) Remove(id string) (Reaction, bool) {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	for idx := range rq.items {
		if rq.items[idx].ID == id {
			item := rq.items[idx]
			rq.items = append(rq.items[:idx], rq.items[idx+1:]...)
			return item, true
		}
	}
	return Reaction{}, false
}

// List returns a copy of all pending reactions (head first).
func (rq *ReactionQueue) List() []Reaction {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	cpy := make([]Reaction, len(rq.items))
	copy(cpy, rq.items)
	return cpy
}

// Len returns the number of pending reactions.
func (rq *ReactionQueue) Len() int {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	return len(rq.items)
}

// IsEmpty returns whether the queue is empty.
func (rq *ReactionQueue) IsEmpty() bool {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	return len(rq.items) == 0
}

// Clear drops all pending reactions, returning how many were dropped.
func (rq *ReactionQueue) Clear() int {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	n := len(rq.items)
	rq.items = rq.items[:0]
	return n
}
