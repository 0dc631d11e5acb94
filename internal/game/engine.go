package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/game/ability"
	"github.com/gridspire/arena-server-go/internal/game/effects"
	"github.com/gridspire/arena-server-go/internal/game/rules"
)

// CardSource supplies the per-tier card database a match drafts from. It is
// read once per match at start; the engine never writes back.
type CardSource interface {
	CardsForTier(tier int) ([]Card, error)
}

// MatchNotification carries a match event to the registered handler.
type MatchNotification struct {
	Type      string                 `json:"type"`
	MatchID   string                 `json:"match_id"`
	PlayerID  string                 `json:"player_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NotificationHandler receives match notifications for fan-out to websockets
// or other presentation layers.
type NotificationHandler func(MatchNotification)

// Engine hosts every live match. Operations on one match are serialized by
// the match mutex and resolve synchronously to completion, cascading
// triggers included, before the call returns.
type Engine struct {
	logger *zap.Logger
	cards  CardSource

	mu      sync.RWMutex
	matches map[string]*matchState
	seed    int64

	notificationHandler NotificationHandler
	recorder            *ReplayRecorder
}

// NewEngine creates an engine backed by the given card source.
func NewEngine(logger *zap.Logger, cards CardSource) *Engine {
	return &Engine{
		logger:  logger,
		cards:   cards,
		matches: make(map[string]*matchState),
	}
}

// SetSeed pins the random source for matches started afterwards. Zero keeps
// the default time-based seeding.
func (e *Engine) SetSeed(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seed = seed
}

// SetNotificationHandler sets the handler receiving match notifications.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

// SetReplayRecorder attaches a recorder that collects accepted actions for
// matches it has been told to record.
func (e *Engine) SetReplayRecorder(recorder *ReplayRecorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = recorder
}

// recordAction forwards an accepted action to the attached recorder.
func (e *Engine) recordAction(matchID string, action ReplayAction) {
	e.mu.RLock()
	recorder := e.recorder
	e.mu.RUnlock()

	if recorder != nil {
		recorder.record(matchID, action)
	}
}

// emitNotification forwards a notification to the registered handler. The
// handler runs in its own goroutine, so it may call back into the engine
// without deadlocking against the match lock held by the emitting operation.
func (e *Engine) emitNotification(notification MatchNotification) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()

	if handler != nil {
		go handler(notification)
	}
}

func (e *Engine) match(matchID string) (*matchState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st, ok := e.matches[matchID]
	if !ok {
		return nil, newRuleError(CodeMatchNotFound, "match %s not found", matchID)
	}
	return st, nil
}

// Matches lists the IDs of all hosted matches in stable order.
func (e *Engine) Matches() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.matches))
	for id := range e.matches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// beginOp gates an operation on the match still running and the player being
// seated, and resets the per-operation reaction log.
func (st *matchState) beginOp(playerID string) error {
	if st.phase == MatchFinished {
		return newRuleError(CodeMatchOver, "match is already decided")
	}
	if st.player(playerID) == nil {
		return newRuleError(CodeUnknownPlayer, "player %s is not seated in this match", playerID)
	}
	st.resolved = st.resolved[:0]
	return nil
}

// beginTurnOp additionally requires the player to hold the turn.
func (st *matchState) beginTurnOp(playerID string) error {
	if err := st.beginOp(playerID); err != nil {
		return err
	}
	if st.activePlayer() != playerID {
		return newRuleError(CodeNotPlayersTurn, "it is not %s's turn", playerID)
	}
	return nil
}

// StartMatch seats two players, loads the tier pools and opens the first
// player's turn.
func (e *Engine) StartMatch(matchID string, players []string) error {
	if matchID == "" {
		return fmt.Errorf("match ID cannot be empty")
	}
	if len(players) != 2 || players[0] == "" || players[1] == "" || players[0] == players[1] {
		return fmt.Errorf("exactly two distinct players are required, got %v", players)
	}

	pools, err := e.loadPools()
	if err != nil {
		return fmt.Errorf("loading card pools: %w", err)
	}

	e.mu.Lock()
	if _, exists := e.matches[matchID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("match %s already exists", matchID)
	}
	seed := e.seed
	e.mu.Unlock()
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	st := &matchState{
		matchID: matchID,
		phase:   MatchInProgress,
		players: map[string]*playerState{
			players[0]: newPlayerState(players[0]),
			players[1]: newPlayerState(players[1]),
		},
		order:     [2]string{players[0], players[1]},
		turns:     rules.NewTurnManager(players[0], players[1]),
		bus:       rules.NewEventBus(),
		triggers:  rules.NewTriggerManager(),
		queue:     rules.NewReactionQueue(),
		layers:    effects.NewLayerSystem(),
		parser:    ability.NewParser(),
		rng:       rand.New(rand.NewSource(seed)),
		pools:     pools,
		startedAt: time.Now(),
	}
	e.wireMatch(st)

	e.mu.Lock()
	if _, exists := e.matches[matchID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("match %s already exists", matchID)
	}
	e.matches[matchID] = st
	e.mu.Unlock()

	e.mu.RLock()
	recorder := e.recorder
	e.mu.RUnlock()
	if recorder != nil {
		recorder.recordStart(matchID, seed, players)
	}

	st.mu.Lock()
	started := rules.NewEvent(rules.EventMatchStarted, matchID, "", players[0])
	st.bus.Publish(started)
	firstTurn := rules.NewEvent(rules.EventTurnStarted, players[0], "", players[0])
	st.bus.Publish(firstTurn)
	st.mu.Unlock()

	if e.logger != nil {
		e.logger.Info("match started",
			zap.String("match_id", matchID),
			zap.Strings("players", players),
		)
	}
	return nil
}

// loadPools reads the card database and stamps every entry with a pool ID so
// duplicate cards stay distinguishable until drafted.
func (e *Engine) loadPools() (map[int][]Card, error) {
	pools := make(map[int][]Card, MaxTier)
	for tier := 1; tier <= MaxTier; tier++ {
		cards, err := e.cards.CardsForTier(tier)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", tier, err)
		}
		entries := make([]Card, 0, len(cards))
		for _, card := range cards {
			card.PoolID = uuid.NewString()
			card.Tier = tier
			entries = append(entries, card)
		}
		pools[tier] = entries
	}
	return pools, nil
}

// PlayResult reports a successful card play.
type PlayResult struct {
	Unit      UnitView `json:"unit"`
	Triggered []string `json:"triggered,omitempty"`
}

// PlayCard places a hand card onto an empty battlefield slot and resolves
// every triggered cascade before returning. Playing a blue card additionally
// activates Manacharge for the owner's battlefield.
func (e *Engine) PlayCard(matchID, playerID, poolID string, slot int) (*PlayResult, error) {
	st, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.beginTurnOp(playerID); err != nil {
		return nil, err
	}
	if !validSlot(slot) {
		return nil, newRuleError(CodeInvalidPlacement, "slot %d is out of range", slot)
	}
	if st.unitAt(playerID, slot) != nil {
		return nil, newRuleError(CodeInvalidPlacement, "slot %d is occupied", slot)
	}
	handIndex := st.handIndex(playerID, poolID)
	card, ok := st.removeCardFromHand(playerID, poolID)
	if !ok {
		return nil, newRuleError(CodeCardNotInHand, "card %s is not in hand", poolID)
	}

	unit := newUnit(card, playerID, slot)
	st.placeUnit(unit, slot)

	played := rules.NewEventWithSlot(rules.EventUnitPlayed, unit.UID, unit.UID, playerID, slot)
	played.Description = unit.Name
	played.Flag = card.Color == ColorBlue
	st.bus.Publish(played)

	if card.Color == ColorBlue {
		activation := rules.NewEvent(rules.EventManachargeActivated, playerID, unit.UID, playerID)
		activation.Description = unit.Name
		st.bus.Publish(activation)
	}

	e.drainReactions(st)
	e.checkMatchOver(st)
	e.recordAction(matchID, ReplayAction{Kind: ReplayPlayCard, Player: playerID, Index: handIndex, Slot: slot})

	return &PlayResult{
		Unit:      newUnitView(st, unit),
		Triggered: append([]string(nil), st.resolved...),
	}, nil
}

// Attack resolves one attack from the player's slot, draining the cascades
// it set off before returning.
func (e *Engine) Attack(matchID, playerID string, attackerSlot int) (*AttackOutcome, error) {
	st, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.beginOp(playerID); err != nil {
		return nil, err
	}

	outcome, attackErr := e.resolveAttack(st, playerID, attackerSlot)
	if attackErr != nil {
		return outcome, attackErr
	}

	e.drainReactions(st)
	e.checkMatchOver(st)
	e.recordAction(matchID, ReplayAction{Kind: ReplayAttack, Player: playerID, Slot: attackerSlot})
	outcome.Triggered = append([]string(nil), st.resolved...)
	return outcome, nil
}

// TurnResult reports the state after a turn change.
type TurnResult struct {
	ActivePlayer string   `json:"active_player"`
	Turn         int      `json:"turn"`
	Winner       string   `json:"winner,omitempty"`
	Triggered    []string `json:"triggered,omitempty"`
}

// EndTurn fires end-of-turn triggers for the ending player, passes the turn
// and opens the next one: the new player's attack set clears, gold refills
// at an incremented cap, summoning sickness wears off and start-of-turn
// triggers fire. An open draft is discarded with the turn.
func (e *Engine) EndTurn(matchID, playerID string) (*TurnResult, error) {
	st, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.beginTurnOp(playerID); err != nil {
		return nil, err
	}
	e.recordAction(matchID, ReplayAction{Kind: ReplayEndTurn, Player: playerID})

	ended := rules.NewEvent(rules.EventTurnEnded, playerID, "", playerID)
	st.bus.Publish(ended)
	e.drainReactions(st)
	e.checkMatchOver(st)
	if st.phase == MatchFinished {
		return &TurnResult{
			ActivePlayer: st.activePlayer(),
			Turn:         st.turns.TurnNumber(),
			Winner:       st.winner,
			Triggered:    append([]string(nil), st.resolved...),
		}, nil
	}

	next := st.turns.Advance()
	opening := st.player(next)
	opening.hasAttacked = make(map[int]bool)
	if opening.maxGold < maxGoldCap {
		opening.maxGold++
	}
	opening.gold = opening.maxGold
	for _, u := range opening.units() {
		u.CanAttack = true
		u.SummonedThisTurn = false
	}
	st.draft = draftState{}

	startedEvent := rules.NewEvent(rules.EventTurnStarted, next, "", next)
	st.bus.Publish(startedEvent)
	e.drainReactions(st)
	e.checkMatchOver(st)

	return &TurnResult{
		ActivePlayer: st.activePlayer(),
		Turn:         st.turns.TurnNumber(),
		Winner:       st.winner,
		Triggered:    append([]string(nil), st.resolved...),
	}, nil
}

// PlayerConcede ends the match immediately in the opponent's favor.
func (e *Engine) PlayerConcede(matchID, playerID string) error {
	st, err := e.match(matchID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.phase == MatchFinished {
		return newRuleError(CodeMatchOver, "match is already decided")
	}
	if st.player(playerID) == nil {
		return newRuleError(CodeUnknownPlayer, "player %s is not seated in this match", playerID)
	}

	st.phase = MatchFinished
	st.winner = st.opponentOf(playerID).id

	event := rules.NewEvent(rules.EventMatchOver, st.winner, "", st.winner)
	event.Description = st.winner
	st.bus.Publish(event)
	e.recordAction(matchID, ReplayAction{Kind: ReplayConcede, Player: playerID})

	if e.logger != nil {
		e.logger.Info("player conceded",
			zap.String("match_id", matchID),
			zap.String("player", playerID),
			zap.String("winner", st.winner),
		)
	}
	return nil
}

// drainReactions resolves queued reactions to exhaustion in FIFO order.
// Resolutions publish further events whose reactions append behind the
// current tail, so cascades resolve in the order they were set off.
func (e *Engine) drainReactions(st *matchState) {
	for {
		reaction, err := st.queue.Dequeue()
		if err != nil {
			return
		}
		st.resolved = append(st.resolved, reaction.Description)
		if reaction.Resolve == nil {
			continue
		}
		if resolveErr := reaction.Resolve(); resolveErr != nil {
			e.fault(st, SeverityError, "reaction failed",
				zap.String("reaction", reaction.Description),
				zap.Error(resolveErr),
			)
		}
	}
}

// checkMatchOver finishes the match once a player's health reaches zero.
// When a cascade drops both players at once, seating order decides the loser.
func (e *Engine) checkMatchOver(st *matchState) {
	if st.phase == MatchFinished {
		return
	}
	for _, id := range st.order {
		if st.player(id).health > 0 {
			continue
		}
		st.phase = MatchFinished
		st.winner = st.opponentOf(id).id

		event := rules.NewEvent(rules.EventMatchOver, st.winner, "", st.winner)
		event.Description = st.winner
		st.bus.Publish(event)

		if e.logger != nil {
			e.logger.Info("match over",
				zap.String("match_id", st.matchID),
				zap.String("winner", st.winner),
				zap.Int("turn", st.turns.TurnNumber()),
			)
		}
		return
	}
}
