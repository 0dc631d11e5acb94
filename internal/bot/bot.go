// Package bot implements a scripted baseline opponent for simulations and
// integration tests. It acts through the same operations a remote client
// would and reads only the viewer-relative match snapshot, so restrictions
// it cannot see coming (attack bans, exhausted pools) surface as rule
// rejections it reacts to rather than engine internals it peeks at.
package bot

import (
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/game"
	"github.com/gridspire/arena-server-go/internal/game/ability"
)

// maxActionsPerTurn bounds the decide loop so a confused bot forfeits the
// rest of its turn instead of spinning.
const maxActionsPerTurn = 48

// ActionType names the moves the bot knows how to make.
type ActionType string

const (
	ActionStartDraft  ActionType = "start_draft"
	ActionSelectDraft ActionType = "select_draft"
	ActionPlayCard    ActionType = "play_card"
	ActionAttack      ActionType = "attack"
	ActionDrawDeck    ActionType = "draw_deck"
	ActionEndTurn     ActionType = "end_turn"
)

// Action is one decided move. Tier, PoolID and Slot are filled per type.
type Action struct {
	Type   ActionType
	Tier   int
	PoolID string
	Slot   int
}

// Bot drives one seat of a match.
type Bot struct {
	engine  *game.Engine
	matchID string
	player  string
	logger  *zap.Logger

	// Per-turn memory of rejected moves so a rejection is not retried.
	skippedAttacks map[int]bool
	stopBuying     bool
}

// New seats a bot for the given player.
func New(engine *game.Engine, matchID, player string, logger *zap.Logger) *Bot {
	return &Bot{
		engine:  engine,
		matchID: matchID,
		player:  player,
		logger:  logger,
	}
}

// Player returns the seat this bot plays.
func (b *Bot) Player() string {
	return b.player
}

// Decide returns the bot's next move for the given snapshot, or nil when the
// match is over or the turn belongs to the opponent. Moves come in priority
// order: resolve an open draft, develop the board, spend gold, attack, and
// finally pass the turn.
func (b *Bot) Decide(view *game.MatchView) *Action {
	if view.Phase != game.MatchInProgress || view.ActivePlayer != b.player {
		return nil
	}
	you := view.You

	// 1. A selection is pending; take the biggest body.
	if view.Draft != nil && !b.stopBuying && you.HandSize < game.HandLimit {
		if pick := bestOption(view.Draft.Options); pick != "" {
			return &Action{Type: ActionSelectDraft, PoolID: pick}
		}
	}

	// 2. Put hand cards on the board, strongest first.
	if action := b.playAction(you); action != nil {
		return action
	}

	// 3. Buy back the strongest of the fallen before drafting blind. Dead
	// units return to their owner's deck, and anything that died was
	// usually bigger than a fresh low-tier draft.
	if view.Draft == nil && !b.stopBuying && you.DeckSize > 0 &&
		you.Gold >= game.DeckDrawCost && you.HandSize < game.HandLimit {
		return &Action{Type: ActionDrawDeck}
	}

	// 4. Open the deepest draft the remaining gold covers.
	if view.Draft == nil && !b.stopBuying && you.HandSize < game.HandLimit {
		if tier := affordableTier(you.Gold); tier > 0 {
			return &Action{Type: ActionStartDraft, Tier: tier}
		}
	}

	// 5. Swing with everything that is ready.
	if action := b.attackAction(you); action != nil {
		return action
	}

	return &Action{Type: ActionEndTurn}
}

// TakeTurn plays out the bot's whole turn and ends it. Rule rejections are
// not fatal: the offending move goes on the turn's skip list and deciding
// continues.
func (b *Bot) TakeTurn() error {
	b.skippedAttacks = make(map[int]bool)
	b.stopBuying = false

	for i := 0; i < maxActionsPerTurn; i++ {
		view, err := b.engine.GetMatchView(b.matchID, b.player)
		if err != nil {
			return err
		}

		action := b.Decide(view)
		if action == nil {
			return nil
		}
		err = b.apply(action)
		if action.Type == ActionEndTurn {
			return err
		}
		if err == nil {
			continue
		}
		if _, ok := game.AsRuleError(err); !ok {
			return err
		}

		b.logger.Debug("move rejected",
			zap.String("match_id", b.matchID),
			zap.String("player", b.player),
			zap.String("action", string(action.Type)),
			zap.Error(err),
		)
		switch action.Type {
		case ActionAttack:
			b.skippedAttacks[action.Slot] = true
		case ActionStartDraft, ActionSelectDraft, ActionDrawDeck:
			b.stopBuying = true
		default:
			// A rejected play means the snapshot and the rules disagree
			// about placement. Concede the rest of the turn.
			return b.endTurn()
		}
	}
	return b.endTurn()
}

func (b *Bot) apply(action *Action) error {
	var err error
	switch action.Type {
	case ActionStartDraft:
		_, err = b.engine.StartDraft(b.matchID, b.player, action.Tier)
	case ActionSelectDraft:
		_, err = b.engine.SelectDraftCard(b.matchID, b.player, action.PoolID)
	case ActionPlayCard:
		_, err = b.engine.PlayCard(b.matchID, b.player, action.PoolID, action.Slot)
	case ActionAttack:
		_, err = b.engine.Attack(b.matchID, b.player, action.Slot)
	case ActionDrawDeck:
		_, err = b.engine.DrawFromDeck(b.matchID, b.player)
	case ActionEndTurn:
		_, err = b.engine.EndTurn(b.matchID, b.player)
	}
	return err
}

func (b *Bot) endTurn() error {
	_, err := b.engine.EndTurn(b.matchID, b.player)
	return err
}

// playAction picks the strongest hand card and a slot for it. Ranged units
// go to the back row when it has room; everything else fills the front
// first so the column rules shield the back line.
func (b *Bot) playAction(you game.PlayerView) *Action {
	if len(you.Hand) == 0 {
		return nil
	}
	slot := freeSlot(you, 0)
	if slot < 0 {
		return nil
	}

	best := 0
	for i := 1; i < len(you.Hand); i++ {
		if statTotal(you.Hand[i]) > statTotal(you.Hand[best]) {
			best = i
		}
	}
	card := you.Hand[best]

	if ability.HasKeyword(card.Ability, ability.KeywordRanged) {
		if back := freeSlot(you, rowStart(false)); back >= 0 {
			slot = back
		}
	}
	return &Action{Type: ActionPlayCard, PoolID: card.PoolID, Slot: slot}
}

// attackAction finds the first unit that is ready and not on the skip list.
func (b *Bot) attackAction(you game.PlayerView) *Action {
	for slot, unit := range you.Battlefield {
		if unit == nil || b.skippedAttacks[slot] {
			continue
		}
		if !unit.CanAttack || unit.HasAttacked {
			continue
		}
		if ability.CannotAttack(unit.Ability) {
			continue
		}
		return &Action{Type: ActionAttack, Slot: slot}
	}
	return nil
}

// bestOption returns the pool ID of the biggest body among the options.
func bestOption(options []game.CardView) string {
	poolID := ""
	best := -1
	for _, option := range options {
		if total := statTotal(option); total > best {
			best = total
			poolID = option.PoolID
		}
	}
	return poolID
}

// affordableTier is the deepest tier the gold covers, or zero.
func affordableTier(gold int) int {
	for tier := game.MaxTier; tier >= 1; tier-- {
		if game.DraftCost(tier) <= gold {
			return tier
		}
	}
	return 0
}

func statTotal(card game.CardView) int {
	return card.Attack + card.Health
}

func rowStart(front bool) int {
	if front {
		return 0
	}
	return game.BattlefieldSlots / 2
}

// freeSlot returns the first empty slot at or after from, front to back.
func freeSlot(you game.PlayerView, from int) int {
	for slot := from; slot < len(you.Battlefield); slot++ {
		if you.Battlefield[slot] == nil {
			return slot
		}
	}
	return -1
}
