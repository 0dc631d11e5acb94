package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/catalog"
	"github.com/gridspire/arena-server-go/internal/game"
)

func testBot() *Bot {
	return New(nil, "m", "botA", zap.NewNop())
}

func baseView() *game.MatchView {
	return &game.MatchView{
		MatchID:      "m",
		Phase:        game.MatchInProgress,
		ActivePlayer: "botA",
		You: game.PlayerView{
			ID:          "botA",
			Health:      20,
			Battlefield: make([]*game.UnitView, game.BattlefieldSlots),
		},
	}
}

func TestDecideIdlesWhenNotActive(t *testing.T) {
	b := testBot()

	view := baseView()
	view.ActivePlayer = "botB"
	assert.Nil(t, b.Decide(view))

	view = baseView()
	view.Phase = game.MatchFinished
	assert.Nil(t, b.Decide(view))
}

func TestDecideSelectsBiggestDraftOption(t *testing.T) {
	b := testBot()
	view := baseView()
	view.Draft = &game.DraftView{
		Tier: 1,
		Options: []game.CardView{
			{PoolID: "a", Attack: 2, Health: 1},
			{PoolID: "b", Attack: 3, Health: 3},
			{PoolID: "c", Attack: 1, Health: 1},
		},
	}

	action := b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionSelectDraft, action.Type)
	assert.Equal(t, "b", action.PoolID)
}

func TestDecidePlaysStrongestCardFirst(t *testing.T) {
	b := testBot()
	view := baseView()
	view.You.Hand = []game.CardView{
		{PoolID: "weak", Attack: 2, Health: 1},
		{PoolID: "strong", Attack: 3, Health: 4},
	}
	view.You.HandSize = 2

	action := b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionPlayCard, action.Type)
	assert.Equal(t, "strong", action.PoolID)
	assert.Equal(t, 0, action.Slot)
}

func TestDecideSendsRangedToBackRow(t *testing.T) {
	b := testBot()
	view := baseView()
	view.You.Hand = []game.CardView{{PoolID: "archer", Attack: 2, Health: 2, Ability: "Ranged."}}
	view.You.HandSize = 1

	action := b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionPlayCard, action.Type)
	assert.Equal(t, 3, action.Slot)

	// Back row full: the archer settles for the front.
	for slot := 3; slot < game.BattlefieldSlots; slot++ {
		view.You.Battlefield[slot] = &game.UnitView{Slot: slot}
	}
	action = b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, 0, action.Slot)
}

func TestDecideBuysBackBeforeDrafting(t *testing.T) {
	b := testBot()
	view := baseView()
	view.You.Gold = 5
	view.You.DeckSize = 2

	action := b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionDrawDeck, action.Type)

	view.You.DeckSize = 0
	action = b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionStartDraft, action.Type)
	assert.Equal(t, 2, action.Tier, "5 gold covers a tier 2 draft but not tier 3")
}

func TestDecideDraftTierScalesWithGold(t *testing.T) {
	b := testBot()
	cases := []struct {
		gold int
		tier int
	}{
		{gold: 2, tier: 1},
		{gold: 4, tier: 2},
		{gold: 10, tier: game.MaxTier},
	}
	for _, tc := range cases {
		view := baseView()
		view.You.Gold = tc.gold
		action := b.Decide(view)
		require.NotNil(t, action)
		assert.Equal(t, ActionStartDraft, action.Type, "gold %d", tc.gold)
		assert.Equal(t, tc.tier, action.Tier, "gold %d", tc.gold)
	}

	view := baseView()
	view.You.Gold = 1
	action := b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionEndTurn, action.Type, "1 gold affords nothing")
}

func TestDecideAttacksOnlyReadyUnits(t *testing.T) {
	b := testBot()
	b.skippedAttacks = map[int]bool{}

	view := baseView()
	view.You.Battlefield[1] = &game.UnitView{Slot: 1, Name: "Raider", CanAttack: true}
	action := b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionAttack, action.Type)
	assert.Equal(t, 1, action.Slot)

	view.You.Battlefield[1].HasAttacked = true
	action = b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionEndTurn, action.Type)

	view.You.Battlefield[1] = &game.UnitView{Slot: 1, Name: "Wall", CanAttack: true, Ability: "Can't attack."}
	action = b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionEndTurn, action.Type)

	view.You.Battlefield[1] = &game.UnitView{Slot: 1, Name: "Sleeper", CanAttack: false}
	action = b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionEndTurn, action.Type)
}

func TestDecideStopsBuyingAtHandLimit(t *testing.T) {
	b := testBot()
	view := baseView()
	view.You.Gold = 10
	view.You.DeckSize = 3
	view.You.HandSize = game.HandLimit

	action := b.Decide(view)
	require.NotNil(t, action)
	assert.Equal(t, ActionEndTurn, action.Type)
}

func TestTakeTurnDevelopsTheBoard(t *testing.T) {
	logger := zap.NewNop()
	engine := game.NewEngine(logger, catalog.Default())
	engine.SetSeed(11)
	require.NoError(t, engine.StartMatch("bot-turn", []string{"botA", "botB"}))

	b := New(engine, "bot-turn", "botA", logger)
	require.NoError(t, b.TakeTurn())

	view, err := engine.GetMatchView("bot-turn", "botA")
	require.NoError(t, err)
	assert.Equal(t, "botB", view.ActivePlayer)
	assert.Equal(t, 1, view.You.Gold, "3 starting gold minus a tier 1 draft")
	assert.Equal(t, 0, view.You.HandSize, "the drafted card should be on the board")

	units := 0
	for _, unit := range view.You.Battlefield {
		if unit != nil {
			units++
		}
	}
	assert.Equal(t, 1, units)
}

func TestBotsPlayMatchToCompletion(t *testing.T) {
	logger := zap.NewNop()
	engine := game.NewEngine(logger, catalog.Default())
	engine.SetSeed(99)

	winner, turns, err := PlayMatch(engine, "bot-duel", "botA", "botB", 400, logger)
	require.NoError(t, err)
	require.NotEmpty(t, winner, "match did not finish within 400 turns")
	assert.Contains(t, []string{"botA", "botB"}, winner)
	assert.Greater(t, turns, 1)

	view, err := engine.GetMatchView("bot-duel", "botA")
	require.NoError(t, err)
	assert.Equal(t, game.MatchFinished, view.Phase)
	assert.Equal(t, winner, view.Winner)
}
