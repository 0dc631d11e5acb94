package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gridspire/arena-server-go/internal/bot"
	"github.com/gridspire/arena-server-go/internal/catalog"
	"github.com/gridspire/arena-server-go/internal/game"
	"github.com/gridspire/arena-server-go/internal/tournament"
)

func TestSeededDuelsReplayIdentically(t *testing.T) {
	run := func() (string, int) {
		engine := game.NewEngine(zaptest.NewLogger(t), catalog.Default())
		engine.SetSeed(1234)
		winner, turns, err := bot.PlayMatch(engine, "replay", "botA", "botB", 400, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotEmpty(t, winner)
		return winner, turns
	}

	winner1, turns1 := run()
	winner2, turns2 := run()
	assert.Equal(t, winner1, winner2)
	assert.Equal(t, turns1, turns2)
}

func TestSeriesPlaysOnTheLiveEngine(t *testing.T) {
	env := newArenaEnv(t)
	mgr := tournament.NewManager(env.engine, env.logger)

	series, err := mgr.CreateSeries("exhibition", "botA", "botB", tournament.SeriesOptions{NumGames: 2, BaseSeed: 77})
	require.NoError(t, err)

	snap, err := mgr.PlaySeries(context.Background(), series.ID)
	require.NoError(t, err)
	require.Equal(t, tournament.SeriesStateFinished, snap.State)
	require.Len(t, snap.Games, 2)

	// Series games are ordinary engine matches, visible to the HTTP API.
	var list struct {
		Matches []string `json:"matches"`
	}
	require.Equal(t, http.StatusOK, env.getJSON(t, "/api/v1/matches", &list))

	decisive := 0
	for _, g := range snap.Games {
		assert.Contains(t, list.Matches, g.MatchID)
		if g.Winner == "" {
			continue
		}
		decisive++

		var view game.MatchView
		status := env.getJSON(t, "/api/v1/matches/"+g.MatchID+"?player_id=botA", &view)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, game.MatchFinished, view.Phase)
		assert.Equal(t, g.Winner, view.Winner)
	}
	assert.Positive(t, decisive)
}
