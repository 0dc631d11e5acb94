package bot

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/game"
)

// PlayMatch starts a match between two bot-driven seats and plays it until
// someone wins or turnLimit full turns have passed. The returned winner is
// empty when the limit cut the match short.
func PlayMatch(engine *game.Engine, matchID, seatA, seatB string, turnLimit int, logger *zap.Logger) (string, int, error) {
	if err := engine.StartMatch(matchID, []string{seatA, seatB}); err != nil {
		return "", 0, err
	}
	bots := map[string]*Bot{
		seatA: New(engine, matchID, seatA, logger),
		seatB: New(engine, matchID, seatB, logger),
	}

	for turn := 0; turn < turnLimit; turn++ {
		view, err := engine.GetMatchView(matchID, seatA)
		if err != nil {
			return "", turn, err
		}
		if view.Phase == game.MatchFinished {
			return view.Winner, turn, nil
		}
		active, ok := bots[view.ActivePlayer]
		if !ok {
			return "", turn, fmt.Errorf("no bot seated for active player %q", view.ActivePlayer)
		}
		if err := active.TakeTurn(); err != nil {
			return "", turn, fmt.Errorf("turn %d (%s): %w", turn, view.ActivePlayer, err)
		}
	}
	return "", turnLimit, nil
}
