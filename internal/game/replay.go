package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReplayActionKind names one recorded player action.
type ReplayActionKind string

const (
	ReplayStartDraft  ReplayActionKind = "START_DRAFT"
	ReplayRerollDraft ReplayActionKind = "REROLL_DRAFT"
	ReplaySelectDraft ReplayActionKind = "SELECT_DRAFT"
	ReplayPlayCard    ReplayActionKind = "PLAY_CARD"
	ReplayAttack      ReplayActionKind = "ATTACK"
	ReplayDrawDeck    ReplayActionKind = "DRAW_DECK"
	ReplayEndTurn     ReplayActionKind = "END_TURN"
	ReplayConcede     ReplayActionKind = "CONCEDE"
)

// ReplayAction is one accepted operation. Draft picks and card plays are
// recorded by position rather than pool ID: pool IDs are minted fresh every
// run, while option and hand order replay identically under the recorded
// seed.
type ReplayAction struct {
	Kind      ReplayActionKind
	Player    string
	Tier      int
	Index     int
	Slot      int
	Timestamp time.Time
}

// Replay holds everything needed to re-run a match from scratch: the
// effective seed, the seating order and the accepted actions in order.
type Replay struct {
	MatchID string
	Seed    int64
	Players []string
	Actions []ReplayAction

	mu sync.RWMutex
}

// NewReplay creates an empty replay for a match.
func NewReplay(matchID string) *Replay {
	return &Replay{
		MatchID: matchID,
		Actions: make([]ReplayAction, 0),
	}
}

func (r *Replay) setStart(seed int64, players []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Seed = seed
	r.Players = append([]string(nil), players...)
}

func (r *Replay) append(action ReplayAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Actions = append(r.Actions, action)
}

// Size returns the number of recorded actions.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Actions)
}

// ActionLog returns a copy of the recorded actions.
func (r *Replay) ActionLog() []ReplayAction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ReplayAction(nil), r.Actions...)
}

// Apply re-runs the recording as a new match on the given engine. It pins
// the engine seed to the recorded one, so the target should be a dedicated
// engine rather than one hosting live matches.
func (r *Replay) Apply(engine *Engine, matchID string) error {
	r.mu.RLock()
	seed := r.Seed
	players := append([]string(nil), r.Players...)
	actions := append([]ReplayAction(nil), r.Actions...)
	r.mu.RUnlock()

	if len(players) != 2 {
		return fmt.Errorf("replay of %s has no seats recorded", r.MatchID)
	}

	engine.SetSeed(seed)
	if err := engine.StartMatch(matchID, players); err != nil {
		return fmt.Errorf("restarting match: %w", err)
	}

	for i, action := range actions {
		if err := applyReplayAction(engine, matchID, action); err != nil {
			return fmt.Errorf("action %d (%s by %s): %w", i, action.Kind, action.Player, err)
		}
	}
	return nil
}

// applyReplayAction re-issues one recorded action, translating recorded
// positions back into the pool IDs the target match minted.
func applyReplayAction(engine *Engine, matchID string, action ReplayAction) error {
	switch action.Kind {
	case ReplayStartDraft:
		_, err := engine.StartDraft(matchID, action.Player, action.Tier)
		return err
	case ReplayRerollDraft:
		_, err := engine.RerollDraft(matchID, action.Player, action.Tier)
		return err
	case ReplaySelectDraft:
		view, err := engine.GetMatchView(matchID, action.Player)
		if err != nil {
			return err
		}
		if view.Draft == nil || action.Index < 0 || action.Index >= len(view.Draft.Options) {
			return fmt.Errorf("draft option %d is not on offer", action.Index)
		}
		_, err = engine.SelectDraftCard(matchID, action.Player, view.Draft.Options[action.Index].PoolID)
		return err
	case ReplayPlayCard:
		view, err := engine.GetMatchView(matchID, action.Player)
		if err != nil {
			return err
		}
		if action.Index < 0 || action.Index >= len(view.You.Hand) {
			return fmt.Errorf("hand position %d is empty", action.Index)
		}
		_, err = engine.PlayCard(matchID, action.Player, view.You.Hand[action.Index].PoolID, action.Slot)
		return err
	case ReplayAttack:
		_, err := engine.Attack(matchID, action.Player, action.Slot)
		return err
	case ReplayDrawDeck:
		_, err := engine.DrawFromDeck(matchID, action.Player)
		return err
	case ReplayEndTurn:
		_, err := engine.EndTurn(matchID, action.Player)
		return err
	case ReplayConcede:
		return engine.PlayerConcede(matchID, action.Player)
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
}

// SaveToFile writes the replay to directory/<matchID>.replay as gzipped gob.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("creating replay directory: %w", err)
	}

	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", r.MatchID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating replay file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := gob.NewEncoder(gzipWriter)

	metadata := replayMetadata{
		MatchID:     r.MatchID,
		Timestamp:   time.Now(),
		Version:     1,
		Seed:        r.Seed,
		Players:     append([]string(nil), r.Players...),
		ActionCount: len(r.Actions),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	for i := range r.Actions {
		if err := encoder.Encode(&r.Actions[i]); err != nil {
			return fmt.Errorf("encoding action %d: %w", i, err)
		}
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, matchID string) (*Replay, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", matchID))

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening replay file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("reading gzip header: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if metadata.Version != 1 {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.MatchID)
	replay.Seed = metadata.Seed
	replay.Players = metadata.Players

	for i := 0; i < metadata.ActionCount; i++ {
		var action ReplayAction
		if err := decoder.Decode(&action); err != nil {
			return nil, fmt.Errorf("decoding action %d: %w", i, err)
		}
		replay.Actions = append(replay.Actions, action)
	}
	return replay, nil
}

// replayMetadata heads a saved replay file.
type replayMetadata struct {
	MatchID     string
	Timestamp   time.Time
	Version     int
	Seed        int64
	Players     []string
	ActionCount int
}

// ReplayRecorder collects per-match replays as the engine accepts actions.
// Recording is opt-in per match and must be started before the match is.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
	saveDir string
}

// NewReplayRecorder creates a recorder saving to saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
		saveDir: saveDir,
	}
}

// StartRecording begins recording a match.
func (rr *ReplayRecorder) StartRecording(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[matchID] = NewReplay(matchID)
	rr.enabled[matchID] = true

	if rr.logger != nil {
		rr.logger.Info("started replay recording",
			zap.String("match_id", matchID),
		)
	}
}

// StopRecording stops recording a match. The collected replay stays
// available until cleared.
func (rr *ReplayRecorder) StopRecording(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[matchID] = false

	if rr.logger != nil {
		rr.logger.Info("stopped replay recording",
			zap.String("match_id", matchID),
		)
	}
}

// IsRecording reports whether the match is being recorded.
func (rr *ReplayRecorder) IsRecording(matchID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return rr.enabled[matchID]
}

// GetReplay returns the replay collected for a match.
func (rr *ReplayRecorder) GetReplay(matchID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	replay, ok := rr.replays[matchID]
	return replay, ok
}

// SaveReplay writes a match's replay to the save directory and drops it
// from memory.
func (rr *ReplayRecorder) SaveReplay(matchID string) error {
	rr.mu.Lock()
	replay, ok := rr.replays[matchID]
	if ok {
		delete(rr.replays, matchID)
		delete(rr.enabled, matchID)
	}
	rr.mu.Unlock()

	if !ok {
		return fmt.Errorf("no replay recorded for match %s", matchID)
	}
	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("saving replay: %w", err)
	}

	if rr.logger != nil {
		rr.logger.Info("saved replay",
			zap.String("match_id", matchID),
			zap.Int("actions", replay.Size()),
		)
	}
	return nil
}

// LoadReplay reads a previously saved replay from the save directory.
func (rr *ReplayRecorder) LoadReplay(matchID string) (*Replay, error) {
	return LoadReplayFromFile(rr.saveDir, matchID)
}

// ClearReplay discards a match's in-memory replay.
func (rr *ReplayRecorder) ClearReplay(matchID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	delete(rr.replays, matchID)
	delete(rr.enabled, matchID)
}

// recordStart captures the seating and effective seed of a started match.
func (rr *ReplayRecorder) recordStart(matchID string, seed int64, players []string) {
	rr.mu.RLock()
	enabled := rr.enabled[matchID]
	replay := rr.replays[matchID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}
	replay.setStart(seed, players)
}

// record appends an accepted action to the match's replay.
func (rr *ReplayRecorder) record(matchID string, action ReplayAction) {
	rr.mu.RLock()
	enabled := rr.enabled[matchID]
	replay := rr.replays[matchID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}
	replay.append(action)
}
