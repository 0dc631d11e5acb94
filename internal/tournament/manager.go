package tournament

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/bot"
	"github.com/gridspire/arena-server-go/internal/game"
)

// SeriesState represents the lifecycle of a series
type SeriesState int

const (
	SeriesStateWaiting SeriesState = iota
	SeriesStateInProgress
	SeriesStateFinished
)

func (s SeriesState) String() string {
	switch s {
	case SeriesStateWaiting:
		return "WAITING"
	case SeriesStateInProgress:
		return "IN_PROGRESS"
	case SeriesStateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

const (
	pointsPerWin  = 3
	pointsPerDraw = 1
)

const (
	defaultNumGames  = 3
	defaultTurnLimit = 400
)

// Standing tracks one seat's record across a series
type Standing struct {
	Name   string
	Points int
	Wins   int
	Losses int
	Draws  int
}

// Game records a single match inside a series
type Game struct {
	Number  int
	MatchID string
	Winner  string // empty when the turn limit forced a draw
	Turns   int
	Played  bool
}

// StandingSnapshot is an immutable copy of a seat's record
type StandingSnapshot struct {
	Name   string
	Points int
	Wins   int
	Losses int
	Draws  int
}

// GameSnapshot is an immutable copy of a scored game
type GameSnapshot struct {
	Number  int
	MatchID string
	Winner  string
	Turns   int
	Played  bool
}

// SeriesSnapshot is a consistent copy of a series
type SeriesSnapshot struct {
	ID           string
	Name         string
	State        SeriesState
	Seats        []StandingSnapshot
	Games        []GameSnapshot
	NumGames     int
	WinsRequired int
	TurnLimit    int
	BaseSeed     int64
	Winner       string
	CreateTime   time.Time
	StartTime    *time.Time
	EndTime      *time.Time
}

// SeriesOptions tunes how many games a series schedules and how each runs.
// Zero values fall back to defaults where one exists.
type SeriesOptions struct {
	NumGames     int   // games to schedule; defaults to 3
	WinsRequired int   // wins that end the series early; 0 plays every game
	TurnLimit    int   // turns before a game is scored as a draw; defaults to 400
	BaseSeed     int64 // game n plays with BaseSeed+n-1; 0 leaves the engine clock-seeded
}

// Series is a fixed-length run of matches between two bot-driven seats
type Series struct {
	ID           string
	Name         string
	State        SeriesState
	Seats        map[string]*Standing
	SeatOrder    []string
	Games        []*Game
	NumGames     int
	WinsRequired int
	TurnLimit    int
	BaseSeed     int64
	CreateTime   time.Time
	StartTime    *time.Time
	EndTime      *time.Time
	Winner       string
	mu           sync.RWMutex
}

// NewSeries schedules a series between two seats
func NewSeries(name, seatA, seatB string, opts SeriesOptions) (*Series, error) {
	if seatA == "" || seatB == "" || seatA == seatB {
		return nil, fmt.Errorf("a series needs two distinct seats, got %q and %q", seatA, seatB)
	}

	numGames := opts.NumGames
	if numGames < 1 {
		numGames = defaultNumGames
	}
	turnLimit := opts.TurnLimit
	if turnLimit < 1 {
		turnLimit = defaultTurnLimit
	}
	if opts.WinsRequired > numGames {
		return nil, fmt.Errorf("wins required (%d) cannot exceed the %d scheduled games", opts.WinsRequired, numGames)
	}

	return &Series{
		ID:    uuid.New().String(),
		Name:  name,
		State: SeriesStateWaiting,
		Seats: map[string]*Standing{
			seatA: {Name: seatA},
			seatB: {Name: seatB},
		},
		SeatOrder:    []string{seatA, seatB},
		Games:        make([]*Game, 0, numGames),
		NumGames:     numGames,
		WinsRequired: opts.WinsRequired,
		TurnLimit:    turnLimit,
		BaseSeed:     opts.BaseSeed,
		CreateTime:   time.Now(),
	}, nil
}

// Play runs the scheduled games against the engine, both seats driven by the
// scripted bot. It blocks until the series ends, stopping early once a seat
// reaches WinsRequired. A canceled context abandons the series mid-run.
func (s *Series) Play(ctx context.Context, engine *game.Engine, logger *zap.Logger) error {
	if err := s.begin(); err != nil {
		return err
	}

	for n := 1; n <= s.NumGames; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.BaseSeed != 0 {
			engine.SetSeed(s.BaseSeed + int64(n-1))
		}

		// The opening seat alternates between games.
		first, second := s.SeatOrder[0], s.SeatOrder[1]
		if n%2 == 0 {
			first, second = second, first
		}

		matchID := fmt.Sprintf("%s-g%d", s.ID, n)
		winner, turns, err := bot.PlayMatch(engine, matchID, first, second, s.TurnLimit, logger)
		if err != nil {
			return fmt.Errorf("game %d: %w", n, err)
		}

		s.record(n, matchID, winner, turns)
		logger.Info("series game finished",
			zap.String("series_id", s.ID),
			zap.Int("game", n),
			zap.String("winner", winner),
			zap.Int("turns", turns),
		)

		if s.clinched() {
			break
		}
	}

	s.finish()
	return nil
}

func (s *Series) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != SeriesStateWaiting {
		return fmt.Errorf("series already started")
	}

	now := time.Now()
	s.StartTime = &now
	s.State = SeriesStateInProgress
	return nil
}

// record scores one finished game. An empty winner counts as a draw for
// both seats.
func (s *Series) record(number int, matchID, winner string, turns int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Games = append(s.Games, &Game{
		Number:  number,
		MatchID: matchID,
		Winner:  winner,
		Turns:   turns,
		Played:  true,
	})

	if winner == "" {
		for _, standing := range s.Seats {
			standing.Draws++
			standing.Points += pointsPerDraw
		}
		return
	}

	for name, standing := range s.Seats {
		if name == winner {
			standing.Wins++
			standing.Points += pointsPerWin
		} else {
			standing.Losses++
		}
	}
}

// clinched reports whether a seat has already locked the series
func (s *Series) clinched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.WinsRequired < 1 {
		return false
	}
	for _, standing := range s.Seats {
		if standing.Wins >= s.WinsRequired {
			return true
		}
	}
	return false
}

// finish closes the series and names the seat with the higher point total.
// Equal points leave the winner empty.
func (s *Series) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.Seats[s.SeatOrder[0]]
	b := s.Seats[s.SeatOrder[1]]
	switch {
	case a.Points > b.Points:
		s.Winner = a.Name
	case b.Points > a.Points:
		s.Winner = b.Name
	}

	s.State = SeriesStateFinished
	now := time.Now()
	s.EndTime = &now
}

// GetState returns the current series state
func (s *Series) GetState() SeriesState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State
}

// GamesPlayed returns how many games have been scored so far
func (s *Series) GamesPlayed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Games)
}

// GetStandings returns both seats' records in seat order
func (s *Series) GetStandings() []Standing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	standings := make([]Standing, 0, len(s.SeatOrder))
	for _, name := range s.SeatOrder {
		if standing, ok := s.Seats[name]; ok {
			standings = append(standings, *standing)
		}
	}
	return standings
}

// Snapshot returns a consistent copy of the series state.
func (s *Series) Snapshot() SeriesSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seats := make([]StandingSnapshot, 0, len(s.SeatOrder))
	for _, name := range s.SeatOrder {
		if standing, ok := s.Seats[name]; ok {
			seats = append(seats, StandingSnapshot{
				Name:   standing.Name,
				Points: standing.Points,
				Wins:   standing.Wins,
				Losses: standing.Losses,
				Draws:  standing.Draws,
			})
		}
	}

	games := make([]GameSnapshot, 0, len(s.Games))
	for _, g := range s.Games {
		games = append(games, GameSnapshot{
			Number:  g.Number,
			MatchID: g.MatchID,
			Winner:  g.Winner,
			Turns:   g.Turns,
			Played:  g.Played,
		})
	}

	return SeriesSnapshot{
		ID:           s.ID,
		Name:         s.Name,
		State:        s.State,
		Seats:        seats,
		Games:        games,
		NumGames:     s.NumGames,
		WinsRequired: s.WinsRequired,
		TurnLimit:    s.TurnLimit,
		BaseSeed:     s.BaseSeed,
		Winner:       s.Winner,
		CreateTime:   s.CreateTime,
		StartTime:    cloneTime(s.StartTime),
		EndTime:      cloneTime(s.EndTime),
	}
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	cp := *src
	return &cp
}

// Manager creates series and plays them against a shared engine
type Manager struct {
	engine *game.Engine
	series map[string]*Series
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewManager creates a new series manager
func NewManager(engine *game.Engine, logger *zap.Logger) *Manager {
	return &Manager{
		engine: engine,
		series: make(map[string]*Series),
		logger: logger,
	}
}

// CreateSeries schedules a new series between two seats
func (m *Manager) CreateSeries(name, seatA, seatB string, opts SeriesOptions) (*Series, error) {
	series, err := NewSeries(name, seatA, seatB, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.series[series.ID] = series
	m.mu.Unlock()

	m.logger.Info("series created",
		zap.String("series_id", series.ID),
		zap.String("name", name),
		zap.String("seat_a", seatA),
		zap.String("seat_b", seatB),
		zap.Int("games", series.NumGames),
	)

	return series, nil
}

// PlaySeries runs a series to completion and returns its final snapshot
func (m *Manager) PlaySeries(ctx context.Context, seriesID string) (SeriesSnapshot, error) {
	series, ok := m.GetSeries(seriesID)
	if !ok {
		return SeriesSnapshot{}, fmt.Errorf("series %s not found", seriesID)
	}

	if err := series.Play(ctx, m.engine, m.logger); err != nil {
		return SeriesSnapshot{}, err
	}

	snap := series.Snapshot()
	m.logger.Info("series finished",
		zap.String("series_id", snap.ID),
		zap.String("winner", snap.Winner),
		zap.Int("games_played", len(snap.Games)),
	)
	return snap, nil
}

// GetSeries retrieves a series by ID
func (m *Manager) GetSeries(seriesID string) (*Series, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series, ok := m.series[seriesID]
	return series, ok
}

// RemoveSeries removes a series
func (m *Manager) RemoveSeries(seriesID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.series, seriesID)

	m.logger.Info("series removed", zap.String("series_id", seriesID))
}

// ListSeries returns all tracked series
func (m *Manager) ListSeries() []*Series {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*Series, 0, len(m.series))
	for _, series := range m.series {
		all = append(all, series)
	}
	return all
}

// ActiveSeriesCount returns the count of series still waiting or running
func (m *Manager) ActiveSeriesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, series := range m.series {
		if series.GetState() != SeriesStateFinished {
			count++
		}
	}
	return count
}
