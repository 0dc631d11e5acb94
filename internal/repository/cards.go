package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gridspire/arena-server-go/internal/game"
)

const queryTimeout = 5 * time.Second

// CardRepository serves card templates from the cards table and satisfies
// game.CardSource. Tier loads are cached after the first hit; concurrent
// first hits on the same tier collapse into a single query.
type CardRepository struct {
	db     *DB
	logger *zap.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[int][]game.Card
}

// NewCardRepository builds a repository over an open database handle.
func NewCardRepository(db *DB, logger *zap.Logger) *CardRepository {
	return &CardRepository{
		db:     db,
		logger: logger,
		cache:  make(map[int][]game.Card),
	}
}

// CardsForTier returns the tier's pool contents, each template repeated by
// its copies column. Callers own the returned slice.
func (r *CardRepository) CardsForTier(tier int) ([]game.Card, error) {
	r.mu.RLock()
	cached, ok := r.cache[tier]
	r.mu.RUnlock()
	if ok {
		return cloneCards(cached), nil
	}

	v, err, _ := r.group.Do(strconv.Itoa(tier), func() (any, error) {
		cards, err := r.queryTier(tier)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[tier] = cards
		r.mu.Unlock()
		return cards, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneCards(v.([]game.Card)), nil
}

// Invalidate drops the tier cache so the next load hits the database again.
// The import tooling calls this after rewriting the cards table.
func (r *CardRepository) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[int][]game.Card)
	r.mu.Unlock()
}

func (r *CardRepository) queryTier(tier int) ([]game.Card, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, tier, attack, health, color, tags, ability, copies
		FROM cards
		WHERE tier = $1
		ORDER BY id
	`, tier)
	if err != nil {
		return nil, fmt.Errorf("query tier %d: %w", tier, err)
	}
	defer rows.Close()

	var cards []game.Card
	for rows.Next() {
		var (
			card   game.Card
			color  string
			copies int
		)
		if err := rows.Scan(
			&card.ID, &card.Name, &card.Tier, &card.Attack, &card.Health,
			&color, &card.Tags, &card.Ability, &copies,
		); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		card.Color = game.Color(color)
		if copies < 1 {
			copies = 1
		}
		for i := 0; i < copies; i++ {
			cards = append(cards, card)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tier %d: %w", tier, err)
	}

	if r.logger != nil {
		r.logger.Debug("tier loaded from database",
			zap.Int("tier", tier),
			zap.Int("pool_size", len(cards)),
		)
	}
	return cards, nil
}

func cloneCards(cards []game.Card) []game.Card {
	out := make([]game.Card, len(cards))
	copy(out, cards)
	return out
}
