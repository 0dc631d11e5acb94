package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/gridspire/arena-server-go/internal/config"
	"github.com/gridspire/arena-server-go/internal/game"
)

// Tests in this file need a reachable PostgreSQL instance and skip without
// one. Point DATABASE_URL at a scratch database before running them.
func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{
		URL:            url,
		MaxConns:       4,
		MinConns:       1,
		ConnectTimeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool().Exec(ctx, `DELETE FROM cards WHERE id LIKE 'repo-test-%'`)
	require.NoError(t, err)
	return db
}

func seedCard(t *testing.T, db *DB, id string, tier, copies int) {
	t.Helper()
	_, err := db.Pool().Exec(context.Background(), `
		INSERT INTO cards (id, name, tier, attack, health, color, tags, ability, copies)
		VALUES ($1, $2, $3, 2, 2, 'red', '{Goblin}', '', $4)
	`, id, "Repo Test "+id, tier, copies)
	require.NoError(t, err)
}

func TestCardsForTierExpandsCopiesColumn(t *testing.T) {
	db := testDB(t)
	seedCard(t, db, "repo-test-double", 1, 2)
	seedCard(t, db, "repo-test-single", 1, 1)

	repo := NewCardRepository(db, zaptest.NewLogger(t))
	pool, err := repo.CardsForTier(1)
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, card := range pool {
		counts[card.ID]++
		if card.ID == "repo-test-double" {
			assert.Equal(t, 1, card.Tier)
			assert.Equal(t, game.ColorRed, card.Color)
			assert.Equal(t, []string{"Goblin"}, card.Tags)
		}
	}
	assert.Equal(t, 2, counts["repo-test-double"])
	assert.Equal(t, 1, counts["repo-test-single"])
}

func TestCardsForTierCachesUntilInvalidated(t *testing.T) {
	db := testDB(t)
	seedCard(t, db, "repo-test-cached", 2, 1)

	repo := NewCardRepository(db, zaptest.NewLogger(t))
	first, err := repo.CardsForTier(2)
	require.NoError(t, err)

	seedCard(t, db, "repo-test-late", 2, 1)

	second, err := repo.CardsForTier(2)
	require.NoError(t, err)
	assert.Len(t, second, len(first), "cached tier must not see new rows")

	repo.Invalidate()
	third, err := repo.CardsForTier(2)
	require.NoError(t, err)
	assert.Len(t, third, len(first)+1)
}

func TestCardsForTierConcurrentLoads(t *testing.T) {
	db := testDB(t)
	seedCard(t, db, "repo-test-racy", 3, 3)

	repo := NewCardRepository(db, zaptest.NewLogger(t))

	var g errgroup.Group
	results := make([][]game.Card, 8)
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			pool, err := repo.CardsForTier(3)
			if err != nil {
				return err
			}
			results[i] = pool
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i := 1; i < len(results); i++ {
		assert.Len(t, results[i], len(results[0]))
	}
}
