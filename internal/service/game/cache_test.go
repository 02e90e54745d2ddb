package game

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
	sets    int
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	switch v := value.(type) {
	case []byte:
		c.entries[key] = string(v)
	case string:
		c.entries[key] = v
	}
	return nil
}

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return "", errors.New("cache down")
	}
	return c.entries[key], nil
}

func (c *mapCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *mapCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.entries[key], 10, 64)
	n++
	c.entries[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *mapCache) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// writeDuringRead runs write once, right after the store answers a report
// query and before the service caches the answer.
type writeDuringRead struct {
	*memory.GameRepo
	write func()
}

func (w *writeDuringRead) fire() {
	if w.write != nil {
		fn := w.write
		w.write = nil
		fn()
	}
}

func (w *writeDuringRead) CountByStatus(ctx context.Context, userID string) (domain.StatusDistribution, error) {
	counts, err := w.GameRepo.CountByStatus(ctx, userID)
	w.fire()
	return counts, err
}

func (w *writeDuringRead) FindRecent(ctx context.Context, filter domain.GameFilter, limit int) ([]domain.Game, error) {
	games, err := w.GameRepo.FindRecent(ctx, filter, limit)
	w.fire()
	return games, err
}

func newCachedService(cache CacheRepository) (*Service, *memory.GameRepo) {
	games := memory.NewGameRepo()
	svc := NewService(games, memory.NewUserRepo(), cache, time.Minute, quietLogger())
	return svc, games
}

func newGame(userID string) domain.GameInput {
	return domain.GameInput{Nome: "n", Description: "d", Image: "i", UserID: userID}
}

func TestStatusDistributionIsCachedAndInvalidated(t *testing.T) {
	cache := newMapCache()
	svc, _ := newCachedService(cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, newGame("u1"))
	require.NoError(t, err)

	dist, err := svc.GetStatusDistribution(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, dist[domain.StatusPendente])

	again, err := svc.GetStatusDistribution(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, dist, again)
	assert.Equal(t, 1, cache.setCount())

	_, err = svc.Create(ctx, newGame("u1"))
	require.NoError(t, err)

	dist, err = svc.GetStatusDistribution(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, dist[domain.StatusPendente])
	assert.Equal(t, 2, cache.setCount())
}

func TestStatusDistributionWriteDuringRead(t *testing.T) {
	cache := newMapCache()
	games := &writeDuringRead{GameRepo: memory.NewGameRepo()}
	svc := NewService(games, memory.NewUserRepo(), cache, time.Minute, quietLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, newGame("u1"))
	require.NoError(t, err)

	games.write = func() {
		_, err := svc.Create(ctx, newGame("u1"))
		require.NoError(t, err)
	}
	dist, err := svc.GetStatusDistribution(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, dist[domain.StatusPendente])

	dist, err = svc.GetStatusDistribution(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, dist[domain.StatusPendente])
}

func TestRecentWriteDuringRead(t *testing.T) {
	cache := newMapCache()
	games := &writeDuringRead{GameRepo: memory.NewGameRepo()}
	svc := NewService(games, memory.NewUserRepo(), cache, time.Minute, quietLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, newGame("u1"))
	require.NoError(t, err)

	games.write = func() {
		_, err := svc.Create(ctx, newGame("u2"))
		require.NoError(t, err)
	}
	recent, err := svc.GetRecentlyUpdated(ctx)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	recent, err = svc.GetRecentlyUpdated(ctx)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestRecentIsCachedWithUnknownOwner(t *testing.T) {
	cache := newMapCache()
	svc, _ := newCachedService(cache)
	ctx := context.Background()

	g, err := svc.Create(ctx, newGame("ghost"))
	require.NoError(t, err)

	first, err := svc.GetRecentlyUpdated(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cache.setCount())

	second, err := svc.GetRecentlyUpdated(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.False(t, second[0].User.Known())
	assert.Equal(t, 1, cache.setCount())

	_, err = svc.Remove(ctx, g.ID)
	require.NoError(t, err)

	after, err := svc.GetRecentlyUpdated(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestUpdateInvalidatesPreviousOwner(t *testing.T) {
	cache := newMapCache()
	svc, _ := newCachedService(cache)
	ctx := context.Background()

	g, err := svc.Create(ctx, newGame("u1"))
	require.NoError(t, err)
	_, err = svc.GetStatusDistribution(ctx, "u1")
	require.NoError(t, err)
	recent, err := svc.GetRecentlyUpdatedByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recent, 1)

	newOwner := "u2"
	_, err = svc.Update(ctx, g.ID, domain.GamePatch{UserID: &newOwner})
	require.NoError(t, err)

	dist, err := svc.GetStatusDistribution(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, dist)

	recent, err = svc.GetRecentlyUpdatedByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestCacheFailureFallsBackToStore(t *testing.T) {
	cache := newMapCache()
	cache.failGet = true
	svc, _ := newCachedService(cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, newGame("u1"))
	require.NoError(t, err)

	dist, err := svc.GetStatusDistribution(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, dist[domain.StatusPendente])
	assert.Zero(t, cache.setCount())
}
