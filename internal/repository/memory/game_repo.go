package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/pkg/uid"
)

// GameRepo keeps games in memory behind a RWMutex.
type GameRepo struct {
	mu    sync.RWMutex
	games map[string]domain.Game
	order []string // insertion order, the "natural" order of the store
}

func NewGameRepo() *GameRepo {
	return &GameRepo{games: make(map[string]domain.Game)}
}

func (r *GameRepo) Find(_ context.Context, filter domain.GameFilter) ([]domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Game, 0, len(r.games))
	for _, id := range r.order {
		g := r.games[id]
		if filter.Matches(g) {
			result = append(result, g)
		}
	}
	return result, nil
}

func (r *GameRepo) FindByID(_ context.Context, id string) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *GameRepo) FindRecent(ctx context.Context, filter domain.GameFilter, limit int) ([]domain.Game, error) {
	matched, err := r.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	projected := make([]domain.Game, 0, len(matched))
	for _, g := range matched {
		projected = append(projected, domain.Game{
			ID:        g.ID,
			Nome:      g.Nome,
			Image:     g.Image,
			UserID:    g.UserID,
			UpdatedAt: g.UpdatedAt,
			UpdatedBy: g.UpdatedBy,
		})
	}
	return projected, nil
}

func (r *GameRepo) CountByStatus(_ context.Context, userID string) (domain.StatusDistribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := domain.StatusDistribution{}
	for _, g := range r.games {
		if g.UserID == userID {
			counts[g.Status]++
		}
	}
	return counts, nil
}

func (r *GameRepo) Insert(_ context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	game.ID = uid.New()
	r.games[game.ID] = *game
	r.order = append(r.order, game.ID)
	return nil
}

func (r *GameRepo) UpdateByID(_ context.Context, id string, patch domain.GamePatch, updatedAt time.Time) (*domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&g, updatedAt)
	r.games[id] = g
	return &g, nil
}

func (r *GameRepo) DeleteByID(_ context.Context, id string) (*domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	delete(r.games, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &g, nil
}
