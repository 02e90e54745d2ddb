package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iamasit07/game-records/internal/domain"
	"github.com/sirupsen/logrus"
)

// GameRepository is the game collection as the service needs it.
// Lookups by id return (nil, nil) when no record matches.
type GameRepository interface {
	Find(ctx context.Context, filter domain.GameFilter) ([]domain.Game, error)
	FindByID(ctx context.Context, id string) (*domain.Game, error)
	// FindRecent returns at most limit games ordered by updatedAt descending,
	// populating only id, nome, image, userId, updatedAt and updatedBy.
	FindRecent(ctx context.Context, filter domain.GameFilter, limit int) ([]domain.Game, error)
	CountByStatus(ctx context.Context, userID string) (domain.StatusDistribution, error)
	Insert(ctx context.Context, game *domain.Game) error
	UpdateByID(ctx context.Context, id string, patch domain.GamePatch, updatedAt time.Time) (*domain.Game, error)
	DeleteByID(ctx context.Context, id string) (*domain.Game, error)
}

// UserRepository is the read side of the user collection used for enrichment.
type UserRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

// CacheRepository backs the report cache. Get reports a missing key as "" with a nil error.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Service owns every operation on game records.
type Service struct {
	games    GameRepository
	users    UserRepository
	cache    CacheRepository // Optional, can be nil
	cacheTTL time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(games GameRepository, users UserRepository, cache CacheRepository, cacheTTL time.Duration, logger logrus.FieldLogger) *Service {
	return &Service{
		games:    games,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      logger.WithField("component", "games"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListAll returns every game.
func (s *Service) ListAll(ctx context.Context) ([]domain.Game, error) {
	games, err := s.games.Find(ctx, domain.AllGames())
	if err != nil {
		s.log.WithError(err).Error("failed to list games")
		return nil, err
	}
	return nonNil(games), nil
}

// ListByUser returns a user's games, narrowed to one status when status is not empty.
func (s *Service) ListByUser(ctx context.Context, userID, status string) ([]domain.Game, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Required("userId")
	}

	filter := domain.ByUser(userID)
	if status != "" {
		parsed, err := domain.ParseGameStatus(status)
		if err != nil {
			return nil, err
		}
		filter = domain.ByUserAndStatus(userID, parsed)
	}

	games, err := s.games.Find(ctx, filter)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("failed to list user games")
		return nil, err
	}
	return nonNil(games), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	game, err := s.games.FindByID(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("game_id", id).Error("failed to get game")
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", id, domain.ErrNotFound)
	}
	return game, nil
}

// GetRecentlyUpdated returns the most recently updated games across all users,
// each enriched with its owner. Store failures surface as ErrUnavailable.
func (s *Service) GetRecentlyUpdated(ctx context.Context) ([]domain.RecentGame, error) {
	key, cacheable := s.reportKey(ctx, genAll, keyRecentAll)
	var cached []domain.RecentGame
	if cacheable && s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	games, err := s.games.FindRecent(ctx, domain.AllGames(), domain.RecentLimit)
	if err != nil {
		s.log.WithError(err).Error("failed to load recently updated games")
		return nil, domain.ErrUnavailable
	}

	recent, err := s.enrich(ctx, games, true)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cacheSet(ctx, key, recent)
	}
	return recent, nil
}

// GetRecentlyUpdatedByUser is GetRecentlyUpdated scoped to one user; userId is
// left out of the rows since the caller already knows it.
func (s *Service) GetRecentlyUpdatedByUser(ctx context.Context, userID string) ([]domain.RecentGame, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Required("userId")
	}

	key, cacheable := s.reportKey(ctx, genUser+userID, keyRecentUser+userID)
	var cached []domain.RecentGame
	if cacheable && s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	games, err := s.games.FindRecent(ctx, domain.ByUser(userID), domain.RecentLimit)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("failed to load recently updated user games")
		return nil, domain.ErrUnavailable
	}

	recent, err := s.enrich(ctx, games, false)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cacheSet(ctx, key, recent)
	}
	return recent, nil
}

// GetStatusDistribution counts a user's games per status.
func (s *Service) GetStatusDistribution(ctx context.Context, userID string) (domain.StatusDistribution, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.Required("userId")
	}

	key, cacheable := s.reportKey(ctx, genUser+userID, keyStatusUser+userID)
	var cached domain.StatusDistribution
	if cacheable && s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	counts, err := s.games.CountByStatus(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("failed to count games by status")
		return nil, err
	}
	if counts == nil {
		counts = domain.StatusDistribution{}
	}
	if cacheable {
		s.cacheSet(ctx, key, counts)
	}
	return counts, nil
}

func (s *Service) Create(ctx context.Context, input domain.GameInput) (*domain.Game, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	game := input.NewGame(s.now())
	if err := s.games.Insert(ctx, &game); err != nil {
		s.log.WithError(err).WithField("user_id", game.UserID).Error("failed to create game")
		return nil, err
	}

	s.invalidate(ctx, game.UserID)
	s.log.WithFields(logrus.Fields{"game_id": game.ID, "user_id": game.UserID}).Info("game created")
	return &game, nil
}

// Update applies patch to the game and re-stamps updatedAt, even when patch is empty.
func (s *Service) Update(ctx context.Context, id string, patch domain.GamePatch) (*domain.Game, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	// the previous owner's cached reports go stale when a game changes hands
	var previousOwner string
	if s.cache != nil && patch.UserID != nil {
		if before, err := s.games.FindByID(ctx, id); err == nil && before != nil {
			previousOwner = before.UserID
		}
	}

	game, err := s.games.UpdateByID(ctx, id, patch, s.now())
	if err != nil {
		s.log.WithError(err).WithField("game_id", id).Error("failed to update game")
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", id, domain.ErrNotFound)
	}

	s.invalidate(ctx, game.UserID, previousOwner)
	return game, nil
}

// Remove deletes the game and returns its state before deletion.
func (s *Service) Remove(ctx context.Context, id string) (*domain.Game, error) {
	game, err := s.games.DeleteByID(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("game_id", id).Error("failed to delete game")
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", id, domain.ErrNotFound)
	}

	s.invalidate(ctx, game.UserID)
	s.log.WithFields(logrus.Fields{"game_id": game.ID, "user_id": game.UserID}).Info("game deleted")
	return game, nil
}

// enrich attaches the owning user's summary to each game with a second query
// against the user collection.
func (s *Service) enrich(ctx context.Context, games []domain.Game, withUserID bool) ([]domain.RecentGame, error) {
	recent := make([]domain.RecentGame, 0, len(games))
	if len(games) == 0 {
		return recent, nil
	}

	seen := make(map[string]struct{}, len(games))
	ids := make([]string, 0, len(games))
	for _, g := range games {
		if _, ok := seen[g.UserID]; ok {
			continue
		}
		seen[g.UserID] = struct{}{}
		ids = append(ids, g.UserID)
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.log.WithError(err).WithField("user_ids", ids).Error("failed to load game owners")
		return nil, domain.ErrUnavailable
	}

	owners := make(map[string]domain.UserSummary, len(users))
	for _, u := range users {
		owners[u.ID] = u.Summary()
	}

	for _, g := range games {
		row := domain.RecentGame{
			ID:        g.ID,
			Nome:      g.Nome,
			Image:     g.Image,
			UpdatedAt: g.UpdatedAt,
			UpdatedBy: g.UpdatedBy,
		}
		if withUserID {
			row.UserID = g.UserID
		}
		if owner, ok := owners[g.UserID]; ok {
			row.User = domain.GameOwner{Summary: &owner}
		}
		recent = append(recent, row)
	}
	return recent, nil
}

func nonNil(games []domain.Game) []domain.Game {
	if games == nil {
		return []domain.Game{}
	}
	return games
}
