package game

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/internal/repository/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	games *memory.GameRepo
	users *memory.UserRepo
	clock time.Time
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		games: memory.NewGameRepo(),
		users: memory.NewUserRepo(),
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.games, f.users, nil, 0, quietLogger())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

// tick advances the fixture clock so every write gets a distinct updatedAt.
func (f *fixture) tick() {
	f.clock = f.clock.Add(time.Minute)
}

func (f *fixture) addUser(t *testing.T, nome string) string {
	t.Helper()
	id, err := f.users.CreateUser(context.Background(), domain.User{Username: nome, Nome: nome, Picture: nome + ".png"})
	require.NoError(t, err)
	return id
}

func (f *fixture) addGame(t *testing.T, userID, nome string, status domain.GameStatus) *domain.Game {
	t.Helper()
	f.tick()
	g, err := f.svc.Create(context.Background(), domain.GameInput{
		Nome:        nome,
		Description: nome + " description",
		Image:       nome + ".jpg",
		UserID:      userID,
		Status:      status,
	})
	require.NoError(t, err)
	return g
}

func TestCreateStoresInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, domain.GameInput{
		Nome:        "Celeste",
		Description: "platformer",
		Image:       "celeste.png",
		UserID:      "u1",
		UpdatedBy:   "u1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Celeste", g.Nome)
	assert.Equal(t, "platformer", g.Description)
	assert.Equal(t, "celeste.png", g.Image)
	assert.Equal(t, "u1", g.UserID)
	assert.Equal(t, domain.StatusPendente, g.Status)
	assert.Equal(t, f.clock, g.UpdatedAt)

	stored, err := f.svc.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, *g, *stored)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	base := domain.GameInput{Nome: "n", Description: "d", Image: "i", UserID: "u"}

	cases := map[string]func(*domain.GameInput){
		"missing nome":        func(in *domain.GameInput) { in.Nome = "" },
		"missing description": func(in *domain.GameInput) { in.Description = "" },
		"missing image":       func(in *domain.GameInput) { in.Image = "" },
		"missing userId":      func(in *domain.GameInput) { in.UserID = "" },
		"bogus status":        func(in *domain.GameInput) { in.Status = "Bogus" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := f.svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	all, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetByIDNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGame(t, "u1", "Hades", "")

	t.Run("bogus status", func(t *testing.T) {
		bogus := domain.GameStatus("Bogus")
		_, err := f.svc.Update(ctx, g.ID, domain.GamePatch{Status: &bogus})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty patch refreshes updatedAt", func(t *testing.T) {
		f.tick()
		updated, err := f.svc.Update(ctx, g.ID, domain.GamePatch{})
		require.NoError(t, err)
		assert.Equal(t, f.clock, updated.UpdatedAt)
		assert.True(t, updated.UpdatedAt.After(g.UpdatedAt))
		assert.Equal(t, g.Nome, updated.Nome)
	})

	t.Run("partial fields merge", func(t *testing.T) {
		status := domain.StatusCompleto
		by := "u2"
		updated, err := f.svc.Update(ctx, g.ID, domain.GamePatch{Status: &status, UpdatedBy: &by})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleto, updated.Status)
		assert.Equal(t, "u2", updated.UpdatedBy)
		assert.Equal(t, "Hades", updated.Nome)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := f.svc.Update(ctx, "missing", domain.GamePatch{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.addGame(t, "u1", "Doom", domain.StatusProgresso)

	removed, err := f.svc.Remove(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, *g, *removed)

	_, err = f.svc.GetByID(ctx, g.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Remove(ctx, g.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addGame(t, "u1", "A", domain.StatusProgresso)
	f.addGame(t, "u1", "B", domain.StatusPendente)
	f.addGame(t, "u1", "C", domain.StatusProgresso)
	f.addGame(t, "u2", "D", domain.StatusProgresso)

	all, err := f.svc.ListByUser(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inProgress, err := f.svc.ListByUser(ctx, "u1", "Progresso")
	require.NoError(t, err)
	require.Len(t, inProgress, 2)
	for _, g := range inProgress {
		assert.Equal(t, "u1", g.UserID)
		assert.Equal(t, domain.StatusProgresso, g.Status)
	}

	none, err := f.svc.ListByUser(ctx, "nobody", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = f.svc.ListByUser(ctx, "u1", "Bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListAllEmpty(t *testing.T) {
	f := newFixture(t)
	games, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)
}

func TestGetStatusDistribution(t *testing.T) {
	f := newFixture(t)
	f.addGame(t, "u1", "A", domain.StatusPendente)
	f.addGame(t, "u1", "B", domain.StatusPendente)
	f.addGame(t, "u1", "C", domain.StatusCompleto)
	f.addGame(t, "u2", "D", domain.StatusPausado)

	dist, err := f.svc.GetStatusDistribution(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDistribution{domain.StatusPendente: 2, domain.StatusCompleto: 1}, dist)
	assert.NotContains(t, dist, domain.StatusProgresso)
	assert.NotContains(t, dist, domain.StatusPausado)
}

func TestGetRecentlyUpdated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "ana")
	bia := f.addUser(t, "bia")

	var created []*domain.Game
	for i, owner := range []string{ana, bia, ana, "ghost", bia, ana, bia} {
		created = append(created, f.addGame(t, owner, string(rune('A'+i)), ""))
	}

	recent, err := f.svc.GetRecentlyUpdated(ctx)
	require.NoError(t, err)
	require.Len(t, recent, domain.RecentLimit)

	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].UpdatedAt.After(recent[i-1].UpdatedAt), "not sorted descending")
	}
	assert.Equal(t, created[6].ID, recent[0].ID)

	for _, row := range recent {
		assert.NotEmpty(t, row.UserID)
		if row.UserID == "ghost" {
			assert.False(t, row.User.Known())
			continue
		}
		require.True(t, row.User.Known())
		assert.Equal(t, row.UserID, row.User.Summary.ID)
	}
}

func TestGetRecentlyUpdatedByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.addUser(t, "ana")

	for i := 0; i < 7; i++ {
		f.addGame(t, ana, string(rune('a'+i)), "")
	}
	f.addGame(t, "other", "x", "")

	recent, err := f.svc.GetRecentlyUpdatedByUser(ctx, ana)
	require.NoError(t, err)
	require.Len(t, recent, domain.RecentLimit)
	for _, row := range recent {
		assert.Empty(t, row.UserID)
		require.True(t, row.User.Known())
		assert.Equal(t, domain.UserSummary{ID: ana, Name: "ana", Picture: "ana.png"}, *row.User.Summary)
	}
	assert.Equal(t, "g", recent[0].Nome)

	orphaned := NewService(f.games, hidingUsers{UserRepository: f.users, hidden: ana}, nil, 0, quietLogger())
	recent, err = orphaned.GetRecentlyUpdatedByUser(ctx, ana)
	require.NoError(t, err)
	for _, row := range recent {
		assert.False(t, row.User.Known())
	}
}

type failingGames struct {
	GameRepository
	err error
}

func (f failingGames) FindRecent(context.Context, domain.GameFilter, int) ([]domain.Game, error) {
	return nil, f.err
}

func (f failingGames) Find(context.Context, domain.GameFilter) ([]domain.Game, error) {
	return nil, f.err
}

// hidingUsers behaves as if the hidden user had been deleted.
type hidingUsers struct {
	UserRepository
	hidden string
}

func (h hidingUsers) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	users, err := h.UserRepository.FindByIDs(ctx, ids)
	kept := users[:0]
	for _, u := range users {
		if u.ID != h.hidden {
			kept = append(kept, u)
		}
	}
	return kept, err
}

type failingUsers struct{ err error }

func (f failingUsers) FindByIDs(context.Context, []string) ([]domain.User, error) {
	return nil, f.err
}

func TestRecentlyUpdatedWrapsStoreFailures(t *testing.T) {
	storeErr := errors.New("connection reset")
	svc := NewService(failingGames{err: storeErr}, memory.NewUserRepo(), nil, 0, quietLogger())

	_, err := svc.GetRecentlyUpdated(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, storeErr)

	_, err = svc.GetRecentlyUpdatedByUser(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	_, err = svc.ListAll(context.Background())
	assert.ErrorIs(t, err, storeErr)
}

func TestEnrichmentUserLookupFailure(t *testing.T) {
	games := memory.NewGameRepo()
	svc := NewService(games, failingUsers{err: errors.New("boom")}, nil, 0, quietLogger())
	_, err := svc.Create(context.Background(), domain.GameInput{Nome: "n", Description: "d", Image: "i", UserID: "u"})
	require.NoError(t, err)

	_, err = svc.GetRecentlyUpdated(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
