package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/internal/transport/http/middleware"
)

type GameService interface {
	ListAll(ctx context.Context) ([]domain.Game, error)
	ListByUser(ctx context.Context, userID, status string) ([]domain.Game, error)
	GetByID(ctx context.Context, id string) (*domain.Game, error)
	GetRecentlyUpdated(ctx context.Context) ([]domain.RecentGame, error)
	GetRecentlyUpdatedByUser(ctx context.Context, userID string) ([]domain.RecentGame, error)
	GetStatusDistribution(ctx context.Context, userID string) (domain.StatusDistribution, error)
	Create(ctx context.Context, input domain.GameInput) (*domain.Game, error)
	Update(ctx context.Context, id string, patch domain.GamePatch) (*domain.Game, error)
	Remove(ctx context.Context, id string) (*domain.Game, error)
}

type GameHandler struct {
	Games GameService
}

func NewGameHandler(games GameService) *GameHandler {
	return &GameHandler{Games: games}
}

func (h *GameHandler) List(c *gin.Context) {
	games, err := h.Games.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) Get(c *gin.Context) {
	game, err := h.Games.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) Recent(c *gin.Context) {
	recent, err := h.Games.GetRecentlyUpdated(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recent)
}

// Create stores a new game. userId and updatedBy default to the caller.
func (h *GameHandler) Create(c *gin.Context) {
	var in domain.GameInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	caller := middleware.UserID(c)
	if in.UserID == "" {
		in.UserID = caller
	}
	if in.UpdatedBy == "" {
		in.UpdatedBy = caller
	}

	game, err := h.Games.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, game)
}

func (h *GameHandler) Update(c *gin.Context) {
	var patch domain.GamePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	if patch.UpdatedBy == nil {
		if caller := middleware.UserID(c); caller != "" {
			patch.UpdatedBy = &caller
		}
	}

	game, err := h.Games.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// Delete responds with the game as it was before removal.
func (h *GameHandler) Delete(c *gin.Context) {
	game, err := h.Games.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) ListByUser(c *gin.Context) {
	games, err := h.Games.ListByUser(c.Request.Context(), c.Param("userId"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) RecentByUser(c *gin.Context) {
	recent, err := h.Games.GetRecentlyUpdatedByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recent)
}

func (h *GameHandler) StatusDistribution(c *gin.Context) {
	dist, err := h.Games.GetStatusDistribution(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}
