package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/game-records/internal/domain"
	"github.com/iamasit07/game-records/internal/transport/http/middleware"
	"github.com/iamasit07/game-records/pkg/httputil"
)

type UserService interface {
	Register(ctx context.Context, input domain.RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type AuthHandler struct {
	Users      UserService
	TokenTTL   time.Duration
	Production bool
}

func NewAuthHandler(users UserService, tokenTTL time.Duration, production bool) *AuthHandler {
	return &AuthHandler{Users: users, TokenTTL: tokenTTL, Production: production}
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates the account and signs the new user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var in domain.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	token, user, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	httputil.SetAuthCookie(c.Writer, token, h.TokenTTL, h.Production)
	c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	token, user, err := h.Users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	httputil.SetAuthCookie(c.Writer, token, h.TokenTTL, h.Production)
	c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	httputil.ClearAuthCookie(c.Writer)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
