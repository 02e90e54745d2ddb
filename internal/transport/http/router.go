package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/game-records/internal/transport/http/middleware"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	AllowedOrigins []string
	Tokens         middleware.TokenValidator
	Logger         logrus.FieldLogger
}

// NewRouter mounts every route. Reads are public; writes and /me need a token.
func NewRouter(cfg RouterConfig, games *GameHandler, users *AuthHandler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(cfg.Logger), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.Logger))

	authMW := middleware.AuthMiddleware(cfg.Tokens)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", users.Register)
	authRoutes.POST("/login", users.Login)
	authRoutes.POST("/logout", users.Logout)
	authRoutes.GET("/me", authMW, users.Me)

	gameRoutes := api.Group("/games")
	gameRoutes.GET("", games.List)
	gameRoutes.GET("/recent", games.Recent)
	gameRoutes.GET("/:id", games.Get)
	gameRoutes.POST("", authMW, games.Create)
	gameRoutes.PUT("/:id", authMW, games.Update)
	gameRoutes.DELETE("/:id", authMW, games.Delete)

	userGames := api.Group("/users/:userId/games")
	userGames.GET("", games.ListByUser)
	userGames.GET("/recent", games.RecentByUser)
	userGames.GET("/status", games.StatusDistribution)

	return router
}
