package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/game-records/pkg/auth"
	"github.com/iamasit07/game-records/pkg/httputil"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// AuthMiddleware validates the JWT from the Authorization header or auth cookie
// and stores the caller's id and username on the gin context.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := tokens.ValidateAccessToken(tokenString)
		if err != nil {
			httputil.ClearAuthCookie(c.Writer)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// UserID returns the authenticated caller, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
