package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CORSMiddleware echoes the Origin header back for origins in allowedOrigins and
// rejects the rest. Requests without an Origin (curl, same-origin) pass through.
func CORSMiddleware(allowedOrigins []string, logger logrus.FieldLogger) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	log := logger.WithField("component", "cors")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" {
			if !allowed[origin] {
				log.WithField("origin", origin).Warn("origin not in allowed list")
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Origin not allowed"})
				return
			}
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")

		// Handle preflight OPTIONS requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
