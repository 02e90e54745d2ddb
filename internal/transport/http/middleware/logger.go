package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/game-records/pkg/useragent"
	"github.com/sirupsen/logrus"
)

// RequestLogger replaces gin.Logger so access logs share the application's format.
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	log := logger.WithField("component", "http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
			"device":   useragent.Describe(c.Request.UserAgent()),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
