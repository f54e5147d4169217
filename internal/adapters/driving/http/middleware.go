package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/isoguide/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID propagates X-Request-ID, generating one when absent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Structured().Info("http request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// cors allows the configured origins with any method and header.
// Preflight requests are answered with 204 and never reach a handler.
func cors(origins []string) gin.HandlerFunc {
	allowAll := slices.Contains(origins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || slices.Contains(origins, origin)) {
			// Credentials rule out a literal "*", so echo the origin.
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")

			if c.Request.Method == http.MethodOptions {
				methods := c.GetHeader("Access-Control-Request-Method")
				if methods == "" {
					methods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
				}
				c.Header("Access-Control-Allow-Methods", methods)
				if headers := c.GetHeader("Access-Control-Request-Headers"); headers != "" {
					c.Header("Access-Control-Allow-Headers", headers)
				}
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
