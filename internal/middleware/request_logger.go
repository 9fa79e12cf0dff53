// Package middleware provides shared gin middleware.
package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipstack/clipstack/internal/logger"
)

// RequestLogger logs all HTTP requests in development mode
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		start := time.Now()

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			// Restore the body for further processing
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		logger.DebugStructured("HTTP Request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.String("query", c.Request.URL.RawQuery),
			logger.String("body", string(bodyBytes)),
			logger.String("ip", c.ClientIP()),
		)

		c.Next()

		logger.DebugStructured("HTTP Response",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.Int("size", c.Writer.Size()),
		)
	}
}

// ErrorLogger logs request errors with context
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			logger.ErrorStructured("Request error",
				logger.String("method", c.Request.Method),
				logger.String("path", c.Request.URL.Path),
				logger.Err("error", err.Err),
			)
		}
	}
}
