package utils

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
)

// NewLogger builds the process logger: JSON output in production, text with
// debug level everywhere else.
func NewLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// LoggerMiddleware creates a Gin middleware for request logging
func LoggerMiddleware(logger *slog.Logger) func(*gin.Context) {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		level := slog.LevelInfo
		if param.StatusCode >= 400 {
			level = slog.LevelWarn
		}
		if param.StatusCode >= 500 {
			level = slog.LevelError
		}

		logger.Log(context.Background(), level, "HTTP Request",
			"method", param.Method,
			"path", param.Path,
			"status_code", param.StatusCode,
			"duration", param.Latency.String(),
			"client_ip", param.ClientIP,
		)
		return "" // Return empty string as we're handling logging ourselves
	})
}
