package marketdata

import (
	"log/slog"
	"time"
)

// LogRequest logs an outbound API request. The query string is left out so
// API keys never reach the logs.
func LogRequest(log *slog.Logger, provider, method, path string) {
	log.Debug("upstream request", "provider", provider, "method", method, "path", path)
}

// LogResponse logs an upstream response.
func LogResponse(log *slog.Logger, provider string, statusCode int, duration time.Duration, resultCount int) {
	log.Info("upstream response",
		"provider", provider,
		"status", statusCode,
		"duration_ms", duration.Milliseconds(),
		"results", resultCount,
	)
}

// LogError logs a failed upstream operation.
func LogError(log *slog.Logger, provider, operation string, err error) {
	log.Error("upstream error", "provider", provider, "operation", operation, "err", err)
}
