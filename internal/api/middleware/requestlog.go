package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// probePaths are hit every few seconds by orchestrator health checks.
// Logging each successful probe drowns the request log, so only the first
// success after startup or after a failure is logged. Failures always log.
var probePaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
}

// RequestLog returns Echo middleware that logs requests with structured
// fields. It generates a request ID if none is provided and propagates it
// through the response header and echo context. Repeated successful health
// probes are suppressed; failed requests log at Warn.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var mu sync.Mutex
	probeOK := make(map[string]bool, len(probePaths))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			ok := status < 400

			if probePaths[path] {
				mu.Lock()
				repeat := ok && probeOK[path]
				probeOK[path] = ok
				mu.Unlock()
				if repeat {
					return err
				}
			}

			level := slog.LevelInfo
			if !ok {
				level = slog.LevelWarn
			}

			log.Log(c.Request().Context(), level, "request",
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return err
		}
	}
}
