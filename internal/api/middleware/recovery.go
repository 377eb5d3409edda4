package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
)

// Recovery returns Echo middleware that recovers from handler panics, logs
// the stack trace with the request ID when one was assigned, and returns a
// 500 to the client. It is registered outside RequestLog so a panic still
// produces a response with the request ID header set.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)

					attrs := []any{
						"error", fmt.Sprint(r),
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"stack", string(buf[:n]),
					}
					if reqID, ok := c.Get("request_id").(string); ok && reqID != "" {
						attrs = append(attrs, "request_id", reqID)
					}
					log.Error("panic recovered", attrs...)

					err = c.JSON(http.StatusInternalServerError, map[string]string{
						"error": "internal server error",
					})
				}
			}()
			return next(c)
		}
	}
}
