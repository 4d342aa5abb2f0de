package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs method, path, peer, status and latency for every
// request. The /metrics scrape is skipped to keep logs readable.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			log.Printf("[%s] %s %s - %d (%s)",
				c.Request().Method,
				c.Request().RequestURI,
				c.Request().RemoteAddr,
				c.Response().Status,
				time.Since(start),
			)
			return err
		}
	}
}
