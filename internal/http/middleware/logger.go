package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"prdapi/internal/logging"
)

// LoggerWithWriter is a middleware that logs each HTTP request as a JSON line on w,
// with timestamps in loc. Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	l := logging.Component(logging.New(w, "info", loc), "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Collect fields after handler executed to capture final status
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		l.Info("http_request",
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds())/1000,
		)

		return err
	}
}
