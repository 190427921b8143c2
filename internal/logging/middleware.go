package logging

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs every request after the handler chain has run.
// requestid middleware must be registered before it.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	httpLogger := WithComponent(logger, ComponentHTTP)

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		attrs := []any{
			FieldMethod, c.Method(),
			FieldPath, c.Path(),
			FieldStatusCode, status,
			FieldDuration, time.Since(start).Milliseconds(),
			FieldClientIP, c.IP(),
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, FieldRequestID, rid)
		}
		if err != nil {
			attrs = append(attrs, FieldError, err.Error())
		}

		switch {
		case status >= 500:
			httpLogger.Error("request failed", attrs...)
		case status >= 400:
			httpLogger.Warn("request rejected", attrs...)
		default:
			httpLogger.Info("request completed", attrs...)
		}
		return err
	}
}
