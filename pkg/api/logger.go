package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func NewLogger() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		startTime := time.Now()
		err = c.Next()

		msg := "HTTP Request"
		if err != nil {
			msg = err.Error()
		}

		code := c.Response().StatusCode()

		requestLogger := log.With().
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Str("latency", time.Since(startTime).String()).
			Logger()

		switch {
		case c.Path() == "/metrics":
			requestLogger.Debug().Msg(msg)
		case code >= fiber.StatusBadRequest && code < fiber.StatusInternalServerError:
			requestLogger.Warn().Msg(msg)
		case code >= http.StatusInternalServerError:
			requestLogger.Error().Msg(msg)
		default:
			requestLogger.Info().Msg(msg)
		}

		return err
	}
}
