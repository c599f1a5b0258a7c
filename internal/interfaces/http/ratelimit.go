package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
)

// RateLimit limita las peticiones por IP con el store dado (memoria o Redis).
// Si el store falla se deja pasar la petición y se registra el error.
func RateLimit(store limiter.Store, rate limiter.Rate, log zerolog.Logger) fiber.Handler {
	lim := limiter.New(store, rate)
	return func(c *fiber.Ctx) error {
		res, err := lim.Get(c.UserContext(), c.IP())
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter no disponible")
			return c.Next()
		}
		c.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))
		if res.Reached {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas peticiones, intente más tarde",
			})
		}
		return c.Next()
	}
}
