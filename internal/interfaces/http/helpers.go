package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// pageParams lee limit/offset con los mismos topes en todos los listados.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 50)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// parseDate interpreta YYYY-MM-DD; vacío devuelve el valor cero.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, s, time.Local)
}

// queryDate lee un parámetro de fecha opcional.
func queryDate(c *fiber.Ctx, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := parseDate(raw)
	if err != nil {
		_ = badRequest(c, "INVALID_PARAMS", key+" debe tener formato YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func requireID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if id == "" {
		_ = badRequest(c, "MISSING_ID", name+" es requerido")
		return "", false
	}
	return id, true
}
