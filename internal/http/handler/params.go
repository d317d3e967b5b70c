package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// uuidParams answers 404 when one of the named path parameters is not a UUID. Row ids are
// UUID columns, so a malformed id can never name an existing resource.
func uuidParams(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, name := range names {
			if uuid.Validate(c.Params(name)) != nil {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			}
		}
		return c.Next()
	}
}
