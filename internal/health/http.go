package health

import (
	"github.com/gofiber/fiber/v2"
)

// Handler serves the registry as JSON: 200 when every check passes, 503 otherwise.
func Handler(r *Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report := r.Run(c.UserContext())
		status := fiber.StatusOK
		if !report.OK() {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(report)
	}
}
