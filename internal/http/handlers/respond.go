package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
)

// respondErr maps a service error onto the API contract. Unknown and
// transient failures hide their cause and get the retryable marker.
func respondErr(c *fiber.Ctx, action string, err error) error {
	status := errs.HTTPStatus(err)
	body := fiber.Map{"error": err.Error()}
	switch errs.KindOf(err) {
	case errs.KindTransient, errs.KindUnknown:
		applog.Error(c, action, err, nil)
		body = fiber.Map{"error": "temporary failure, please retry", "retryable": true}
	case errs.KindUnauthorized, errs.KindUnauthenticated:
		applog.Security(c, action, map[string]any{"reason": err.Error()})
	}
	return c.Status(status).JSON(body)
}

// currentUser pulls the user the auth middleware attached.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
