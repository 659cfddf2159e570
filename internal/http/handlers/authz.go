package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
)

// AttachUser resolves the caller from the sid cookie or a bearer token and
// stores it in Locals. It never rejects; RequireUser does that.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
				return c.Next()
			}
		}
		if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			tok := strings.TrimPrefix(h, "Bearer ")
			if u, err := auth.UserFromToken(c.UserContext(), tok); err == nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// RequireUser enforces an authenticated caller.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}

// RequireRole additionally pins the caller's role; admins pass everywhere.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if u.Role != role && u.Role != domain.RoleAdmin {
			applog.Security(c, "access.denied.role", map[string]any{"need": role, "have": u.Role})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler { return RequireRole(domain.RoleAdmin) }
