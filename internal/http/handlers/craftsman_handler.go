package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

type CraftsmanHandler struct {
	Craftsmen *services.CraftsmanService
}

// List is the public craftsman directory with optional category and
// city filters.
func (h *CraftsmanHandler) List(c *fiber.Ctx) error {
	f := repos.CraftsmenFilter{}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		v, ok := validate.Category(cat)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return respondErr(c, "craftsmen.list", errs.Validation("unknown category"))
		}
		f.Category = v
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		if len(city) > 50 {
			city = city[:50]
		}
		f.City = city
	}

	users, err := h.Craftsmen.List(c.UserContext(), f)
	if err != nil {
		return respondErr(c, "craftsmen.list", err)
	}
	return c.JSON(fiber.Map{"craftsmen": users, "count": len(users)})
}
