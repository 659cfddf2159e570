package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
)

type AdminHandler struct {
	Jobs *services.JobService
}

// Stats returns platform-wide counters for the admin dashboard.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Jobs.PlatformStats(c.UserContext())
	if err != nil {
		return respondErr(c, "admin.stats", err)
	}
	applog.Audit(c, "admin.stats", nil)
	return c.JSON(fiber.Map{"stats": stats})
}
