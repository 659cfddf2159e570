package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
)

type ProfileHandler struct {
	Profile *services.ProfileService
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "profile.update", errs.Validation("invalid request body"))
	}
	u, err := h.Profile.Update(c.UserContext(), currentUser(c), in)
	if err != nil {
		return respondErr(c, "profile.update", err)
	}
	applog.Audit(c, "profile.update", map[string]any{
		"user_id":           u.ID,
		"profile_completed": u.ProfileCompleted,
	})
	return c.JSON(fiber.Map{"user": u})
}
