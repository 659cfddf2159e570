package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

type ApplicationHandler struct {
	Apps *services.ApplicationService
}

func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	jobID, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondErr(c, "application.apply", errs.Validation("invalid job id"))
	}
	var in services.ApplyInput
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "application.apply", errs.Validation("invalid request body"))
	}
	app, err := h.Apps.Apply(c.UserContext(), currentUser(c), jobID, in)
	if err != nil {
		return respondErr(c, "application.apply", err)
	}
	applog.Audit(c, "application.apply", map[string]any{"job_id": jobID, "application_id": app.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"application": app})
}

func (h *ApplicationHandler) Mine(c *fiber.Ctx) error {
	apps, err := h.Apps.Mine(c.UserContext(), currentUser(c), c.Query("status"))
	if err != nil {
		return respondErr(c, "application.list", err)
	}
	return c.JSON(fiber.Map{"applications": apps, "count": len(apps)})
}

func (h *ApplicationHandler) Decide(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondErr(c, "application.decide", errs.Validation("invalid application id"))
	}
	var in statusRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "application.decide", errs.Validation("invalid request body"))
	}
	app, err := h.Apps.Decide(c.UserContext(), currentUser(c), id, in.Status)
	if err != nil {
		return respondErr(c, "application.decide", err)
	}
	applog.Audit(c, "application.decide", map[string]any{"application_id": id, "status": in.Status})
	return c.JSON(fiber.Map{"application": app})
}

func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondErr(c, "application.withdraw", errs.Validation("invalid application id"))
	}
	app, err := h.Apps.Withdraw(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondErr(c, "application.withdraw", err)
	}
	applog.Audit(c, "application.withdraw", map[string]any{"application_id": id})
	return c.JSON(fiber.Map{"application": app})
}

type scheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (h *ApplicationHandler) Schedule(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondErr(c, "application.schedule", errs.Validation("invalid application id"))
	}
	var in scheduleRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "application.schedule", errs.Validation("invalid request body"))
	}
	app, err := h.Apps.Schedule(c.UserContext(), currentUser(c), id, in.Date, in.Time)
	if err != nil {
		return respondErr(c, "application.schedule", err)
	}
	applog.Audit(c, "application.schedule", map[string]any{"application_id": id, "date": in.Date})
	return c.JSON(fiber.Map{"application": app})
}

func (h *ApplicationHandler) ScheduleList(c *fiber.Ctx) error {
	entries, err := h.Apps.ScheduleList(c.UserContext(), currentUser(c))
	if err != nil {
		return respondErr(c, "schedule.list", err)
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}
