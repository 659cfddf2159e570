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

type JobHandler struct {
	Jobs *services.JobService
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	var in services.CreateJobInput
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "job.create", errs.Validation("invalid request body"))
	}
	job, err := h.Jobs.Create(c.UserContext(), currentUser(c), in)
	if err != nil {
		return respondErr(c, "job.create", err)
	}
	applog.Audit(c, "job.create", map[string]any{"job_id": job.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"job": job})
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	f := repos.Filter{Limit: 100}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		if len(q) > 100 {
			q = q[:100]
		}
		f.Search = q
	}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		v, ok := validate.Category(cat)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return respondErr(c, "job.list", errs.Validation("unknown category"))
		}
		f.Category = v
	}
	if urg := strings.TrimSpace(c.Query("urgency")); urg != "" {
		v, ok := validate.Urgency(urg)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "urgency"})
			return respondErr(c, "job.list", errs.Validation("unknown urgency level"))
		}
		f.Urgency = v
	}

	jobs, err := h.Jobs.List(c.UserContext(), f)
	if err != nil {
		return respondErr(c, "job.list", err)
	}
	return c.JSON(fiber.Map{"jobs": jobs, "count": len(jobs)})
}

func (h *JobHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondErr(c, "job.detail", errs.Validation("invalid job id"))
	}
	detail, err := h.Jobs.Detail(c.UserContext(), id, currentUser(c))
	if err != nil {
		return respondErr(c, "job.detail", err)
	}
	return c.JSON(detail)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *JobHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondErr(c, "job.status", errs.Validation("invalid job id"))
	}
	var in statusRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "job.status", errs.Validation("invalid request body"))
	}
	job, err := h.Jobs.UpdateStatus(c.UserContext(), currentUser(c), id, in.Status)
	if err != nil {
		return respondErr(c, "job.status", err)
	}
	applog.Audit(c, "job.status", map[string]any{"job_id": id, "status": in.Status})
	return c.JSON(fiber.Map{"job": job})
}
