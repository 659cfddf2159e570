package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

type MessageHandler struct {
	Messages      *services.MessageService
	ConversationSvc *services.ConversationService
}

// History returns the job-scoped thread for the caller. Loading the
// history also marks messages addressed to the caller as read.
func (h *MessageHandler) History(c *fiber.Ctx) error {
	jobID := strings.TrimSpace(c.Query("jobId"))
	if jobID == "" {
		return respondErr(c, "message.history", errs.Validation("jobId is required"))
	}
	if _, ok := validate.ID(jobID); !ok {
		return respondErr(c, "message.history", errs.Validation("invalid job id"))
	}
	counterpartID := strings.TrimSpace(c.Query("with"))
	if counterpartID != "" {
		if _, ok := validate.ID(counterpartID); !ok {
			return respondErr(c, "message.history", errs.Validation("invalid counterpart id"))
		}
	}

	msgs, err := h.Messages.LoadHistory(c.UserContext(), currentUser(c), jobID, counterpartID)
	if err != nil {
		return respondErr(c, "message.history", err)
	}
	return c.JSON(fiber.Map{"messages": msgs, "count": len(msgs)})
}

type sendMessageRequest struct {
	JobID      string `json:"jobId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, "message.send", errs.Validation("invalid request body"))
	}
	if _, ok := validate.ID(strings.TrimSpace(req.JobID)); !ok {
		return respondErr(c, "message.send", errs.Validation("invalid job id"))
	}

	msg, err := h.Messages.Send(c.UserContext(), currentUser(c), strings.TrimSpace(req.JobID), strings.TrimSpace(req.ReceiverID), req.Content)
	if err != nil {
		return respondErr(c, "message.send", err)
	}
	applog.Info(c, "message.send", map[string]any{"job_id": msg.JobID, "message_id": msg.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg})
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondErr(c, "message.read", errs.Validation("invalid message id"))
	}
	if err := h.Messages.MarkRead(c.UserContext(), currentUser(c), id); err != nil {
		return respondErr(c, "message.read", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Unread reports the caller's total unread count across all threads,
// used for the navigation badge.
func (h *MessageHandler) Unread(c *fiber.Ctx) error {
	n, err := h.Messages.UnreadCount(c.UserContext(), currentUser(c))
	if err != nil {
		return respondErr(c, "message.unread", err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	convs, err := h.ConversationSvc.List(c.UserContext(), currentUser(c))
	if err != nil {
		return respondErr(c, "conversation.list", err)
	}
	return c.JSON(fiber.Map{"conversations": convs, "count": len(convs)})
}
