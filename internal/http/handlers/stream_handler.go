package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/realtime"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

// streamHeartbeat bounds how long a dead connection can linger before
// the write fails and the subscriptions are released.
const streamHeartbeat = 25 * time.Second

type StreamHandler struct {
	Messages *services.MessageService
	Bus      realtime.Bus
}

// Stream is the SSE endpoint. Without jobId it carries only unread-badge
// updates; with jobId it additionally carries the thread's message events
// and stamps delivered messages as read, since an open stream means the
// thread is on screen.
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	user := currentUser(c)

	jobID := strings.TrimSpace(c.Query("jobId"))
	if jobID != "" {
		if _, ok := validate.ID(jobID); !ok {
			return respondErr(c, "message.stream", errs.Validation("invalid job id"))
		}
	}

	// Non-blocking sends so a closed or stalled stream never wedges the
	// bus dispatch goroutine; clients resync through the history load.
	events := make(chan realtime.Event, 16)
	forward := func(e realtime.Event) {
		select {
		case events <- e:
		default:
		}
	}
	badge, err := h.Bus.Subscribe(realtime.Filter{ReceiverID: user.ID}, forward)
	if err != nil {
		return respondErr(c, "message.stream", errs.Transient("subscribe", err))
	}
	var thread *realtime.Subscription
	if jobID != "" {
		thread, err = h.Bus.Subscribe(realtime.Filter{JobID: jobID, Participant: user.ID}, forward)
		if err != nil {
			badge.Unsubscribe()
			return respondErr(c, "message.stream", errs.Transient("subscribe", err))
		}
	}

	applog.Info(c, "message.stream.open", map[string]any{"job_id": jobID})

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	messages, userID := h.Messages, user.ID
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer badge.Unsubscribe()
		defer thread.Unsubscribe()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case e := <-events:
				if err := writeSSE(w, e); err != nil {
					return
				}
				// A delivered thread message addressed to the viewer is
				// read the moment it lands in the open view.
				if jobID != "" && e.Type == realtime.MessageInserted && e.ReceiverID == userID && e.Message != nil {
					if err := messages.MarkRead(context.Background(), user, e.Message.ID); err != nil {
						applog.Logger().Warn().Err(err).Str("message_id", e.Message.ID).Msg("mark delivered message read failed")
					}
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeSSE(w *bufio.Writer, e realtime.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.WriteString("event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
