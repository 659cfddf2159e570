package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/metrics"
	"github.com/iTeLLiiX/CraftConnect/internal/realtime"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

const maxMessageLen = 5000

// MessageService owns the job-scoped message threads: history reads with
// their read-marking side effect, sends, and unread accounting.
type MessageService struct {
	Messages *repos.MessageRepo
	Users    *repos.UserRepo
	Party    *PartyChecker
	Bus      realtime.Bus
	Timeout  time.Duration
}

// ResolveCounterpart picks the other side of a thread. Craftsmen always
// talk to the customer; a customer must name the applicant once a job has
// more than one.
func (s *MessageService) ResolveCounterpart(ctx context.Context, viewer *domain.User, job *domain.Job, counterpartID string) (string, error) {
	if viewer.ID != job.CustomerID {
		return job.CustomerID, nil
	}
	if counterpartID != "" {
		return counterpartID, nil
	}
	apps, err := s.Party.Apps.ListByJob(ctx, job.ID)
	if err != nil {
		return "", errs.Transient("fetch applications", err)
	}
	active := apps[:0]
	for _, a := range apps {
		if a.Status != domain.ApplicationWithdrawn {
			active = append(active, a)
		}
	}
	switch len(active) {
	case 0:
		return "", errs.NotFound("no conversation partner on this job")
	case 1:
		return active[0].CraftsmanID, nil
	default:
		return "", errs.Validation("multiple applicants, specify the counterpart")
	}
}

// LoadHistory returns the full thread ascending by creation time and, as a
// side effect, marks the viewer's unread messages in it read. The marking
// is idempotent and its failure never blocks the read.
func (s *MessageService) LoadHistory(ctx context.Context, viewer *domain.User, jobID, counterpartID string) ([]domain.Message, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	job, err := s.Party.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.Party.RequireParty(ctx, viewer.ID, job); err != nil {
		return nil, err
	}
	counterpart, err := s.ResolveCounterpart(ctx, viewer, job, counterpartID)
	if err != nil {
		return nil, err
	}
	if ok, err := s.Party.IsPartyToJob(ctx, counterpart, job); err != nil {
		return nil, err
	} else if !ok {
		return nil, errs.NotFound("no conversation partner on this job")
	}

	var msgs []domain.Message
	err = readRetry.Do(ctx, func() error {
		m, err := s.Messages.Thread(ctx, jobID, viewer.ID, counterpart)
		if err != nil {
			return errs.Transient("load history", err)
		}
		msgs = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort read receipts; the history is already in hand.
	marked, err := s.Messages.MarkThreadRead(ctx, jobID, counterpart, viewer.ID)
	if err != nil {
		applog.Logger().Error().Err(err).
			Str("job_id", jobID).Str("user_id", viewer.ID).
			Msg("mark thread read failed")
	} else if marked > 0 {
		s.publish(realtime.Event{
			Type:       realtime.MessageUpdated,
			JobID:      jobID,
			SenderID:   counterpart,
			ReceiverID: viewer.ID,
		})
	}

	return msgs, nil
}

// Send validates, authorizes both parties through the shared predicate,
// persists the message and announces it on the bus.
func (s *MessageService) Send(ctx context.Context, sender *domain.User, jobID, receiverID, content string) (*domain.Message, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	text, ok := validate.Content(content, maxMessageLen)
	if !ok {
		return nil, errs.Validation("message content is required")
	}
	if receiverID == "" {
		return nil, errs.Validation("receiver is required")
	}
	if receiverID == sender.ID {
		return nil, errs.Validation("cannot message yourself")
	}

	job, err := s.Party.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.Party.RequireParty(ctx, sender.ID, job); err != nil {
		return nil, err
	}
	receiverParty, err := s.Party.IsPartyToJob(ctx, receiverID, job)
	if err != nil {
		return nil, err
	}
	if !receiverParty {
		return nil, errs.Unauthorized("receiver is not a party to this job")
	}

	m := &domain.Message{
		ID:         uuid.NewString(),
		JobID:      jobID,
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Content:    text,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.Messages.Insert(ctx, m); err != nil {
		return nil, errs.Transient("insert message", err)
	}
	metrics.IncMessagesSent()

	stored, err := s.Messages.ByID(ctx, m.ID)
	if err != nil {
		// The insert went through; fall back to the bare record.
		applog.Logger().Error().Err(err).Str("message_id", m.ID).Msg("reload sent message failed")
		stored = m
	}

	s.publish(realtime.Event{
		Type:       realtime.MessageInserted,
		JobID:      jobID,
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Message:    stored,
	})
	return stored, nil
}

// MarkRead stamps one message delivered to the viewer. Used by the realtime
// path; fire-and-forget by contract, so callers may ignore the error.
func (s *MessageService) MarkRead(ctx context.Context, viewer *domain.User, messageID string) error {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	if err := s.Messages.MarkRead(ctx, messageID, viewer.ID); err != nil {
		return errs.Transient("mark message read", err)
	}
	s.publish(realtime.Event{
		Type:       realtime.MessageUpdated,
		ReceiverID: viewer.ID,
	})
	return nil
}

func (s *MessageService) UnreadCount(ctx context.Context, viewer *domain.User) (int, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	var n int
	err := readRetry.Do(ctx, func() error {
		c, err := s.Messages.UnreadCount(ctx, viewer.ID)
		if err != nil {
			return errs.Transient("unread count", err)
		}
		n = c
		return nil
	})
	return n, err
}

func (s *MessageService) publish(e realtime.Event) {
	if s.Bus == nil {
		return
	}
	// Publishing is advisory; readers resync through LoadHistory.
	if err := s.Bus.Publish(context.Background(), e); err != nil {
		applog.Logger().Error().Err(err).Str("type", string(e.Type)).Msg("publish realtime event failed")
	}
}
