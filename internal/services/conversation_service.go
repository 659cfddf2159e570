package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	applog "github.com/iTeLLiiX/CraftConnect/internal/log"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
)

// ConversationService derives the per-user conversation list. Conversations
// are keyed by (job, counterpart): a customer gets one thread per applicant.
type ConversationService struct {
	Jobs     *repos.JobRepo
	Apps     *repos.ApplicationRepo
	Users    *repos.UserRepo
	Messages *repos.MessageRepo
	Timeout  time.Duration
}

type pair struct {
	job         domain.Job
	counterpart string
}

// List builds the viewer's conversations, most recently active first.
// A failure fetching the job set aborts the listing; failures enriching a
// single conversation degrade just that entry.
func (s *ConversationService) List(ctx context.Context, viewer *domain.User) ([]domain.Conversation, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	var jobs []domain.Job
	err := readRetry.Do(ctx, func() error {
		j, err := s.Jobs.ByParty(ctx, viewer.ID)
		if err != nil {
			return errs.Transient("fetch jobs", err)
		}
		jobs = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	pairs := make([]pair, 0, len(jobs))
	for _, job := range jobs {
		if job.CustomerID != viewer.ID {
			pairs = append(pairs, pair{job: job, counterpart: job.CustomerID})
			continue
		}
		apps, err := s.Apps.ListByJob(ctx, job.ID)
		if err != nil {
			applog.Logger().Error().Err(err).Str("job_id", job.ID).
				Msg("conversations: fetch applications failed")
			continue
		}
		for _, a := range apps {
			if a.Status == domain.ApplicationWithdrawn {
				continue
			}
			pairs = append(pairs, pair{job: job, counterpart: a.CraftsmanID})
		}
	}

	// Enrich the pairs concurrently; each entry fails in isolation.
	results := make([]*domain.Conversation, len(pairs))
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		go func(i int, p pair) {
			defer wg.Done()
			results[i] = s.enrich(ctx, viewer, p)
		}(i, p)
	}
	wg.Wait()

	out := make([]domain.Conversation, 0, len(pairs))
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}

	// Threads with traffic sort by recency; silent ones keep fetch order
	// after all of them.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessage, out[j].LastMessage
		switch {
		case a != nil && b != nil:
			return a.CreatedAt > b.CreatedAt
		case a != nil:
			return true
		default:
			return false
		}
	})
	return out, nil
}

// enrich resolves the counterpart and attaches last message and unread
// count. Returns nil only when the counterpart itself cannot be loaded;
// metadata failures degrade to an empty preview instead.
func (s *ConversationService) enrich(ctx context.Context, viewer *domain.User, p pair) *domain.Conversation {
	other, err := s.Users.ByID(ctx, p.counterpart)
	if err != nil {
		applog.Logger().Error().Err(err).Str("user_id", p.counterpart).
			Msg("conversations: fetch counterpart failed")
		return nil
	}
	conv := &domain.Conversation{Job: p.job, Counterpart: *other}

	err = readRetry.Do(ctx, func() error {
		last, err := s.Messages.LastInThread(ctx, p.job.ID, viewer.ID, p.counterpart)
		if err != nil {
			return errs.Transient("last message", err)
		}
		conv.LastMessage = last
		return nil
	})
	if err != nil {
		applog.Logger().Error().Err(err).Str("job_id", p.job.ID).
			Msg("conversations: last message failed")
	}

	err = readRetry.Do(ctx, func() error {
		n, err := s.Messages.UnreadInThread(ctx, p.job.ID, p.counterpart, viewer.ID)
		if err != nil {
			return errs.Transient("unread count", err)
		}
		conv.UnreadCount = n
		return nil
	})
	if err != nil {
		applog.Logger().Error().Err(err).Str("job_id", p.job.ID).
			Msg("conversations: unread count failed")
	}

	return conv
}
