// Package realtime fans message change events out to subscribed views.
// Delivery is at-least-once with no ordering guarantee relative to a
// concurrent history load; consumers dedupe by message id.
package realtime

import (
	"context"
	"sync"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
)

type EventType string

const (
	MessageInserted EventType = "message.inserted"
	MessageUpdated  EventType = "message.updated"
)

type Event struct {
	Type       EventType       `json:"type"`
	JobID      string          `json:"jobId"`
	SenderID   string          `json:"senderId"`
	ReceiverID string          `json:"receiverId"`
	Message    *domain.Message `json:"message,omitempty"`
}

// Filter selects the events a subscriber cares about. Every set field must
// match; the zero Filter matches everything.
type Filter struct {
	// JobID limits to one job's messages.
	JobID string
	// Participant limits to events where the user is sender or receiver,
	// keeping multi-applicant threads private from each other.
	Participant string
	// ReceiverID limits to events addressed to the user (unread badge).
	ReceiverID string
}

func (f Filter) Matches(e Event) bool {
	if f.JobID != "" && f.JobID != e.JobID {
		return false
	}
	if f.Participant != "" && f.Participant != e.SenderID && f.Participant != e.ReceiverID {
		return false
	}
	if f.ReceiverID != "" && f.ReceiverID != e.ReceiverID {
		return false
	}
	return true
}

// Bus delivers events to registered callbacks.
type Bus interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe registers a callback for matching events. The callback runs
	// on a dedicated goroutine, serially per subscription. Callers must
	// release the returned handle when the view goes away.
	Subscribe(f Filter, fn func(Event)) (*Subscription, error)
}

// Subscription is the scoped-resource handle returned by Subscribe.
// Unsubscribe is idempotent.
type Subscription struct {
	once sync.Once
	stop func()
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.stop)
}
