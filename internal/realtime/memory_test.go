package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// The go-redis pool reaper outlives Close by design.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/redis/go-redis/v9/internal/pool.(*ConnPool).reaper"))
}

func collect(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestFilterMatches(t *testing.T) {
	e := Event{Type: MessageInserted, JobID: "job-1", SenderID: "alice", ReceiverID: "bob"}

	assert.True(t, Filter{}.Matches(e))
	assert.True(t, Filter{JobID: "job-1"}.Matches(e))
	assert.False(t, Filter{JobID: "job-2"}.Matches(e))
	assert.True(t, Filter{Participant: "alice"}.Matches(e))
	assert.True(t, Filter{Participant: "bob"}.Matches(e))
	assert.False(t, Filter{Participant: "carol"}.Matches(e))
	assert.True(t, Filter{ReceiverID: "bob"}.Matches(e))
	assert.False(t, Filter{ReceiverID: "alice"}.Matches(e))
	assert.True(t, Filter{JobID: "job-1", Participant: "bob", ReceiverID: "bob"}.Matches(e))
	assert.False(t, Filter{JobID: "job-1", Participant: "carol"}.Matches(e))
}

func TestMemoryBus_PublishReachesMatchingSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	jobCh := make(chan Event, 8)
	subJob, err := bus.Subscribe(Filter{JobID: "job-1"}, func(e Event) { jobCh <- e })
	require.NoError(t, err)
	defer subJob.Unsubscribe()

	otherCh := make(chan Event, 8)
	subOther, err := bus.Subscribe(Filter{JobID: "job-2"}, func(e Event) { otherCh <- e })
	require.NoError(t, err)
	defer subOther.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), Event{Type: MessageInserted, JobID: "job-1", SenderID: "a", ReceiverID: "b"}))

	got := collect(t, jobCh)
	assert.Equal(t, MessageInserted, got.Type)
	assert.Equal(t, "job-1", got.JobID)

	select {
	case e := <-otherCh:
		t.Fatalf("filtered subscriber received %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_UnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ch := make(chan Event, 8)
	sub, err := bus.Subscribe(Filter{}, func(e Event) { ch <- e })
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), Event{Type: MessageInserted, JobID: "job-1"}))
	collect(t, ch)

	sub.Unsubscribe()
	sub.Unsubscribe() // second release is a no-op

	require.NoError(t, bus.Publish(context.Background(), Event{Type: MessageInserted, JobID: "job-1"}))
	select {
	case e := <-ch:
		t.Fatalf("received after unsubscribe: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}

	// A nil handle is safe too.
	var none *Subscription
	none.Unsubscribe()
}

func TestMemoryBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	sub, err := bus.Subscribe(Filter{}, func(e Event) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
	})
	require.NoError(t, err)

	// One event occupies the callback, subscriberBuffer fill the channel,
	// everything beyond that must drop without stalling the publisher.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+16; i++ {
			_ = bus.Publish(context.Background(), Event{Type: MessageInserted, JobID: "job-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
	<-started
	close(block)
	sub.Unsubscribe()
}
