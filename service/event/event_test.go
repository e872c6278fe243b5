package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gator/model/action"
	"github.com/viant/gator/service/messaging/memory"
)

func TestPublisher(t *testing.T) {
	ctx := context.Background()
	queue := memory.NewQueue[Event](memory.DefaultConfig())
	journal := NewJournal("mem://localhost/gator/journal/publisher")
	publisher := NewPublisher(queue, WithJournal(journal))

	anAction := &action.Action{ID: "a-1", TraceID: "t-1", Tool: "notify", Status: action.StatusPending}
	err := publisher.Publish(ctx, New(KindProposed, anAction, "alice", ""))
	assert.Nil(t, err)

	consumed, err := publisher.Consume(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, KindProposed, consumed.Kind)
	assert.EqualValues(t, "a-1", consumed.ActionID)
	assert.False(t, consumed.CreatedAt.IsZero())

	journaled, err := journal.List(ctx, "t-1")
	assert.Nil(t, err)
	assert.EqualValues(t, 1, len(journaled))
	assert.EqualValues(t, "notify", journaled[0].Tool)
}

func TestJournal_List_FiltersByTrace(t *testing.T) {
	ctx := context.Background()
	journal := NewJournal("mem://localhost/gator/journal/filter")
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, traceID := range []string{"t-1", "t-2", "t-1"} {
		anEvent := New(KindExecuted, &action.Action{ID: "a", TraceID: traceID, Tool: "kb_search"}, "", "")
		anEvent.CreatedAt = base.Add(time.Duration(i) * time.Second)
		assert.Nil(t, journal.Append(ctx, anEvent))
	}
	events, err := journal.List(ctx, "t-1")
	assert.Nil(t, err)
	assert.EqualValues(t, 2, len(events))

	all, err := journal.List(ctx, "")
	assert.Nil(t, err)
	assert.EqualValues(t, 3, len(all))
}

func TestPublisher_SaturatedQueueDropsInsteadOfBlocking(t *testing.T) {
	ctx := context.Background()
	queue := memory.NewQueue[Event](memory.Config{QueueBuffer: 1})
	journal := NewJournal("mem://localhost/gator/journal/saturated")
	publisher := NewPublisher(queue, WithJournal(journal))

	anAction := &action.Action{ID: "a-1", TraceID: "t-1", Tool: "notify"}
	assert.Nil(t, publisher.Publish(ctx, New(KindProposed, anAction, "alice", "")))

	// no consumer drains the queue; the second publish must return at once
	err := publisher.Publish(ctx, New(KindExecuted, anAction, "alice", ""))
	assert.ErrorIs(t, err, ErrQueueFull)

	// the journal recorded both, only the queue dropped the overflow
	journaled, err := journal.List(ctx, "t-1")
	assert.Nil(t, err)
	assert.EqualValues(t, 2, len(journaled))

	consumed, err := publisher.Consume(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, KindProposed, consumed.Kind)
}

func TestListener(t *testing.T) {
	queue := memory.NewQueue[Event](memory.DefaultConfig())
	publisher := NewPublisher(queue)

	var mu sync.Mutex
	var seen []Kind
	listener := NewListener(publisher, func(anEvent *Event) {
		mu.Lock()
		seen = append(seen, anEvent.Kind)
		mu.Unlock()
	})
	listener.Start()
	defer listener.Stop()

	ctx := context.Background()
	assert.Nil(t, publisher.Publish(ctx, New(KindApproved, nil, "bob", "")))
	assert.Nil(t, publisher.Publish(ctx, New(KindExecuted, nil, "bob", "")))

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		count := len(seen)
		mu.Unlock()
		if count == 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.EqualValues(t, []Kind{KindApproved, KindExecuted}, seen)
}
