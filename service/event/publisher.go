package event

import (
	"context"
	"errors"
	"time"

	"github.com/viant/gator/service/messaging"
)

// ErrQueueFull reports an event dropped because the queue had no buffer
// space and no consumer was draining it.
var ErrQueueFull = errors.New("event queue full")

// tryQueue is the optional non-blocking capability of a queue.
type tryQueue interface {
	TryPublish(ctx context.Context, anEvent *Event) (bool, error)
}

// Publisher fans lifecycle events out to a queue and an optional journal.
type Publisher struct {
	queue   messaging.Queue[Event]
	journal *Journal
}

// NewPublisher creates a publisher over the supplied queue.
func NewPublisher(queue messaging.Queue[Event], options ...Option) *Publisher {
	ret := &Publisher{queue: queue}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Option customises a publisher.
type Option func(*Publisher)

// WithJournal persists every published event.
func WithJournal(journal *Journal) Option {
	return func(p *Publisher) { p.journal = journal }
}

// Publish stamps and delivers an event. Journal failures do not block the
// lifecycle, the event still reaches the queue. Publishing never blocks the
// caller either: when the queue is saturated and supports a non-blocking
// publish, the event is dropped and reported as ErrQueueFull; the journal,
// when configured, has already recorded it.
func (p *Publisher) Publish(ctx context.Context, anEvent *Event) error {
	if anEvent.CreatedAt.IsZero() {
		anEvent.CreatedAt = time.Now()
	}
	if p.journal != nil {
		_ = p.journal.Append(ctx, anEvent)
	}
	if p.queue == nil {
		return nil
	}
	if queue, ok := p.queue.(tryQueue); ok {
		published, err := queue.TryPublish(ctx, anEvent)
		if err != nil {
			return err
		}
		if !published {
			return ErrQueueFull
		}
		return nil
	}
	return p.queue.Publish(ctx, anEvent)
}

// Consume takes the next event off the queue and acknowledges it.
func (p *Publisher) Consume(ctx context.Context) (*Event, error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
