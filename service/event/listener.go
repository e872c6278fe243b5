package event

import (
	"context"
	"log"
)

// Listener runs a handler over consumed events until stopped.
type Listener struct {
	publisher *Publisher
	handler   func(*Event)
	cancel    context.CancelFunc
}

// NewListener creates a listener bound to the publisher's queue.
func NewListener(publisher *Publisher, handler func(*Event)) *Listener {
	return &Listener{publisher: publisher, handler: handler}
}

// Start consumes events on a background goroutine.
func (l *Listener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go func() {
		for {
			anEvent, err := l.publisher.Consume(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("error consuming event: %v", err)
				continue
			}
			if anEvent != nil {
				l.handler(anEvent)
			}
		}
	}()
}

// Stop terminates the consume loop.
func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
