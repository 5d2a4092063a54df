package event

import (
	"context"
	"errors"
	"log"
)

// Listener drains a publisher's queue in a background goroutine and invokes
// the handler for each event.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewListener creates a listener bound to publisher.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop terminates the consume loop.
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Start launches the consume loop.
func (l *Listener[T]) Start() {
	go func() {
		for {
			select {
			case <-l.ctx.Done():
				return
			default:
				event, err := l.publisher.Consume(l.ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					log.Printf("error consuming event: %v", err)
					continue
				}
				if event != nil {
					l.handler(event)
				}
			}
		}
	}()
}
