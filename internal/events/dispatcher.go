package events

import (
	"context"
	"errors"
	"sync"
)

// EventHandler consumes a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans events out to subscribed handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher delivers events synchronously within the process.
// Every handler runs even if an earlier one fails; Publish returns the
// joined handler errors.
type inMemoryDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{handlers: make(map[EventType][]EventHandler)}
}

func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribed := d.handlers[event.Type]
	d.mu.RUnlock()

	var errs []error
	for _, handler := range subscribed {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}
