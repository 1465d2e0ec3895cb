// Package events is a typed, in-process publish/subscribe bus. The navigator
// publishes a snapshot on every state transition; renderers and the live
// reload loop subscribe to the event types they care about.
package events

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// Bus delivers events to subscribers by type. It is not durable.
//
// Publish blocks until every matching subscriber has accepted the event or
// ctx is done, so a slow subscriber applies backpressure to the publisher.
type Bus struct {
	mu        sync.RWMutex
	subs      map[reflect.Type]map[uint64]*subscriber
	nextID    atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

type subscriber struct {
	eventType reflect.Type
	deliver   func(ctx context.Context, evt any) error
	shutdown  func()
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[reflect.Type]map[uint64]*subscriber)}
}

// Subscribe registers a subscription for events of type T and returns the
// receive channel plus an unsubscribe func that closes it.
//
// When T is an interface, every published event implementing T is delivered.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	eventType := reflect.TypeFor[T]()
	ch := make(chan T, buffer)
	if b.closed.Load() {
		close(ch)
		return ch, func() {}
	}

	// sendMu lets in-flight deliveries finish before ch is closed; done
	// unblocks them first.
	var (
		sendMu   sync.RWMutex
		done     = make(chan struct{})
		stopOnce sync.Once
	)
	stop := func() {
		stopOnce.Do(func() {
			close(done)
			sendMu.Lock()
			close(ch)
			sendMu.Unlock()
		})
	}

	sub := &subscriber{
		eventType: eventType,
		deliver: func(ctx context.Context, evt any) error {
			v, ok := evt.(T)
			if !ok {
				return ferrors.InternalError("event type mismatch").
					WithContext("expected", eventType.String()).
					WithContext("actual", reflect.TypeOf(evt).String()).
					Build()
			}
			sendMu.RLock()
			defer sendMu.RUnlock()
			select {
			case <-done:
				return nil
			default:
			}
			select {
			case ch <- v:
				return nil
			case <-done:
				return nil
			case <-ctx.Done():
				return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "event publish canceled").
					WithContext("event_type", eventType.String()).
					Build()
			}
		},
		shutdown: stop,
	}

	id := b.nextID.Add(1)
	b.mu.Lock()
	if b.closed.Load() {
		b.mu.Unlock()
		stop()
		return ch, func() {}
	}
	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[uint64]*subscriber)
	}
	b.subs[eventType][id] = sub
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		if typeSubs, ok := b.subs[eventType]; ok {
			delete(typeSubs, id)
			if len(typeSubs) == 0 {
				delete(b.subs, eventType)
			}
		}
		b.mu.Unlock()
		stop()
	}
	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers for T.
func SubscriberCount[T any](b *Bus) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[reflect.TypeFor[T]()])
}

// Publish delivers evt to all matching subscribers.
func (b *Bus) Publish(ctx context.Context, evt any) error {
	if evt == nil {
		return ferrors.ValidationError("event cannot be nil").Build()
	}
	if b.closed.Load() {
		return ferrors.RuntimeError("event bus is closed").Build()
	}

	evtType := reflect.TypeOf(evt)
	b.mu.RLock()
	var targets []*subscriber
	for subType, typeSubs := range b.subs {
		if subType != evtType && (subType.Kind() != reflect.Interface || !evtType.Implements(subType)) {
			continue
		}
		for _, s := range typeSubs {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if err := s.deliver(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the bus and every subscription channel. Safe to call twice.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		b.mu.Lock()
		var all []*subscriber
		for _, typeSubs := range b.subs {
			for _, s := range typeSubs {
				all = append(all, s)
			}
		}
		b.subs = make(map[reflect.Type]map[uint64]*subscriber)
		b.mu.Unlock()

		for _, s := range all {
			s.shutdown()
		}
	})
}
