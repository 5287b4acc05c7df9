package broadcast

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"hooktrap-hq/hooktrap/pkg/event"
)

// DefaultBufferSize is the per-subscriber channel capacity used when the
// configured value is zero or negative.
const DefaultBufferSize = 200

// Subscriber is an ephemeral handle for one live-stream client. It owns a
// bounded delivery channel and is never persisted.
type Subscriber struct {
	ch chan *event.Event
}

// Events returns the subscriber's receive channel. The channel is closed
// when the subscriber is unsubscribed.
func (s *Subscriber) Events() <-chan *event.Event {
	return s.ch
}

// Broadcaster is an in-memory, best-effort pub/sub that fans out newly
// stored events to live subscribers. Delivery is at-most-once with no
// replay: a subscriber that registers after an event was published never
// sees it through this channel.
//
// The overflow policy is drop-newest: when a subscriber's buffer is full,
// Publish refuses to enqueue the event for that subscriber and moves on.
// Publish never blocks the ingestion path.
type Broadcaster struct {
	mu         sync.RWMutex
	subs       map[*Subscriber]struct{}
	bufferSize int
	dropped    atomic.Uint64
	onDrop     func()
	logger     *slog.Logger
}

// OnDrop registers a callback invoked once per refused delivery. Set it
// before the broadcaster is shared across goroutines.
func (b *Broadcaster) OnDrop(fn func()) {
	b.onDrop = fn
}

// New creates a Broadcaster whose subscribers buffer up to bufferSize
// events each.
func New(bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broadcaster{
		subs:       make(map[*Subscriber]struct{}),
		bufferSize: bufferSize,
		logger:     slog.Default().With("component", "event.broadcast"),
	}
}

// Subscribe registers a new subscriber and returns its handle. The caller
// must Unsubscribe when done or the channel resources leak.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan *event.Event, b.bufferSize)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()

	b.logger.Debug("subscriber registered", "subscribers", count)
	return sub
}

// Unsubscribe deregisters a subscriber and closes its channel. It is safe
// to call more than once.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	_, ok := b.subs[sub]
	if ok {
		delete(b.subs, sub)
	}
	count := len(b.subs)
	b.mu.Unlock()

	if ok {
		close(sub.ch)
		b.logger.Debug("subscriber released", "subscribers", count)
	}
}

// Publish pushes the event onto every registered subscriber channel on a
// non-blocking basis. A subscriber whose buffer is at capacity silently
// misses this event; nothing is surfaced to the publisher.
func (b *Broadcaster) Publish(e *event.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			b.dropped.Add(1)
			if b.onDrop != nil {
				b.onDrop()
			}
			b.logger.Debug("subscriber buffer full, event dropped",
				"event_id", e.ID,
			)
		}
	}
}

// DroppedCount returns the total number of per-subscriber deliveries
// refused because a buffer was full.
func (b *Broadcaster) DroppedCount() uint64 {
	return b.dropped.Load()
}

// SubscriberCount returns the number of currently registered subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
