package position

import (
	"context"
	"sync"

	"github.com/nearmark/nearmark/internal/domain"
)

// subscriberBuffer bounds how far a subscriber may lag before samples are
// dropped. The watcher evaluates synchronously per sample, so in practice the
// buffer never fills.
const subscriberBuffer = 16

// Feed is an in-process Provider fed by the application itself, typically
// from a position-ingest HTTP endpoint relaying the device's GPS.
type Feed struct {
	mu      sync.Mutex
	last    *domain.Position
	subs    map[int]chan domain.Position
	nextSub int
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan domain.Position)}
}

// Publish records p as the latest fix and fans it out to all subscribers in
// delivery order.
func (f *Feed) Publish(p domain.Position) {
	f.mu.Lock()
	defer f.mu.Unlock()

	last := p
	f.last = &last

	for _, ch := range f.subs {
		select {
		case ch <- p:
		default:
			// Subscriber has fallen subscriberBuffer samples behind; drop.
		}
	}
}

// Current returns the most recently published sample, or
// ErrProviderUnavailable when no sample has been published yet.
func (f *Feed) Current(_ context.Context) (domain.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.last == nil {
		return domain.Position{}, ErrProviderUnavailable
	}
	return *f.last, nil
}

// Subscribe registers a new sample stream. The stream is closed and the
// subscriber unregistered when ctx is cancelled.
func (f *Feed) Subscribe(ctx context.Context) (<-chan domain.Position, error) {
	ch := make(chan domain.Position, subscriberBuffer)

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
