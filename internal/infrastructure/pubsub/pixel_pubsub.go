package pubsub

import (
	"context"
	"slices"
	"sync"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// subscriberBuffer is the per-subscriber event buffer
const subscriberBuffer = 32

// PixelEventFilter selects the pixels a subscriber receives. Zero values match everything.
type PixelEventFilter struct {
	Types []domain.EventType
	Shop  string
}

// Matches reports whether the pixel passes the filter
func (f PixelEventFilter) Matches(event *domain.TrackingEvent) bool {
	if f.Shop != "" && event.Shop != f.Shop {
		return false
	}
	return len(f.Types) == 0 || slices.Contains(f.Types, event.Type)
}

// Subscription is one live reader of the pixel stream.
// Events and Done are closed together when the subscription ends.
type Subscription struct {
	ID     string
	Events <-chan *domain.TrackingEvent
	Done   <-chan struct{}

	filter PixelEventFilter
	events chan *domain.TrackingEvent
	done   chan struct{}
}

// PixelPubSub fans emitted pixels out to debug subscribers without ever blocking the render
type PixelPubSub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	logger zerolog.Logger
}

// NewPixelPubSub creates an empty pixel fan-out
func NewPixelPubSub(logger zerolog.Logger) *PixelPubSub {
	return &PixelPubSub{
		subs:   make(map[string]*Subscription),
		logger: logger,
	}
}

// Subscribe opens a subscription that lives until ctx ends or Unsubscribe is called
func (ps *PixelPubSub) Subscribe(ctx context.Context, filter PixelEventFilter) *Subscription {
	events := make(chan *domain.TrackingEvent, subscriberBuffer)
	done := make(chan struct{})
	sub := &Subscription{
		ID:     uuid.NewString(),
		Events: events,
		Done:   done,
		filter: filter,
		events: events,
		done:   done,
	}

	ps.mu.Lock()
	ps.subs[sub.ID] = sub
	metrics.PixelStreamSubscribers.Set(float64(len(ps.subs)))
	ps.mu.Unlock()

	ps.logger.Info().
		Str("subscription", sub.ID).
		Str("shop", filter.Shop).
		Int("types", len(filter.Types)).
		Msg("Pixel stream subscriber joined")

	go func() {
		select {
		case <-ctx.Done():
			ps.Unsubscribe(sub.ID)
		case <-done:
		}
	}()

	return sub
}

// Unsubscribe closes the subscription. Unknown ids are ignored.
func (ps *PixelPubSub) Unsubscribe(id string) {
	ps.mu.Lock()
	sub, ok := ps.subs[id]
	if ok {
		delete(ps.subs, id)
		close(sub.events)
		close(sub.done)
		metrics.PixelStreamSubscribers.Set(float64(len(ps.subs)))
	}
	ps.mu.Unlock()

	if ok {
		ps.logger.Info().Str("subscription", id).Msg("Pixel stream subscriber left")
	}
}

// Publish hands the pixel to every matching subscriber. Full buffers drop the pixel.
func (ps *PixelPubSub) Publish(event *domain.TrackingEvent) {
	if event == nil {
		return
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, sub := range ps.subs {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.events <- event:
			metrics.PixelStreamDeliveredTotal.Inc()
		default:
			metrics.PixelStreamDroppedTotal.Inc()
			ps.logger.Warn().
				Str("subscription", sub.ID).
				Str("event", string(event.Type)).
				Msg("Pixel stream subscriber is behind, dropping pixel")
		}
	}
}

// Subscribers returns the number of open subscriptions
func (ps *PixelPubSub) Subscribers() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subs)
}
