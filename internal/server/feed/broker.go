// Package feed is the in-process change feed. Services publish row changes
// after commit and every Subscribe stream receives the changes for its
// owner and table.
package feed

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clientbook/internal/logging"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/dmitrijs2005/clientbook/internal/server/metrics"
)

const DefaultBufferSize = 64

type topic struct {
	ownerID string
	table   models.Table
}

// Subscription receives the events of one owner and table until Close is
// called or the broker drops it. Events is closed in both cases.
type Subscription struct {
	ch     chan models.ChangeEvent
	topic  topic
	broker *Broker
	once   sync.Once
}

func (s *Subscription) Events() <-chan models.ChangeEvent { return s.ch }

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.broker.remove(s)
}

// Broker fans change events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full is disconnected so it can resync.
type Broker struct {
	mu      sync.Mutex
	subs    map[topic]map[*Subscription]struct{}
	buffer  int
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewBroker builds a broker. m may be nil.
func NewBroker(buffer int, logger logging.Logger, m *metrics.Metrics) *Broker {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	return &Broker{
		subs:    make(map[topic]map[*Subscription]struct{}),
		buffer:  buffer,
		logger:  logger.With("module", "feed"),
		metrics: m,
	}
}

func (b *Broker) Subscribe(ownerID string, table models.Table) *Subscription {
	s := &Subscription{
		ch:     make(chan models.ChangeEvent, b.buffer),
		topic:  topic{ownerID: ownerID, table: table},
		broker: b,
	}

	b.mu.Lock()
	set, ok := b.subs[s.topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[s.topic] = set
	}
	set[s] = struct{}{}
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.FeedSubscribers.Inc()
	}
	return s
}

// Publish delivers events to the subscribers of ownerID. Events whose row
// belongs to another owner are ignored.
func (b *Broker) Publish(ctx context.Context, ownerID string, events ...models.ChangeEvent) {
	var dropped []*Subscription

	b.mu.Lock()
	for _, ev := range events {
		if ev.OwnerID() != ownerID {
			b.logger.Warn(ctx, "skipping event for foreign owner", "table", ev.Table, "op", ev.Operation)
			continue
		}
		if b.metrics != nil {
			b.metrics.FeedPublished.WithLabelValues(string(ev.Table)).Inc()
		}
		for s := range b.subs[topic{ownerID: ownerID, table: ev.Table}] {
			select {
			case s.ch <- ev:
			default:
				dropped = append(dropped, s)
			}
		}
	}
	b.mu.Unlock()

	for _, s := range dropped {
		if b.remove(s) {
			b.logger.Warn(ctx, "subscriber too slow, disconnected", "owner", s.topic.ownerID, "table", s.topic.table)
			if b.metrics != nil {
				b.metrics.FeedDropped.Inc()
			}
		}
	}
}

// Count returns the number of open subscriptions.
func (b *Broker) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, set := range b.subs {
		n += len(set)
	}
	return n
}

func (b *Broker) remove(s *Subscription) bool {
	removed := false
	s.once.Do(func() {
		b.mu.Lock()
		if set, ok := b.subs[s.topic]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(b.subs, s.topic)
			}
		}
		close(s.ch)
		b.mu.Unlock()

		if b.metrics != nil {
			b.metrics.FeedSubscribers.Dec()
		}
		removed = true
	})
	return removed
}
