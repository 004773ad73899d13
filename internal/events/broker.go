// Package events fans out stale-region notices to live clients so a browser
// front-end knows which view models to fetch again.
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/fishblog/fishblog/internal/view"
)

// Update announces the regions a command left stale.
type Update struct {
	Seq     uint64        `json:"seq"`
	Command string        `json:"command"`
	Stale   []view.Region `json:"stale"`
}

// Subscriber receives updates on Ch until it unsubscribes.
type Subscriber struct {
	ID int
	Ch chan Update
}

// Broker routes updates to subscribers. Slow subscribers miss updates
// instead of blocking the publisher.
type Broker struct {
	mu          sync.RWMutex
	log         *zap.Logger
	nextID      int
	seq         uint64
	subscribers map[int]*Subscriber
}

// NewBroker creates an update broker.
func NewBroker(log *zap.Logger) *Broker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broker{
		log:         log,
		subscribers: make(map[int]*Subscriber),
	}
}

// Subscribe registers a new subscriber.
func (b *Broker) Subscribe() *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscriber{ID: b.nextID, Ch: make(chan Update, 32)}
	b.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscriber.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// The channel stays open: a publisher may hold a snapshot of it.
	delete(b.subscribers, id)
}

// Subscribers returns the number of live subscribers.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Publish sends an update to every subscriber. Commands that left nothing
// stale are not published.
func (b *Broker) Publish(command string, stale []view.Region) {
	if len(stale) == 0 {
		return
	}

	b.mu.Lock()
	b.seq++
	u := Update{Seq: b.seq, Command: command, Stale: append([]view.Region(nil), stale...)}
	subs := make([]*Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	dropped := 0
	for _, sub := range subs {
		select {
		case sub.Ch <- u:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.log.Warn("dropped updates for slow subscribers",
			zap.Int("dropped", dropped),
			zap.String("command", command),
		)
	}
}
