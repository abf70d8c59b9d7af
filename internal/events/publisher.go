package events

import (
	"sync"
	"time"
)

// EventType identifies what changed.
type EventType string

const (
	EventPriceChanged       EventType = "price_changed"
	EventOutbid             EventType = "outbid"
	EventAuctionClosed      EventType = "auction_closed"
	EventAuctionExtended    EventType = "auction_extended"
	EventAuctionReopened    EventType = "auction_reopened"
	EventEscrowStateChanged EventType = "escrow_state_changed"
)

// Event is one state-change notification. Delivery is best-effort and
// never on the critical path of an auction outcome.
type Event struct {
	AuctionID string         `json:"auction_id"`
	Type      EventType      `json:"event_type"`
	Payload   map[string]any `json:"payload,omitempty"`
	At        time.Time      `json:"at"`
}

// Publisher fans events out to subscriber channels. Publish never blocks:
// a subscriber that cannot keep up loses events rather than stalling the
// bidding engine.
type Publisher struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewPublisher creates an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber with the given channel buffer and
// returns the receive channel plus a cancel function. Cancel closes the
// channel and is safe to call more than once.
func (p *Publisher) Subscribe(buffer int) (<-chan Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Event, buffer)
	if p.closed {
		close(ch)
		return ch, func() {}
	}

	id := p.nextID
	p.nextID++
	p.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if sub, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber that has buffer space left.
func (p *Publisher) Publish(ev Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default: // slow subscriber, drop
		}
	}
}

// Close shuts the publisher down and closes all subscriber channels.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
