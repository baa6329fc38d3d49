package server

import (
	"context"
	"sync"
	"time"

	"github.com/df07/go-progressive-gltracer/pkg/renderer"
)

// DefaultStreamInterval limits how often frame stats are streamed
const DefaultStreamInterval = 100 * time.Millisecond

// subscriberBuffer is the number of stream events a slow client may lag
const subscriberBuffer = 32

// StreamEvent is one message on the telemetry websocket
type StreamEvent struct {
	Type    string               `json:"type"` // "stats" or "console"
	Stats   *renderer.FrameStats `json:"stats,omitempty"`
	Console *ConsoleMessage      `json:"console,omitempty"`
}

// Hub keeps the latest frame stats and fans stats and console messages
// out to stream subscribers. It implements renderer.StatsPublisher.
type Hub struct {
	mu          sync.Mutex
	latest      renderer.FrameStats
	hasLatest   bool
	lastStream  time.Time
	interval    time.Duration
	subscribers map[chan StreamEvent]struct{}
	console     chan ConsoleMessage
	now         func() time.Time
}

// NewHub creates a hub streaming stats at most once per interval
func NewHub(interval time.Duration) *Hub {
	return &Hub{
		interval:    interval,
		subscribers: make(map[chan StreamEvent]struct{}),
		console:     make(chan ConsoleMessage, 100),
		now:         time.Now,
	}
}

// ConsoleChan is the channel a WebLogger writes into
func (h *Hub) ConsoleChan() chan<- ConsoleMessage {
	return h.console
}

// Publish records the latest stats and streams them if the interval has
// passed. Never blocks.
func (h *Hub) Publish(stats renderer.FrameStats) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = stats
	h.hasLatest = true

	now := h.now()
	if now.Sub(h.lastStream) < h.interval {
		return
	}
	h.lastStream = now
	h.broadcastLocked(StreamEvent{Type: "stats", Stats: &stats})
}

// Latest returns the most recently published stats
func (h *Hub) Latest() (renderer.FrameStats, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.hasLatest
}

// Subscribe registers a stream subscriber. The returned function removes
// it and closes the channel.
func (h *Hub) Subscribe() (<-chan StreamEvent, func()) {
	ch := make(chan StreamEvent, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of connected stream subscribers
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Run forwards console messages to subscribers until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.console:
			h.mu.Lock()
			h.broadcastLocked(StreamEvent{Type: "console", Console: &msg})
			h.mu.Unlock()
		}
	}
}

func (h *Hub) broadcastLocked(event StreamEvent) {
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscriber, drop the event
		}
	}
}
