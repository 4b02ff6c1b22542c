// Package sse broadcasts collection changes to browsers over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/roamdeck/internal/importer"
)

// Event types.
const (
	TypeCardCreated       = "card.created"
	TypeCardUpdated       = "card.updated"
	TypeImportCompleted   = "import.completed"
	TypeExportChanged     = "export.changed"
	TypeCollectionUpdated = "collection.updated"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// notice is an event plus whether it changed the collection.
type notice struct {
	event   Event
	changes bool
}

// Broker manages SSE client connections and broadcasts events.
//
// One goroutine owns the client set and the collection.updated throttle;
// public methods talk to it over channels.
type Broker struct {
	throttle time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	noticeCh      chan notice
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits collection.updated at most once per
// throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle:      throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		noticeCh:      make(chan notice, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastUpdate time.Time

	send := func(event Event) {
		raw, err := encode(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case n := <-b.noticeCh:
			send(n.event)
			if !n.changes {
				continue
			}
			if now := time.Now(); now.Sub(lastUpdate) >= b.throttle {
				lastUpdate = now
				send(Event{Type: TypeCollectionUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

func (b *Broker) notify(n notice) {
	if b.closed.Load() {
		return
	}
	select {
	case b.noticeCh <- n:
	case <-b.stopped:
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.notify(notice{event: event})
}

// PublishCardEvent announces a created or updated card.
func (b *Broker) PublishCardEvent(kind, blockID string) {
	typ := TypeCardUpdated
	if kind == "created" {
		typ = TypeCardCreated
	}
	b.notify(notice{
		event:   Event{Type: typ, Data: map[string]string{"block_id": blockID}},
		changes: true,
	})
}

// PublishImport announces a finished import of the named export.
func (b *Broker) PublishImport(name string, s importer.Summary) {
	b.notify(notice{
		event: Event{Type: TypeImportCompleted, Data: map[string]any{
			"export":           name,
			"summary":          s.String(),
			"added_or_updated": s.AddedOrUpdated,
			"unchanged":        s.Unchanged,
		}},
		changes: s.AddedOrUpdated > 0,
	})
}

// PublishExportEvent announces an export the inbox watcher picked up.
func (b *Broker) PublishExportEvent(kind, path string) {
	b.notify(notice{event: Event{Type: TypeExportChanged, Data: map[string]string{"kind": kind, "path": path}}})
}

// ServeHTTP is the SSE endpoint handler.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
