// Package broadcast fans session updates out to every connected participant
// of a session code, over WebSocket send channels and SSE subscriber
// channels. Delivery is best-effort: a closed or slow receiver is dropped,
// never surfaced to the action that triggered the broadcast.
package broadcast

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sendBuffer sizes each receiver's queue; a receiver that falls this far
// behind starts losing messages rather than blocking the sender.
const sendBuffer = 64

var metricBroadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gameplatform_broadcasts_total",
	Help: "Broadcast payloads fanned out, by event",
}, []string{"event"})

// Message is the envelope every receiver gets.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub routes encoded messages to the receivers registered under a session
// code. It implements session.Broadcaster.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[string]chan []byte // code -> connID -> send queue
	subs  map[string]map[chan []byte]bool   // code -> SSE subscribers
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[string]chan []byte),
		subs:  make(map[string]map[chan []byte]bool),
	}
}

// Register attaches a WebSocket connection's send queue to a session code.
// One connection may be registered under several codes with the same queue;
// the connection owns the channel and closes it after unregistering.
func (h *Hub) Register(code, connID string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[code] == nil {
		h.conns[code] = make(map[string]chan []byte)
	}
	h.conns[code][connID] = ch
}

// Unregister detaches a connection from a code. Once it returns, no
// broadcast will touch the connection's queue for that code again.
func (h *Hub) Unregister(code, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.conns[code]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.conns, code)
		}
	}
}

// Subscribe adds an SSE listener for a session code.
func (h *Hub) Subscribe(code string) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[code] == nil {
		h.subs[code] = make(map[chan []byte]bool)
	}
	ch := make(chan []byte, sendBuffer)
	h.subs[code][ch] = true
	return ch
}

// Unsubscribe removes an SSE listener and closes its channel.
func (h *Hub) Unsubscribe(code string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subs[code]; ok && subs[ch] {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.subs, code)
		}
	}
}

// Broadcast delivers payload wrapped in a typed envelope to every receiver
// of the session code, and no one else.
func (h *Hub) Broadcast(code, event string, payload any) {
	data, err := Encode(event, payload)
	if err != nil {
		log.Printf("broadcast: encode %s for %s: %v", event, code, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.conns[code] {
		select {
		case ch <- data:
		default:
			// Receiver too far behind; drop rather than block the session.
		}
	}
	for ch := range h.subs[code] {
		select {
		case ch <- data:
		default:
		}
	}
	metricBroadcasts.WithLabelValues(event).Inc()
}

// Encode wraps payload in the wire envelope.
func Encode(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: event, Payload: raw})
}
