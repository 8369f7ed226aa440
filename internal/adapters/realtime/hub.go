// Package realtime pushes notifications to connected browsers over
// WebSocket. One hub serves the whole process; clients are grouped by user id
// so fan-out stays per-recipient.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event is the wire envelope pushed to clients.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

const (
	// EventNotification carries a new model.Notification.
	EventNotification = "notification"
	// EventUnreadCount carries the recipient's new unread total.
	EventUnreadCount = "unread_count"
)

// Hub tracks connected clients and routes events to them.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	outbound   chan targeted
	logger     *slog.Logger

	mu      sync.RWMutex
	byUser  map[string]map[*Client]struct{}
	clients int
}

type targeted struct {
	userID string // empty means every connected client
	data   []byte
}

// NewHub constructs a Hub; call Run before handing it connections.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan targeted, 256),
		logger:     logger.With("component", "realtime_hub"),
		byUser:     make(map[string]map[*Client]struct{}),
	}
}

// Run owns the client table until ctx is canceled. All remaining clients are
// closed on shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.outbound:
			h.deliver(msg)
		}
	}
}

// Publish sends an event to every connection the user has open. Events for
// users with no open connection are dropped; the notification list catches
// them up on next load.
func (h *Hub) Publish(userID, eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.Warn("dropping unencodable event", "type", eventType, "error", err)
		return
	}
	select {
	case h.outbound <- targeted{userID: userID, data: data}:
	default:
		h.logger.Warn("outbound queue full, dropping event", "type", eventType, "user_id", userID)
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(eventType string, payload any) {
	h.Publish("", eventType, payload)
}

// ClientCount reports how many connections are open.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.byUser[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.byUser[c.userID] = set
	}
	set[c] = struct{}{}
	h.clients++
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.byUser[c.userID]
	if !ok {
		return
	}
	if _, present := set[c]; !present {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.byUser, c.userID)
	}
	h.clients--
	c.closeSend()
}

func (h *Hub) deliver(msg targeted) {
	h.mu.RLock()
	var targets []*Client
	if msg.userID == "" {
		for _, set := range h.byUser {
			for c := range set {
				targets = append(targets, c)
			}
		}
	} else {
		for c := range h.byUser[msg.userID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.trySend(msg.data) {
			// Slow consumer; drop the connection rather than block the hub.
			h.remove(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.byUser {
		for c := range set {
			c.closeSend()
		}
	}
	h.byUser = make(map[string]map[*Client]struct{})
	h.clients = 0
}
