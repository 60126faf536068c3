package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"neontix/internal/checkout"
	"neontix/pkg/logger"
)

type MessageType string

const (
	MessageTypeTick        MessageType = "tick"
	MessageTypeConfirmed   MessageType = "confirmed"
	MessageTypeExpired     MessageType = "expired"
	MessageTypeCancelled   MessageType = "cancelled"
	MessageTypeError       MessageType = "error"
	MessageTypeSeatsBooked MessageType = "seats_booked"

	MessageTypeSelectionDropped MessageType = "selection_dropped"
)

// Message is the JSON frame pushed to websocket clients
type Message struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	EventID   string      `json:"event_id,omitempty"`
	Remaining int         `json:"remaining"`
	Message   string      `json:"message,omitempty"`
	BookingID string      `json:"booking_id,omitempty"`
	SeatIDs   []string    `json:"seat_ids,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type envelope struct {
	topic string
	data  []byte
}

// Hub fans messages out to the clients subscribed to a topic. A topic is a
// shopper session id or an event's seat map (see EventTopic).
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	done       chan struct{}
	mu         sync.RWMutex
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

func EventTopic(eventID string) string {
	return "event:" + eventID
}

// Run owns the client registry until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.topic] == nil {
				h.clients[client.topic] = make(map[*Client]bool)
			}
			h.clients[client.topic][client] = true
			h.mu.Unlock()
			h.log.Debug("WebSocket client registered", "topic", client.topic)

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case env := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[env.topic] {
				select {
				case client.send <- env.data:
				default:
					// Slow consumer
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.topic)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Publish queues a message for a topic. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Publish(topic string, msg Message) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("Failed to marshal websocket message", "error", err.Error())
		return
	}

	select {
	case h.broadcast <- envelope{topic: topic, data: data}:
	default:
		h.log.Warn("WebSocket broadcast queue full, dropping message", "topic", topic, "type", string(msg.Type))
	}
}

// Notify forwards checkout notices to the session's subscribers. A confirmed
// checkout is also announced on the event topic so open seat maps refresh.
func (h *Hub) Notify(n checkout.Notice) {
	msg := Message{
		Type:      MessageType(n.Kind),
		SessionID: n.SessionID,
		EventID:   n.EventID,
		Remaining: n.Remaining,
		Message:   n.Message,
		BookingID: n.BookingID,
		SeatIDs:   n.SeatIDs,
		Timestamp: n.At.UnixMilli(),
	}
	h.Publish(n.SessionID, msg)

	if n.Kind == checkout.NoticeConfirmed && n.EventID != "" {
		h.Publish(EventTopic(n.EventID), Message{
			Type:      MessageTypeSeatsBooked,
			EventID:   n.EventID,
			SeatIDs:   n.SeatIDs,
			Timestamp: msg.Timestamp,
		})
	}
}

// SelectionDropped tells a shopper session that seats were removed from its
// selection because another shopper booked them.
func (h *Hub) SelectionDropped(sessionID, eventID string, seatIDs []string) {
	h.Publish(sessionID, Message{
		Type:      MessageTypeSelectionDropped,
		SessionID: sessionID,
		EventID:   eventID,
		SeatIDs:   seatIDs,
		Message:   "Some of your seats were just booked by someone else",
	})
}

func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
