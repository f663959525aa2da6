package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/pkg/logger"
)

// Event types pushed to ticket subscribers.
const (
	EventMessage     = "message"
	EventStatus      = "status"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
)

// Event is the JSON frame written to subscribers.
type Event struct {
	Type     string                `json:"type"`
	TicketID uint                  `json:"ticket_id"`
	UserID   uint                  `json:"user_id,omitempty"`
	Message  *model.SupportMessage `json:"message,omitempty"`
	Status   model.TicketStatus    `json:"status,omitempty"`
}

// ClientMessage is a frame received from a subscriber.
type ClientMessage struct {
	Type string `json:"type"` // typing_start, typing_stop
}

// Client is one websocket subscription to a ticket.
type Client struct {
	Hub      *Hub
	Conn     *Conn
	UserID   uint
	TicketID uint
	Send     chan []byte

	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex
}

type broadcastMessage struct {
	ticketID uint
	data     []byte
	skip     *Client
}

// Hub tracks subscribers per support ticket.
type Hub struct {
	rooms map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *broadcastMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.TicketID]; !ok {
				h.rooms[client.TicketID] = make(map[*Client]bool)
			}
			h.rooms[client.TicketID][client] = true
			subscribers := len(h.rooms[client.TicketID])
			h.mu.Unlock()

			logger.Info("WebSocket client subscribed", map[string]interface{}{
				"user_id":     client.UserID,
				"ticket_id":   client.TicketID,
				"subscribers": subscribers,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[message.ticketID] {
				if client == message.skip {
					continue
				}
				select {
				case client.Send <- message.data:
				default:
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id":   client.UserID,
						"ticket_id": client.TicketID,
					})
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	room, ok := h.rooms[client.TicketID]
	if !ok || !room[client] {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.TicketID)
	}
	close(client.Send)

	logger.Debug("WebSocket client unsubscribed", map[string]interface{}{
		"user_id":   client.UserID,
		"ticket_id": client.TicketID,
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for client := range room {
			h.remove(client)
		}
	}
}

// Stop ends Run and disconnects every subscriber.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers counts live connections on a ticket.
func (h *Hub) Subscribers(ticketID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[ticketID])
}

func (h *Hub) send(ticketID uint, event Event, skip *Client) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal websocket event", err, map[string]interface{}{
			"ticket_id": ticketID,
		})
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{ticketID: ticketID, data: data, skip: skip}:
	default:
		// live delivery is best effort, the thread stays in the database
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"ticket_id": ticketID,
			"type":      event.Type,
		})
	}
}

// PublishMessage pushes a new ticket message to every subscriber.
func (h *Hub) PublishMessage(ticketID uint, message *model.SupportMessage) {
	h.send(ticketID, Event{
		Type:     EventMessage,
		TicketID: ticketID,
		UserID:   message.UserID,
		Message:  message,
	}, nil)
}

func (h *Hub) PublishStatus(ticketID uint, status model.TicketStatus) {
	h.send(ticketID, Event{
		Type:     EventStatus,
		TicketID: ticketID,
		Status:   status,
	}, nil)
}

// HandleClientMessage relays typing notices to the other subscribers.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type == EventTypingStart || msg.Type == EventTypingStop {
		h.send(client.TicketID, Event{
			Type:     msg.Type,
			TicketID: client.TicketID,
			UserID:   client.UserID,
		}, client)
	}
}
