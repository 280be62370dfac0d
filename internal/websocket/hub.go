package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ashascraft/storefront-backend/pkg/logger"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"

	sendBufferSize = 64
)

// Event is the envelope pushed to every connected admin dashboard.
type Event struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
	SentAt time.Time   `json:"sent_at"`
}

// ClientMessage is what a dashboard may send back. Only "ping" is understood.
type ClientMessage struct {
	Type string `json:"type"`
}

// Client is one admin websocket session.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte

	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Hub fans order events out to every connected admin session.
type Hub struct {
	// UserID -> sessions, one per open dashboard tab
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	stop       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
		stop:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for userID, list := range h.clients {
				for _, c := range list {
					close(c.Send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("Admin feed client registered", map[string]interface{}{
				"user_id":  client.UserID,
				"sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for _, list := range h.clients {
				for _, client := range list {
					select {
					case client.Send <- message:
					default:
						slow = append(slow, client)
					}
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				logger.Warn("Admin feed client too slow, disconnecting", map[string]interface{}{
					"user_id": client.UserID,
				})
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = kept
	}
	close(client.Send)

	logger.Info("Admin feed client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(kept),
	})
}

// Stop closes every session and ends Run.
func (h *Hub) Stop() {
	close(h.stop)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish queues an event for every session. A full queue drops the event.
func (h *Hub) Publish(eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, SentAt: time.Now()})
	if err != nil {
		logger.Error("Failed to marshal admin feed event", err, map[string]interface{}{
			"type": eventType,
		})
		return err
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("Admin feed broadcast queue full, event dropped", map[string]interface{}{
			"type": eventType,
		})
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, list := range h.clients {
		n += len(list)
	}
	return n
}

// HandleClientMessage answers pings and ignores everything else.
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
		logger.Warn("Admin feed rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Debug("Ignoring unreadable admin feed message", map[string]interface{}{
			"user_id": client.UserID,
		})
		return
	}
	if msg.Type != "ping" {
		return
	}

	pong, _ := json.Marshal(Event{Type: "pong", SentAt: now})
	select {
	case client.Send <- pong:
	default:
	}
}
