package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/tutiful/tutiful_backend/models"
)

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

// Hub keeps one live connection per user and pushes notifications to it.
type Hub struct {
	clients   map[uuid.UUID]Conn
	clientsMu sync.RWMutex

	Register   chan *Client
	Unregister chan *Client
	Notify     chan *models.Notification
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]Conn),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Notify:     make(chan *models.Notification, 64),
	}
}

var (
	defaultHub  *Hub
	defaultOnce sync.Once
)

// Default returns the process-wide hub, starting it on first use.
func Default() *Hub {
	defaultOnce.Do(func() {
		defaultHub = NewHub()
		go defaultHub.Run()
	})
	return defaultHub
}

// Push queues n for delivery. Users without a live connection simply miss the
// push; the stored notification is still there for them to fetch.
func (h *Hub) Push(n models.Notification) {
	h.Notify <- &n
}

// Connected reports whether userID currently has a registered connection.
func (h *Hub) Connected(userID uuid.UUID) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			log.Printf("Client registered: %s", client.UserID)
			h.clientsMu.Lock()
			if old, ok := h.clients[client.UserID]; ok && old != client.Conn {
				_ = old.Close()
			}
			h.clients[client.UserID] = client.Conn
			h.clientsMu.Unlock()
		case client := <-h.Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			h.clientsMu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.clientsMu.Unlock()
		case n := <-h.Notify:
			h.deliver(n)
		}
	}
}

func (h *Hub) deliver(n *models.Notification) {
	h.clientsMu.RLock()
	conn, ok := h.clients[n.UserID]
	h.clientsMu.RUnlock()
	if !ok {
		return
	}
	if err := conn.WriteJSON(message("notification", n)); err != nil {
		log.Printf("Error sending notification to client %s: %v", n.UserID, err)
		_ = conn.Close()
		h.clientsMu.Lock()
		if cur, ok := h.clients[n.UserID]; ok && cur == conn {
			delete(h.clients, n.UserID)
		}
		h.clientsMu.Unlock()
	}
}

type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func message(kind string, data interface{}) envelope {
	return envelope{Type: kind, Data: data}
}

// IsClosed reports whether err is a normal or abnormal close from the peer.
func IsClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure)
}
