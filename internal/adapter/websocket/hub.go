package websocket

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const sendBuffer = 64

// Hub fans messages out to the live connections of each user.
type Hub struct {
	clients map[*Client]bool

	notify     chan userMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	log *zap.Logger
	mu  sync.RWMutex
}

// userMessage targets every connection of userID, or only client when set.
type userMessage struct {
	userID string
	client *Client
	data   []byte
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	finished chan struct{}
	userID   string
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		notify:     make(chan userMessage, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// Run serves registrations and deliveries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.notify:
			h.mu.Lock()
			for client := range h.clients {
				if client.userID != msg.userID || (msg.client != nil && msg.client != client) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// slow consumer
					h.log.Warn("Dropping websocket client", zap.String("user_id", client.userID))
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToUser queues data for every connection of userID. It never blocks;
// a full queue drops the message.
func (h *Hub) SendToUser(userID string, data []byte) {
	select {
	case h.notify <- userMessage{userID: userID, data: data}:
	default:
		h.log.Warn("Websocket notify queue full", zap.String("user_id", userID))
	}
}

// Connections counts live connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.userID == userID {
			n++
		}
	}
	return n
}

// sendTo queues data for a single connection.
func (h *Hub) sendTo(client *Client, data []byte) {
	select {
	case h.notify <- userMessage{userID: client.userID, client: client, data: data}:
	default:
		h.log.Warn("Websocket notify queue full", zap.String("user_id", client.userID))
	}
}

// attach registers conn and starts its writer. The caller owns the read
// loop and must call detach when it ends. It returns false once the hub
// has stopped.
func (h *Hub) attach(conn *websocket.Conn, userID string) (*Client, bool) {
	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		finished: make(chan struct{}),
		userID:   userID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		return nil, false
	}
	go client.writePump()
	return client, true
}

// detach unregisters client and waits for its writer, so nothing touches
// the connection after the handler returns.
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
	<-client.finished
}

func (c *Client) writePump() {
	defer close(c.finished)
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			// keep draining so the hub never blocks on this client
			for range c.send {
			}
			return
		}
	}
}
