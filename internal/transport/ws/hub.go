package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Dashboard message types
const (
	MsgAuditCreated MessageType = "audit_created"
	MsgAuditDeleted MessageType = "audit_deleted"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans dashboard events out to every open connection of an owner
type Hub struct {
	// owner -> open dashboards (one per tab/device)
	conns map[string]map[*Connection]struct{}

	mu  sync.RWMutex
	log logrus.FieldLogger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	OwnerID string
	Send    chan []byte
	Hub     *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	OwnerID string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log logrus.FieldLogger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		log:        log.WithField("source", "ws.Hub"),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.OwnerID] == nil {
				h.conns[conn.OwnerID] = make(map[*Connection]struct{})
			}
			h.conns[conn.OwnerID][conn] = struct{}{}
			n := len(h.conns[conn.OwnerID])
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"owner": conn.OwnerID, "open": n}).Debug("dashboard connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if owned, ok := h.conns[conn.OwnerID]; ok {
				if _, ok := owned[conn]; ok {
					delete(owned, conn)
					close(conn.Send)
					if len(owned) == 0 {
						delete(h.conns, conn.OwnerID)
					}
					h.log.WithField("owner", conn.OwnerID).Debug("dashboard disconnected")
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.OwnerID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Connections returns how many dashboards the owner has open
func (h *Hub) Connections(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[ownerID])
}

// BroadcastToOwner sends a message to all of an owner's dashboards (implements service.Broadcaster)
func (h *Hub) BroadcastToOwner(ownerID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("type", msgType).Error("broadcast payload not encodable")
		return
	}
	h.broadcast <- &BroadcastMessage{
		OwnerID: ownerID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
