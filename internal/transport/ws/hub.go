package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub tracks connected clients and their room membership. It implements
// game.Notifier, so the engine talks to connections only through events.
//
// Membership changes arrive on the dispatch path, synchronously with the
// engine call that caused them, so the hub is plain-locked rather than
// running a channel loop.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Client            // session id -> client
	rooms    map[string]map[string]*Client // room code -> session id -> client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Client),
		rooms:    make(map[string]map[string]*Client),
	}
}

// Register adds a connection
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[c.ID] = c
	log.Printf("session %s connected (%s)", c.ID, c.Username)
}

// Unregister removes a connection and its room membership
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.sessions[c.ID]; !ok || existing != c {
		return
	}
	delete(h.sessions, c.ID)
	h.removeMembershipLocked(c)
	close(c.send)
	log.Printf("session %s disconnected", c.ID)
}

// JoinRoom subscribes the client to a room's broadcasts. A client is in at
// most one room; joining another replaces the old membership.
func (h *Hub) JoinRoom(c *Client, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeMembershipLocked(c)
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[string]*Client)
	}
	h.rooms[code][c.ID] = c
	c.room = code
}

// LeaveRoom drops the client's room membership
func (h *Hub) LeaveRoom(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeMembershipLocked(c)
}

func (h *Hub) removeMembershipLocked(c *Client) {
	if c.room == "" {
		return
	}
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// Send delivers an event to one session (implements game.Notifier)
func (h *Hub) Send(sessionID, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		log.Printf("encode %s failed: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.sessions[sessionID]; ok {
		c.enqueue(data)
	}
}

// Broadcast delivers an event to every member of a room (implements game.Notifier)
func (h *Hub) Broadcast(code, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		log.Printf("encode %s failed: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[code] {
		c.enqueue(data)
	}
}

// BroadcastExcept delivers an event to every room member but one (implements game.Notifier)
func (h *Hub) BroadcastExcept(code, exceptID, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		log.Printf("encode %s failed: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.rooms[code] {
		if id == exceptID {
			continue
		}
		c.enqueue(data)
	}
}

func encode(event string, payload any) ([]byte, error) {
	msg := Message{Type: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}
	return json.Marshal(&msg)
}
