package ws

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256

	// Generous enough for a continuous stroke stream, tight enough to stop
	// a client flooding guesses.
	messagesPerSecond = 100
	messageBurst      = 200
)

// Client is one WebSocket session. ID is the ephemeral session identity the
// game engine sees; UserID/Username come from a login token and are empty
// for guests.
type Client struct {
	ID       string
	UserID   string
	Username string
	Avatar   string

	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	room    string // guarded by hub.mu
}

func newClient(hub *Hub, conn *websocket.Conn, id, userID, username, avatar string) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		Username: username,
		Avatar:   avatar,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		limiter:  rate.NewLimiter(rate.Limit(messagesPerSecond), messageBurst),
	}
}

// enqueue hands a frame to the write pump, dropping it when the client
// cannot keep up. Callers hold hub.mu, so this must never block.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) readPump(router *Router) {
	defer func() {
		router.disconnected(c)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("session %s read error: %v", c.ID, err)
			}
			break
		}
		if !c.limiter.Allow() {
			continue
		}
		router.dispatch(c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
