package ws

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"drawdash/internal/game"
	"drawdash/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler upgrades WebSocket connections and attaches them to the hub
type Handler struct {
	hub     *Hub
	router  *Router
	authSvc *service.AuthService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, engine *game.Engine, authSvc *service.AuthService) *Handler {
	return &Handler{
		hub:     hub,
		router:  NewRouter(engine, hub),
		authSvc: authSvc,
	}
}

// ServeWS handles GET /v1/ws. A login token in the query binds the session
// to an account; without one the session plays as a guest.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var userID, username string
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := h.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
		username = claims.Username
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := newClient(h.hub, wsConn, uuid.New().String(), userID, username, "")
	h.hub.Register(client)

	go client.writePump()
	go client.readPump(h.router)
}
