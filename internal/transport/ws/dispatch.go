package ws

import (
	"encoding/json"
	"log"

	"drawdash/internal/game"
	"drawdash/internal/model"
)

// Inbound message types
const (
	msgCreateRoom       = "create-room"
	msgJoinRoom         = "join-room"
	msgAddCustomWord    = "add-custom-word"
	msgRemoveCustomWord = "remove-custom-word"
	msgStartGame        = "start-game"
	msgWordChosen       = "word-chosen"
	msgDrawData         = "draw-data"
	msgClearCanvas      = "clear-canvas"
	msgGuess            = "guess"
	msgPrivateMessage   = "private-message"
	msgGetMyStats       = "get-my-stats"
	msgLeaveRoom        = "leave-room"
)

type createRoomPayload struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type wordPayload struct {
	RoomID string `json:"roomId"`
	Word   string `json:"word"`
}

type startGamePayload struct {
	RoomID   string              `json:"roomId"`
	Settings *model.RoomSettings `json:"settings"`
}

type drawDataPayload struct {
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type guessPayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type privateMessagePayload struct {
	To       string `json:"to"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Router turns inbound frames into engine calls. Engine errors come back as
// sentinel values and leave here as a single "error" event, the same shape
// for every operation.
type Router struct {
	engine *game.Engine
	hub    *Hub
}

func NewRouter(engine *game.Engine, hub *Hub) *Router {
	return &Router{engine: engine, hub: hub}
}

// identity is the engine-facing view of a client. Display fields supplied
// with the event win over token fields, matching how guests name themselves
// per room.
func (rt *Router) identity(c *Client, username, avatar string) game.Identity {
	if username == "" {
		username = c.Username
	}
	return game.Identity{
		SessionID: c.ID,
		UserID:    c.UserID,
		Username:  username,
		Avatar:    avatar,
	}
}

func (rt *Router) dispatch(c *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("session %s: bad frame: %v", c.ID, err)
		return
	}

	switch msg.Type {
	case msgCreateRoom:
		var p createRoomPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		r, err := rt.engine.CreateRoom(rt.identity(c, p.Username, p.Avatar))
		if err != nil {
			rt.sendError(c, err)
			return
		}
		rt.hub.JoinRoom(c, r.Code())

	case msgJoinRoom:
		var p joinRoomPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		rt.hub.JoinRoom(c, p.RoomID)
		if err := rt.engine.JoinRoom(p.RoomID, rt.identity(c, p.Username, p.Avatar)); err != nil {
			rt.hub.LeaveRoom(c)
			rt.sendError(c, err)
		}

	case msgAddCustomWord:
		var p wordPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		if err := rt.engine.AddCustomWord(p.RoomID, c.ID, p.Word); err != nil {
			rt.sendError(c, err)
		}

	case msgRemoveCustomWord:
		var p wordPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		if err := rt.engine.RemoveCustomWord(p.RoomID, c.ID, p.Word); err != nil {
			rt.sendError(c, err)
		}

	case msgStartGame:
		var p startGamePayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		if err := rt.engine.StartGame(p.RoomID, c.ID, p.Settings); err != nil {
			rt.sendError(c, err)
		}

	case msgWordChosen:
		var p wordPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		if err := rt.engine.ChooseWord(p.RoomID, c.ID, p.Word); err != nil {
			rt.sendError(c, err)
		}

	case msgDrawData:
		var p drawDataPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		rt.engine.RelayDraw(p.RoomID, c.ID, p.Data)

	case msgClearCanvas:
		var p roomPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		rt.engine.ClearCanvas(p.RoomID, c.ID)

	case msgGuess:
		var p guessPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		rt.engine.Guess(p.RoomID, rt.identity(c, "", ""), p.Message)

	case msgPrivateMessage:
		var p privateMessagePayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		rt.engine.PrivateMessage(rt.identity(c, p.Username, ""), p.To, p.Message)

	case msgGetMyStats:
		rt.engine.SendStats(rt.identity(c, "", ""))

	case msgLeaveRoom:
		var p roomPayload
		if !rt.decode(c, msg.Payload, &p) {
			return
		}
		rt.engine.LeaveRoom(p.RoomID, c.ID)
		rt.hub.LeaveRoom(c)

	default:
		log.Printf("session %s: unknown message type %q", c.ID, msg.Type)
	}
}

// disconnected runs when the read pump exits, before the hub forgets the
// session.
func (rt *Router) disconnected(c *Client) {
	rt.engine.Disconnect(c.ID)
}

func (rt *Router) decode(c *Client, raw json.RawMessage, into any) bool {
	if len(raw) == 0 {
		rt.hub.Send(c.ID, game.EvtError, "missing payload")
		return false
	}
	if err := json.Unmarshal(raw, into); err != nil {
		log.Printf("session %s: bad payload: %v", c.ID, err)
		rt.hub.Send(c.ID, game.EvtError, "malformed payload")
		return false
	}
	return true
}

func (rt *Router) sendError(c *Client, err error) {
	rt.hub.Send(c.ID, game.EvtError, err.Error())
}
