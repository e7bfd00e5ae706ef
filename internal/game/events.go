package game

import "drawdash/internal/model"

// Outbound event types pushed through the Notifier. Names are part of the
// wire contract with clients.
const (
	EvtRoomCreated       = "room-created"
	EvtRoomJoined        = "room-joined"
	EvtPlayerJoined      = "player-joined"
	EvtPlayerLeft        = "player-left"
	EvtNewHost           = "new-host"
	EvtCustomWordAdded   = "custom-word-added"
	EvtGameStarted       = "game-started"
	EvtGameRestarted     = "game-restarted"
	EvtYourTurnToDraw    = "your-turn-to-draw"
	EvtNewDrawer         = "new-drawer"
	EvtHintUpdate        = "hint-update"
	EvtTimerUpdate       = "timer-update"
	EvtDrawing           = "drawing"
	EvtCanvasCleared     = "canvas-cleared"
	EvtNewMessage        = "new-message"
	EvtPlayerGuessed     = "player-guessed"
	EvtCorrectGuess      = "correct-guess"
	EvtUpdateScoreboard  = "update-scoreboard"
	EvtTurnEnd           = "turn-end"
	EvtGameOver          = "game-over"
	EvtNewPrivateMessage = "new-private-message"
	EvtStatsUpdated      = "stats-updated"
	EvtError             = "error"
)

// Turn-end reasons
const (
	ReasonTimeout    = "timeout"
	ReasonAllGuessed = "all-guessed"
	ReasonDrawerLeft = "drawer-left"
)

// Notifier delivers outbound events to connected clients. The websocket hub
// implements it; deliveries must never block the caller.
type Notifier interface {
	Send(sessionID, event string, payload any)
	Broadcast(code, event string, payload any)
	BroadcastExcept(code, exceptID, event string, payload any)
}

// Identity is the already-authenticated caller of an inbound event. UserID
// is empty for guests.
type Identity struct {
	SessionID string
	UserID    string
	Username  string
	Avatar    string
}

type WordChoicesPayload struct {
	WordChoices []string `json:"wordChoices"`
}

type NewDrawerPayload struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type PlayerGuessedPayload struct {
	Username string `json:"username"`
}

type CorrectGuessPayload struct {
	Message string `json:"message"`
	Points  int    `json:"points"`
}

type ChatMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type PrivateMessagePayload struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type TurnEndPayload struct {
	Word   string `json:"word"`
	Reason string `json:"reason"`
}

type NewHostPayload struct {
	Host     string `json:"host"`
	Username string `json:"username"`
}

type CustomWordsPayload struct {
	CustomWords []string `json:"customWords"`
}

type PlayerLeftPayload struct {
	ID      string          `json:"id"`
	Players []*model.Player `json:"players"`
}

type GameOverPayload struct {
	Players []*model.Player `json:"players"`
}
