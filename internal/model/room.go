package model

type RoomState string

const (
	RoomLobby      RoomState = "lobby"
	RoomInProgress RoomState = "in-progress"
	RoomEndGame    RoomState = "end-game"
)

// RoomSettings are the host-tunable game parameters. Values outside the
// allowed sets are clamped at start-game time.
type RoomSettings struct {
	TotalRounds   int `json:"totalRounds"`
	RoundDuration int `json:"roundDuration"` // seconds per drawing turn
}

// RoomSnapshot is the wire view of a room, sent on room-created/room-joined
// and whenever the lobby roster changes.
type RoomSnapshot struct {
	Code        string    `json:"roomId"`
	Host        string    `json:"host"`
	State       RoomState `json:"gameState"`
	Players     []*Player `json:"players"`
	CustomWords []string  `json:"customWords"`
	Round       int       `json:"currentRound"`
	MaxRounds   int       `json:"maxRounds"`
}
