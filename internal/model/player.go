package model

// Player is a participant in a room. Players exist only while their room
// does; the optional UserID links them to a persistent account for stats.
type Player struct {
	ID         string `json:"id"`
	UserID     string `json:"userId,omitempty"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar,omitempty"`
	Score      int    `json:"score"`
	HasGuessed bool   `json:"hasGuessed"`
}
