package game

import (
	"math/rand"
	"sync"
	"time"

	"drawdash/internal/model"
)

// Room is one game session: its players (slice order = turn order), custom
// word list, and the running turn state. Every mutation happens under mu;
// rooms never share a lock.
type Room struct {
	mu sync.Mutex

	code        string
	host        string // session id of the host; always a present player
	state       model.RoomState
	players     []*model.Player
	customWords []string

	round         int // 1-indexed
	maxRounds     int
	roundDuration int // seconds

	drawerIndex int
	choosing    bool // drawer has been offered words but not yet picked
	currentWord string
	displayWord string
	timerValue  int // remaining seconds in the drawing phase

	// turnSeq invalidates in-flight clock callbacks: a tick that locks the
	// room after the turn advanced sees a stale sequence and does nothing.
	turnSeq  uint64
	turnStop chan struct{}

	pendingTurn  *time.Timer // scheduled startTurn between turns
	destroyTimer *time.Timer // end-game grace window
	closed       bool
}

func newRoom(code string, host *model.Player, settings model.RoomSettings) *Room {
	return &Room{
		code:          code,
		host:          host.ID,
		state:         model.RoomLobby,
		players:       []*model.Player{host},
		customWords:   []string{},
		round:         1,
		maxRounds:     settings.TotalRounds,
		roundDuration: settings.RoundDuration,
	}
}

func (r *Room) Code() string { return r.code }

// Snapshot returns the wire view of the room. Player pointers are copied so
// callers can marshal without holding the lock.
func (r *Room) snapshotLocked() *model.RoomSnapshot {
	players := make([]*model.Player, len(r.players))
	for i, p := range r.players {
		cp := *p
		players[i] = &cp
	}
	return &model.RoomSnapshot{
		Code:        r.code,
		Host:        r.host,
		State:       r.state,
		Players:     players,
		CustomWords: append([]string(nil), r.customWords...),
		Round:       r.round,
		MaxRounds:   r.maxRounds,
	}
}

func (r *Room) Snapshot() *model.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) playerIndexLocked(sessionID string) int {
	for i, p := range r.players {
		if p.ID == sessionID {
			return i
		}
	}
	return -1
}

func (r *Room) playerLocked(sessionID string) *model.Player {
	if i := r.playerIndexLocked(sessionID); i >= 0 {
		return r.players[i]
	}
	return nil
}

// drawerLocked returns the current drawer, or nil when the index is out of
// range (an invariant violation the engine tears the room down for).
func (r *Room) drawerLocked() *model.Player {
	if r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		return nil
	}
	return r.players[r.drawerIndex]
}

func (r *Room) isDrawerLocked(sessionID string) bool {
	d := r.drawerLocked()
	return d != nil && d.ID == sessionID
}

// scoreboardLocked returns the players sorted by score, highest first.
// Insertion order breaks ties, keeping the ranking stable across broadcasts.
func (r *Room) scoreboardLocked() []*model.Player {
	sorted := make([]*model.Player, len(r.players))
	for i, p := range r.players {
		cp := *p
		sorted[i] = &cp
	}
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Score > sorted[j-1].Score; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

// maskWord hides every letter behind '_', leaving non-letter characters
// (spaces, hyphens, digits) visible.
func maskWord(word string) string {
	masked := []rune(word)
	for i, c := range masked {
		if isLetter(c) {
			masked[i] = '_'
		}
	}
	return string(masked)
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// revealOneLocked uncovers one random still-masked letter position and
// reports whether anything was revealed.
func (r *Room) revealOneLocked() bool {
	word := []rune(r.currentWord)
	display := []rune(r.displayWord)
	if len(word) != len(display) {
		return false
	}

	var masked []int
	for i, c := range display {
		if c == '_' {
			masked = append(masked, i)
		}
	}
	if len(masked) == 0 {
		return false
	}

	i := masked[rand.Intn(len(masked))]
	display[i] = word[i]
	r.displayWord = string(display)
	return true
}

// cancelTurnLocked stops the turn clock and invalidates any tick already in
// flight. Safe to call when no turn is running.
func (r *Room) cancelTurnLocked() {
	r.turnSeq++
	if r.turnStop != nil {
		close(r.turnStop)
		r.turnStop = nil
	}
}

// stopTimersLocked cancels every scheduled action owned by the room. Called
// on destruction so no callback fires against a dead room.
func (r *Room) stopTimersLocked() {
	r.cancelTurnLocked()
	if r.pendingTurn != nil {
		r.pendingTurn.Stop()
		r.pendingTurn = nil
	}
	if r.destroyTimer != nil {
		r.destroyTimer.Stop()
		r.destroyTimer = nil
	}
}
