package game

import (
	"context"
	"log"
	"strings"
	"time"

	"drawdash/internal/model"
)

const (
	defaultMaxRounds     = 3
	defaultRoundDuration = 90 // seconds

	minRounds = 1
	maxRounds = 10

	statsTimeout = 5 * time.Second
)

// allowedDurations are the selectable turn lengths; anything else snaps to
// the default.
var allowedDurations = []int{30, 60, 90, 120, 180}

// UserStore persists per-account counters. Implementations are best-effort
// collaborators: the engine logs failures and keeps playing.
type UserStore interface {
	IncrementStats(ctx context.Context, userID string, delta model.StatsDelta) error
	ReadStats(ctx context.Context, userID string) (*model.UserStats, error)
}

// Timing groups every delay and interval the turn machinery uses. Tests
// inject millisecond values; production uses DefaultTiming.
type Timing struct {
	StartDelay   time.Duration // start-game to first turn
	TurnDelay    time.Duration // between turns
	TickInterval time.Duration // countdown broadcast granularity
	HintInterval time.Duration // letter reveal cadence
	EndGameTTL   time.Duration // grace window before an ended room is destroyed
}

func DefaultTiming() Timing {
	return Timing{
		StartDelay:   500 * time.Millisecond,
		TurnDelay:    4 * time.Second,
		TickInterval: time.Second,
		HintInterval: 15 * time.Second,
		EndGameTTL:   30 * time.Second,
	}
}

// Engine drives every room's turn state machine. All methods are safe for
// concurrent use; each room serializes on its own lock.
type Engine struct {
	rooms    *Registry
	words    *WordBank
	notifier Notifier
	users    UserStore
	timing   Timing
}

func NewEngine(rooms *Registry, words *WordBank, notifier Notifier, users UserStore, timing Timing) *Engine {
	return &Engine{
		rooms:    rooms,
		words:    words,
		notifier: notifier,
		users:    users,
		timing:   timing,
	}
}

// CreateRoom seeds a single-player lobby and announces it to the creator.
func (e *Engine) CreateRoom(id Identity) (*Room, error) {
	host := &model.Player{
		ID:       id.SessionID,
		UserID:   id.UserID,
		Username: id.Username,
		Avatar:   id.Avatar,
	}
	settings := model.RoomSettings{
		TotalRounds:   defaultMaxRounds,
		RoundDuration: defaultRoundDuration,
	}

	r, err := e.rooms.add(func(code string) *Room {
		return newRoom(code, host, settings)
	})
	if err != nil {
		log.Printf("create room failed: %v", err)
		return nil, ErrCodesExhausted
	}

	log.Printf("room %s created by %s", r.code, id.Username)
	e.notifier.Send(id.SessionID, EvtRoomCreated, r.Snapshot())
	return r, nil
}

// JoinRoom appends a player to a lobby. Joins into an unknown or running
// room are rejected; the join is atomic with respect to a concurrent
// start-game because both hold the room lock.
func (e *Engine) JoinRoom(code string, id Identity) error {
	r, ok := e.rooms.Get(code)
	if !ok {
		return ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state != model.RoomLobby {
		return ErrRoomNotFound
	}
	if r.playerLocked(id.SessionID) != nil {
		return ErrAlreadyJoined
	}

	player := &model.Player{
		ID:       id.SessionID,
		UserID:   id.UserID,
		Username: id.Username,
		Avatar:   id.Avatar,
	}
	r.players = append(r.players, player)

	log.Printf("room %s: %s joined", r.code, id.Username)
	e.notifier.Send(id.SessionID, EvtRoomJoined, r.snapshotLocked())
	e.notifier.BroadcastExcept(r.code, id.SessionID, EvtPlayerJoined, player)
	return nil
}

// AddCustomWord adds a host-supplied word to the lobby's pool: trimmed,
// case-folded, at least 3 characters, deduplicated.
func (e *Engine) AddCustomWord(code, sessionID, word string) error {
	r, ok := e.rooms.Get(code)
	if !ok {
		return ErrNoSuchRoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != model.RoomLobby {
		return ErrWordsLocked
	}
	if sessionID != r.host {
		return ErrNotHostWords
	}

	trimmed := strings.ToLower(strings.TrimSpace(word))
	if trimmed == "" {
		return ErrWordEmpty
	}
	if len(trimmed) < 3 {
		return ErrWordTooShort
	}
	for _, w := range r.customWords {
		if w == trimmed {
			return ErrWordDuplicate
		}
	}

	r.customWords = append(r.customWords, trimmed)
	e.notifier.Broadcast(r.code, EvtCustomWordAdded, CustomWordsPayload{CustomWords: append([]string(nil), r.customWords...)})
	return nil
}

// RemoveCustomWord deletes a word from the pool under the same host+lobby
// restriction. Removing an absent word is not an error.
func (e *Engine) RemoveCustomWord(code, sessionID, word string) error {
	r, ok := e.rooms.Get(code)
	if !ok {
		return ErrWordsRemove
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sessionID != r.host || r.state != model.RoomLobby {
		return ErrWordsRemove
	}

	trimmed := strings.ToLower(strings.TrimSpace(word))
	for i, w := range r.customWords {
		if w == trimmed {
			r.customWords = append(r.customWords[:i], r.customWords[i+1:]...)
			break
		}
	}
	e.notifier.Broadcast(r.code, EvtCustomWordAdded, CustomWordsPayload{CustomWords: append([]string(nil), r.customWords...)})
	return nil
}

// StartGame transitions a lobby (or an ended game, restarting it) into play.
// Host only. Scores and turn state reset; the first turn is scheduled after
// a short client-readiness delay.
func (e *Engine) StartGame(code, sessionID string, settings *model.RoomSettings) error {
	r, ok := e.rooms.Get(code)
	if !ok {
		return nil // stale event for a dead room
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state == model.RoomInProgress {
		return nil
	}
	if sessionID != r.host {
		return ErrNotHostStart
	}

	restarted := r.state == model.RoomEndGame
	if r.destroyTimer != nil {
		// Reusing an ended room cancels its deferred destruction.
		r.destroyTimer.Stop()
		r.destroyTimer = nil
	}

	if settings != nil {
		clamped := clampSettings(*settings)
		r.maxRounds = clamped.TotalRounds
		r.roundDuration = clamped.RoundDuration
	}

	for _, p := range r.players {
		p.Score = 0
		p.HasGuessed = false
	}
	r.round = 1
	r.drawerIndex = 0
	r.state = model.RoomInProgress

	event := EvtGameStarted
	if restarted {
		event = EvtGameRestarted
	}
	log.Printf("room %s: game %s by %s (rounds=%d duration=%ds)", r.code, event, sessionID, r.maxRounds, r.roundDuration)
	e.notifier.Broadcast(r.code, event, r.scoreboardLocked())

	r.pendingTurn = time.AfterFunc(e.timing.StartDelay, func() { e.startTurn(r) })
	return nil
}

// startTurn selects the drawer, resets guessed flags, and offers the drawer
// three word choices. The choices go to the drawer alone; everyone else
// learns only who is drawing.
func (e *Engine) startTurn(r *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state != model.RoomInProgress {
		return
	}

	drawer := r.drawerLocked()
	if drawer == nil {
		// Drawer index out of range: this room is corrupt. Tear it down
		// rather than leave it wedged; other rooms are unaffected.
		log.Printf("room %s: drawer index %d out of range (%d players), destroying room", r.code, r.drawerIndex, len(r.players))
		e.destroyLocked(r)
		return
	}

	for _, p := range r.players {
		p.HasGuessed = false
	}
	r.currentWord = ""
	r.displayWord = ""
	r.timerValue = 0
	r.choosing = true

	choices := e.words.Choices(r.customWords, 3)
	e.notifier.Send(drawer.ID, EvtYourTurnToDraw, WordChoicesPayload{WordChoices: choices})
	e.notifier.Broadcast(r.code, EvtNewDrawer, NewDrawerPayload{Username: drawer.Username, Avatar: drawer.Avatar})
}

// ChooseWord accepts the drawer's pick, publishes the initial fully-masked
// hint, and starts the countdown and the periodic letter reveal. Events from
// anyone but the drawer, or after a word is already set, are stale under
// latency and dropped silently.
func (e *Engine) ChooseWord(code, sessionID, word string) error {
	r, ok := e.rooms.Get(code)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state != model.RoomInProgress || !r.isDrawerLocked(sessionID) {
		return nil
	}
	if !r.choosing || r.turnStop != nil {
		// No open word offer: either the turn is already running or the
		// pick arrived in the between-turn window.
		return nil
	}

	trimmed := strings.ToLower(strings.TrimSpace(word))
	if trimmed == "" {
		return nil
	}

	r.choosing = false
	r.currentWord = trimmed
	r.displayWord = maskWord(trimmed)
	r.timerValue = r.roundDuration

	e.notifier.Broadcast(r.code, EvtHintUpdate, r.displayWord)
	e.notifier.Broadcast(r.code, EvtTimerUpdate, r.timerValue)

	r.turnSeq++
	stop := make(chan struct{})
	r.turnStop = stop
	go e.runTurnClock(r, r.turnSeq, stop)
	return nil
}

// runTurnClock owns the two per-turn schedules: the one-second countdown and
// the hint reveal. It exits when the stop channel closes; the sequence
// number guards against a tick that was already in flight at cancel time.
func (e *Engine) runTurnClock(r *Room, seq uint64, stop <-chan struct{}) {
	countdown := time.NewTicker(e.timing.TickInterval)
	defer countdown.Stop()
	reveal := time.NewTicker(e.timing.HintInterval)
	defer reveal.Stop()

	for {
		select {
		case <-stop:
			return
		case <-countdown.C:
			if !e.countdownTick(r, seq) {
				return
			}
		case <-reveal.C:
			e.revealTick(r, seq)
		}
	}
}

func (e *Engine) countdownTick(r *Room, seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || seq != r.turnSeq {
		return false
	}

	r.timerValue--
	e.notifier.Broadcast(r.code, EvtTimerUpdate, r.timerValue)
	if r.timerValue <= 0 {
		e.endTurnLocked(r, ReasonTimeout)
		return false
	}
	return true
}

func (e *Engine) revealTick(r *Room, seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || seq != r.turnSeq {
		return
	}
	if r.revealOneLocked() {
		e.notifier.Broadcast(r.code, EvtHintUpdate, r.displayWord)
	}
}

// endTurnLocked cancels both schedules, reveals the word, and advances the
// drawer cursor, wrapping into the next round when the order is exhausted.
// Past the final round it ends the game instead of scheduling another turn.
func (e *Engine) endTurnLocked(r *Room, reason string) {
	r.cancelTurnLocked()
	if r.pendingTurn != nil {
		// Ending a turn during the between-turn window (the drawer-to-be
		// left) must replace the scheduled start, not stack a second one.
		r.pendingTurn.Stop()
		r.pendingTurn = nil
	}
	r.choosing = false

	e.notifier.Broadcast(r.code, EvtTurnEnd, TurnEndPayload{Word: r.currentWord, Reason: reason})
	r.currentWord = ""
	r.displayWord = ""
	r.timerValue = 0

	r.drawerIndex++
	if r.drawerIndex >= len(r.players) {
		r.drawerIndex = 0
		r.round++
	}

	if r.round > r.maxRounds {
		e.endGameLocked(r)
		return
	}

	r.pendingTurn = time.AfterFunc(e.timing.TurnDelay, func() { e.startTurn(r) })
}

// endGameLocked publishes the final descending scoreboard, fires the
// best-effort stats update, and schedules destruction after the grace
// window unless the room is restarted first.
func (e *Engine) endGameLocked(r *Room) {
	r.state = model.RoomEndGame
	sorted := r.scoreboardLocked()
	e.notifier.Broadcast(r.code, EvtGameOver, GameOverPayload{Players: sorted})

	var winnerUserID string
	if len(sorted) > 0 {
		winnerUserID = sorted[0].UserID
	}
	go e.persistGameStats(sorted, winnerUserID)

	log.Printf("room %s: game over after %d rounds", r.code, r.maxRounds)
	r.destroyTimer = time.AfterFunc(e.timing.EndGameTTL, func() { e.expireRoom(r) })
}

func (e *Engine) expireRoom(r *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed && r.state == model.RoomEndGame {
		e.destroyLocked(r)
	}
}

func (e *Engine) destroyLocked(r *Room) {
	r.closed = true
	r.stopTimersLocked()
	e.rooms.Remove(r.code)
	log.Printf("room %s destroyed", r.code)
}

// persistGameStats runs off the game goroutines: a failed write is logged
// and forgotten, never surfaced into the room.
func (e *Engine) persistGameStats(players []*model.Player, winnerUserID string) {
	if e.users == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	for _, p := range players {
		if p.UserID == "" {
			continue
		}
		delta := model.StatsDelta{
			GamesPlayed: 1,
			TotalScore:  p.Score,
		}
		if winnerUserID != "" && p.UserID == winnerUserID {
			delta.Wins = 1
		}
		if err := e.users.IncrementStats(ctx, p.UserID, delta); err != nil {
			log.Printf("stats update failed for user %s: %v", p.UserID, err)
		}
	}
}

// LeaveRoom removes the caller from the named room.
func (e *Engine) LeaveRoom(code, sessionID string) {
	if r, ok := e.rooms.Get(code); ok {
		e.removePlayer(r, sessionID)
	}
}

// Disconnect removes the session from whichever room holds it. Implicit
// counterpart of leave-room.
func (e *Engine) Disconnect(sessionID string) {
	for _, r := range e.rooms.all() {
		if e.removePlayer(r, sessionID) {
			return
		}
	}
}

// removePlayer is the single critical section covering removal, host
// handoff, drawer turn-end, and (for the last player) destruction, so two
// back-to-back disconnects cannot interleave between those steps.
func (e *Engine) removePlayer(r *Room, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	idx := r.playerIndexLocked(sessionID)
	if idx < 0 {
		return false
	}

	wasDrawer := r.state == model.RoomInProgress && idx == r.drawerIndex
	leaving := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	log.Printf("room %s: %s left", r.code, leaving.Username)

	e.notifier.Broadcast(r.code, EvtPlayerLeft, PlayerLeftPayload{ID: leaving.ID, Players: r.snapshotLocked().Players})

	if len(r.players) == 0 {
		e.destroyLocked(r)
		return true
	}

	// Keep the drawer cursor pointing at the same player after the slice
	// shifts; for the drawer itself, step back so the end-of-turn advance
	// lands on the player that slid into the slot.
	if idx < r.drawerIndex || wasDrawer {
		r.drawerIndex--
	} else if r.drawerIndex >= len(r.players) {
		r.drawerIndex = 0
	}

	if sessionID == r.host {
		r.host = r.players[0].ID
		e.notifier.Broadcast(r.code, EvtNewHost, NewHostPayload{Host: r.host, Username: r.players[0].Username})
	}

	if wasDrawer {
		e.endTurnLocked(r, ReasonDrawerLeft)
	} else if r.state == model.RoomInProgress && r.turnStop != nil && r.allGuessedLocked() {
		// The last player still guessing just left.
		e.endTurnLocked(r, ReasonAllGuessed)
	}
	return true
}

// allGuessedLocked reports whether every non-drawer has guessed this turn.
// False when there are no non-drawers, so a solo room just runs the clock.
func (r *Room) allGuessedLocked() bool {
	guessers := 0
	for i, p := range r.players {
		if i == r.drawerIndex {
			continue
		}
		if !p.HasGuessed {
			return false
		}
		guessers++
	}
	return guessers > 0
}

func clampSettings(s model.RoomSettings) model.RoomSettings {
	if s.TotalRounds < minRounds || s.TotalRounds > maxRounds {
		s.TotalRounds = defaultMaxRounds
	}
	valid := false
	for _, d := range allowedDurations {
		if s.RoundDuration == d {
			valid = true
			break
		}
	}
	if !valid {
		s.RoundDuration = defaultRoundDuration
	}
	return s
}
