package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"drawdash/internal/model"
)

const drawerBonus = 20

// guessPoints rewards fast guesses: 1.5 points per remaining second,
// floored, never below 10.
func guessPoints(remainingSeconds int) int {
	points := remainingSeconds * 3 / 2
	if points < 10 {
		return 10
	}
	return points
}

// Guess evaluates a chat line against the secret word. The drawer's lines
// are dropped; everyone else's are either a first correct guess (scored,
// acknowledged privately, announced publicly) or plain chat. A correct text
// resubmitted after scoring goes out as chat and never scores twice.
func (e *Engine) Guess(code string, id Identity, text string) {
	r, ok := e.rooms.Get(code)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	player := r.playerLocked(id.SessionID)
	if player == nil {
		return
	}

	inProgress := !r.closed && r.state == model.RoomInProgress
	if inProgress && r.isDrawerLocked(id.SessionID) {
		return
	}

	correct := inProgress && r.currentWord != "" &&
		strings.EqualFold(strings.TrimSpace(text), r.currentWord)

	if inProgress {
		// Every non-drawer attempt counts toward the persistent totals,
		// whether or not it lands.
		go e.recordGuess(id, correct)
	}

	if correct && !player.HasGuessed {
		player.HasGuessed = true
		points := guessPoints(r.timerValue)
		player.Score += points
		if drawer := r.drawerLocked(); drawer != nil {
			drawer.Score += drawerBonus
		}

		e.notifier.Broadcast(r.code, EvtPlayerGuessed, PlayerGuessedPayload{Username: player.Username})
		e.notifier.Send(player.ID, EvtCorrectGuess, CorrectGuessPayload{
			Message: fmt.Sprintf("You guessed it! +%d points!", points),
			Points:  points,
		})
		e.notifier.Broadcast(r.code, EvtUpdateScoreboard, r.snapshotLocked().Players)

		if r.allGuessedLocked() {
			e.endTurnLocked(r, ReasonAllGuessed)
		}
		return
	}

	e.notifier.Broadcast(r.code, EvtNewMessage, ChatMessagePayload{Username: player.Username, Message: text})
}

// recordGuess bumps the persistent guess counters and echoes the fresh
// totals back to the guesser. Best-effort on both legs.
func (e *Engine) recordGuess(id Identity, correct bool) {
	if e.users == nil || id.UserID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	delta := model.StatsDelta{TotalGuesses: 1}
	if correct {
		delta.CorrectGuesses = 1
	}
	if err := e.users.IncrementStats(ctx, id.UserID, delta); err != nil {
		log.Printf("guess stats update failed for user %s: %v", id.UserID, err)
		return
	}

	stats, err := e.users.ReadStats(ctx, id.UserID)
	if err != nil {
		log.Printf("stats read failed for user %s: %v", id.UserID, err)
		return
	}
	e.notifier.Send(id.SessionID, EvtStatsUpdated, stats)
}

// SendStats answers an explicit get-my-stats request. Guests have nothing
// persisted, so the request is dropped.
func (e *Engine) SendStats(id Identity) {
	if e.users == nil || id.UserID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	stats, err := e.users.ReadStats(ctx, id.UserID)
	if err != nil {
		log.Printf("stats read failed for user %s: %v", id.UserID, err)
		return
	}
	e.notifier.Send(id.SessionID, EvtStatsUpdated, stats)
}

// RelayDraw forwards an opaque stroke segment from the current drawer to
// every other room member. The payload is never inspected.
func (e *Engine) RelayDraw(code, sessionID string, segment json.RawMessage) {
	r, ok := e.rooms.Get(code)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state != model.RoomInProgress || !r.isDrawerLocked(sessionID) {
		return
	}
	e.notifier.BroadcastExcept(r.code, sessionID, EvtDrawing, segment)
}

// ClearCanvas relays the drawer's clear signal to the whole room.
func (e *Engine) ClearCanvas(code, sessionID string) {
	r, ok := e.rooms.Get(code)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.state != model.RoomInProgress || !r.isDrawerLocked(sessionID) {
		return
	}
	e.notifier.Broadcast(r.code, EvtCanvasCleared, nil)
}

// PrivateMessage delivers a 1:1 message to the recipient and echoes it to
// the sender so both ends can rebuild the thread. It bypasses every
// game-state check and is never treated as a guess.
func (e *Engine) PrivateMessage(from Identity, toSessionID, text string) {
	e.notifier.Send(toSessionID, EvtNewPrivateMessage, PrivateMessagePayload{
		From:     from.SessionID,
		Username: from.Username,
		Message:  text,
	})
	e.notifier.Send(from.SessionID, EvtNewPrivateMessage, PrivateMessagePayload{
		To:       toSessionID,
		Username: from.Username,
		Message:  text,
	})
}
