package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawdash/internal/model"
)

func TestCreateRoom(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())

	r, err := e.CreateRoom(ident("alice"))
	require.NoError(t, err)
	require.Len(t, r.Code(), 4)
	for _, c := range r.Code() {
		assert.Contains(t, codeAlphabet, string(c))
	}

	got, ok := e.rooms.Get(r.Code())
	require.True(t, ok)
	assert.Same(t, r, got)

	created := rec.sentTo("sess-alice", EvtRoomCreated)
	require.Len(t, created, 1)
	snap := created[0].payload.(*model.RoomSnapshot)
	assert.Equal(t, r.Code(), snap.Code)
	assert.Equal(t, "sess-alice", snap.Host)
	assert.Equal(t, model.RoomLobby, snap.State)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "alice", snap.Players[0].Username)
}

func TestJoinRoom(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())

	r, err := e.CreateRoom(ident("alice"))
	require.NoError(t, err)

	assert.ErrorIs(t, e.JoinRoom("ZZZZ", ident("bob")), ErrRoomNotFound)

	require.NoError(t, e.JoinRoom(r.Code(), ident("bob")))
	assert.ErrorIs(t, e.JoinRoom(r.Code(), ident("bob")), ErrAlreadyJoined)

	joined := rec.sentTo("sess-bob", EvtRoomJoined)
	require.Len(t, joined, 1)
	assert.Len(t, joined[0].payload.(*model.RoomSnapshot).Players, 2)

	announced := rec.named(EvtPlayerJoined)
	require.Len(t, announced, 1)
	assert.Equal(t, "broadcastExcept", announced[0].op)
	assert.Equal(t, "sess-bob", announced[0].except)

	// In-progress rooms are invisible to join.
	require.NoError(t, e.StartGame(r.Code(), "sess-alice", nil))
	assert.ErrorIs(t, e.JoinRoom(r.Code(), ident("carol")), ErrRoomNotFound)
}

func TestCustomWords(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())

	r, err := e.CreateRoom(ident("alice"))
	require.NoError(t, err)
	require.NoError(t, e.JoinRoom(r.Code(), ident("bob")))

	assert.ErrorIs(t, e.AddCustomWord(r.Code(), "sess-bob", "galaxy"), ErrNotHostWords)
	assert.ErrorIs(t, e.AddCustomWord(r.Code(), "sess-alice", "  "), ErrWordEmpty)
	assert.ErrorIs(t, e.AddCustomWord(r.Code(), "sess-alice", "ab"), ErrWordTooShort)

	require.NoError(t, e.AddCustomWord(r.Code(), "sess-alice", "  Galaxy "))
	assert.ErrorIs(t, e.AddCustomWord(r.Code(), "sess-alice", "galaxy"), ErrWordDuplicate)

	updates := rec.named(EvtCustomWordAdded)
	require.Len(t, updates, 1)
	assert.Equal(t, []string{"galaxy"}, updates[0].payload.(CustomWordsPayload).CustomWords)

	require.NoError(t, e.RemoveCustomWord(r.Code(), "sess-alice", "GALAXY"))
	updates = rec.named(EvtCustomWordAdded)
	require.Len(t, updates, 2)
	assert.Empty(t, updates[1].payload.(CustomWordsPayload).CustomWords)

	assert.ErrorIs(t, e.RemoveCustomWord(r.Code(), "sess-bob", "galaxy"), ErrWordsRemove)

	require.NoError(t, e.StartGame(r.Code(), "sess-alice", nil))
	assert.ErrorIs(t, e.AddCustomWord(r.Code(), "sess-alice", "galaxy"), ErrWordsLocked)
}

func TestStartGame(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())

	r, err := e.CreateRoom(ident("alice"))
	require.NoError(t, err)
	require.NoError(t, e.JoinRoom(r.Code(), ident("bob")))

	assert.ErrorIs(t, e.StartGame(r.Code(), "sess-bob", nil), ErrNotHostStart)

	// Out-of-range settings snap to the defaults.
	require.NoError(t, e.StartGame(r.Code(), "sess-alice", &model.RoomSettings{TotalRounds: 99, RoundDuration: 45}))

	r.mu.Lock()
	assert.Equal(t, model.RoomInProgress, r.state)
	assert.Equal(t, defaultMaxRounds, r.maxRounds)
	assert.Equal(t, defaultRoundDuration, r.roundDuration)
	assert.Equal(t, 1, r.round)
	assert.Equal(t, 0, r.drawerIndex)
	r.mu.Unlock()

	started := rec.named(EvtGameStarted)
	require.Len(t, started, 1)
	assert.Len(t, started[0].payload.([]*model.Player), 2)

	// Repeated start while running is a no-op.
	rec.reset()
	require.NoError(t, e.StartGame(r.Code(), "sess-alice", nil))
	assert.Empty(t, rec.named(EvtGameStarted))
}

func TestStartTurnOffersWords(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())
	r, ids := setupGame(t, e, "alice", "bob")

	e.startTurn(r)

	offers := rec.sentTo(ids[0].SessionID, EvtYourTurnToDraw)
	require.Len(t, offers, 1)
	choices := offers[0].payload.(WordChoicesPayload).WordChoices
	assert.Len(t, choices, 3)

	announced := rec.named(EvtNewDrawer)
	require.Len(t, announced, 1)
	assert.Equal(t, "alice", announced[0].payload.(NewDrawerPayload).Username)

	// The word list stays with the drawer; nothing room-wide carries it.
	assert.Empty(t, rec.sentTo(ids[1].SessionID, EvtYourTurnToDraw))
}

func TestChooseWord(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())
	r, ids := setupGame(t, e, "alice", "bob")
	e.startTurn(r)
	rec.reset()

	// Only the drawer's pick counts.
	require.NoError(t, e.ChooseWord(r.Code(), ids[1].SessionID, "tree"))
	assert.Empty(t, rec.named(EvtHintUpdate))

	require.NoError(t, e.ChooseWord(r.Code(), ids[0].SessionID, "  Tree "))

	hints := rec.named(EvtHintUpdate)
	require.Len(t, hints, 1)
	assert.Equal(t, "____", hints[0].payload)

	timers := rec.named(EvtTimerUpdate)
	require.Len(t, timers, 1)
	assert.Equal(t, defaultRoundDuration, timers[0].payload)

	// A second pick in the same turn is stale and dropped.
	rec.reset()
	require.NoError(t, e.ChooseWord(r.Code(), ids[0].SessionID, "house"))
	assert.Empty(t, rec.named(EvtHintUpdate))

	r.mu.Lock()
	assert.Equal(t, "tree", r.currentWord)
	r.cancelTurnLocked()
	r.mu.Unlock()
}

func TestCountdownTimeout(t *testing.T) {
	timing := manualTiming()
	timing.TickInterval = 2 * time.Millisecond
	e, rec, _ := newTestEngine(timing)
	r, _ := setupGame(t, e, "alice", "bob")
	beginTurn(t, e, r, "tree")

	r.mu.Lock()
	r.timerValue = 3
	r.mu.Unlock()

	require.Eventually(t, func() bool {
		return len(rec.named(EvtTurnEnd)) > 0
	}, time.Second, time.Millisecond)

	ended := rec.named(EvtTurnEnd)[0].payload.(TurnEndPayload)
	assert.Equal(t, "tree", ended.Word)
	assert.Equal(t, ReasonTimeout, ended.Reason)

	r.mu.Lock()
	assert.Equal(t, 1, r.drawerIndex)
	assert.Empty(t, r.currentWord)
	r.mu.Unlock()
}

func TestHintReveal(t *testing.T) {
	timing := manualTiming()
	timing.HintInterval = 2 * time.Millisecond
	e, rec, _ := newTestEngine(timing)
	r, _ := setupGame(t, e, "alice", "bob")
	beginTurn(t, e, r, "tree")
	rec.reset()

	require.Eventually(t, func() bool {
		return len(rec.named(EvtHintUpdate)) > 0
	}, time.Second, time.Millisecond)

	hint := rec.named(EvtHintUpdate)[0].payload.(string)
	assert.Len(t, hint, 4)
	assert.NotEqual(t, "____", hint)

	r.mu.Lock()
	r.cancelTurnLocked()
	r.mu.Unlock()
}

func TestGameOverAfterFinalRound(t *testing.T) {
	e, rec, users := newTestEngine(manualTiming())

	r, err := e.CreateRoom(ident("alice"))
	require.NoError(t, err)
	require.NoError(t, e.JoinRoom(r.Code(), ident("bob")))
	require.NoError(t, e.StartGame(r.Code(), "sess-alice", &model.RoomSettings{TotalRounds: 1, RoundDuration: 90}))

	// Round one, turn one: bob guesses alice's word.
	beginTurn(t, e, r, "tree")
	e.Guess(r.Code(), ident("bob"), "tree")

	// Turn two: alice guesses bob's word, exhausting the round.
	beginTurn(t, e, r, "house")
	e.Guess(r.Code(), ident("alice"), "house")

	over := rec.named(EvtGameOver)
	require.Len(t, over, 1)
	final := over[0].payload.(GameOverPayload).Players
	require.Len(t, final, 2)
	assert.GreaterOrEqual(t, final[0].Score, final[1].Score)

	r.mu.Lock()
	assert.Equal(t, model.RoomEndGame, r.state)
	r.mu.Unlock()

	winner := final[0].UserID
	require.Eventually(t, func() bool {
		return users.snapshot(winner).GamesPlayed == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, users.snapshot(winner).Wins)
	assert.Equal(t, final[0].Score, users.snapshot(winner).TotalScore)
}

func TestRestartAfterGameOver(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())
	r, ids := setupGame(t, e, "alice", "bob")

	r.mu.Lock()
	r.players[0].Score = 50
	e.endGameLocked(r)
	r.mu.Unlock()

	rec.reset()
	require.NoError(t, e.StartGame(r.Code(), ids[0].SessionID, nil))

	restarted := rec.named(EvtGameRestarted)
	require.Len(t, restarted, 1)

	r.mu.Lock()
	assert.Equal(t, model.RoomInProgress, r.state)
	assert.Zero(t, r.players[0].Score)
	assert.Nil(t, r.destroyTimer)
	r.mu.Unlock()
}

func TestEndGameExpiry(t *testing.T) {
	timing := manualTiming()
	timing.EndGameTTL = 2 * time.Millisecond
	e, _, _ := newTestEngine(timing)
	r, _ := setupGame(t, e, "alice", "bob")

	r.mu.Lock()
	e.endGameLocked(r)
	r.mu.Unlock()

	require.Eventually(t, func() bool {
		_, ok := e.rooms.Get(r.Code())
		return !ok
	}, time.Second, time.Millisecond)
}

func TestHostHandoffOnLeave(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())

	r, err := e.CreateRoom(ident("alice"))
	require.NoError(t, err)
	require.NoError(t, e.JoinRoom(r.Code(), ident("bob")))
	require.NoError(t, e.JoinRoom(r.Code(), ident("carol")))

	e.LeaveRoom(r.Code(), "sess-alice")

	left := rec.named(EvtPlayerLeft)
	require.Len(t, left, 1)
	payload := left[0].payload.(PlayerLeftPayload)
	assert.Equal(t, "sess-alice", payload.ID)
	assert.Len(t, payload.Players, 2)

	hosts := rec.named(EvtNewHost)
	require.Len(t, hosts, 1)
	assert.Equal(t, "sess-bob", hosts[0].payload.(NewHostPayload).Host)
}

func TestDrawerLeavesMidTurn(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())
	r, ids := setupGame(t, e, "alice", "bob", "carol")
	beginTurn(t, e, r, "tree")
	rec.reset()

	e.Disconnect(ids[0].SessionID)

	ended := rec.named(EvtTurnEnd)
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonDrawerLeft, ended[0].payload.(TurnEndPayload).Reason)

	// The player who slid into the drawer's slot is next up; nobody skipped.
	r.mu.Lock()
	drawer := r.drawerLocked()
	r.mu.Unlock()
	require.NotNil(t, drawer)
	assert.Equal(t, "bob", drawer.Username)
}

func TestDrawerToBeLeavesDuringTurnDelay(t *testing.T) {
	timing := manualTiming()
	timing.TurnDelay = 50 * time.Millisecond
	e, rec, _ := newTestEngine(timing)
	r, ids := setupGame(t, e, "alice", "bob", "carol")
	beginTurn(t, e, r, "tree")

	// Everyone guesses; the turn ends and bob's turn is now scheduled.
	e.Guess(r.Code(), ids[1], "tree")
	e.Guess(r.Code(), ids[2], "tree")
	rec.reset()

	// Bob leaves before his turn starts. The drawer-left end must replace
	// the scheduled start, not add a second one.
	e.Disconnect(ids[1].SessionID)

	require.Eventually(t, func() bool {
		return len(rec.named(EvtNewDrawer)) > 0
	}, time.Second, time.Millisecond)
	time.Sleep(4 * timing.TurnDelay)

	announced := rec.named(EvtNewDrawer)
	require.Len(t, announced, 1)
	assert.Equal(t, "carol", announced[0].payload.(NewDrawerPayload).Username)

	r.mu.Lock()
	r.stopTimersLocked()
	r.mu.Unlock()
}

func TestStaleWordChoiceBetweenTurns(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())
	r, ids := setupGame(t, e, "alice", "bob")
	beginTurn(t, e, r, "tree")

	// Bob guesses; the turn ends and bob is next up, but his turn has not
	// started yet.
	e.Guess(r.Code(), ids[1], "tree")
	rec.reset()

	// A word pick sent before the word offer must not start a clock.
	require.NoError(t, e.ChooseWord(r.Code(), ids[1].SessionID, "house"))
	assert.Empty(t, rec.named(EvtHintUpdate))

	r.mu.Lock()
	assert.Empty(t, r.currentWord)
	assert.Nil(t, r.turnStop)
	r.mu.Unlock()

	// Once the turn actually starts, the same drawer's pick is accepted.
	e.startTurn(r)
	require.NoError(t, e.ChooseWord(r.Code(), ids[1].SessionID, "house"))
	hints := rec.named(EvtHintUpdate)
	require.Len(t, hints, 1)
	assert.Equal(t, "_____", hints[0].payload)

	r.mu.Lock()
	r.cancelTurnLocked()
	r.mu.Unlock()
}

func TestEarlierPlayerLeavesKeepsDrawer(t *testing.T) {
	e, _, _ := newTestEngine(manualTiming())
	r, ids := setupGame(t, e, "alice", "bob", "carol")

	// Advance so bob is drawing, then remove alice before him in the order.
	r.mu.Lock()
	r.drawerIndex = 1
	r.mu.Unlock()
	e.startTurn(r)

	e.LeaveRoom(r.Code(), ids[0].SessionID)

	r.mu.Lock()
	drawer := r.drawerLocked()
	r.mu.Unlock()
	require.NotNil(t, drawer)
	assert.Equal(t, "bob", drawer.Username)
}

func TestLastPlayerLeavingDestroysRoom(t *testing.T) {
	e, _, _ := newTestEngine(manualTiming())

	r, err := e.CreateRoom(ident("alice"))
	require.NoError(t, err)

	e.LeaveRoom(r.Code(), "sess-alice")

	_, ok := e.rooms.Get(r.Code())
	assert.False(t, ok)
	assert.Zero(t, e.rooms.Len())
}

func TestLastGuesserLeavingEndsTurn(t *testing.T) {
	e, rec, _ := newTestEngine(manualTiming())
	r, ids := setupGame(t, e, "alice", "bob", "carol")
	beginTurn(t, e, r, "tree")

	e.Guess(r.Code(), ids[1], "tree")
	rec.reset()

	// carol, the only player still guessing, disconnects.
	e.Disconnect(ids[2].SessionID)

	ended := rec.named(EvtTurnEnd)
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonAllGuessed, ended[0].payload.(TurnEndPayload).Reason)
}

func TestClampSettings(t *testing.T) {
	cases := []struct {
		name string
		in   model.RoomSettings
		want model.RoomSettings
	}{
		{"valid", model.RoomSettings{TotalRounds: 5, RoundDuration: 60}, model.RoomSettings{TotalRounds: 5, RoundDuration: 60}},
		{"rounds too high", model.RoomSettings{TotalRounds: 11, RoundDuration: 30}, model.RoomSettings{TotalRounds: 3, RoundDuration: 30}},
		{"rounds too low", model.RoomSettings{TotalRounds: 0, RoundDuration: 180}, model.RoomSettings{TotalRounds: 3, RoundDuration: 180}},
		{"odd duration", model.RoomSettings{TotalRounds: 2, RoundDuration: 45}, model.RoomSettings{TotalRounds: 2, RoundDuration: 90}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clampSettings(tc.in))
		})
	}
}
