package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"drawdash/internal/model"
)

// recordedEvent is one notifier call captured by the recorder.
type recordedEvent struct {
	op      string // "send", "broadcast", "broadcastExcept"
	target  string // session id or room code
	except  string
	event   string
	payload any
}

// recorder is a Notifier that captures every call for assertions.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (rec *recorder) Send(sessionID, event string, payload any) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, recordedEvent{op: "send", target: sessionID, event: event, payload: payload})
}

func (rec *recorder) Broadcast(code, event string, payload any) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, recordedEvent{op: "broadcast", target: code, event: event, payload: payload})
}

func (rec *recorder) BroadcastExcept(code, exceptID, event string, payload any) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, recordedEvent{op: "broadcastExcept", target: code, except: exceptID, event: event, payload: payload})
}

func (rec *recorder) named(event string) []recordedEvent {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []recordedEvent
	for _, ev := range rec.events {
		if ev.event == event {
			out = append(out, ev)
		}
	}
	return out
}

func (rec *recorder) sentTo(sessionID, event string) []recordedEvent {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []recordedEvent
	for _, ev := range rec.events {
		if ev.op == "send" && ev.target == sessionID && ev.event == event {
			out = append(out, ev)
		}
	}
	return out
}

func (rec *recorder) reset() {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = nil
}

// fakeUserStore accumulates deltas in memory.
type fakeUserStore struct {
	mu    sync.Mutex
	stats map[string]*model.UserStats
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{stats: make(map[string]*model.UserStats)}
}

func (f *fakeUserStore) IncrementStats(_ context.Context, userID string, delta model.StatsDelta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stats[userID]
	if !ok {
		s = &model.UserStats{}
		f.stats[userID] = s
	}
	s.GamesPlayed += delta.GamesPlayed
	s.TotalScore += delta.TotalScore
	s.Wins += delta.Wins
	s.TotalGuesses += delta.TotalGuesses
	s.CorrectGuesses += delta.CorrectGuesses
	return nil
}

func (f *fakeUserStore) ReadStats(_ context.Context, userID string) (*model.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stats[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return &model.UserStats{}, nil
}

func (f *fakeUserStore) snapshot(userID string) model.UserStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stats[userID]; ok {
		return *s
	}
	return model.UserStats{}
}

// manualTiming keeps every scheduled action far enough away that tests can
// drive turns by hand.
func manualTiming() Timing {
	return Timing{
		StartDelay:   time.Hour,
		TurnDelay:    time.Hour,
		TickInterval: time.Hour,
		HintInterval: time.Hour,
		EndGameTTL:   time.Hour,
	}
}

func newTestEngine(timing Timing) (*Engine, *recorder, *fakeUserStore) {
	rec := &recorder{}
	users := newFakeUserStore()
	e := NewEngine(NewRegistry(), NewWordBank(nil), rec, users, timing)
	return e, rec, users
}

func ident(n string) Identity {
	return Identity{SessionID: "sess-" + n, UserID: "user-" + n, Username: n}
}

// setupGame creates a room, joins the extra players, and starts the game.
// The returned identities are in turn order; the first is host and first
// drawer once startTurn runs.
func setupGame(t *testing.T, e *Engine, names ...string) (*Room, []Identity) {
	t.Helper()
	require.NotEmpty(t, names)

	ids := make([]Identity, len(names))
	for i, n := range names {
		ids[i] = ident(n)
	}

	r, err := e.CreateRoom(ids[0])
	require.NoError(t, err)
	for _, id := range ids[1:] {
		require.NoError(t, e.JoinRoom(r.Code(), id))
	}
	require.NoError(t, e.StartGame(r.Code(), ids[0].SessionID, nil))
	return r, ids
}

// beginTurn runs the scheduled turn by hand and has the drawer pick a word.
func beginTurn(t *testing.T, e *Engine, r *Room, word string) Identity {
	t.Helper()
	e.startTurn(r)

	r.mu.Lock()
	drawer := r.drawerLocked()
	r.mu.Unlock()
	require.NotNil(t, drawer)

	require.NoError(t, e.ChooseWord(r.Code(), drawer.ID, word))
	return Identity{SessionID: drawer.ID, UserID: drawer.UserID, Username: drawer.Username}
}
