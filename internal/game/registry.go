package game

import (
	"crypto/rand"
	"sync"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 4
)

// Registry is the process-wide room table. Its lock covers only the map;
// room state is guarded by each room's own mutex so unrelated rooms never
// contend.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// add registers a room under a freshly generated, collision-checked code and
// returns the code.
func (reg *Registry) add(build func(code string) *Room) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for attempts := 0; attempts < 10; attempts++ {
		code, err := randomCode()
		if err != nil {
			return nil, err
		}
		if _, exists := reg.rooms[code]; exists {
			continue
		}
		r := build(code)
		reg.rooms[code] = r
		return r, nil
	}
	return nil, ErrCodesExhausted
}

// Remove drops a room from the table. Idempotent.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// all snapshots the current room set so callers can scan without holding the
// registry lock across per-room locks.
func (reg *Registry) all() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(code), nil
}
