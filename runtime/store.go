package runtime

import (
	"math/rand/v2"
	"strings"
	"sync"

	"price-pact/domain"
	"price-pact/errors"
)

// Codes are drawn from the full alphanumeric range, then lowercased:
// lookups are case-insensitive, storage is canonical.
const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	codeLength   = 7
)

type roomEntry struct {
	mu   sync.Mutex
	room *domain.Room
	// gone marks an entry disposed while another goroutine may still
	// hold a reference to it; Mutate rechecks it after locking.
	gone bool
}

// RoomStore owns the table of live rooms. The table itself is guarded
// by an RWMutex; each entry carries its own lock so mutations of
// different rooms never contend.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*roomEntry)}
}

// Create generates a fresh unique code and seeds a room with the
// creator as its single owner-participant. Collisions with live codes
// are retried.
func (s *RoomStore) Create(creator string) domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		code := generateCode()
		if _, exists := s.rooms[code]; exists {
			continue
		}
		room := domain.NewRoom(code, creator)
		s.rooms[code] = &roomEntry{room: room}
		return room.Snapshot()
	}
}

func generateCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return strings.ToLower(b.String())
}

func (s *RoomStore) entry(id string) *roomEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[id]
}

// Get returns a snapshot of the room, or ErrRoomNotFound.
func (s *RoomStore) Get(id string) (domain.Room, error) {
	e := s.entry(id)
	if e == nil {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	return e.room.Snapshot(), nil
}

// Mutate applies fn under the room's lock. At most one fn runs against
// a given room at a time; fn must not retain the *Room afterwards.
func (s *RoomStore) Mutate(id string, fn func(*domain.Room) error) error {
	e := s.entry(id)
	if e == nil {
		return errors.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return errors.ErrRoomNotFound
	}
	return fn(e.room)
}

// Dispose removes the room, but only if its participant list is empty.
// Idempotent; disposing a live or unknown room is a silent no-op.
func (s *RoomStore) Dispose(id string) bool {
	e := s.entry(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	if e.gone || !e.room.Empty() {
		e.mu.Unlock()
		return false
	}
	e.gone = true
	e.mu.Unlock()

	s.mu.Lock()
	delete(s.rooms, id)
	s.mu.Unlock()
	return true
}

// RoomsWithAccount lists ids of rooms the account currently belongs to.
// Used on disconnect to sweep the account out of every room.
func (s *RoomStore) RoomsWithAccount(account string) []string {
	s.mu.RLock()
	entries := make(map[string]*roomEntry, len(s.rooms))
	for id, e := range s.rooms {
		entries[id] = e
	}
	s.mu.RUnlock()

	var ids []string
	for id, e := range entries {
		e.mu.Lock()
		if !e.gone && e.room.Find(account) != nil {
			ids = append(ids, id)
		}
		e.mu.Unlock()
	}
	return ids
}

// Len reports the number of live rooms.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Snapshots copies every live room, for the debug endpoint.
func (s *RoomStore) Snapshots() []domain.Room {
	s.mu.RLock()
	entries := make([]*roomEntry, 0, len(s.rooms))
	for _, e := range s.rooms {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	rooms := make([]domain.Room, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.gone {
			rooms = append(rooms, e.room.Snapshot())
		}
		e.mu.Unlock()
	}
	return rooms
}
