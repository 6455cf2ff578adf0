package realtime

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// RoomKind distinguishes the two room namespaces.
type RoomKind string

// Room kinds
const (
	RoomKindUser    RoomKind = "user"
	RoomKindProject RoomKind = "project"
)

// RoomKey identifies a broadcast room.
type RoomKey struct {
	Kind RoomKind
	ID   uuid.UUID
}

// UserRoom returns the per-user room key for the given user.
func UserRoom(userID uuid.UUID) RoomKey {
	return RoomKey{Kind: RoomKindUser, ID: userID}
}

// ProjectRoom returns the per-project room key for the given project.
func ProjectRoom(projectID uuid.UUID) RoomKey {
	return RoomKey{Kind: RoomKindProject, ID: projectID}
}

// String renders the key in the wire form clients see, e.g. "project_<uuid>".
func (k RoomKey) String() string {
	return fmt.Sprintf("%s_%s", k.Kind, k.ID)
}

// roomShard guards a slice of the key space. Each shard keeps both the
// forward index (room -> members) and the reverse index (connection -> rooms
// hashed into this shard) so that joins and leaves touch exactly one lock.
type roomShard struct {
	mu    sync.RWMutex
	rooms map[RoomKey]map[uuid.UUID]struct{}
	conns map[uuid.UUID]map[RoomKey]struct{}
}

// RoomManager maintains room membership sets. It is mechanism only:
// authorization for joining a project room is the caller's job.
type RoomManager struct {
	shards []*roomShard
}

// NewRoomManager creates a manager with the given number of lock shards.
// shards values below 1 are clamped to 1.
func NewRoomManager(shards int) *RoomManager {
	if shards < 1 {
		shards = 1
	}
	m := &RoomManager{shards: make([]*roomShard, shards)}
	for i := range m.shards {
		m.shards[i] = &roomShard{
			rooms: make(map[RoomKey]map[uuid.UUID]struct{}),
			conns: make(map[uuid.UUID]map[RoomKey]struct{}),
		}
	}
	return m
}

func (m *RoomManager) shardFor(key RoomKey) *roomShard {
	h := fnv.New32a()
	h.Write([]byte(key.Kind))
	h.Write(key.ID[:])
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// Join adds the connection to the room's member set. Joining a room the
// connection is already in is a no-op.
func (m *RoomManager) Join(connID uuid.UUID, key RoomKey) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[key]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		s.rooms[key] = members
	}
	members[connID] = struct{}{}

	joined, ok := s.conns[connID]
	if !ok {
		joined = make(map[RoomKey]struct{})
		s.conns[connID] = joined
	}
	joined[key] = struct{}{}
}

// Leave removes the connection from the room. No-op if not a member.
// Emptied rooms are deleted so the manager does not accumulate dead keys.
func (m *RoomManager) Leave(connID uuid.UUID, key RoomKey) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveLocked(connID, key)
}

func (s *roomShard) leaveLocked(connID uuid.UUID, key RoomKey) {
	if members, ok := s.rooms[key]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(s.rooms, key)
		}
	}
	if joined, ok := s.conns[connID]; ok {
		delete(joined, key)
		if len(joined) == 0 {
			delete(s.conns, connID)
		}
	}
}

// Members returns a snapshot of the room's member connection ids. The
// returned slice is a copy; callers may hold it across sends without
// blocking concurrent joins and leaves.
func (m *RoomManager) Members(key RoomKey) []uuid.UUID {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.rooms[key]
	if !ok {
		return nil
	}
	out := make([]uuid.UUID, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// IsMember reports whether the connection is currently in the room.
func (m *RoomManager) IsMember(connID uuid.UUID, key RoomKey) bool {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[key][connID]
	return ok
}

// RoomsOf returns a snapshot of every room the connection has joined.
func (m *RoomManager) RoomsOf(connID uuid.UUID) []RoomKey {
	var out []RoomKey
	for _, s := range m.shards {
		s.mu.RLock()
		for key := range s.conns[connID] {
			out = append(out, key)
		}
		s.mu.RUnlock()
	}
	return out
}

// DropConnection removes the connection from every room it had joined.
// Idempotent.
func (m *RoomManager) DropConnection(connID uuid.UUID) {
	for _, s := range m.shards {
		s.mu.Lock()
		for key := range s.conns[connID] {
			s.leaveLocked(connID, key)
		}
		s.mu.Unlock()
	}
}

// Len returns the number of non-empty rooms.
func (m *RoomManager) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.rooms)
		s.mu.RUnlock()
	}
	return n
}
