package realtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoomManager_JoinLeave(t *testing.T) {
	m := NewRoomManager(4)
	connA := uuid.New()
	connB := uuid.New()
	room := ProjectRoom(uuid.New())

	m.Join(connA, room)
	m.Join(connB, room)
	m.Join(connA, room) // duplicate join is a no-op

	members := m.Members(room)
	assert.Len(t, members, 2)
	assert.ElementsMatch(t, []uuid.UUID{connA, connB}, members)

	m.Leave(connA, room)
	assert.ElementsMatch(t, []uuid.UUID{connB}, m.Members(room))
	assert.False(t, m.IsMember(connA, room))
	assert.True(t, m.IsMember(connB, room))

	// Leaving a room the connection is not in is a no-op.
	m.Leave(connA, room)
	assert.Len(t, m.Members(room), 1)
}

func TestRoomManager_EmptyRoomsAreDeleted(t *testing.T) {
	m := NewRoomManager(4)
	conn := uuid.New()
	room := UserRoom(uuid.New())

	m.Join(conn, room)
	assert.Equal(t, 1, m.Len())

	m.Leave(conn, room)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Members(room))
}

func TestRoomManager_DropConnection(t *testing.T) {
	m := NewRoomManager(4)
	conn := uuid.New()
	other := uuid.New()

	rooms := []RoomKey{
		UserRoom(uuid.New()),
		ProjectRoom(uuid.New()),
		ProjectRoom(uuid.New()),
	}
	for _, room := range rooms {
		m.Join(conn, room)
		m.Join(other, room)
	}
	assert.Len(t, m.RoomsOf(conn), 3)

	m.DropConnection(conn)

	assert.Empty(t, m.RoomsOf(conn))
	for _, room := range rooms {
		assert.NotContains(t, m.Members(room), conn,
			"room %s should not retain a dropped connection", room)
		assert.Contains(t, m.Members(room), other)
	}

	// Dropping again is a no-op.
	m.DropConnection(conn)
	assert.Equal(t, 3, m.Len())
}

func TestRoomManager_MembersReturnsSnapshot(t *testing.T) {
	m := NewRoomManager(1)
	room := ProjectRoom(uuid.New())
	conn := uuid.New()
	m.Join(conn, room)

	snapshot := m.Members(room)
	m.Leave(conn, room)

	// The snapshot taken before the leave is unaffected.
	assert.ElementsMatch(t, []uuid.UUID{conn}, snapshot)
	assert.Empty(t, m.Members(room))
}

func TestRoomManager_ConcurrentJoinLeave(t *testing.T) {
	m := NewRoomManager(8)
	room := ProjectRoom(uuid.New())

	const workers = 32
	conns := make([]uuid.UUID, workers)
	for i := range conns {
		conns[i] = uuid.New()
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Join(conns[idx], room)
				_ = m.Members(room)
				m.Leave(conns[idx], room)
			}
			m.Join(conns[idx], room)
		}(i)
	}
	wg.Wait()

	// Every worker ends with exactly one membership.
	assert.Len(t, m.Members(room), workers)
}

func TestRoomKey_String(t *testing.T) {
	id := uuid.MustParse("7a1a2b3c-0000-0000-0000-000000000007")
	assert.Equal(t, "project_"+id.String(), ProjectRoom(id).String())
	assert.Equal(t, "user_"+id.String(), UserRoom(id).String())
}
