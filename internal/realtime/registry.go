package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connection registry errors
var (
	// ErrConnectionNotFound indicates the connection id is not registered.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrConnectionClosed indicates the connection's outbound queue was
	// already shut down.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrSendBufferFull indicates the connection's outbound queue is full
	// and the message was dropped.
	ErrSendBufferFull = errors.New("send buffer full")

	// ErrAuthRequired indicates the connection never authenticated.
	ErrAuthRequired = errors.New("authentication required")

	// ErrTokenRevoked indicates the connection's token id was revoked.
	ErrTokenRevoked = errors.New("token revoked")
)

// TokenVerifier checks a bearer credential and yields the identity it
// carries. The auth service's JWT validation satisfies this.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID uuid.UUID, tokenID string, err error)
}

// ProjectAccessChecker reports whether a user may observe a project.
type ProjectAccessChecker interface {
	CanAccess(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}

// RevocationChecker reports whether a token id has been revoked.
// *auth.RevocationList satisfies this.
type RevocationChecker interface {
	IsRevoked(tokenID string) bool
}

// Connection is the registry's handle to one live client. The outbound
// queue decouples broadcast fan-out from the socket: a slow client fills
// its own queue and starts dropping messages without blocking anyone else.
type Connection struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu           sync.Mutex
	userID       uuid.UUID
	tokenID      string
	lastActivity time.Time
	closed       bool
	send         chan []byte
}

// NewConnection creates an unauthenticated connection with the given
// outbound queue capacity.
func NewConnection(bufferSize int) *Connection {
	if bufferSize < 1 {
		bufferSize = 1
	}
	now := time.Now().UTC()
	return &Connection{
		ID:           uuid.New(),
		CreatedAt:    now,
		lastActivity: now,
		send:         make(chan []byte, bufferSize),
	}
}

// UserID returns the bound user id, or uuid.Nil before authentication.
func (c *Connection) UserID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// TokenID returns the jti of the credential the connection authenticated
// with, or "" before authentication.
func (c *Connection) TokenID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenID
}

// Outbound returns the queue the transport write loop drains. The channel
// is closed exactly once, when the connection is deregistered.
func (c *Connection) Outbound() <-chan []byte {
	return c.send
}

// Touch records inbound activity.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastActivity = time.Now().UTC()
	c.mu.Unlock()
}

// LastActivity returns the time of the most recent inbound message.
func (c *Connection) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *Connection) bind(userID uuid.UUID, tokenID string) {
	c.mu.Lock()
	c.userID = userID
	c.tokenID = tokenID
	c.mu.Unlock()
}

// enqueue places a message on the outbound queue without blocking.
func (c *Connection) enqueue(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// close shuts the outbound queue. Safe to call more than once.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Registry tracks live connections and their identities. It owns the
// connection map and the token-id index used for eager revocation
// disconnects; room membership itself lives in the RoomManager.
type Registry struct {
	rooms    *RoomManager
	verifier TokenVerifier
	revoked  RevocationChecker
	logger   *slog.Logger

	mu      sync.RWMutex
	conns   map[uuid.UUID]*Connection
	byToken map[string]uuid.UUID
}

// NewRegistry creates an empty registry. revoked may be nil, in which case
// tokens are only vetted by the verifier.
func NewRegistry(rooms *RoomManager, verifier TokenVerifier, revoked RevocationChecker, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		rooms:    rooms,
		verifier: verifier,
		revoked:  revoked,
		logger:   logger.With(slog.String("component", "realtime_registry")),
		conns:    make(map[uuid.UUID]*Connection),
		byToken:  make(map[string]uuid.UUID),
	}
}

// Register records a new connection in the unauthenticated state.
func (r *Registry) Register(conn *Connection) uuid.UUID {
	r.mu.Lock()
	r.conns[conn.ID] = conn
	r.mu.Unlock()
	return conn.ID
}

// Authenticate verifies the credential, binds the resulting identity to the
// connection, and auto-joins the per-user room. On failure the caller must
// terminate the connection.
func (r *Registry) Authenticate(ctx context.Context, connID uuid.UUID, token string) (uuid.UUID, error) {
	r.mu.RLock()
	conn, ok := r.conns[connID]
	r.mu.RUnlock()
	if !ok {
		return uuid.Nil, ErrConnectionNotFound
	}

	userID, tokenID, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	if r.revoked != nil && r.revoked.IsRevoked(tokenID) {
		return uuid.Nil, ErrTokenRevoked
	}

	conn.bind(userID, tokenID)

	r.mu.Lock()
	r.byToken[tokenID] = connID
	r.mu.Unlock()

	r.rooms.Join(connID, UserRoom(userID))
	return userID, nil
}

// Deregister removes the connection from the registry and from every room
// it had joined, and shuts its outbound queue. Idempotent.
func (r *Registry) Deregister(connID uuid.UUID) {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
		if tokenID := conn.TokenID(); tokenID != "" && r.byToken[tokenID] == connID {
			delete(r.byToken, tokenID)
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	r.rooms.DropConnection(connID)
	conn.close()
}

// Revoke forcibly deregisters the connection currently authenticated with
// the given token id, if any. The token itself is revoked elsewhere; this
// only tears down the live session bound to it.
func (r *Registry) Revoke(tokenID string) {
	r.mu.RLock()
	connID, ok := r.byToken[tokenID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	r.logger.Info("disconnecting connection with revoked token",
		slog.String("connection_id", connID.String()))
	r.Deregister(connID)
}

// Send delivers a payload to one connection, best effort. Failures are
// logged and swallowed so one dead or slow client never affects a broadcast
// to the others.
func (r *Registry) Send(connID uuid.UUID, payload []byte) {
	r.mu.RLock()
	conn, ok := r.conns[connID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	if err := conn.enqueue(payload); err != nil {
		r.logger.Debug("dropping message",
			slog.String("connection_id", connID.String()),
			slog.String("reason", err.Error()))
	}
}

// Get returns the connection for the given id.
func (r *Registry) Get(connID uuid.UUID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	return conn, ok
}

// AuthenticatedIDs returns a snapshot of every connection that has
// completed authentication.
func (r *Registry) AuthenticatedIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(r.conns))
	for id, conn := range r.conns {
		if conn.UserID() != uuid.Nil {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
