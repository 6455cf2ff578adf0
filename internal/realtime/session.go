package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/taskhive/taskhive/internal/redact"
)

const (
	maxMessageBytes = 1 << 16
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	writeWait       = 10 * time.Second
)

// Server-to-client event names that are session-local rather than domain
// events.
const (
	eventConnected     = "connected"
	eventJoinedProject = "joined_project"
	eventLeftProject   = "left_project"
	eventPong          = "pong"
	eventUserTyping    = "user_typing"
	eventError         = "error"
)

// Client-to-server message types.
const (
	msgJoinProject  = "join_project"
	msgLeaveProject = "leave_project"
	msgPing         = "ping"
	msgTyping       = "typing"
)

type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type projectRequest struct {
	ProjectID uuid.UUID `json:"project_id"`
}

type typingRequest struct {
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	IsTyping  bool      `json:"is_typing"`
}

type connectedPayload struct {
	Message   string    `json:"message"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp string    `json:"timestamp"`
}

type roomEventPayload struct {
	ProjectID uuid.UUID `json:"project_id"`
	Room      string    `json:"room,omitempty"`
	Timestamp string    `json:"timestamp"`
}

type pongPayload struct {
	Timestamp string `json:"timestamp"`
}

type typingPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	TaskID    uuid.UUID `json:"task_id"`
	IsTyping  bool      `json:"is_typing"`
	Timestamp string    `json:"timestamp"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// session drives one WebSocket connection from authentication through
// active room membership to teardown. The lifecycle is
// connecting -> active -> closed; auth failure goes straight to closed.
type session struct {
	handler *Handler
	ws      *websocket.Conn
	conn    *Connection
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger

	actor     Actor
	closeOnce sync.Once
}

func newSession(h *Handler, ws *websocket.Conn, conn *Connection, parent context.Context) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{
		handler: h,
		ws:      ws,
		conn:    conn,
		ctx:     ctx,
		cancel:  cancel,
		logger: h.logger.With(
			slog.String("connection_id", conn.ID.String())),
	}
}

// run owns the connection for its whole life. It returns only when the
// session is closed and deregistered.
func (s *session) run(token string) {
	defer s.close()
	go s.writeLoop()

	if !s.authenticate(token) {
		return
	}
	s.readLoop()
}

// close tears the session down exactly once. Deregistration removes the
// connection from every room and shuts the outbound queue; the write loop
// drains what remains, sends a close frame, and closes the socket.
func (s *session) close() {
	s.closeOnce.Do(func() {
		s.handler.registry.Deregister(s.conn.ID)
		s.logger.Debug("session closed")
	})
}

// authenticate verifies the credential within the configured window. A
// missing or rejected token closes the connection; the error event is
// queued first so the write loop can flush it on the way out.
func (s *session) authenticate(token string) bool {
	if token == "" {
		s.sendError("Authentication required")
		return false
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.handler.authTimeout)
	defer cancel()

	userID, err := s.handler.registry.Authenticate(ctx, s.conn.ID, token)
	if err != nil {
		s.logger.Warn("websocket authentication failed",
			slog.String("error", redact.Error(err)))
		s.sendError("Authentication failed")
		return false
	}

	s.actor = s.lookupActor(userID)
	s.logger = s.logger.With(slog.String("user_id", userID.String()))
	s.logger.Info("websocket connection authenticated")

	s.send(eventConnected, connectedPayload{
		Message:   "Successfully connected to real-time updates",
		UserID:    userID,
		Timestamp: nowUTC(),
	})
	return true
}

func (s *session) lookupActor(userID uuid.UUID) Actor {
	if s.handler.directory == nil {
		return Actor{ID: userID}
	}
	actor, err := s.handler.directory.LookupActor(s.ctx, userID)
	if err != nil {
		s.logger.Warn("failed to look up user for typing events",
			slog.String("error", redact.Error(err)))
		return Actor{ID: userID}
	}
	return actor
}

func (s *session) readLoop() {
	s.ws.SetReadLimit(maxMessageBytes)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := s.ws.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		// Revocation is checked on every inbound message so a revoked
		// session dies on its next interaction even without an eager
		// disconnect.
		if s.handler.revoked != nil && s.handler.revoked.IsRevoked(s.conn.TokenID()) {
			s.logger.Info("closing connection with revoked token")
			return
		}

		s.conn.Touch()

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError("Invalid message format")
			continue
		}

		// A bad request only answers the offending connection; it never
		// terminates the session.
		if err := s.handleMessage(msg); err != nil {
			s.logger.Warn("failed to handle client message",
				slog.String("type", msg.Type),
				slog.String("error", redact.Error(err)))
			s.sendError(err.Error())
		}
	}
}

// writeLoop drains the outbound queue onto the socket and keeps the
// connection alive with pings. It exits when the queue is closed by
// deregistration or when a write fails.
func (s *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
		s.cancel()
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case msg, ok := <-s.conn.Outbound():
			if !ok {
				_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
				_ = s.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) handleMessage(msg clientMessage) error {
	switch msg.Type {
	case msgJoinProject:
		return s.handleJoinProject(msg.Data)
	case msgLeaveProject:
		return s.handleLeaveProject(msg.Data)
	case msgPing:
		s.send(eventPong, pongPayload{Timestamp: nowUTC()})
		return nil
	case msgTyping:
		return s.handleTyping(msg.Data)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// handleJoinProject admits the connection to a project room after
// re-validating project access. A denied join leaves the session active
// with its membership unchanged.
func (s *session) handleJoinProject(data json.RawMessage) error {
	var req projectRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ProjectID == uuid.Nil {
		return fmt.Errorf("project ID required")
	}

	ok, err := s.handler.access.CanAccess(s.ctx, s.conn.UserID(), req.ProjectID)
	if err != nil {
		s.logger.Error("project access check failed",
			slog.String("project_id", req.ProjectID.String()),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to join project")
	}
	if !ok {
		return fmt.Errorf("access denied to project")
	}

	room := ProjectRoom(req.ProjectID)
	s.handler.rooms.Join(s.conn.ID, room)

	s.send(eventJoinedProject, roomEventPayload{
		ProjectID: req.ProjectID,
		Room:      room.String(),
		Timestamp: nowUTC(),
	})
	s.logger.Debug("joined project room", slog.String("room", room.String()))
	return nil
}

func (s *session) handleLeaveProject(data json.RawMessage) error {
	var req projectRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ProjectID == uuid.Nil {
		return fmt.Errorf("project ID required")
	}

	s.handler.rooms.Leave(s.conn.ID, ProjectRoom(req.ProjectID))

	s.send(eventLeftProject, roomEventPayload{
		ProjectID: req.ProjectID,
		Timestamp: nowUTC(),
	})
	return nil
}

// handleTyping relays a typing indicator to everyone else in the project
// room. The sender must already be a member of the room.
func (s *session) handleTyping(data json.RawMessage) error {
	var req typingRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ProjectID == uuid.Nil || req.TaskID == uuid.Nil {
		return fmt.Errorf("project ID and task ID required")
	}

	room := ProjectRoom(req.ProjectID)
	if !s.handler.rooms.IsMember(s.conn.ID, room) {
		return fmt.Errorf("join the project before sending typing indicators")
	}

	payload, err := encodeMessage(eventUserTyping, typingPayload{
		UserID:    s.actor.ID,
		Username:  s.actor.Username,
		FullName:  s.actor.FullName,
		TaskID:    req.TaskID,
		IsTyping:  req.IsTyping,
		Timestamp: nowUTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to send typing indicator")
	}

	for _, connID := range s.handler.rooms.Members(room) {
		if connID == s.conn.ID {
			continue
		}
		s.handler.registry.Send(connID, payload)
	}
	return nil
}

// send queues a session-local event for this connection only.
func (s *session) send(event string, data any) {
	payload, err := encodeMessage(EventKind(event), data)
	if err != nil {
		s.logger.Error("failed to serialize event",
			slog.String("event", event),
			slog.String("error", redact.Error(err)))
		return
	}
	s.handler.registry.Send(s.conn.ID, payload)
}

func (s *session) sendError(message string) {
	s.send(eventError, errorPayload{Message: message})
}
