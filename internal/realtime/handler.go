package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/taskhive/taskhive/internal/config"
)

// UserDirectory resolves actor metadata for events a session emits on
// behalf of its user, such as typing indicators.
type UserDirectory interface {
	LookupActor(ctx context.Context, userID uuid.UUID) (Actor, error)
}

// Handler upgrades HTTP requests to WebSocket sessions. Clients pass their
// access token as a "token" query parameter or a bearer Authorization
// header; authentication must complete within the configured window.
type Handler struct {
	registry  *Registry
	rooms     *RoomManager
	access    ProjectAccessChecker
	directory UserDirectory
	revoked   RevocationChecker
	logger    *slog.Logger

	upgrader    websocket.Upgrader
	authTimeout time.Duration
	sendBuffer  int
}

// NewHandler creates the WebSocket entry point. directory and revoked may
// be nil; sessions then fall back to bare user ids and skip per-message
// revocation checks.
func NewHandler(
	cfg config.RealtimeConfig,
	registry *Registry,
	rooms *RoomManager,
	access ProjectAccessChecker,
	directory UserDirectory,
	revoked RevocationChecker,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry:  registry,
		rooms:     rooms,
		access:    access,
		directory: directory,
		revoked:   revoked,
		logger:    logger.With(slog.String("component", "realtime")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		authTimeout: time.Duration(cfg.AuthTimeoutSeconds) * time.Second,
		sendBuffer:  cfg.SendBufferSize,
	}
}

// ServeHTTP runs one session for the life of the connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := credentialFromRequest(r)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		return
	}

	conn := NewConnection(h.sendBuffer)
	h.registry.Register(conn)

	session := newSession(h, ws, conn, r.Context())
	session.run(token)
}

func credentialFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// Stats reports live connection and room counts for the status endpoint.
type Stats struct {
	ConnectedClients int `json:"connected_clients"`
	ActiveRooms      int `json:"active_rooms"`
}

// Stats snapshots the current registry and room counts.
func (h *Handler) Stats() Stats {
	return Stats{
		ConnectedClients: h.registry.Len(),
		ActiveRooms:      h.rooms.Len(),
	}
}
