package realtime

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/taskhive/taskhive/internal/redact"
)

// Broadcaster fans domain events out to the connections in their target
// rooms. Publishing is fire-and-forget: the REST mutation that produced the
// event has already committed, so nothing here may fail it.
type Broadcaster struct {
	rooms    *RoomManager
	registry *Registry
	policy   RoutingPolicy
	logger   *slog.Logger
}

// NewBroadcaster wires a broadcaster over the shared room manager and
// connection registry.
func NewBroadcaster(rooms *RoomManager, registry *Registry, policy RoutingPolicy, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		rooms:    rooms,
		registry: registry,
		policy:   policy,
		logger:   logger.With(slog.String("component", "broadcaster")),
	}
}

// Publish serializes the event once and delivers it to every distinct
// connection across the target rooms. Membership is snapshotted before any
// send so no room lock is held while writing to sockets. A connection
// reachable through several target rooms receives the event exactly once.
func (b *Broadcaster) Publish(event Event) {
	payload, err := encodeMessage(event.Kind, event.Payload)
	if err != nil {
		b.logger.Error("failed to serialize event",
			slog.String("event", string(event.Kind)),
			slog.String("error", redact.Error(err)))
		return
	}

	targets := b.resolveTargets(event)
	if len(targets) == 0 {
		return
	}

	for _, connID := range targets {
		b.registry.Send(connID, payload)
	}

	b.logger.Debug("event published",
		slog.String("event", string(event.Kind)),
		slog.Int("recipients", len(targets)))
}

// resolveTargets returns the distinct connection ids the event must reach.
// SystemAnnouncement bypasses rooms and reaches every authenticated
// connection.
func (b *Broadcaster) resolveTargets(event Event) []uuid.UUID {
	if event.Kind == EventSystemAnnouncement {
		return b.registry.AuthenticatedIDs()
	}

	var ids []uuid.UUID
	for _, key := range b.policy.RoomsForEvent(event) {
		ids = append(ids, b.rooms.Members(key)...)
	}
	return lo.Uniq(ids)
}
