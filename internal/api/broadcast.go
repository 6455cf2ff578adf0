package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/platform/logger"
	"github.com/taskhive/taskhive/internal/realtime"
	"github.com/taskhive/taskhive/internal/redact"
	"github.com/taskhive/taskhive/internal/store"
)

// resolveActor looks up the acting user's public identity for event payloads.
// Falls back to a bare id if the lookup fails; broadcasting is best effort
// and must never fail the mutation it announces.
func resolveActor(r *http.Request, users store.UserStore, userID uuid.UUID) realtime.Actor {
	user, err := users.GetByID(r.Context(), userID)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("failed to resolve actor for event",
				slog.String("user_id", userID.String()),
				slog.String("error", redact.Error(err)))
		return realtime.Actor{ID: userID}
	}
	return realtime.ActorFromUser(user)
}

// publishEvent publishes through a possibly nil broadcaster.
func publishEvent(b *realtime.Broadcaster, event realtime.Event) {
	if b != nil {
		b.Publish(event)
	}
}

// publishProjectStats recomputes and broadcasts a project's task statistics.
// Called after mutations that change task counts or completion state.
func publishProjectStats(r *http.Request, b *realtime.Broadcaster, projects store.ProjectStore, projectID uuid.UUID) {
	if b == nil {
		return
	}

	stats, err := projects.GetStats(r.Context(), projectID)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("failed to compute project stats for broadcast",
				slog.String("project_id", projectID.String()),
				slog.String("error", redact.Error(err)))
		return
	}

	b.Publish(realtime.NewProjectStatsUpdatedEvent(stats))
}
