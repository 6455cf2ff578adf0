package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/store"
)

// EventKind identifies a domain event on the wire.
type EventKind string

// Wire event names sent to clients.
const (
	EventTaskCreated         EventKind = "task_created"
	EventTaskUpdated         EventKind = "task_updated"
	EventTaskDeleted         EventKind = "task_deleted"
	EventTaskAssigned        EventKind = "task_assigned"
	EventCommentAdded        EventKind = "comment_added"
	EventProjectUpdated      EventKind = "project_updated"
	EventProjectMemberAdded  EventKind = "project_member_added"
	EventNotification        EventKind = "notification"
	EventSystemAnnouncement  EventKind = "system_announcement"
	EventProjectStatsUpdated EventKind = "project_stats_updated"
)

// Actor is the user who performed the mutation an event describes.
type Actor struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

// ActorFromUser builds an Actor from a user entity.
func ActorFromUser(u *domain.User) Actor {
	return Actor{ID: u.ID, Username: u.Username, FullName: u.FullName}
}

// Event is a completed state mutation to fan out. The routing fields
// (ProjectID, CreatorID, ...) drive room targeting and are never sent to
// clients; Payload is what goes on the wire.
type Event struct {
	Kind EventKind

	ProjectID    uuid.UUID
	CreatorID    uuid.UUID
	AssigneeID   uuid.UUID
	OwnerID      uuid.UUID
	TargetUserID uuid.UUID

	Payload any
}

// wireMessage is the envelope for every server-to-client message.
type wireMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// encodeMessage serializes one wire message. Broadcast paths call this once
// per event and reuse the bytes for every target connection.
func encodeMessage(event EventKind, data any) ([]byte, error) {
	return json.Marshal(wireMessage{Event: string(event), Data: data})
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// taskSnapshot is the public representation of a task in event payloads.
type taskSnapshot struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	ProjectID   uuid.UUID           `json:"project_id"`
	CreatedBy   uuid.UUID           `json:"created_by"`
	AssignedTo  *uuid.UUID          `json:"assigned_to"`
	DueDate     *time.Time          `json:"due_date"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func snapshotTask(t *domain.Task) taskSnapshot {
	return taskSnapshot{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		ProjectID:   t.ProjectID,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type taskCreatedPayload struct {
	Task      taskSnapshot `json:"task"`
	CreatedBy Actor        `json:"created_by"`
	Timestamp string       `json:"timestamp"`
}

type taskUpdatedPayload struct {
	TaskID    uuid.UUID      `json:"task_id"`
	Changes   map[string]any `json:"changes"`
	Task      taskSnapshot   `json:"task"`
	UpdatedBy Actor          `json:"updated_by"`
	Timestamp string         `json:"timestamp"`
}

type taskDeletedPayload struct {
	TaskID    uuid.UUID `json:"task_id"`
	TaskTitle string    `json:"task_title"`
	ProjectID uuid.UUID `json:"project_id"`
	DeletedBy Actor     `json:"deleted_by"`
	Timestamp string    `json:"timestamp"`
}

type taskAssignedPayload struct {
	Task       taskSnapshot `json:"task"`
	AssignedTo Actor        `json:"assigned_to"`
	AssignedBy Actor        `json:"assigned_by"`
	Timestamp  string       `json:"timestamp"`
}

type commentSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	TaskID     uuid.UUID `json:"task_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type commentTaskRef struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ProjectID uuid.UUID `json:"project_id"`
}

type commentAddedPayload struct {
	Comment   commentSnapshot `json:"comment"`
	Task      commentTaskRef  `json:"task"`
	Timestamp string          `json:"timestamp"`
}

type projectSnapshot struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type projectUpdatedPayload struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Changes   map[string]any  `json:"changes"`
	Project   projectSnapshot `json:"project"`
	UpdatedBy Actor           `json:"updated_by"`
	Timestamp string          `json:"timestamp"`
}

type projectMemberAddedPayload struct {
	ProjectID   uuid.UUID `json:"project_id"`
	ProjectName string    `json:"project_name"`
	NewMember   Actor     `json:"new_member"`
	AddedBy     Actor     `json:"added_by"`
	Timestamp   string    `json:"timestamp"`
}

type notificationPayload struct {
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	Timestamp string     `json:"timestamp"`
}

type systemAnnouncementPayload struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type projectStatsPayload struct {
	ProjectID uuid.UUID          `json:"project_id"`
	Stats     store.ProjectStats `json:"stats"`
	Timestamp string             `json:"timestamp"`
}

func assigneeOrNil(t *domain.Task) uuid.UUID {
	if t.AssignedTo == nil {
		return uuid.Nil
	}
	return *t.AssignedTo
}

// NewTaskCreatedEvent announces a freshly created task.
func NewTaskCreatedEvent(task *domain.Task, actor Actor) Event {
	return Event{
		Kind:       EventTaskCreated,
		ProjectID:  task.ProjectID,
		CreatorID:  task.CreatedBy,
		AssigneeID: assigneeOrNil(task),
		Payload: taskCreatedPayload{
			Task:      snapshotTask(task),
			CreatedBy: actor,
			Timestamp: nowUTC(),
		},
	}
}

// NewTaskUpdatedEvent announces a task mutation. changes lists the fields
// the caller modified, keyed by field name.
func NewTaskUpdatedEvent(task *domain.Task, actor Actor, changes map[string]any) Event {
	if changes == nil {
		changes = map[string]any{}
	}
	return Event{
		Kind:       EventTaskUpdated,
		ProjectID:  task.ProjectID,
		CreatorID:  task.CreatedBy,
		AssigneeID: assigneeOrNil(task),
		Payload: taskUpdatedPayload{
			TaskID:    task.ID,
			Changes:   changes,
			Task:      snapshotTask(task),
			UpdatedBy: actor,
			Timestamp: nowUTC(),
		},
	}
}

// NewTaskDeletedEvent announces a task deletion. The task is the entity as
// it was before the delete committed.
func NewTaskDeletedEvent(task *domain.Task, actor Actor) Event {
	return Event{
		Kind:       EventTaskDeleted,
		ProjectID:  task.ProjectID,
		CreatorID:  task.CreatedBy,
		AssigneeID: assigneeOrNil(task),
		Payload: taskDeletedPayload{
			TaskID:    task.ID,
			TaskTitle: task.Title,
			ProjectID: task.ProjectID,
			DeletedBy: actor,
			Timestamp: nowUTC(),
		},
	}
}

// NewTaskAssignedEvent announces that a task was assigned to assignee.
func NewTaskAssignedEvent(task *domain.Task, assignee *domain.User, actor Actor) Event {
	return Event{
		Kind:       EventTaskAssigned,
		ProjectID:  task.ProjectID,
		AssigneeID: assignee.ID,
		Payload: taskAssignedPayload{
			Task:       snapshotTask(task),
			AssignedTo: ActorFromUser(assignee),
			AssignedBy: actor,
			Timestamp:  nowUTC(),
		},
	}
}

// NewCommentAddedEvent announces a new comment on a task.
func NewCommentAddedEvent(comment *domain.TaskComment, task *domain.Task, actor Actor) Event {
	return Event{
		Kind:       EventCommentAdded,
		ProjectID:  task.ProjectID,
		CreatorID:  task.CreatedBy,
		AssigneeID: assigneeOrNil(task),
		Payload: commentAddedPayload{
			Comment: commentSnapshot{
				ID:         comment.ID,
				Content:    comment.Content,
				TaskID:     comment.TaskID,
				AuthorID:   comment.AuthorID,
				AuthorName: actor.FullName,
				CreatedAt:  comment.CreatedAt,
			},
			Task: commentTaskRef{
				ID:        task.ID,
				Title:     task.Title,
				ProjectID: task.ProjectID,
			},
			Timestamp: nowUTC(),
		},
	}
}

// NewProjectUpdatedEvent announces a project mutation.
func NewProjectUpdatedEvent(project *domain.Project, actor Actor, changes map[string]any) Event {
	if changes == nil {
		changes = map[string]any{}
	}
	return Event{
		Kind:      EventProjectUpdated,
		ProjectID: project.ID,
		OwnerID:   project.OwnerID,
		Payload: projectUpdatedPayload{
			ProjectID: project.ID,
			Changes:   changes,
			Project: projectSnapshot{
				ID:          project.ID,
				Name:        project.Name,
				Description: project.Description,
				Status:      project.Status,
				UpdatedAt:   project.UpdatedAt,
			},
			UpdatedBy: actor,
			Timestamp: nowUTC(),
		},
	}
}

// NewProjectMemberAddedEvent announces a new project member.
func NewProjectMemberAddedEvent(project *domain.Project, member *domain.User, actor Actor) Event {
	return Event{
		Kind:      EventProjectMemberAdded,
		ProjectID: project.ID,
		OwnerID:   project.OwnerID,
		Payload: projectMemberAddedPayload{
			ProjectID:   project.ID,
			ProjectName: project.Name,
			NewMember:   ActorFromUser(member),
			AddedBy:     actor,
			Timestamp:   nowUTC(),
		},
	}
}

// NewNotificationEvent targets a single user with a short message.
// taskID may be nil when the notification is not about a task.
func NewNotificationEvent(targetUserID uuid.UUID, notificationType, message string, taskID *uuid.UUID) Event {
	return Event{
		Kind:         EventNotification,
		TargetUserID: targetUserID,
		Payload: notificationPayload{
			Type:      notificationType,
			Message:   message,
			TaskID:    taskID,
			Timestamp: nowUTC(),
		},
	}
}

// NewSystemAnnouncementEvent reaches every authenticated connection.
func NewSystemAnnouncementEvent(message string) Event {
	return Event{
		Kind: EventSystemAnnouncement,
		Payload: systemAnnouncementPayload{
			Message:   message,
			Timestamp: nowUTC(),
		},
	}
}

// NewProjectStatsUpdatedEvent announces refreshed task counters for a project.
func NewProjectStatsUpdatedEvent(stats *store.ProjectStats) Event {
	return Event{
		Kind:      EventProjectStatsUpdated,
		ProjectID: stats.ProjectID,
		Payload: projectStatsPayload{
			ProjectID: stats.ProjectID,
			Stats:     *stats,
			Timestamp: nowUTC(),
		},
	}
}
