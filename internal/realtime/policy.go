package realtime

import "github.com/google/uuid"

// RoutingPolicy decides which rooms a domain event reaches. The inclusion
// rules that differ between deployments are flags rather than hard-coded so
// tests can pin down the exact fan-out.
type RoutingPolicy struct {
	// TaskEventsToCreator adds the creator's user room to task
	// create/update/delete fan-out.
	TaskEventsToCreator bool

	// TaskEventsToAssignee adds the assignee's user room to task
	// create/update/delete fan-out when the task has an assignee distinct
	// from the creator.
	TaskEventsToAssignee bool

	// CommentsToTaskParticipants adds the task creator's and assignee's user
	// rooms to comment fan-out in addition to the project room.
	CommentsToTaskParticipants bool

	// ProjectEventsToOwner adds the owner's user room to project
	// update/member-added fan-out.
	ProjectEventsToOwner bool
}

// DefaultRoutingPolicy targets creator, assignee, and project room for task
// events, owner and project room for project events, and project room only
// for comments.
func DefaultRoutingPolicy() RoutingPolicy {
	return RoutingPolicy{
		TaskEventsToCreator:  true,
		TaskEventsToAssignee: true,
		ProjectEventsToOwner: true,
	}
}

// RoomsForEvent computes the target rooms for an event. It is a pure
// function of the policy and the event's routing fields; identical input
// yields an identical room set. SystemAnnouncement returns no rooms because
// it bypasses room scoping entirely (the broadcaster reaches every
// authenticated connection directly).
func (p RoutingPolicy) RoomsForEvent(e Event) []RoomKey {
	switch e.Kind {
	case EventTaskCreated, EventTaskUpdated, EventTaskDeleted:
		rooms := make([]RoomKey, 0, 3)
		if p.TaskEventsToCreator && e.CreatorID != uuid.Nil {
			rooms = append(rooms, UserRoom(e.CreatorID))
		}
		if p.TaskEventsToAssignee && e.AssigneeID != uuid.Nil && e.AssigneeID != e.CreatorID {
			rooms = append(rooms, UserRoom(e.AssigneeID))
		}
		return append(rooms, ProjectRoom(e.ProjectID))

	case EventTaskAssigned:
		return []RoomKey{UserRoom(e.AssigneeID), ProjectRoom(e.ProjectID)}

	case EventProjectUpdated, EventProjectMemberAdded:
		rooms := make([]RoomKey, 0, 2)
		if p.ProjectEventsToOwner && e.OwnerID != uuid.Nil {
			rooms = append(rooms, UserRoom(e.OwnerID))
		}
		return append(rooms, ProjectRoom(e.ProjectID))

	case EventCommentAdded:
		rooms := make([]RoomKey, 0, 3)
		if p.CommentsToTaskParticipants {
			if e.CreatorID != uuid.Nil {
				rooms = append(rooms, UserRoom(e.CreatorID))
			}
			if e.AssigneeID != uuid.Nil && e.AssigneeID != e.CreatorID {
				rooms = append(rooms, UserRoom(e.AssigneeID))
			}
		}
		return append(rooms, ProjectRoom(e.ProjectID))

	case EventNotification:
		return []RoomKey{UserRoom(e.TargetUserID)}

	case EventProjectStatsUpdated:
		return []RoomKey{ProjectRoom(e.ProjectID)}

	case EventSystemAnnouncement:
		return nil

	default:
		return nil
	}
}
