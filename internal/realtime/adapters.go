package realtime

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/service/auth"
	"github.com/taskhive/taskhive/internal/store"
)

// JWTVerifier adapts the auth service's access-token validation to the
// registry's TokenVerifier contract.
type JWTVerifier struct {
	JWT auth.JWTService
}

// Verify validates an access token and returns the identity it carries.
func (v JWTVerifier) Verify(ctx context.Context, token string) (uuid.UUID, string, error) {
	claims, err := v.JWT.ValidateToken(ctx, token)
	if err != nil {
		return uuid.Nil, "", err
	}
	return claims.UserID, claims.ID, nil
}

// MembershipAccessChecker grants project-room access to project members.
type MembershipAccessChecker struct {
	Projects store.ProjectStore
}

// CanAccess reports whether the user is a member of the project.
func (c MembershipAccessChecker) CanAccess(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	return c.Projects.IsMember(ctx, projectID, userID)
}

// StoreUserDirectory resolves actor metadata from the user store.
type StoreUserDirectory struct {
	Users store.UserStore
}

// LookupActor fetches the user and returns its public identity fields.
func (d StoreUserDirectory) LookupActor(ctx context.Context, userID uuid.UUID) (Actor, error) {
	user, err := d.Users.GetByID(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	return ActorFromUser(user), nil
}
