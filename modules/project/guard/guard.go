package guard

import (
	"context"

	"setlist-api/core/errors"
	"setlist-api/core/logger"
	"setlist-api/modules/project/entity"

	"github.com/google/uuid"
)

type MembershipChecker interface {
	IsMember(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) (bool, error)
}

// Guard answers whether a user belongs to a project. It never mutates state.
type Guard struct {
	members MembershipChecker
}

func NewGuard(members MembershipChecker) *Guard {
	return &Guard{members: members}
}

// VerifyAccess is false for a nil project, a nil user and for non-members.
// Lookup failures are logged and treated as no access.
func (g *Guard) VerifyAccess(ctx context.Context, project *entity.Project, userID uuid.UUID) bool {
	if project == nil || userID == uuid.Nil {
		return false
	}

	ok, err := g.members.IsMember(ctx, project.ID, userID)
	if err != nil {
		logger.Error("Guard:VerifyAccess:Error:", err)
		return false
	}
	return ok
}

func (g *Guard) Require(ctx context.Context, project *entity.Project, userID uuid.UUID) *errors.AppError {
	if !g.VerifyAccess(ctx, project, userID) {
		return errors.NewAppError(errors.ErrForbidden, "You are not a member of this project", nil)
	}
	return nil
}
