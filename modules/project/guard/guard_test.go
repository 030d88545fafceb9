package guard

import (
	"context"
	stderrors "errors"
	"testing"

	"setlist-api/core/errors"
	"setlist-api/modules/project/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMembers struct {
	members map[uuid.UUID]bool
	err     error
	calls   int
}

func (f *fakeMembers) IsMember(_ context.Context, _ uuid.UUID, userID uuid.UUID) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.members[userID], nil
}

func TestVerifyAccess(t *testing.T) {
	member := uuid.New()
	outsider := uuid.New()
	project := &entity.Project{ID: uuid.New()}
	members := &fakeMembers{members: map[uuid.UUID]bool{member: true}}
	g := NewGuard(members)
	ctx := context.Background()

	assert.True(t, g.VerifyAccess(ctx, project, member))
	assert.False(t, g.VerifyAccess(ctx, project, outsider))
	assert.False(t, g.VerifyAccess(ctx, nil, member))
	assert.False(t, g.VerifyAccess(ctx, project, uuid.Nil))
	assert.Equal(t, 2, members.calls, "nil inputs must not hit the store")
}

func TestVerifyAccessLookupFailureDenies(t *testing.T) {
	g := NewGuard(&fakeMembers{err: stderrors.New("connection reset")})
	assert.False(t, g.VerifyAccess(context.Background(), &entity.Project{ID: uuid.New()}, uuid.New()))
}

func TestRequire(t *testing.T) {
	member := uuid.New()
	project := &entity.Project{ID: uuid.New()}
	g := NewGuard(&fakeMembers{members: map[uuid.UUID]bool{member: true}})

	assert.Nil(t, g.Require(context.Background(), project, member))

	appErr := g.Require(context.Background(), project, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
}
