package service

import (
	"context"
	"testing"

	"setlist-api/core/errors"
	"setlist-api/modules/user/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	users map[uuid.UUID]*entity.User
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

func TestGetProfileHidesPrivateFields(t *testing.T) {
	phone := "+33 6 00 00 00 00"
	address := "1 rue de la Paix"
	u := &entity.User{ID: uuid.New(), Username: "ana", Email: "ana@example.com", Phone: &phone, Address: &address, AddressPublic: true}
	svc := NewUserService(&fakeRepo{users: map[uuid.UUID]*entity.User{u.ID: u}})

	other, appErr := svc.GetProfile(context.Background(), uuid.New(), u.ID)
	require.Nil(t, appErr)
	assert.Empty(t, other.Email)
	assert.Nil(t, other.Phone)
	require.NotNil(t, other.Address)
	assert.Equal(t, address, *other.Address)

	me, appErr := svc.GetMe(context.Background(), u.ID)
	require.Nil(t, appErr)
	assert.Equal(t, "ana@example.com", me.Email)
	require.NotNil(t, me.Phone)
}

func TestGetProfileNotFound(t *testing.T) {
	svc := NewUserService(&fakeRepo{users: map[uuid.UUID]*entity.User{}})

	_, appErr := svc.GetProfile(context.Background(), uuid.New(), uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}
