package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"setlist-api/core/errors"
	"setlist-api/modules/project/dto"
	"setlist-api/modules/project/entity"
	"setlist-api/modules/project/guard"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	projects map[uuid.UUID]*entity.Project
	members  map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects: map[uuid.UUID]*entity.Project{},
		members:  map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (f *fakeRepo) Create(_ context.Context, p *entity.Project) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.projects[p.ID] = p
	return f.AddMember(context.Background(), p.ID, p.OwnerID)
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Project, error) {
	return f.projects[id], nil
}

func (f *fakeRepo) ListByMember(_ context.Context, userID uuid.UUID) ([]entity.Project, error) {
	out := []entity.Project{}
	for id, m := range f.members {
		if m[userID] {
			out = append(out, *f.projects[id])
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateProfileImage(_ context.Context, id uuid.UUID, url string) error {
	f.projects[id].ProfileImage = &url
	return nil
}

func (f *fakeRepo) IsMember(_ context.Context, projectID uuid.UUID, userID uuid.UUID) (bool, error) {
	return f.members[projectID][userID], nil
}

func (f *fakeRepo) IsMemberByEmail(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

func (f *fakeRepo) AddMember(_ context.Context, projectID uuid.UUID, userID uuid.UUID) error {
	if f.members[projectID] == nil {
		f.members[projectID] = map[uuid.UUID]bool{}
	}
	f.members[projectID][userID] = true
	return nil
}

func (f *fakeRepo) ListMemberIDs(_ context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for id := range f.members[projectID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRepo) ListMembers(_ context.Context, projectID uuid.UUID) ([]entity.Member, error) {
	out := []entity.Member{}
	for id := range f.members[projectID] {
		out = append(out, entity.Member{UserID: id})
	}
	return out, nil
}

func (f *fakeRepo) SharesProject(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

type fakeStore struct {
	keys []string
	body []byte
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	s.keys = append(s.keys, key)
	s.body, _ = io.ReadAll(body)
	return "https://cdn.example.com/" + key, nil
}

func newService() (*ProjectService, *fakeRepo, *fakeStore) {
	repo := newFakeRepo()
	store := &fakeStore{}
	return NewProjectService(repo, guard.NewGuard(repo), store), repo, store
}

func TestCreateProjectAddsOwnerAsMember(t *testing.T) {
	svc, repo, _ := newService()
	owner := uuid.New()

	resp, appErr := svc.CreateProject(context.Background(), owner, &dto.ProjectRequest{Name: "  Spring Tour "})
	require.Nil(t, appErr)

	assert.Equal(t, "Spring Tour", resp.Name)
	assert.Regexp(t, `^spring-tour-[0-9a-f]{6}$`, resp.Slug)
	assert.True(t, repo.members[resp.ID][owner])
}

func TestGetProjectPrivateRequiresMembership(t *testing.T) {
	svc, _, _ := newService()
	owner := uuid.New()
	created, appErr := svc.CreateProject(context.Background(), owner, &dto.ProjectRequest{Name: "Band"})
	require.Nil(t, appErr)

	_, appErr = svc.GetProject(context.Background(), uuid.New(), created.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	got, appErr := svc.GetProject(context.Background(), owner, created.ID)
	require.Nil(t, appErr)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetProjectPublicIsOpen(t *testing.T) {
	svc, _, _ := newService()
	created, _ := svc.CreateProject(context.Background(), uuid.New(), &dto.ProjectRequest{Name: "Open", IsPublic: true})

	_, appErr := svc.GetProject(context.Background(), uuid.New(), created.ID)
	assert.Nil(t, appErr)
}

func TestGetProjectNotFound(t *testing.T) {
	svc, _, _ := newService()
	_, appErr := svc.GetProject(context.Background(), uuid.New(), uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestUploadImage(t *testing.T) {
	svc, repo, store := newService()
	owner := uuid.New()
	created, _ := svc.CreateProject(context.Background(), owner, &dto.ProjectRequest{Name: "Band"})

	_, appErr := svc.UploadImage(context.Background(), owner, created.ID, "cover.txt", "text/plain", bytes.NewReader(nil))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)

	_, appErr = svc.UploadImage(context.Background(), uuid.New(), created.ID, "cover.png", "image/png", bytes.NewReader([]byte("png")))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
	assert.Empty(t, store.keys)

	resp, appErr := svc.UploadImage(context.Background(), owner, created.ID, "Cover.PNG", "image/png", bytes.NewReader([]byte("png")))
	require.Nil(t, appErr)
	require.Len(t, store.keys, 1)
	assert.Regexp(t, `^projects/`+created.ID.String()+`/[0-9A-Za-z]{7}\.png$`, store.keys[0])
	assert.Equal(t, []byte("png"), store.body)
	require.NotNil(t, resp.ProfileImage)
	assert.Equal(t, *repo.projects[created.ID].ProfileImage, *resp.ProfileImage)
}

func TestListMembersRequiresMembership(t *testing.T) {
	svc, _, _ := newService()
	owner := uuid.New()
	created, _ := svc.CreateProject(context.Background(), owner, &dto.ProjectRequest{Name: "Band", IsPublic: true})

	_, appErr := svc.ListMembers(context.Background(), uuid.New(), created.ID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	members, appErr := svc.ListMembers(context.Background(), owner, created.ID)
	require.Nil(t, appErr)
	require.Len(t, members, 1)
	assert.Equal(t, owner, members[0].UserID)
}
