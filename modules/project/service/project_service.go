package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"setlist-api/core/constants"
	"setlist-api/core/errors"
	"setlist-api/core/logger"
	"setlist-api/core/storage"
	"setlist-api/core/utils"
	"setlist-api/modules/project/dto"
	"setlist-api/modules/project/entity"
	"setlist-api/modules/project/guard"
	"setlist-api/modules/project/mapper"
	"setlist-api/modules/project/repository"

	"github.com/google/uuid"
)

type ProjectServiceInterface interface {
	CreateProject(ctx context.Context, actorID uuid.UUID, req *dto.ProjectRequest) (*dto.ProjectResponse, *errors.AppError)
	GetProject(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*dto.ProjectResponse, *errors.AppError)
	ListMyProjects(ctx context.Context, actorID uuid.UUID) ([]dto.ProjectResponse, *errors.AppError)
	ListMembers(ctx context.Context, actorID uuid.UUID, id uuid.UUID) ([]dto.MemberResponse, *errors.AppError)
	UploadImage(ctx context.Context, actorID uuid.UUID, id uuid.UUID, filename string, contentType string, body io.Reader) (*dto.ProjectResponse, *errors.AppError)
}

type ProjectService struct {
	repo  repository.ProjectRepositoryInterface
	guard *guard.Guard
	store storage.ObjectStore
}

func NewProjectService(repo repository.ProjectRepositoryInterface, g *guard.Guard, store storage.ObjectStore) *ProjectService {
	return &ProjectService{repo: repo, guard: g, store: store}
}

func (s *ProjectService) CreateProject(ctx context.Context, actorID uuid.UUID, req *dto.ProjectRequest) (*dto.ProjectResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	project := mapper.ToProjectEntity(req, actorID)
	project.Slug = utils.GenerateSlug(project.Name)

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "create project failed", err)
	}

	logger.Info("ProjectService:CreateProject:Created", "project_id", project.ID, "owner_id", actorID)
	return mapper.ToProjectResponse(project), nil
}

// GetProject is open to members, and to anyone when the project is public.
func (s *ProjectService) GetProject(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*dto.ProjectResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	project, appErr := s.load(ctx, id)
	if appErr != nil {
		return nil, appErr
	}
	if !project.IsPublic {
		if appErr := s.guard.Require(ctx, project, actorID); appErr != nil {
			return nil, appErr
		}
	}
	return mapper.ToProjectResponse(project), nil
}

func (s *ProjectService) ListMyProjects(ctx context.Context, actorID uuid.UUID) ([]dto.ProjectResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	projects, err := s.repo.ListByMember(ctx, actorID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get projects failed", err)
	}
	return mapper.ToProjectResponses(projects), nil
}

func (s *ProjectService) ListMembers(ctx context.Context, actorID uuid.UUID, id uuid.UUID) ([]dto.MemberResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	project, appErr := s.load(ctx, id)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.guard.Require(ctx, project, actorID); appErr != nil {
		return nil, appErr
	}

	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get members failed", err)
	}
	return mapper.ToMemberResponses(members), nil
}

func (s *ProjectService) UploadImage(ctx context.Context, actorID uuid.UUID, id uuid.UUID, filename string, contentType string, body io.Reader) (*dto.ProjectResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Only image files are accepted", nil)
	}

	project, appErr := s.load(ctx, id)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.guard.Require(ctx, project, actorID); appErr != nil {
		return nil, appErr
	}

	key := fmt.Sprintf("projects/%s/%s%s", project.ID, utils.GenerateID(), strings.ToLower(path.Ext(filename)))
	url, err := s.store.Put(ctx, key, body, contentType)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "upload image failed", err)
	}

	if err := s.repo.UpdateProfileImage(ctx, project.ID, url); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "update project failed", err)
	}
	project.ProfileImage = &url
	return mapper.ToProjectResponse(project), nil
}

func (s *ProjectService) load(ctx context.Context, id uuid.UUID) (*entity.Project, *errors.AppError) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get project failed", err)
	}
	if project == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Project not found", nil)
	}
	return project, nil
}
