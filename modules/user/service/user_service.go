package service

import (
	"context"

	"setlist-api/core/constants"
	"setlist-api/core/errors"
	"setlist-api/modules/user/dto"
	"setlist-api/modules/user/repository"

	"github.com/google/uuid"
)

type UserServiceInterface interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, *errors.AppError)
	GetProfile(ctx context.Context, viewerID uuid.UUID, userID uuid.UUID) (*dto.ProfileResponse, *errors.AppError)
}

type UserService struct {
	repo repository.UserRepositoryInterface
}

func NewUserService(repo repository.UserRepositoryInterface) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, *errors.AppError) {
	return s.GetProfile(ctx, userID, userID)
}

func (s *UserService) GetProfile(ctx context.Context, viewerID uuid.UUID, userID uuid.UUID) (*dto.ProfileResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get user failed", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	return dto.ToProfileResponse(user, viewerID == user.ID), nil
}
