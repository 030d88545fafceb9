package service

import (
	"context"
	"time"

	"setlist-api/core/constants"
	"setlist-api/core/errors"
	"setlist-api/core/logger"
	"setlist-api/core/metrics"
	"setlist-api/core/params"
	"setlist-api/modules/notification/dto"
	"setlist-api/modules/notification/entity"
	"setlist-api/modules/notification/mapper"
	"setlist-api/modules/notification/repository"

	"github.com/google/uuid"
)

// MemberLister resolves the members of a project.
type MemberLister interface {
	ListMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// Emitter is the write side other modules use to raise notifications.
type Emitter interface {
	NotifyProjectMembers(ctx context.Context, content, notificationType, url string, projectID uuid.UUID, metadata map[string]any, excludeUserID uuid.UUID) error
	CreateSingleNotification(ctx context.Context, userID uuid.UUID, content, notificationType, url string, projectID *uuid.UUID, metadata map[string]any) error
}

type NotificationServiceInterface interface {
	Emitter
	GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*dto.PaginatedNotificationResponse, *errors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) *errors.AppError
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError
	MarkProjectAsRead(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) *errors.AppError
	CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError)
}

type NotificationService struct {
	repo    repository.NotificationRepositoryInterface
	members MemberLister
	now     func() time.Time
}

func NewNotificationService(repo repository.NotificationRepositoryInterface, members MemberLister) *NotificationService {
	return &NotificationService{repo: repo, members: members, now: time.Now}
}

// NotifyProjectMembers writes one unseen notification per member of the
// project except excludeUserID. All rows go out in a single insert.
func (s *NotificationService) NotifyProjectMembers(ctx context.Context, content, notificationType, url string, projectID uuid.UUID, metadata map[string]any, excludeUserID uuid.UUID) error {
	memberIDs, err := s.members.ListMemberIDs(ctx, projectID)
	if err != nil {
		return err
	}

	now := s.now()
	pid := projectID
	rows := make([]entity.Notification, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == excludeUserID {
			continue
		}
		rows = append(rows, entity.Notification{
			UserID:    id,
			ProjectID: &pid,
			Content:   content,
			Type:      notificationType,
			URL:       url,
			Metadata:  entity.JSONB(metadata),
			HasSeen:   false,
			CreatedAt: now,
		})
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}
	metrics.NotificationsCreated.WithLabelValues(notificationType).Add(float64(len(rows)))
	logger.Debug("NotificationService:NotifyProjectMembers", "project_id", projectID, "type", notificationType, "count", len(rows))
	return nil
}

func (s *NotificationService) CreateSingleNotification(ctx context.Context, userID uuid.UUID, content, notificationType, url string, projectID *uuid.UUID, metadata map[string]any) error {
	n := &entity.Notification{
		UserID:    userID,
		ProjectID: projectID,
		Content:   content,
		Type:      notificationType,
		URL:       url,
		Metadata:  entity.JSONB(metadata),
		HasSeen:   false,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsCreated.WithLabelValues(notificationType).Inc()
	return nil
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*dto.PaginatedNotificationResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	page, err := s.repo.GetByUserID(ctx, userID, queryParams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get notifications", err)
	}
	return mapper.ToPaginatedNotificationResponse(page), nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark all as read", err)
	}
	return nil
}

// MarkProjectAsRead clears the caller's unread notifications raised by one
// project, e.g. when its page is opened.
func (s *NotificationService) MarkProjectAsRead(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) *errors.AppError {
	if projectID == uuid.Nil {
		return errors.NewAppError(errors.ErrInvalidInput, "project id is required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if err := s.repo.MarkProjectAsRead(ctx, userID, projectID); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark project notifications as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "Failed to count unread", err)
	}
	return count, nil
}
