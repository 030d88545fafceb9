package repository

import (
	"context"

	"setlist-api/core/database"
	"setlist-api/core/logger"
	"setlist-api/core/params"
	"setlist-api/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const notificationColumns = `id, user_id, project_id, content, type, url, metadata, has_seen, created_at`

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, notification *entity.Notification) error
	CreateBatch(ctx context.Context, notifications []entity.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	MarkProjectAsRead(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

type NotificationRepository struct {
	db database.IDatabase
}

func NewNotificationRepository(db database.IDatabase) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (user_id, project_id, content, type, url, metadata, has_seen, created_at)
		VALUES (:user_id, :project_id, :content, :type, :url, :metadata, :has_seen, :created_at)
		RETURNING id
	`
	rows, err := r.db.NamedQueryContext(ctx, query, notification)
	if err != nil {
		logger.Error("NotificationRepository:Create:Error:", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&notification.ID)
	}
	return rows.Err()
}

// CreateBatch writes every row in a single statement.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (user_id, project_id, content, type, url, metadata, has_seen, created_at)
		VALUES (:user_id, :project_id, :content, :type, :url, :metadata, :has_seen, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, notifications); err != nil {
		logger.Error("NotificationRepository:CreateBatch:Error:", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	baseQuery := `FROM notifications WHERE user_id = $1`

	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, userID)
	if err != nil {
		logger.Error("NotificationRepository:GetByUserID:Count:Error:", err)
		return nil, err
	}

	query := `
		SELECT ` + notificationColumns + ` ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	notifications := []entity.Notification{}
	err = r.db.SelectContext(ctx, &notifications, query, userID, params.PageSize, params.Offset())
	if err != nil {
		logger.Error("NotificationRepository:GetByUserID:Select:Error:", err)
		return nil, err
	}

	return &entity.PaginatedNotificationEntity{
		Items:      notifications,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE notifications SET has_seen = true WHERE user_id = ? AND id IN (?)`, userID, ids)
	if err != nil {
		return err
	}

	query = r.db.SQLx().Rebind(query)
	if err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.Error("NotificationRepository:MarkAsRead:Error:", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET has_seen = true WHERE user_id = $1 AND has_seen = false`
	if err := r.db.ExecContext(ctx, query, userID); err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead:Error:", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) MarkProjectAsRead(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error {
	query := `UPDATE notifications SET has_seen = true WHERE user_id = $1 AND project_id = $2 AND has_seen = false`
	if err := r.db.ExecContext(ctx, query, userID, projectID); err != nil {
		logger.Error("NotificationRepository:MarkProjectAsRead:Error:", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND has_seen = false`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		logger.Error("NotificationRepository:CountUnread:Error:", err)
		return 0, err
	}
	return count, nil
}
