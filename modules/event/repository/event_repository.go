package repository

import (
	"context"

	"setlist-api/core/database"
	"setlist-api/core/logger"
	"setlist-api/modules/event/entity"

	"github.com/google/uuid"
)

const eventColumns = `id, project_id, created_by, title, description, location, start_date, end_date,
	recurrence, recurrence_type, recurrence_interval, recurrence_days, recurrence_months,
	recurrence_end_date, created_at, updated_at`

const exceptionColumns = `id, event_id, exception_date, is_cancelled, rescheduled_start, rescheduled_end, location, created_at`

type EventRepositoryInterface interface {
	CreateAll(ctx context.Context, events []*entity.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]entity.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error

	UpsertException(ctx context.Context, exception *entity.EventException) error
	ListExceptions(ctx context.Context, eventID uuid.UUID) ([]entity.EventException, error)
}

type EventRepository struct {
	DB database.IDatabase
}

func NewEventRepository(db database.IDatabase) *EventRepository {
	return &EventRepository{DB: db}
}

// CreateAll inserts events in one transaction and fills in their ids and
// timestamps.
func (r *EventRepository) CreateAll(ctx context.Context, events []*entity.Event) error {
	tx, err := r.DB.SQLx().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (project_id, created_by, title, description, location, start_date, end_date,
			recurrence, recurrence_type, recurrence_interval, recurrence_days, recurrence_months, recurrence_end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	for _, e := range events {
		err := tx.QueryRowxContext(ctx, query,
			e.ProjectID, e.CreatedBy, e.Title, e.Description, e.Location, e.StartDate, e.EndDate,
			e.Recurrence, e.RecurrenceType, e.RecurrenceInterval, e.RecurrenceDays, e.RecurrenceMonths, e.RecurrenceEndDate,
		).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			logger.Error("EventRepository:CreateAll:Error:", err)
			return err
		}
	}

	return tx.Commit()
}

// GetByID returns nil, nil when the event does not exist.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	err := r.DB.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		logger.Error("EventRepository:GetByID:Error:", err)
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]entity.Event, error) {
	events := []entity.Event{}
	query := `SELECT ` + eventColumns + ` FROM events WHERE project_id = $1 ORDER BY start_date, created_at`
	if err := r.DB.SelectContext(ctx, &events, query, projectID); err != nil {
		logger.Error("EventRepository:ListByProject:Error:", err)
		return nil, err
	}
	return events, nil
}

// Delete removes the event; its exceptions go with it.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		logger.Error("EventRepository:Delete:Error:", err)
		return err
	}
	return nil
}

// UpsertException keeps a single exception per (event, date): a second write
// for the same date replaces the first.
func (r *EventRepository) UpsertException(ctx context.Context, exception *entity.EventException) error {
	query := `
		INSERT INTO event_exceptions (event_id, exception_date, is_cancelled, rescheduled_start, rescheduled_end, location)
		VALUES (:event_id, :exception_date, :is_cancelled, :rescheduled_start, :rescheduled_end, :location)
		ON CONFLICT (event_id, exception_date) DO UPDATE SET
			is_cancelled = EXCLUDED.is_cancelled,
			rescheduled_start = EXCLUDED.rescheduled_start,
			rescheduled_end = EXCLUDED.rescheduled_end,
			location = EXCLUDED.location
		RETURNING id, created_at
	`
	rows, err := r.DB.NamedQueryContext(ctx, query, exception)
	if err != nil {
		logger.Error("EventRepository:UpsertException:Error:", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&exception.ID, &exception.CreatedAt); err != nil {
			logger.Error("EventRepository:UpsertException:Scan:Error:", err)
			return err
		}
	}
	return rows.Err()
}

func (r *EventRepository) ListExceptions(ctx context.Context, eventID uuid.UUID) ([]entity.EventException, error) {
	exceptions := []entity.EventException{}
	query := `SELECT ` + exceptionColumns + ` FROM event_exceptions WHERE event_id = $1 ORDER BY exception_date`
	if err := r.DB.SelectContext(ctx, &exceptions, query, eventID); err != nil {
		logger.Error("EventRepository:ListExceptions:Error:", err)
		return nil, err
	}
	return exceptions, nil
}
