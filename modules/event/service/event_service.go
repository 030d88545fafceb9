package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"setlist-api/core/constants"
	"setlist-api/core/errors"
	"setlist-api/core/logger"
	"setlist-api/core/mailer"
	"setlist-api/core/metrics"
	"setlist-api/core/queue"
	"setlist-api/modules/event/dto"
	"setlist-api/modules/event/entity"
	"setlist-api/modules/event/mapper"
	"setlist-api/modules/event/repository"
	notifentity "setlist-api/modules/notification/entity"
	notifservice "setlist-api/modules/notification/service"
	projectentity "setlist-api/modules/project/entity"
	"setlist-api/modules/project/guard"

	"github.com/google/uuid"
)

type ProjectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*projectentity.Project, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]projectentity.Member, error)
}

type Settings struct {
	BaseURL      string
	ReminderLead time.Duration
}

type EventServiceInterface interface {
	CreateEvent(ctx context.Context, actorID uuid.UUID, projectID uuid.UUID, req *dto.CreateEventRequest) (*dto.CreateEventResponse, *errors.AppError)
	ListProjectEvents(ctx context.Context, actorID uuid.UUID, projectID uuid.UUID) ([]dto.EventResponse, *errors.AppError)
	GetEvent(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*dto.EventDetailResponse, *errors.AppError)
	DeleteEvent(ctx context.Context, actorID uuid.UUID, id uuid.UUID) *errors.AppError
	UpsertException(ctx context.Context, actorID uuid.UUID, eventID uuid.UUID, req *dto.ExceptionRequest) (*dto.ExceptionResponse, *errors.AppError)
	ListExceptions(ctx context.Context, actorID uuid.UUID, eventID uuid.UUID) ([]dto.ExceptionResponse, *errors.AppError)
}

type EventService struct {
	repo      repository.EventRepositoryInterface
	projects  ProjectReader
	guard     *guard.Guard
	scheduler queue.Scheduler
	mail      mailer.Gateway
	notifier  notifservice.Emitter
	settings  Settings

	now func() time.Time
}

func NewEventService(
	repo repository.EventRepositoryInterface,
	projects ProjectReader,
	g *guard.Guard,
	scheduler queue.Scheduler,
	mail mailer.Gateway,
	notifier notifservice.Emitter,
	settings Settings,
) *EventService {
	return &EventService{
		repo:      repo,
		projects:  projects,
		guard:     g,
		scheduler: scheduler,
		mail:      mail,
		notifier:  notifier,
		settings:  settings,
		now:       time.Now,
	}
}

// CreateEvent stores the event and, for a weekly, biweekly or monthly hint,
// ten standalone copies stepped from it. Every stored row gets a reminder.
func (s *EventService) CreateEvent(ctx context.Context, actorID uuid.UUID, projectID uuid.UUID, req *dto.CreateEventRequest) (*dto.CreateEventResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	project, appErr := s.loadProject(ctx, projectID)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.guard.Require(ctx, project, actorID); appErr != nil {
		return nil, appErr
	}

	base := mapper.ToEventEntity(req, projectID, actorID)
	rows := []*entity.Event{base}
	if base.Recurrence != nil {
		for _, occ := range entity.ExpandSimpleRecurrence(base.StartDate, base.EndDate, *base.Recurrence) {
			c := base.Shifted(occ)
			rows = append(rows, &c)
		}
	}

	if err := s.repo.CreateAll(ctx, rows); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "create event failed", err)
	}
	metrics.EventsCreated.WithLabelValues("base").Inc()
	if n := len(rows) - 1; n > 0 {
		metrics.EventsCreated.WithLabelValues("expanded").Add(float64(n))
	}
	logger.Info("EventService:CreateEvent:Created",
		"event_id", base.ID,
		"project_id", projectID,
		"occurrences", len(rows)-1,
	)

	for _, e := range rows {
		s.scheduleReminder(ctx, e)
	}

	err := s.notifier.NotifyProjectMembers(ctx,
		fmt.Sprintf("New event in %s: %s", project.Name, base.Title),
		notifentity.TypeEventCreated, s.eventPath(base.ID), project.ID,
		map[string]any{"event_id": base.ID.String()},
		actorID,
	)
	if err != nil {
		logger.Warn("EventService:CreateEvent:NotifyFailed", "event_id", base.ID, "error", err)
	}

	resp := &dto.CreateEventResponse{
		Event:       mapper.ToEventResponse(base),
		Occurrences: make([]dto.EventResponse, 0, len(rows)-1),
	}
	for _, e := range rows[1:] {
		resp.Occurrences = append(resp.Occurrences, mapper.ToEventResponse(e))
	}
	return resp, nil
}

// scheduleReminder enqueues the reminder for e unless its reminder time has
// already passed. Failures are logged and do not undo the event.
func (s *EventService) scheduleReminder(ctx context.Context, e *entity.Event) {
	at := e.StartDate.Add(-s.settings.ReminderLead)
	if !at.After(s.now()) {
		return
	}
	if err := s.scheduler.ScheduleEventReminder(ctx, queue.EventReminderPayload{EventID: e.ID}, at); err != nil {
		logger.Warn("EventService:ScheduleReminder:Failed", "event_id", e.ID, "error", err)
	}
}

func (s *EventService) ListProjectEvents(ctx context.Context, actorID uuid.UUID, projectID uuid.UUID) ([]dto.EventResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	project, appErr := s.loadProject(ctx, projectID)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.guard.Require(ctx, project, actorID); appErr != nil {
		return nil, appErr
	}

	events, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get events failed", err)
	}
	return mapper.ToEventResponses(events), nil
}

func (s *EventService) GetEvent(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*dto.EventDetailResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	event, appErr := s.loadAuthorized(ctx, actorID, id)
	if appErr != nil {
		return nil, appErr
	}

	exceptions, err := s.repo.ListExceptions(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get exceptions failed", err)
	}
	return &dto.EventDetailResponse{
		EventResponse: mapper.ToEventResponse(event),
		Exceptions:    mapper.ToExceptionResponses(exceptions),
	}, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, actorID uuid.UUID, id uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if _, appErr := s.loadAuthorized(ctx, actorID, id); appErr != nil {
		return appErr
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "delete event failed", err)
	}
	logger.Info("EventService:DeleteEvent:Deleted", "event_id", id, "actor_id", actorID)
	return nil
}

func (s *EventService) UpsertException(ctx context.Context, actorID uuid.UUID, eventID uuid.UUID, req *dto.ExceptionRequest) (*dto.ExceptionResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if _, appErr := s.loadAuthorized(ctx, actorID, eventID); appErr != nil {
		return nil, appErr
	}

	exception, err := mapper.ToExceptionEntity(req, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "exception_date must be a date in YYYY-MM-DD format", err)
	}
	if err := s.repo.UpsertException(ctx, exception); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "save exception failed", err)
	}

	resp := mapper.ToExceptionResponse(exception)
	return &resp, nil
}

func (s *EventService) ListExceptions(ctx context.Context, actorID uuid.UUID, eventID uuid.UUID) ([]dto.ExceptionResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if _, appErr := s.loadAuthorized(ctx, actorID, eventID); appErr != nil {
		return nil, appErr
	}

	exceptions, err := s.repo.ListExceptions(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get exceptions failed", err)
	}
	return mapper.ToExceptionResponses(exceptions), nil
}

// SendReminder emails every member of the event's project and fans out an
// in-app notification. A deleted or already started event is skipped.
func (s *EventService) SendReminder(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		logger.Info("EventService:SendReminder:EventGone", "event_id", eventID)
		return nil
	}
	if !event.StartDate.After(s.now()) {
		logger.Info("EventService:SendReminder:AlreadyStarted", "event_id", eventID)
		return nil
	}

	project, err := s.projects.GetByID(ctx, event.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return nil
	}
	members, err := s.projects.ListMembers(ctx, project.ID)
	if err != nil {
		return err
	}

	// the task is not retried for mail errors, members already reached would
	// get the reminder twice
	failed := 0
	for _, m := range members {
		name := m.Username
		if name == "" {
			name = m.Email
		}
		err := s.mail.SendKind(ctx, m.Email, mailer.KindEventReminder, mailer.Data{
			RecipientName: name,
			ProjectName:   project.Name,
			EventTitle:    event.Title,
			EventStart:    event.StartDate,
			EventLocation: event.Location,
			ActionURL:     strings.TrimRight(s.settings.BaseURL, "/") + s.eventPath(event.ID),
		})
		if err != nil {
			failed++
			logger.Error("EventService:SendReminder:EmailFailed", "event_id", event.ID, "user_id", m.UserID, "error", err)
		}
	}

	err = s.notifier.NotifyProjectMembers(ctx,
		fmt.Sprintf("%s starts at %s", event.Title, event.StartDate.UTC().Format("Mon 02 Jan 15:04 MST")),
		notifentity.TypeEventReminder, s.eventPath(event.ID), project.ID,
		map[string]any{"event_id": event.ID.String()},
		uuid.Nil,
	)
	if err != nil {
		logger.Error("EventService:SendReminder:NotifyFailed", "event_id", event.ID, "error", err)
	}

	logger.Info("EventService:SendReminder:Done",
		"event_id", event.ID,
		"members", len(members),
		"failed", failed,
	)
	return nil
}

// loadAuthorized loads the event and checks that actorID belongs to its project.
func (s *EventService) loadAuthorized(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*entity.Event, *errors.AppError) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get event failed", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}

	project, appErr := s.loadProject(ctx, event.ProjectID)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.guard.Require(ctx, project, actorID); appErr != nil {
		return nil, appErr
	}
	return event, nil
}

func (s *EventService) loadProject(ctx context.Context, id uuid.UUID) (*projectentity.Project, *errors.AppError) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get project failed", err)
	}
	if project == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Project not found", nil)
	}
	return project, nil
}

func (s *EventService) eventPath(id uuid.UUID) string {
	return "/events/" + id.String()
}
