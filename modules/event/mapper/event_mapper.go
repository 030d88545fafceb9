package mapper

import (
	"strings"

	"setlist-api/modules/event/dto"
	"setlist-api/modules/event/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func ToEventEntity(req *dto.CreateEventRequest, projectID uuid.UUID, createdBy uuid.UUID) *entity.Event {
	e := &entity.Event{
		ProjectID:          projectID,
		CreatedBy:          createdBy,
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Location:           req.Location,
		StartDate:          req.StartDate.UTC(),
		EndDate:            req.EndDate.UTC(),
		RecurrenceType:     entity.RecurrenceType(req.RecurrenceType),
		RecurrenceInterval: req.RecurrenceInterval,
		RecurrenceDays:     pq.Int64Array(req.RecurrenceDays),
		RecurrenceMonths:   pq.Int64Array(req.RecurrenceMonths),
		RecurrenceEndDate:  req.RecurrenceEndDate,
	}
	if req.Recurrence != nil {
		if hint := strings.TrimSpace(*req.Recurrence); hint != "" {
			e.Recurrence = &hint
		}
	}
	if e.RecurrenceType == "" {
		e.RecurrenceType = entity.RecurrenceNone
	}
	if e.RecurrenceInterval == 0 {
		e.RecurrenceInterval = 1
	}
	// NOT NULL array columns
	if e.RecurrenceDays == nil {
		e.RecurrenceDays = pq.Int64Array{}
	}
	if e.RecurrenceMonths == nil {
		e.RecurrenceMonths = pq.Int64Array{}
	}
	return e
}

func ToEventResponse(e *entity.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:                 e.ID,
		ProjectID:          e.ProjectID,
		CreatedBy:          e.CreatedBy,
		Title:              e.Title,
		Description:        e.Description,
		Location:           e.Location,
		StartDate:          e.StartDate,
		EndDate:            e.EndDate,
		Recurrence:         e.Recurrence,
		RecurrenceType:     string(e.RecurrenceType),
		RecurrenceInterval: e.RecurrenceInterval,
		RecurrenceDays:     nonNil(e.RecurrenceDays),
		RecurrenceMonths:   nonNil(e.RecurrenceMonths),
		RecurrenceEndDate:  e.RecurrenceEndDate,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func ToEventResponses(events []entity.Event) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		out = append(out, ToEventResponse(&events[i]))
	}
	return out
}

func ToExceptionEntity(req *dto.ExceptionRequest, eventID uuid.UUID) (*entity.EventException, error) {
	date, err := entity.ParseDate(strings.TrimSpace(req.ExceptionDate))
	if err != nil {
		return nil, err
	}
	return &entity.EventException{
		EventID:          eventID,
		ExceptionDate:    date,
		IsCancelled:      req.IsCancelled,
		RescheduledStart: req.RescheduledStart,
		RescheduledEnd:   req.RescheduledEnd,
		Location:         req.Location,
	}, nil
}

func ToExceptionResponse(x *entity.EventException) dto.ExceptionResponse {
	return dto.ExceptionResponse{
		ID:               x.ID,
		EventID:          x.EventID,
		ExceptionDate:    entity.FormatDate(x.ExceptionDate),
		Status:           string(x.Status()),
		IsCancelled:      x.IsCancelled,
		RescheduledStart: x.RescheduledStart,
		RescheduledEnd:   x.RescheduledEnd,
		Location:         x.Location,
		CreatedAt:        x.CreatedAt,
	}
}

func ToExceptionResponses(exceptions []entity.EventException) []dto.ExceptionResponse {
	out := make([]dto.ExceptionResponse, 0, len(exceptions))
	for i := range exceptions {
		out = append(out, ToExceptionResponse(&exceptions[i]))
	}
	return out
}

func nonNil(a pq.Int64Array) []int64 {
	if a == nil {
		return []int64{}
	}
	return a
}
