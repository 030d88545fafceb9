package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Title              string     `json:"title" validate:"required,min=1,max=255"`
	Description        string     `json:"description" validate:"max=5000"`
	Location           string     `json:"location" validate:"max=500"`
	StartDate          time.Time  `json:"start_date" validate:"required"`
	EndDate            time.Time  `json:"end_date" validate:"required"`
	Recurrence         *string    `json:"recurrence,omitempty" validate:"omitempty,max=32"`
	RecurrenceType     string     `json:"recurrence_type" validate:"omitempty,oneof=none daily weekly monthly yearly"`
	RecurrenceInterval int        `json:"recurrence_interval" validate:"omitempty,min=1,max=365"`
	RecurrenceDays     []int64    `json:"recurrence_days" validate:"omitempty,dive,min=0,max=6"`
	RecurrenceMonths   []int64    `json:"recurrence_months" validate:"omitempty,dive,min=1,max=12"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date,omitempty"`
}

// ExceptionRequest overrides the occurrence on ExceptionDate (YYYY-MM-DD).
type ExceptionRequest struct {
	ExceptionDate    string     `json:"exception_date" validate:"required"`
	IsCancelled      bool       `json:"is_cancelled"`
	RescheduledStart *time.Time `json:"rescheduled_start,omitempty"`
	RescheduledEnd   *time.Time `json:"rescheduled_end,omitempty"`
	Location         *string    `json:"location,omitempty" validate:"omitempty,max=500"`
}

type EventResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ProjectID          uuid.UUID  `json:"project_id"`
	CreatedBy          uuid.UUID  `json:"created_by"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Location           string     `json:"location"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	Recurrence         *string    `json:"recurrence,omitempty"`
	RecurrenceType     string     `json:"recurrence_type"`
	RecurrenceInterval int        `json:"recurrence_interval"`
	RecurrenceDays     []int64    `json:"recurrence_days"`
	RecurrenceMonths   []int64    `json:"recurrence_months"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type CreateEventResponse struct {
	Event       EventResponse   `json:"event"`
	Occurrences []EventResponse `json:"occurrences"`
}

type EventDetailResponse struct {
	EventResponse
	Exceptions []ExceptionResponse `json:"exceptions"`
}

type ExceptionResponse struct {
	ID               uuid.UUID  `json:"id"`
	EventID          uuid.UUID  `json:"event_id"`
	ExceptionDate    string     `json:"exception_date"`
	Status           string     `json:"status"`
	IsCancelled      bool       `json:"is_cancelled"`
	RescheduledStart *time.Time `json:"rescheduled_start,omitempty"`
	RescheduledEnd   *time.Time `json:"rescheduled_end,omitempty"`
	Location         *string    `json:"location,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
