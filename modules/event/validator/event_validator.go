package validator

import (
	"strings"

	"setlist-api/core/validator"
	"setlist-api/modules/event/dto"
	"setlist-api/modules/event/entity"
)

func ValidateCreateEvent(req *dto.CreateEventRequest) *validator.ValidationResult {
	result := validator.Validate(req)
	if result.HasError() {
		return result
	}

	if strings.TrimSpace(req.Title) == "" {
		result.AddError("title", "title is required")
	}
	if !req.EndDate.After(req.StartDate) {
		result.AddError("end_date", "end_date must be after start_date")
	}
	if req.RecurrenceEndDate != nil && req.RecurrenceEndDate.Before(req.StartDate) {
		result.AddError("recurrence_end_date", "recurrence_end_date must not be before start_date")
	}
	return result
}

func ValidateException(req *dto.ExceptionRequest) *validator.ValidationResult {
	result := validator.Validate(req)
	if result.HasError() {
		return result
	}

	if _, err := entity.ParseDate(strings.TrimSpace(req.ExceptionDate)); err != nil {
		result.AddError("exception_date", "exception_date must be a date in YYYY-MM-DD format")
	}
	if (req.RescheduledStart == nil) != (req.RescheduledEnd == nil) {
		result.AddError("rescheduled_end", "rescheduled_start and rescheduled_end must be set together")
	} else if req.RescheduledStart != nil && !req.RescheduledEnd.After(*req.RescheduledStart) {
		result.AddError("rescheduled_end", "rescheduled_end must be after rescheduled_start")
	}
	return result
}
