package entity

import (
	"time"

	"github.com/google/uuid"
)

type OccurrenceStatus string

const (
	OccurrenceScheduled OccurrenceStatus = "scheduled"
	OccurrenceCancelled OccurrenceStatus = "cancelled"
	OccurrenceMoved     OccurrenceStatus = "moved"
)

const dateLayout = "2006-01-02"

// EventException overrides a single occurrence of its event, keyed by the
// calendar date of that occurrence.
type EventException struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	EventID          uuid.UUID  `db:"event_id" json:"event_id"`
	ExceptionDate    time.Time  `db:"exception_date" json:"exception_date"`
	IsCancelled      bool       `db:"is_cancelled" json:"is_cancelled"`
	RescheduledStart *time.Time `db:"rescheduled_start" json:"rescheduled_start,omitempty"`
	RescheduledEnd   *time.Time `db:"rescheduled_end" json:"rescheduled_end,omitempty"`
	Location         *string    `db:"location" json:"location,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// Status reports how this exception changes its occurrence. Cancellation
// wins over a reschedule.
func (x *EventException) Status() OccurrenceStatus {
	switch {
	case x.IsCancelled:
		return OccurrenceCancelled
	case x.RescheduledStart != nil || x.RescheduledEnd != nil:
		return OccurrenceMoved
	default:
		return OccurrenceScheduled
	}
}

func (x *EventException) Covers(date time.Time) bool {
	return SameDate(x.ExceptionDate, date)
}

// ExceptionStatus classifies the occurrence on date against the event's
// exceptions. Dates without an exception are scheduled.
func ExceptionStatus(exceptions []EventException, date time.Time) OccurrenceStatus {
	for i := range exceptions {
		if exceptions[i].Covers(date) {
			return exceptions[i].Status()
		}
	}
	return OccurrenceScheduled
}

// SameDate compares calendar dates in UTC.
func SameDate(a, b time.Time) bool {
	return a.UTC().Format(dateLayout) == b.UTC().Format(dateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
