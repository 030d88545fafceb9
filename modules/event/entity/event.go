package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

// Event is a scheduled project event. Recurrence holds the legacy free-text
// hint; the Recurrence* rule fields are stored as given and never expanded.
type Event struct {
	ID                 uuid.UUID      `db:"id" json:"id"`
	ProjectID          uuid.UUID      `db:"project_id" json:"project_id"`
	CreatedBy          uuid.UUID      `db:"created_by" json:"created_by"`
	Title              string         `db:"title" json:"title"`
	Description        string         `db:"description" json:"description"`
	Location           string         `db:"location" json:"location"`
	StartDate          time.Time      `db:"start_date" json:"start_date"`
	EndDate            time.Time      `db:"end_date" json:"end_date"`
	Recurrence         *string        `db:"recurrence" json:"recurrence,omitempty"`
	RecurrenceType     RecurrenceType `db:"recurrence_type" json:"recurrence_type"`
	RecurrenceInterval int            `db:"recurrence_interval" json:"recurrence_interval"`
	RecurrenceDays     pq.Int64Array  `db:"recurrence_days" json:"recurrence_days"`
	RecurrenceMonths   pq.Int64Array  `db:"recurrence_months" json:"recurrence_months"`
	RecurrenceEndDate  *time.Time     `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// Shifted returns a standalone copy of e moved to occ. The copy carries no
// recurrence of its own.
func (e *Event) Shifted(occ Occurrence) Event {
	c := *e
	c.ID = uuid.Nil
	c.StartDate = occ.Start
	c.EndDate = occ.End
	c.Recurrence = nil
	c.RecurrenceType = RecurrenceNone
	c.RecurrenceInterval = 1
	c.RecurrenceDays = pq.Int64Array{}
	c.RecurrenceMonths = pq.Int64Array{}
	c.RecurrenceEndDate = nil
	return c
}
