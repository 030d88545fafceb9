package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 19, 30, 0, 0, time.UTC)
}

func TestExpandSimpleRecurrenceWeekly(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 2)

	occ := ExpandSimpleRecurrence(start, end, "weekly")
	require.Len(t, occ, SimpleOccurrences)

	assert.Equal(t, day(2024, 1, 8), occ[0].Start)
	assert.Equal(t, day(2024, 1, 15), occ[1].Start)
	assert.Equal(t, start.AddDate(0, 0, 70), occ[9].Start)
	assert.Equal(t, end.AddDate(0, 0, 70), occ[9].End)
	for _, o := range occ {
		assert.Equal(t, 24*time.Hour, o.End.Sub(o.Start))
	}
}

func TestExpandSimpleRecurrenceBiweekly(t *testing.T) {
	start := day(2024, 1, 1)

	occ := ExpandSimpleRecurrence(start, start.Add(2*time.Hour), "biweekly")
	require.Len(t, occ, SimpleOccurrences)
	assert.Equal(t, day(2024, 1, 15), occ[0].Start)
	assert.Equal(t, start.AddDate(0, 0, 140), occ[9].Start)
}

func TestExpandSimpleRecurrenceMonthlyStepsFromCursor(t *testing.T) {
	start := day(2024, 1, 31)

	occ := ExpandSimpleRecurrence(start, start.Add(time.Hour), "monthly")
	require.Len(t, occ, SimpleOccurrences)

	// Jan 31 + 1 month normalises to Mar 2 (2024 is a leap year), and the
	// following steps advance from there rather than from Jan 31.
	assert.Equal(t, day(2024, 3, 2), occ[0].Start)
	assert.Equal(t, day(2024, 4, 2), occ[1].Start)
	assert.Equal(t, day(2024, 12, 2), occ[9].Start)
}

func TestExpandSimpleRecurrenceUnknownHint(t *testing.T) {
	start := day(2024, 1, 1)

	assert.Empty(t, ExpandSimpleRecurrence(start, start, "daily"))
	assert.Empty(t, ExpandSimpleRecurrence(start, start, ""))
	assert.Len(t, ExpandSimpleRecurrence(start, start, " Weekly "), SimpleOccurrences)
	assert.False(t, IsSimpleHint("fortnightly"))
}

func TestExceptionStatus(t *testing.T) {
	moved := day(2024, 2, 10)
	exceptions := []EventException{
		{ExceptionDate: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), IsCancelled: true},
		{ExceptionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), RescheduledStart: &moved},
		{ExceptionDate: time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), IsCancelled: true, RescheduledStart: &moved},
		{ExceptionDate: time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)},
	}

	assert.Equal(t, OccurrenceCancelled, ExceptionStatus(exceptions, day(2024, 1, 8)))
	assert.Equal(t, OccurrenceMoved, ExceptionStatus(exceptions, day(2024, 1, 15)))
	assert.Equal(t, OccurrenceCancelled, ExceptionStatus(exceptions, day(2024, 1, 22)))
	assert.Equal(t, OccurrenceScheduled, ExceptionStatus(exceptions, day(2024, 1, 29)))
	assert.Equal(t, OccurrenceScheduled, ExceptionStatus(exceptions, day(2024, 1, 1)))
	assert.Equal(t, OccurrenceScheduled, ExceptionStatus(nil, day(2024, 1, 1)))
}

func TestShiftedDropsRecurrence(t *testing.T) {
	hint := "weekly"
	base := Event{Title: "Rehearsal", Recurrence: &hint, RecurrenceType: RecurrenceWeekly, RecurrenceInterval: 2}
	occ := Occurrence{Start: day(2024, 1, 8), End: day(2024, 1, 9)}

	c := base.Shifted(occ)
	assert.Equal(t, "Rehearsal", c.Title)
	assert.Equal(t, occ.Start, c.StartDate)
	assert.Nil(t, c.Recurrence)
	assert.Equal(t, RecurrenceNone, c.RecurrenceType)
	assert.NotNil(t, c.RecurrenceDays)
	assert.Equal(t, &hint, base.Recurrence)
}
