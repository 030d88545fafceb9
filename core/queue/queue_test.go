package queue

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventReminderTaskRoundTrip(t *testing.T) {
	id := uuid.New()

	task, err := NewEventReminderTask(EventReminderPayload{EventID: id})
	require.NoError(t, err)
	assert.Equal(t, TypeEventReminder, task.Type())

	p, err := ParseEventReminder(task)
	require.NoError(t, err)
	assert.Equal(t, id, p.EventID)
}

func TestParseEventReminderBadPayloadSkipsRetry(t *testing.T) {
	_, err := ParseEventReminder(asynq.NewTask(TypeEventReminder, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
