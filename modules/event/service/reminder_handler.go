package service

import (
	"context"

	"setlist-api/core/queue"

	"github.com/hibiken/asynq"
)

// ReminderHandler processes queue.TypeEventReminder tasks.
type ReminderHandler struct {
	events *EventService
}

func NewReminderHandler(events *EventService) *ReminderHandler {
	return &ReminderHandler{events: events}
}

func (h *ReminderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.ParseEventReminder(t)
	if err != nil {
		return err
	}
	return h.events.SendReminder(ctx, payload.EventID)
}

func (h *ReminderHandler) Register(mux *asynq.ServeMux) {
	mux.Handle(queue.TypeEventReminder, h)
}
