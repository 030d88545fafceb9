package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"setlist-api/core/config"
	"setlist-api/core/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeEventReminder = "event:reminder"

type EventReminderPayload struct {
	EventID uuid.UUID `json:"event_id"`
}

// Scheduler enqueues delayed background work.
type Scheduler interface {
	ScheduleEventReminder(ctx context.Context, payload EventReminderPayload, at time.Time) error
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewEventReminderTask(payload EventReminderPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEventReminder, b, asynq.MaxRetry(3), asynq.Timeout(time.Minute)), nil
}

func ParseEventReminder(t *asynq.Task) (EventReminderPayload, error) {
	var p EventReminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w: %w", TypeEventReminder, err, asynq.SkipRetry)
	}
	return p, nil
}

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) ScheduleEventReminder(ctx context.Context, payload EventReminderPayload, at time.Time) error {
	task, err := NewEventReminderTask(payload)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(at),
		asynq.TaskID(fmt.Sprintf("reminder:%s:%d", payload.EventID, at.Unix())),
	)
	if err != nil {
		logger.Error("Queue:ScheduleEventReminder:Error", "event_id", payload.EventID, "error", err)
		return err
	}

	logger.Info("Queue:ScheduleEventReminder", "event_id", payload.EventID, "task_id", info.ID, "process_at", at)
	return nil
}

// NoopScheduler is used when redis is not configured; reminders are skipped.
type NoopScheduler struct{}

func (NoopScheduler) ScheduleEventReminder(_ context.Context, payload EventReminderPayload, at time.Time) error {
	logger.Debug("Queue:NoopScheduler:Skip", "event_id", payload.EventID, "process_at", at)
	return nil
}

func NewServer(cfg config.RedisConfig) *asynq.Server {
	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: 5,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:Task:Failed", "type", task.Type(), "error", err)
		}),
	})
}
