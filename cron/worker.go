package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homeserve/services/notification"

	"github.com/hibiken/asynq"
	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const TypeReminderSend = "reminder:send"

// ReminderSender delivers a due reminder.
type ReminderSender interface {
	SendReminder(ctx context.Context, r notification.Reminder) error
}

// Ticker advances periodic state, e.g. the tracking simulator.
type Ticker interface {
	Tick(ctx context.Context)
}

// NewReminderTask builds the asynq task for a reminder due at fireAt.
func NewReminderTask(r notification.Reminder, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReminderSend, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + r.BookingID),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderQueue schedules reminders on the asynq queue.
type ReminderQueue struct {
	client enqueuer
	logger *zap.Logger
}

func NewReminderQueue(client *asynq.Client, logger *zap.Logger) *ReminderQueue {
	return &ReminderQueue{client: client, logger: logger}
}

func (q *ReminderQueue) ScheduleReminder(ctx context.Context, r notification.Reminder, at time.Time) error {
	task, opts, err := NewReminderTask(r, at)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		q.logger.Debug("reminder already scheduled", zap.String("bookingId", r.BookingID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	q.logger.Info("reminder scheduled", zap.String("bookingId", r.BookingID), zap.String("taskId", info.ID), zap.Time("at", at))
	return nil
}

// HandleReminderTask decodes a reminder task and sends it.
func HandleReminderTask(sender ReminderSender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var r notification.Reminder
		if err := json.Unmarshal(task.Payload(), &r); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}
		logger.Info("sending reminder", zap.String("bookingId", r.BookingID), zap.String("userId", r.UserID))
		if err := sender.SendReminder(ctx, r); err != nil {
			logger.Warn("reminder delivery failed", zap.String("bookingId", r.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

// Worker runs the reminder consumer and the periodic tracking tick.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	cron   *robfig.Cron
	logger *zap.Logger
}

func NewWorker(redisOpt asynq.RedisConnOpt, sender ReminderSender, ticker Ticker, tick time.Duration, logger *zap.Logger) (*Worker, error) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
		Logger:      logger.Sugar(),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, HandleReminderTask(sender, logger))

	c := robfig.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", tick), TickJob(ticker, tick, logger)); err != nil {
		return nil, fmt.Errorf("failed to schedule tracking tick: %w", err)
	}
	return &Worker{server: srv, mux: mux, cron: c, logger: logger}, nil
}

// TickJob runs one tick bounded by the tick interval.
func TickJob(ticker Ticker, tick time.Duration, logger *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), tick)
		defer cancel()
		start := time.Now()
		ticker.Tick(ctx)
		logger.Debug("tracking tick", zap.Duration("took", time.Since(start)))
	}
}

func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start reminder worker: %w", err)
	}
	w.cron.Start()
	w.logger.Info("background workers started")
	return nil
}

// Shutdown stops the tick scheduler, waits for a running tick, then drains the queue consumer.
func (w *Worker) Shutdown() {
	<-w.cron.Stop().Done()
	w.server.Shutdown()
	w.logger.Info("background workers stopped")
}
