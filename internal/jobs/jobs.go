// Package jobs records results asynchronously through an asynq queue and
// runs periodic leaderboard maintenance.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/verte-zerg/wpmhero/internal/applog"
	"github.com/verte-zerg/wpmhero/internal/leaderboard"
	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/results"
)

const (
	// TypeRecordResult is the task type carrying a SessionResult.
	TypeRecordResult = "result:record"
	// DefaultQueue receives result tasks unless configured otherwise.
	DefaultQueue = "default"
	// KeepEntries is how many entries each leaderboard retains after trimming.
	KeepEntries = 1000
	// TrimSchedule runs leaderboard trimming.
	TrimSchedule = "@hourly"

	maxRetries  = 3
	taskTimeout = 60 * time.Second
)

// NewRecordTask wraps res in a task.
func NewRecordTask(res model.SessionResult) (*asynq.Task, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result payload: %w", err)
	}
	return asynq.NewTask(TypeRecordResult, payload), nil
}

// Enqueuer publishes results by enqueueing record tasks.
type Enqueuer struct {
	client *asynq.Client
	queue  string
}

// NewEnqueuer returns an Enqueuer on the given queue.
func NewEnqueuer(opt asynq.RedisConnOpt, queue string) *Enqueuer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Enqueuer{client: asynq.NewClient(opt), queue: queue}
}

// Publish implements results.Publisher.
func (e *Enqueuer) Publish(ctx context.Context, res model.SessionResult) error {
	task, err := NewRecordTask(res)
	if err != nil {
		return err
	}
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(e.queue),
		asynq.MaxRetry(maxRetries),
		asynq.Timeout(taskTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue result task: %w", err)
	}
	applog.Jobs("Queued result job: ID=%s user=%s duration=%ds", info.ID, res.UserID, res.DurationSeconds)
	return nil
}

// Close releases the queue connection.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// HandleRecordResult decodes record tasks and hands them to rec.
func HandleRecordResult(rec results.Publisher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var res model.SessionResult
		if err := json.Unmarshal(task.Payload(), &res); err != nil {
			return fmt.Errorf("failed to unmarshal result payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := rec.Publish(ctx, res); err != nil {
			return fmt.Errorf("failed to record result for %q: %w", res.UserID, err)
		}
		applog.Jobs("Recorded result: user=%s wpm=%d duration=%ds", res.UserID, res.WPM, res.DurationSeconds)
		return nil
	}
}

// TrimBoards trims every listed duration to keep entries.
func TrimBoards(ctx context.Context, board leaderboard.Board, durations []int, keep int) error {
	var errs []error
	for _, d := range durations {
		if err := board.Trim(ctx, d, keep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Worker processes record tasks and schedules maintenance.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	cron   *cron.Cron
}

// NewWorker wires the task handler and the trim schedule.
func NewWorker(opt asynq.RedisConnOpt, queue string, rec results.Publisher, board leaderboard.Board) (*Worker, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			applog.Error("Job failed: type=%s error=%v", task.Type(), err)
		}),
		Logger: &AsynqLogger{},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRecordResult, HandleRecordResult(rec))

	c := cron.New()
	if board != nil {
		_, err := c.AddFunc(TrimSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := TrimBoards(ctx, board, leaderboard.Presets, KeepEntries); err != nil {
				applog.Error("Trim leaderboards: %v", err)
				return
			}
			applog.Jobs("Trimmed leaderboards to %d entries", KeepEntries)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule leaderboard trim: %w", err)
		}
	}
	return &Worker{server: server, mux: mux, cron: c}, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	applog.Startup("Starting job queue worker...")
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	w.cron.Start()
	<-ctx.Done()
	applog.Shutdown("Stopping job queue...")
	<-w.cron.Stop().Done()
	w.server.Shutdown()
	return nil
}

// AsynqLogger routes asynq logs through applog. Fatal logs and then exits
// the process with status 1; exit replaces os.Exit when set.
type AsynqLogger struct {
	exit func(code int)
}

func (l *AsynqLogger) Debug(args ...any) {
	applog.Debug("%s", fmt.Sprint(args...))
}

func (l *AsynqLogger) Info(args ...any) {
	applog.Jobs("%s", fmt.Sprint(args...))
}

func (l *AsynqLogger) Warn(args ...any) {
	applog.Error("%s", fmt.Sprint(args...))
}

func (l *AsynqLogger) Error(args ...any) {
	applog.Error("%s", fmt.Sprint(args...))
}

func (l *AsynqLogger) Fatal(args ...any) {
	applog.Error("fatal: %s", fmt.Sprint(args...))
	exit := os.Exit
	if l.exit != nil {
		exit = l.exit
	}
	exit(1)
}
