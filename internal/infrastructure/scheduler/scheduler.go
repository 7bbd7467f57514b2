package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"techrank/internal/bootstrap/logging"
	"techrank/internal/errs"
)

// Task is one periodic job body. Its error is logged, never retried early.
type Task func(ctx context.Context) error

// Scheduler runs engine housekeeping (the notification retention sweep) on gocron.
type Scheduler struct {
	sched gocron.Scheduler
	ctx   context.Context
}

func New(ctx context.Context) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, errs.Wrap(err, "create scheduler")
	}
	return &Scheduler{sched: sched, ctx: logging.WithComponent(ctx, "infrastructure.scheduler")}, nil
}

// Every registers task to run every interval, starting immediately.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return errs.Validationf("interval for %s must be positive", name)
	}

	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			jobCtx := logging.WithAttrs(s.ctx, slog.String("job", name))
			started := time.Now()
			if err := task(jobCtx); err != nil {
				logging.Error(jobCtx, "scheduled job failed", slog.Any("err", errs.Loggable(err)))
				return
			}
			logging.Debug(jobCtx, "scheduled job finished", slog.Duration("elapsed", time.Since(started)))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return errs.Wrapf(err, "register job %s", name)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	if err := s.sched.Shutdown(); err != nil {
		return errs.Wrap(err, "shutdown scheduler")
	}
	return nil
}
