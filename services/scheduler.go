package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/cppla/serene/utils"
)

const (
	SweepInterval       = time.Minute
	CatalogWarmInterval = 30 * time.Minute
)

// Sweeper drops in-memory entries that expired before now and returns how
// many it removed.
type Sweeper func(now time.Time) int

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	sched gocron.Scheduler
}

// StartScheduler registers a sweep over the given in-memory stores and a
// catalog cache rewarm, then starts both immediately.
func StartScheduler(wellness *WellnessService, sweepers map[string]Sweeper) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(SweepInterval),
		gocron.NewTask(func() {
			now := time.Now()
			for name, sweep := range sweepers {
				if n := sweep(now); n > 0 {
					utils.Logger.Debug("swept expired entries", zap.String("store", name), zap.Int("removed", n))
				}
			}
		}),
		gocron.WithName("sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("register sweep job: %w", err)
	}

	if wellness != nil {
		_, err = sched.NewJob(
			gocron.DurationJob(CatalogWarmInterval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := wellness.WarmCatalog(ctx); err != nil {
					utils.Logger.Warn("catalog warm failed", zap.Error(err))
				}
			}),
			gocron.WithName("catalog-warm"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("register catalog job: %w", err)
		}
	}

	sched.Start()
	utils.Logger.Info("scheduler started", zap.Int("jobs", len(sched.Jobs())))
	return &Scheduler{sched: sched}, nil
}

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown() error {
	if s == nil || s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}
