package services

import (
	"context"
	"fmt"
	"time"

	"il2-stats/logger"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartTourScheduler re-evaluates the open tours every interval and rolls
// the tours over shortly after midnight UTC. Runs of a job never overlap.
func (s *TourService) StartTourScheduler(ctx context.Context, reevaluate time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(reevaluate),
		gocron.NewTask(func() { s.reevaluateOpenTours(ctx) }),
		gocron.WithName("tour-reevaluate"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule tour re-evaluation: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(func() {
			if err := s.RolloverTours(ctx, time.Now()); err != nil {
				logger.L().Error("[Scheduler] tour rollover failed", zap.Error(err))
			}
		}),
		gocron.WithName("tour-rollover"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule tour rollover: %w", err)
	}

	sched.Start()
	return sched, nil
}

func (s *TourService) reevaluateOpenTours(ctx context.Context) {
	tours, err := s.OpenTours(ctx)
	if err != nil {
		logger.L().Error("[Scheduler] DB error", zap.Error(err))
		return
	}
	for _, t := range tours {
		if err := s.Engine.EvaluateTour(ctx, t.ID); err != nil {
			logger.L().Warn("[Scheduler] tour re-evaluation failed", zap.Uint("tour_id", t.ID), zap.Error(err))
			continue
		}
		logger.L().Info("[Scheduler] tour re-evaluated", zap.Uint("tour_id", t.ID))
	}
}
