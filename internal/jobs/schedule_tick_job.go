package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagecast/pagecast/internal/repository"
	"github.com/pagecast/pagecast/internal/service"
)

// ScheduleTickJob advances the advisory run bookkeeping for active schedules.
// The external workflow engine does the actual firing; this keeps last_run_at
// and next_run_at roughly in step with it.
type ScheduleTickJob struct {
	sr repository.ScheduleRepository
}

func NewScheduleTickJob(sr repository.ScheduleRepository) *ScheduleTickJob {
	return &ScheduleTickJob{
		sr: sr,
	}
}

func (c *ScheduleTickJob) Tick() {
	ctx := context.Background()
	now := time.Now()

	schedules, err := c.sr.ListActive(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, schedule := range schedules {
		if !schedule.NextRunAt.Valid || schedule.NextRunAt.Time.After(now) {
			continue
		}

		lastRun := schedule.NextRunAt.Time
		nextRun := service.NextRunAfter(lastRun, schedule.IntervalValue, schedule.IntervalUnit)
		if !nextRun.After(lastRun) {
			slog.Info("schedule has a zero interval, skipping", "schedule_id", schedule.ID)
			continue
		}
		for !nextRun.After(now) {
			nextRun = service.NextRunAfter(nextRun, schedule.IntervalValue, schedule.IntervalUnit)
		}

		if err := c.sr.SetRunTimes(ctx, schedule.ID, lastRun, nextRun); err != nil {
			slog.Info(err.Error())
		}
	}
}
