package job

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pagecast/pagecast/internal/models"
)

type fakeScheduleRepository struct {
	schedules map[int64]*models.Schedule
}

func (r *fakeScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) (int64, error) {
	r.schedules[schedule.ID] = schedule
	return schedule.ID, nil
}

func (r *fakeScheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	return r.schedules[id], nil
}

func (r *fakeScheduleRepository) GetByUserID(ctx context.Context, userID int64) (*models.Schedule, bool, error) {
	return nil, false, nil
}

func (r *fakeScheduleRepository) ListActive(ctx context.Context) ([]*models.Schedule, error) {
	var out []*models.Schedule
	for _, s := range r.schedules {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepository) Update(ctx context.Context, schedule *models.Schedule, userID int64) error {
	return nil
}

func (r *fakeScheduleRepository) SetActive(ctx context.Context, userID, scheduleID int64, active bool) error {
	return nil
}

func (r *fakeScheduleRepository) SetRunTimes(ctx context.Context, scheduleID int64, lastRunAt, nextRunAt time.Time) error {
	if s, ok := r.schedules[scheduleID]; ok {
		s.LastRunAt = sql.NullTime{Time: lastRunAt, Valid: true}
		s.NextRunAt = sql.NullTime{Time: nextRunAt, Valid: true}
	}
	return nil
}

func TestTickAdvancesDueSchedules(t *testing.T) {
	due := time.Now().Add(-5 * time.Minute)
	repo := &fakeScheduleRepository{schedules: map[int64]*models.Schedule{
		1: {
			ID:            1,
			UserID:        42,
			IntervalValue: 1,
			IntervalUnit:  models.IntervalUnitHours,
			IsActive:      true,
			NextRunAt:     sql.NullTime{Time: due, Valid: true},
		},
	}}

	NewScheduleTickJob(repo).Tick()

	s := repo.schedules[1]
	if !s.LastRunAt.Valid || !s.LastRunAt.Time.Equal(due) {
		t.Fatalf("last run not recorded: %+v", s.LastRunAt)
	}
	if !s.NextRunAt.Valid || !s.NextRunAt.Time.After(time.Now()) {
		t.Fatalf("next run was not advanced into the future: %+v", s.NextRunAt)
	}
}

func TestTickCatchesUpMissedIntervals(t *testing.T) {
	// Three hours overdue with a one hour interval; next run lands within
	// the coming hour instead of stacking immediate runs.
	due := time.Now().Add(-3 * time.Hour)
	repo := &fakeScheduleRepository{schedules: map[int64]*models.Schedule{
		1: {
			ID:            1,
			IntervalValue: 1,
			IntervalUnit:  models.IntervalUnitHours,
			IsActive:      true,
			NextRunAt:     sql.NullTime{Time: due, Valid: true},
		},
	}}

	NewScheduleTickJob(repo).Tick()

	s := repo.schedules[1]
	if !s.NextRunAt.Time.After(time.Now()) {
		t.Fatalf("next run %v is still in the past", s.NextRunAt.Time)
	}
	if s.NextRunAt.Time.After(time.Now().Add(time.Hour)) {
		t.Fatalf("next run %v overshot a full interval", s.NextRunAt.Time)
	}
}

func TestTickSkipsInactiveAndFutureSchedules(t *testing.T) {
	future := time.Now().Add(time.Hour)
	repo := &fakeScheduleRepository{schedules: map[int64]*models.Schedule{
		1: {
			ID:            1,
			IntervalValue: 1,
			IntervalUnit:  models.IntervalUnitHours,
			IsActive:      false,
			NextRunAt:     sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true},
		},
		2: {
			ID:            2,
			IntervalValue: 1,
			IntervalUnit:  models.IntervalUnitHours,
			IsActive:      true,
			NextRunAt:     sql.NullTime{Time: future, Valid: true},
		},
	}}

	NewScheduleTickJob(repo).Tick()

	if repo.schedules[1].LastRunAt.Valid {
		t.Fatal("inactive schedule was advanced")
	}
	if !repo.schedules[2].NextRunAt.Time.Equal(future) {
		t.Fatal("future schedule was advanced early")
	}
}
