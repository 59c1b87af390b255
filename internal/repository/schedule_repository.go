package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/pagecast/pagecast/internal/models"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Schedule, bool, error)
	ListActive(ctx context.Context) ([]*models.Schedule, error)
	Update(ctx context.Context, schedule *models.Schedule, userID int64) error
	SetActive(ctx context.Context, userID, scheduleID int64, active bool) error
	SetRunTimes(ctx context.Context, scheduleID int64, lastRunAt, nextRunAt time.Time) error
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *models.Schedule) (int64, error) {
	query := `
		INSERT INTO schedules (user_id, interval_value, interval_unit, spacing_value, spacing_unit, is_active, next_run_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, schedule.UserID, schedule.IntervalValue, schedule.IntervalUnit,
		schedule.SpacingValue, schedule.SpacingUnit, schedule.IsActive, schedule.NextRunAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	query := `SELECT id, user_id, interval_value, interval_unit, spacing_value, spacing_unit, is_active, last_run_at, next_run_at, created_at, updated_at
		FROM schedules WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var s models.Schedule
	err := row.Scan(&s.ID, &s.UserID, &s.IntervalValue, &s.IntervalUnit, &s.SpacingValue, &s.SpacingUnit,
		&s.IsActive, &s.LastRunAt, &s.NextRunAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &s, nil
}

func (r *scheduleRepository) GetByUserID(ctx context.Context, userID int64) (*models.Schedule, bool, error) {
	query := `SELECT id, user_id, interval_value, interval_unit, spacing_value, spacing_unit, is_active, last_run_at, next_run_at, created_at, updated_at
		FROM schedules WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var s models.Schedule
	err := row.Scan(&s.ID, &s.UserID, &s.IntervalValue, &s.IntervalUnit, &s.SpacingValue, &s.SpacingUnit,
		&s.IsActive, &s.LastRunAt, &s.NextRunAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &s, true, nil
}

func (r *scheduleRepository) ListActive(ctx context.Context) ([]*models.Schedule, error) {
	query := `SELECT id, user_id, interval_value, interval_unit, spacing_value, spacing_unit, is_active, last_run_at, next_run_at, created_at, updated_at
		FROM schedules WHERE is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		var s models.Schedule
		err := rows.Scan(&s.ID, &s.UserID, &s.IntervalValue, &s.IntervalUnit, &s.SpacingValue, &s.SpacingUnit,
			&s.IsActive, &s.LastRunAt, &s.NextRunAt, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		schedules = append(schedules, &s)
	}
	return schedules, nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *models.Schedule, userID int64) error {
	query := `
		UPDATE schedules
		SET interval_value = $1,
			interval_unit = $2,
			spacing_value = $3,
			spacing_unit = $4,
			is_active = $5,
			next_run_at = $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $7
	`
	_, err := r.db.ExecContext(ctx, query, schedule.IntervalValue, schedule.IntervalUnit,
		schedule.SpacingValue, schedule.SpacingUnit, schedule.IsActive, schedule.NextRunAt, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) SetActive(ctx context.Context, userID, scheduleID int64, active bool) error {
	query := `UPDATE schedules SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 AND user_id = $3`
	_, err := r.db.ExecContext(ctx, query, active, scheduleID, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) SetRunTimes(ctx context.Context, scheduleID int64, lastRunAt, nextRunAt time.Time) error {
	query := `UPDATE schedules SET last_run_at = $1, next_run_at = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, lastRunAt, nextRunAt, scheduleID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
