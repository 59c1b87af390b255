package models

import (
	"database/sql"
	"time"
)

// Schedule is a recurring-trigger configuration consumed by an external
// workflow engine. NextRunAt is advisory bookkeeping; triggering happens
// outside this service.
type Schedule struct {
	ID            int64        `db:"id" json:"id"`
	UserID        int64        `db:"user_id" json:"user_id"`
	IntervalValue int          `db:"interval_value" json:"interval_value"`
	IntervalUnit  string       `db:"interval_unit" json:"interval_unit"`
	SpacingValue  int          `db:"spacing_value" json:"spacing_value"`
	SpacingUnit   string       `db:"spacing_unit" json:"spacing_unit"`
	IsActive      bool         `db:"is_active" json:"is_active"`
	LastRunAt     sql.NullTime `db:"last_run_at" json:"last_run_at"`
	NextRunAt     sql.NullTime `db:"next_run_at" json:"next_run_at"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

const (
	IntervalUnitMinutes = "minutes"
	IntervalUnitHours   = "hours"
	IntervalUnitDays    = "days"
)
