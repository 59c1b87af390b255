package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/models"
	"github.com/pagecast/pagecast/internal/repository"
	"github.com/pagecast/pagecast/internal/transfer"
)

// ScheduleService manages recurring-trigger configurations. The service only
// keeps the bookkeeping; an external workflow engine does the actual firing
// and is told about changes through a webhook.
type ScheduleService interface {
	Get(ctx context.Context, userID int64) (*models.Schedule, error)
	Update(ctx context.Context, userID int64, su *transfer.ScheduleUpdate) error
	Toggle(ctx context.Context, userID int64, st *transfer.ScheduleToggle) error
}

type scheduleService struct {
	cfg      config.Config
	sr       repository.ScheduleRepository
	client   *http.Client
	validate *validator.Validate
}

func NewScheduleService(cfg config.Config, sr repository.ScheduleRepository) ScheduleService {
	return &scheduleService{
		cfg:      cfg,
		sr:       sr,
		client:   &http.Client{Timeout: 15 * time.Second},
		validate: validator.New(),
	}
}

// NextRunAfter computes the advisory next execution time.
func NextRunAfter(from time.Time, value int, unit string) time.Time {
	switch unit {
	case models.IntervalUnitMinutes:
		return from.Add(time.Duration(value) * time.Minute)
	case models.IntervalUnitHours:
		return from.Add(time.Duration(value) * time.Hour)
	case models.IntervalUnitDays:
		return from.AddDate(0, 0, value)
	default:
		return from
	}
}

func (s *scheduleService) Get(ctx context.Context, userID int64) (*models.Schedule, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	schedule, ok, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting schedule")
	}
	if !ok {
		return nil, nil
	}

	return schedule, nil
}

func (s *scheduleService) Update(ctx context.Context, userID int64, su *transfer.ScheduleUpdate) error {
	if err := s.validate.Struct(su); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("invalid schedule: %w", err)
	}

	nextRun := NextRunAfter(time.Now(), su.IntervalValue, su.IntervalUnit)

	schedule := &models.Schedule{
		UserID:        userID,
		IntervalValue: su.IntervalValue,
		IntervalUnit:  su.IntervalUnit,
		SpacingValue:  su.SpacingValue,
		SpacingUnit:   su.SpacingUnit,
		IsActive:      true,
		NextRunAt:     sql.NullTime{Time: nextRun, Valid: true},
	}

	existing, ok, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("Error getting schedule")
	}

	if ok {
		schedule.ID = existing.ID
		if err := s.sr.Update(ctx, schedule, userID); err != nil {
			return fmt.Errorf("Error updating schedule")
		}
	} else {
		id, err := s.sr.Create(ctx, schedule)
		if err != nil {
			return fmt.Errorf("Error creating schedule")
		}
		schedule.ID = id
	}

	s.notifyWorkflowEngine(ctx, schedule)
	return nil
}

func (s *scheduleService) Toggle(ctx context.Context, userID int64, st *transfer.ScheduleToggle) error {
	if err := s.validate.Struct(st); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("invalid request: %w", err)
	}

	if err := s.sr.SetActive(ctx, userID, st.ScheduleID, st.IsActive); err != nil {
		return fmt.Errorf("Error updating schedule")
	}

	schedule, err := s.sr.GetByID(ctx, st.ScheduleID)
	if err != nil || schedule == nil {
		return nil
	}

	s.notifyWorkflowEngine(ctx, schedule)
	return nil
}

// notifyWorkflowEngine is best effort; the engine re-reads state on its own
// cadence, so a lost notification delays pickup rather than losing it.
func (s *scheduleService) notifyWorkflowEngine(ctx context.Context, schedule *models.Schedule) {
	if s.cfg.WorkflowWebhookURL == "" {
		return
	}

	payload, err := json.Marshal(schedule)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.WorkflowWebhookURL, bytes.NewBuffer(payload))
	if err != nil {
		slog.Info(err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn(fmt.Sprintf("workflow engine notification failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.Warn(fmt.Sprintf("workflow engine notification returned status %d", resp.StatusCode))
	}
}
