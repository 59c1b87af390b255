package transfer

type ScheduleUpdate struct {
	IntervalValue int    `json:"interval_value" validate:"required,min=1"`
	IntervalUnit  string `json:"interval_unit" validate:"required,oneof=minutes hours days"`
	SpacingValue  int    `json:"spacing_value" validate:"min=0"`
	SpacingUnit   string `json:"spacing_unit" validate:"omitempty,oneof=minutes hours days"`
}

type ScheduleToggle struct {
	ScheduleID int64 `json:"schedule_id" validate:"required"`
	IsActive   bool  `json:"is_active"`
}
