package transfer

type PostCreation struct {
	TargetType    string `json:"target_type" validate:"required,oneof=page linked_account"`
	TargetID      string `json:"target_id" validate:"required"`
	Message       string `json:"message"`
	Link          string `json:"link" validate:"omitempty,url"`
	ScheduledUnix int64  `json:"scheduled_unix" validate:"required,gt=0"`
}
