package transfer

import "github.com/pagecast/pagecast/internal/models"

type ConnectionsOverview struct {
	Connections    []*models.Connection    `json:"connections"`
	Pages          []*models.Page          `json:"pages"`
	LinkedAccounts []*models.LinkedAccount `json:"linked_accounts"`
}

type SetDefaultRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=page linked_account"`
	TargetID   string `json:"target_id" validate:"required"`
}

type DisconnectRequest struct {
	Platform string `json:"platform" validate:"required"`
}
