package models

import (
	"time"
)

// Connection is one authenticated link between a local user and a Facebook
// account. At most one active row exists per (user_id, platform, account_id).
type Connection struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Platform       string    `db:"platform" json:"platform"`
	AccountID      string    `db:"account_id" json:"account_id"`
	AccountName    string    `db:"account_name" json:"account_name"`
	AccessToken    string    `db:"access_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Page is a postable Facebook Page owned through a Connection. The token is
// page-scoped and encrypted at rest.
type Page struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	ConnectionID int64     `db:"connection_id" json:"connection_id"`
	PageID       string    `db:"page_id" json:"page_id"`
	PageName     string    `db:"page_name" json:"page_name"`
	AccessToken  string    `db:"access_token" json:"-"`
	IsDefault    bool      `db:"is_default" json:"is_default"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LinkedAccount is an Instagram business account discovered through a Page.
// PageID is the external id of the owning page, not a foreign key.
type LinkedAccount struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	PageID    string    `db:"page_id" json:"page_id"`
	IGUserID  string    `db:"ig_user_id" json:"ig_user_id"`
	Username  string    `db:"username" json:"username"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PlatformFacebook = "facebook"
)
