package models

import "time"

type Post struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	TargetType    string    `db:"target_type" json:"target_type"`
	TargetID      string    `db:"target_id" json:"target_id"`
	PostType      string    `db:"post_type" json:"post_type"`
	Message       string    `db:"message" json:"message"`
	Link          string    `db:"link" json:"link"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduled_time"`
	Status        string    `db:"status" json:"status"` // queued, published, failed
	ResultID      string    `db:"result_id" json:"result_id"`
	ErrorText     string    `db:"error_text" json:"error_text"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type PostMedia struct {
	PostID       int64     `db:"post_id" json:"post_id"`
	AssetID      int64     `db:"asset_id" json:"asset_id"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusQueued    = "queued"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

const (
	TargetTypePage          = "page"
	TargetTypeLinkedAccount = "linked_account"
)

const (
	PostTypeText  = "text"
	PostTypeLink  = "link"
	PostTypePhoto = "photo"
	PostTypeVideo = "video"
)
