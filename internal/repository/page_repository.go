package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/pagecast/pagecast/internal/models"
)

type PageRepository interface {
	Upsert(ctx context.Context, tx *sql.Tx, page *models.Page) (int64, error)
	GetByExternalID(ctx context.Context, userID int64, pageID string) (*models.Page, bool, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Page, error)
	SetDefault(ctx context.Context, userID int64, pageID string) error
	RemoveByConnectionID(ctx context.Context, tx *sql.Tx, connectionID int64) error
}

type pageRepository struct {
	db *sql.DB
}

func NewPageRepository(db *sql.DB) PageRepository {
	return &pageRepository{db: db}
}

// Upsert keys on (user_id, page_id) so reselecting a page refreshes its
// page-scoped token instead of duplicating the row.
func (r *pageRepository) Upsert(ctx context.Context, tx *sql.Tx, page *models.Page) (int64, error) {
	query := `
		INSERT INTO pages (user_id, connection_id, page_id, page_name, access_token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, page_id)
		DO UPDATE SET
			connection_id = EXCLUDED.connection_id,
			page_name = EXCLUDED.page_name,
			access_token = EXCLUDED.access_token,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, page.UserID, page.ConnectionID, page.PageID, page.PageName, page.AccessToken).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, page.UserID, page.ConnectionID, page.PageID, page.PageName, page.AccessToken).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *pageRepository) GetByExternalID(ctx context.Context, userID int64, pageID string) (*models.Page, bool, error) {
	query := `SELECT id, user_id, connection_id, page_id, page_name, access_token, is_default, created_at, updated_at
		FROM pages WHERE user_id = $1 AND page_id = $2`
	row := r.db.QueryRowContext(ctx, query, userID, pageID)

	var page models.Page
	err := row.Scan(&page.ID, &page.UserID, &page.ConnectionID, &page.PageID, &page.PageName,
		&page.AccessToken, &page.IsDefault, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &page, true, nil
}

func (r *pageRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Page, error) {
	query := `SELECT id, user_id, connection_id, page_id, page_name, access_token, is_default, created_at, updated_at
		FROM pages WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		var page models.Page
		err := rows.Scan(&page.ID, &page.UserID, &page.ConnectionID, &page.PageID, &page.PageName,
			&page.AccessToken, &page.IsDefault, &page.CreatedAt, &page.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pages = append(pages, &page)
	}
	return pages, nil
}

// SetDefault clears the flag on the user's other pages and sets the new one in
// a single transaction, so at most one default page exists per user.
func (r *pageRepository) SetDefault(ctx context.Context, userID int64, pageID string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	clearQuery := `UPDATE pages SET is_default = FALSE, updated_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND is_default = TRUE`
	if _, err := tx.ExecContext(ctx, clearQuery, userID); err != nil {
		slog.Info(err.Error())
		return err
	}

	setQuery := `UPDATE pages SET is_default = TRUE, updated_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND page_id = $2`
	result, err := tx.ExecContext(ctx, setQuery, userID, pageID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return errors.New("page not found")
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *pageRepository) RemoveByConnectionID(ctx context.Context, tx *sql.Tx, connectionID int64) error {
	query := `DELETE FROM pages WHERE connection_id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, connectionID)
	} else {
		_, err = r.db.ExecContext(ctx, query, connectionID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
