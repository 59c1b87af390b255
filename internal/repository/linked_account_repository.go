package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/pagecast/pagecast/internal/models"
)

type LinkedAccountRepository interface {
	Upsert(ctx context.Context, tx *sql.Tx, la *models.LinkedAccount) (int64, error)
	GetByExternalID(ctx context.Context, userID int64, igUserID string) (*models.LinkedAccount, bool, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.LinkedAccount, error)
	SetDefault(ctx context.Context, userID int64, igUserID string) error
}

type linkedAccountRepository struct {
	db *sql.DB
}

func NewLinkedAccountRepository(db *sql.DB) LinkedAccountRepository {
	return &linkedAccountRepository{db: db}
}

func (r *linkedAccountRepository) Upsert(ctx context.Context, tx *sql.Tx, la *models.LinkedAccount) (int64, error) {
	query := `
		INSERT INTO linked_accounts (user_id, page_id, ig_user_id, username)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, ig_user_id)
		DO UPDATE SET
			page_id = EXCLUDED.page_id,
			username = EXCLUDED.username,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, la.UserID, la.PageID, la.IGUserID, la.Username).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, la.UserID, la.PageID, la.IGUserID, la.Username).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *linkedAccountRepository) GetByExternalID(ctx context.Context, userID int64, igUserID string) (*models.LinkedAccount, bool, error) {
	query := `SELECT id, user_id, page_id, ig_user_id, username, is_default, created_at, updated_at
		FROM linked_accounts WHERE user_id = $1 AND ig_user_id = $2`
	row := r.db.QueryRowContext(ctx, query, userID, igUserID)

	var la models.LinkedAccount
	err := row.Scan(&la.ID, &la.UserID, &la.PageID, &la.IGUserID, &la.Username, &la.IsDefault, &la.CreatedAt, &la.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &la, true, nil
}

func (r *linkedAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.LinkedAccount, error) {
	query := `SELECT id, user_id, page_id, ig_user_id, username, is_default, created_at, updated_at
		FROM linked_accounts WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.LinkedAccount
	for rows.Next() {
		var la models.LinkedAccount
		err := rows.Scan(&la.ID, &la.UserID, &la.PageID, &la.IGUserID, &la.Username, &la.IsDefault, &la.CreatedAt, &la.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &la)
	}
	return accounts, nil
}

// SetDefault clears sibling defaults and sets the new one in one transaction.
func (r *linkedAccountRepository) SetDefault(ctx context.Context, userID int64, igUserID string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	clearQuery := `UPDATE linked_accounts SET is_default = FALSE, updated_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND is_default = TRUE`
	if _, err := tx.ExecContext(ctx, clearQuery, userID); err != nil {
		slog.Info(err.Error())
		return err
	}

	setQuery := `UPDATE linked_accounts SET is_default = TRUE, updated_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND ig_user_id = $2`
	result, err := tx.ExecContext(ctx, setQuery, userID, igUserID)
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
		return errors.New("linked account not found")
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
