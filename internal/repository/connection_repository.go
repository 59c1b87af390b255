package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/pagecast/pagecast/internal/models"
)

type ConnectionRepository interface {
	Upsert(ctx context.Context, tx *sql.Tx, conn *models.Connection) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Connection, error)
	ListActiveByUserID(ctx context.Context, userID int64) ([]*models.Connection, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.Connection, error)
	UpdateToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error
	Deactivate(ctx context.Context, tx *sql.Tx, userID int64, platform string) error
}

type connectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// Upsert keys on (user_id, platform, account_id) so reconnecting refreshes the
// token instead of duplicating the row, and reactivates a disconnected one.
func (r *connectionRepository) Upsert(ctx context.Context, tx *sql.Tx, conn *models.Connection) (int64, error) {
	query := `
		INSERT INTO connections (user_id, platform, account_id, account_name, access_token, token_expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (user_id, platform, account_id)
		DO UPDATE SET
			account_name = EXCLUDED.account_name,
			access_token = EXCLUDED.access_token,
			token_expires_at = EXCLUDED.token_expires_at,
			is_active = TRUE,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, conn.UserID, conn.Platform, conn.AccountID,
			conn.AccountName, conn.AccessToken, conn.TokenExpiresAt).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, conn.UserID, conn.Platform, conn.AccountID,
			conn.AccountName, conn.AccessToken, conn.TokenExpiresAt).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	query := `SELECT id, user_id, platform, account_id, account_name, access_token, token_expires_at, is_active, created_at, updated_at
		FROM connections WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var conn models.Connection
	err := row.Scan(&conn.ID, &conn.UserID, &conn.Platform, &conn.AccountID, &conn.AccountName,
		&conn.AccessToken, &conn.TokenExpiresAt, &conn.IsActive, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &conn, nil
}

func (r *connectionRepository) ListActiveByUserID(ctx context.Context, userID int64) ([]*models.Connection, error) {
	query := `SELECT id, user_id, platform, account_id, account_name, access_token, token_expires_at, is_active, created_at, updated_at
		FROM connections WHERE user_id = $1 AND is_active = TRUE`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.Connection
	for rows.Next() {
		var conn models.Connection
		err := rows.Scan(&conn.ID, &conn.UserID, &conn.Platform, &conn.AccountID, &conn.AccountName,
			&conn.AccessToken, &conn.TokenExpiresAt, &conn.IsActive, &conn.CreatedAt, &conn.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &conn)
	}
	return connections, nil
}

func (r *connectionRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.Connection, error) {
	query := `SELECT id, user_id, platform, account_id, account_name, access_token, token_expires_at, is_active, created_at, updated_at
		FROM connections
		WHERE is_active = TRUE
		AND ((token_expires_at BETWEEN $1 AND $2) OR (token_expires_at < $1))`
	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var connections []*models.Connection
	for rows.Next() {
		var conn models.Connection
		err := rows.Scan(&conn.ID, &conn.UserID, &conn.Platform, &conn.AccountID, &conn.AccountName,
			&conn.AccessToken, &conn.TokenExpiresAt, &conn.IsActive, &conn.CreatedAt, &conn.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		connections = append(connections, &conn)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return connections, nil
}

func (r *connectionRepository) UpdateToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE connections
		SET access_token = $1,
			token_expires_at = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, accessToken, expiresAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Deactivate clears the active flag. Rows are never hard-deleted here.
func (r *connectionRepository) Deactivate(ctx context.Context, tx *sql.Tx, userID int64, platform string) error {
	query := `UPDATE connections SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND platform = $2`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, platform)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, platform)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
