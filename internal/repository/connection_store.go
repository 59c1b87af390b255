package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pagecast/pagecast/internal/models"
)

// ConnectionStore owns the multi-row writes of the connect flow. A confirmed
// selection lands as one transaction (connection, pages, linked accounts), so
// a partial failure leaves nothing behind; disconnect likewise deactivates the
// connection and drops its pages atomically.
type ConnectionStore interface {
	SaveSelection(ctx context.Context, conn *models.Connection, pages []*models.Page, linked []*models.LinkedAccount) (int64, error)
	Disconnect(ctx context.Context, userID int64, platform string) error
}

type selectionStore struct {
	db *sql.DB
	cr ConnectionRepository
	pr PageRepository
	lr LinkedAccountRepository
}

func NewConnectionStore(db *sql.DB, cr ConnectionRepository, pr PageRepository, lr LinkedAccountRepository) ConnectionStore {
	return &selectionStore{
		db: db,
		cr: cr,
		pr: pr,
		lr: lr,
	}
}

func (s *selectionStore) SaveSelection(ctx context.Context, conn *models.Connection, pages []*models.Page, linked []*models.LinkedAccount) (int64, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	connectionID, err := s.cr.Upsert(ctx, tx, conn)
	if err != nil {
		return 0, fmt.Errorf("error saving connection: %w", err)
	}

	for _, page := range pages {
		page.ConnectionID = connectionID
		if _, err := s.pr.Upsert(ctx, tx, page); err != nil {
			return 0, fmt.Errorf("error saving page %s: %w", page.PageID, err)
		}
	}

	for _, la := range linked {
		if _, err := s.lr.Upsert(ctx, tx, la); err != nil {
			return 0, fmt.Errorf("error saving linked account %s: %w", la.IGUserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return connectionID, nil
}

// Disconnect soft-deletes the platform's connections and removes their pages.
// Linked accounts keep their rows; they reference pages by external id only.
func (s *selectionStore) Disconnect(ctx context.Context, userID int64, platform string) error {
	conns, err := s.cr.ListActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, conn := range conns {
		if conn.Platform != platform {
			continue
		}
		if err := s.pr.RemoveByConnectionID(ctx, tx, conn.ID); err != nil {
			return err
		}
	}

	if err := s.cr.Deactivate(ctx, tx, userID, platform); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
