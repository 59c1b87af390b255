package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagecast/pagecast/internal/models"
	"github.com/pagecast/pagecast/internal/repository"
	"github.com/pagecast/pagecast/internal/transfer"
)

type ConnectionService interface {
	List(ctx context.Context, userID int64) (*transfer.ConnectionsOverview, error)
	SetDefault(ctx context.Context, userID int64, targetType, targetID string) error
	Disconnect(ctx context.Context, userID int64, platform string) error
}

type connectionService struct {
	cr repository.ConnectionRepository
	pr repository.PageRepository
	lr repository.LinkedAccountRepository
	cs repository.ConnectionStore
}

func NewConnectionService(
	cr repository.ConnectionRepository,
	pr repository.PageRepository,
	lr repository.LinkedAccountRepository,
	cs repository.ConnectionStore) ConnectionService {
	return &connectionService{
		cr: cr,
		pr: pr,
		lr: lr,
		cs: cs,
	}
}

func (s *connectionService) List(ctx context.Context, userID int64) (*transfer.ConnectionsOverview, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	connections, err := s.cr.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting connections")
	}

	pages, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting pages")
	}

	linked, err := s.lr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting linked accounts")
	}

	return &transfer.ConnectionsOverview{
		Connections:    connections,
		Pages:          pages,
		LinkedAccounts: linked,
	}, nil
}

func (s *connectionService) SetDefault(ctx context.Context, userID int64, targetType, targetID string) error {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if targetID == "" {
		err := errors.New("TargetID is not valid")
		slog.Info(err.Error())
		return err
	}

	switch targetType {
	case models.TargetTypePage:
		return s.pr.SetDefault(ctx, userID, targetID)
	case models.TargetTypeLinkedAccount:
		return s.lr.SetDefault(ctx, userID, targetID)
	default:
		err := fmt.Errorf("unknown target type %s", targetType)
		slog.Info(err.Error())
		return err
	}
}

func (s *connectionService) Disconnect(ctx context.Context, userID int64, platform string) error {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if platform == "" {
		err := errors.New("Platform is not valid")
		slog.Info(err.Error())
		return err
	}

	if err := s.cs.Disconnect(ctx, userID, platform); err != nil {
		return fmt.Errorf("Error disconnecting platform")
	}

	return nil
}
