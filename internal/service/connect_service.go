package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pagecast/pagecast/pkg/utils"
)

type ConnectService interface {
	HandleCallback(ctx context.Context, userID int64, code, state string) error
}

type connectService struct {
	fb    FacebookService
	disc  DiscoveryService
	store DiscoveryStore
}

func NewConnectService(fb FacebookService, disc DiscoveryService, store DiscoveryStore) ConnectService {
	return &connectService{
		fb:    fb,
		disc:  disc,
		store: store,
	}
}

// HandleCallback processes the OAuth redirect: state check, token exchange,
// asset discovery, and caching the result for the selection step. The state
// check runs first so a forged callback never reaches the network.
func (s *connectService) HandleCallback(ctx context.Context, userID int64, code, state string) error {
	if code == "" || state == "" {
		err := errors.New("code or state is empty")
		slog.Info(err.Error())
		return err
	}

	if err := utils.ValidateState(state, userID); err != nil {
		slog.Info(err.Error())
		return err
	}

	token, err := s.fb.ExchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	discovery, err := s.disc.Discover(ctx, token)
	if err != nil {
		return err
	}

	if err := s.store.Save(ctx, userID, discovery); err != nil {
		return err
	}

	return nil
}
