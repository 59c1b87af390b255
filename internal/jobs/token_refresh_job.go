package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/models"
	"github.com/pagecast/pagecast/internal/repository"
	"github.com/pagecast/pagecast/internal/service"
	"github.com/pagecast/pagecast/pkg/utils"
)

// refreshWindow is how far ahead of expiry a long-lived token gets renewed.
const refreshWindow = 7 * 24 * time.Hour

type TokenRefreshJob struct {
	cfg config.Config
	cr  repository.ConnectionRepository
	fb  service.FacebookService
}

func NewTokenRefreshJob(cfg config.Config, cr repository.ConnectionRepository, fb service.FacebookService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg: cfg,
		cr:  cr,
		fb:  fb,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	windowEnd := currentTime.Add(refreshWindow)

	connections, err := c.cr.ListExpiring(ctx, currentTime, windowEnd)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(10)

	for _, conn := range connections {
		conn := conn
		g.Go(func() error {
			if err := c.refreshConnection(ctx, conn); err != nil {
				slog.Info(fmt.Sprintf("unable to refresh token for connection %d: %v", conn.ID, err))
			}
			return nil
		})
	}

	g.Wait()
}

func (c *TokenRefreshJob) refreshConnection(ctx context.Context, conn *models.Connection) error {
	accessToken, err := utils.Decrypt(conn.AccessToken, []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}

	token, err := c.fb.RefreshLongLivedToken(ctx, accessToken)
	if err != nil {
		return err
	}

	encrypted, err := utils.Encrypt([]byte(token.AccessToken), []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}

	return c.cr.UpdateToken(ctx, conn.ID, encrypted, token.ExpiresAt)
}
