package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/transfer"
	"github.com/pagecast/pagecast/pkg/utils"
)

const FacebookAuthURL = "https://www.facebook.com/v21.0/dialog/oauth"

// FacebookScopes is the fixed permission list requested on connect.
const FacebookScopes = "pages_show_list,pages_read_engagement,pages_manage_posts,instagram_basic,instagram_content_publish,business_management"

type FacebookService interface {
	GetAuthURL(ctx context.Context, userID int64) (string, error)
	ExchangeCodeForToken(ctx context.Context, code string) (*transfer.FacebookToken, error)
	RefreshLongLivedToken(ctx context.Context, accessToken string) (*transfer.FacebookToken, error)
}

type facebookService struct {
	cfg    config.Config
	client *http.Client
}

func NewFacebookService(cfg config.Config) FacebookService {
	return &facebookService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *facebookService) GetAuthURL(ctx context.Context, userID int64) (string, error) {
	state, err := utils.MintState(userID)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	params := url.Values{}
	params.Add("client_id", s.cfg.FacebookAppID)
	params.Add("redirect_uri", s.cfg.FacebookRedirectURI)
	params.Add("scope", FacebookScopes)
	params.Add("response_type", "code")
	params.Add("state", state)

	return fmt.Sprintf("%s?%s", FacebookAuthURL, params.Encode()), nil
}

// ExchangeCodeForToken runs both exchange legs: code for a short-lived token,
// then short-lived for a long-lived token (~60 days). A failed long-lived
// exchange is a hard error; falling back to the short-lived token would
// silently shorten the connection's effective expiry.
func (s *facebookService) ExchangeCodeForToken(ctx context.Context, code string) (*transfer.FacebookToken, error) {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return nil, err
	}

	shortLived, err := s.getShortLivedToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get short-lived token: %w", err)
	}

	longLived, err := s.getLongLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}

	return longLived, nil
}

func (s *facebookService) getShortLivedToken(ctx context.Context, code string) (*transfer.FacebookToken, error) {
	params := url.Values{}
	params.Set("client_id", s.cfg.FacebookAppID)
	params.Set("client_secret", s.cfg.FacebookAppSecret)
	params.Set("redirect_uri", s.cfg.FacebookRedirectURI)
	params.Set("code", code)

	reqURL := fmt.Sprintf("%s/%s/oauth/access_token?%s", s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, params.Encode())
	return s.requestToken(ctx, reqURL)
}

func (s *facebookService) getLongLivedToken(ctx context.Context, shortLivedToken string) (*transfer.FacebookToken, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", s.cfg.FacebookAppID)
	params.Set("client_secret", s.cfg.FacebookAppSecret)
	params.Set("fb_exchange_token", shortLivedToken)

	reqURL := fmt.Sprintf("%s/%s/oauth/access_token?%s", s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, params.Encode())
	return s.requestToken(ctx, reqURL)
}

// RefreshLongLivedToken re-runs the fb_exchange_token leg against an existing
// long-lived token before it expires.
func (s *facebookService) RefreshLongLivedToken(ctx context.Context, accessToken string) (*transfer.FacebookToken, error) {
	return s.getLongLivedToken(ctx, accessToken)
}

func (s *facebookService) requestToken(ctx context.Context, reqURL string) (*transfer.FacebookToken, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("exchange failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange failed: %s (status code: %d)", body, resp.StatusCode)
	}

	var result transfer.GraphTokenResponse
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("exchange failed: %w", err)
	}

	if result.AccessToken == "" {
		return nil, fmt.Errorf("exchange failed: no access_token in response: %s", body)
	}

	expiresIn := result.ExpiresIn
	if expiresIn == 0 {
		// Facebook omits expires_in for some long-lived tokens; assume 60 days.
		expiresIn = int64((60 * 24 * time.Hour).Seconds())
	}

	return &transfer.FacebookToken{
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}
