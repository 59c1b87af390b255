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
)

type DiscoveryService interface {
	Discover(ctx context.Context, token *transfer.FacebookToken) (*transfer.DiscoveryResult, error)
}

type discoveryService struct {
	cfg    config.Config
	client *http.Client
}

func NewDiscoveryService(cfg config.Config) DiscoveryService {
	return &discoveryService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Discover lists the pages the token's user administers, then probes each page
// for a linked Instagram business account. Every linked account in the result
// back-references a page from the same result.
func (s *discoveryService) Discover(ctx context.Context, token *transfer.FacebookToken) (*transfer.DiscoveryResult, error) {
	if token == nil || token.AccessToken == "" {
		err := errors.New("access token is empty")
		slog.Info(err.Error())
		return nil, err
	}

	userInfo, err := s.getUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	pages, err := s.listPages(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	result := &transfer.DiscoveryResult{
		AccountID:      userInfo.ID,
		AccountName:    userInfo.Name,
		AccessToken:    token.AccessToken,
		TokenExpiresAt: token.ExpiresAt,
		Pages:          pages,
	}

	// One probe per page. A probe failure or a page without a business
	// account is the expected negative case, not an error.
	for _, page := range pages {
		linked, ok := s.probeLinkedAccount(ctx, page.PageID, page.AccessToken)
		if !ok {
			continue
		}
		result.LinkedAccounts = append(result.LinkedAccounts, transfer.DiscoveredLinkedAccount{
			IGUserID: linked.IGUserID,
			Username: linked.Username,
			PageID:   page.PageID,
		})
	}

	return result, nil
}

func (s *discoveryService) getUserInfo(ctx context.Context, accessToken string) (*transfer.FacebookUserInfo, error) {
	reqURL := fmt.Sprintf("%s/%s/me?fields=id,name&access_token=%s",
		s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, url.QueryEscape(accessToken))

	body, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	var userInfo transfer.FacebookUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	if userInfo.ID == "" {
		return nil, errors.New("incomplete user data from Facebook")
	}

	return &userInfo, nil
}

func (s *discoveryService) listPages(ctx context.Context, accessToken string) ([]transfer.DiscoveredPage, error) {
	reqURL := fmt.Sprintf("%s/%s/me/accounts?fields=id,name,access_token,tasks&access_token=%s",
		s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, url.QueryEscape(accessToken))

	body, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	var result struct {
		Data []struct {
			ID          string   `json:"id"`
			Name        string   `json:"name"`
			AccessToken string   `json:"access_token"`
			Tasks       []string `json:"tasks"`
		} `json:"data"`
		Error transfer.GraphError `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to parse pages response: %w", err)
	}

	if result.Error.Message != "" {
		return nil, fmt.Errorf("Facebook pages API error: %s", result.Error.Message)
	}

	var pages []transfer.DiscoveredPage
	for _, page := range result.Data {
		pages = append(pages, transfer.DiscoveredPage{
			PageID:      page.ID,
			Name:        page.Name,
			AccessToken: page.AccessToken,
			Tasks:       page.Tasks,
		})
	}

	return pages, nil
}

// probeLinkedAccount checks one page for an Instagram business account.
// Absence is reported as ok=false, never as an error.
func (s *discoveryService) probeLinkedAccount(ctx context.Context, pageID, pageToken string) (*transfer.DiscoveredLinkedAccount, bool) {
	reqURL := fmt.Sprintf("%s/%s/%s?fields=instagram_business_account{id,username}&access_token=%s",
		s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, pageID, url.QueryEscape(pageToken))

	body, err := s.get(ctx, reqURL)
	if err != nil {
		slog.Info(fmt.Sprintf("linked account probe failed for page %s: %v", pageID, err))
		return nil, false
	}

	var result struct {
		Instagram struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"instagram_business_account"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Info(err.Error())
		return nil, false
	}

	if result.Instagram.ID == "" {
		return nil, false
	}

	return &transfer.DiscoveredLinkedAccount{
		IGUserID: result.Instagram.ID,
		Username: result.Instagram.Username,
		PageID:   pageID,
	}, true
}

func (s *discoveryService) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
	}

	return body, nil
}
