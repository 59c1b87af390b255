package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/models"
	"github.com/pagecast/pagecast/internal/repository"
	"github.com/pagecast/pagecast/pkg/utils"
)

type PublishService interface {
	PublishPost(ctx context.Context, postID int64) error
}

type publishService struct {
	cfg    config.Config
	pr     repository.PostRepository
	pg     repository.PageRepository
	lr     repository.LinkedAccountRepository
	ma     repository.MediaAssetRepository
	pm     repository.PostMediaRepository
	client *http.Client
}

func NewPublishService(
	cfg config.Config,
	pr repository.PostRepository,
	pg repository.PageRepository,
	lr repository.LinkedAccountRepository,
	ma repository.MediaAssetRepository,
	pm repository.PostMediaRepository) PublishService {
	return &publishService{
		cfg:    cfg,
		pr:     pr,
		pg:     pg,
		lr:     lr,
		ma:     ma,
		pm:     pm,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

// PublishPost makes the single publish attempt for a queued post and records
// the outcome. The transition is one-way: queued moves to published or failed
// and stays there, no retry.
func (s *publishService) PublishPost(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %d not found", postID)
	}
	if post.Status != models.PostStatusQueued {
		slog.Info(fmt.Sprintf("post %d already %s, skipping", postID, post.Status))
		return nil
	}

	resultID, err := s.publish(ctx, post)
	if err != nil {
		slog.Info(err.Error())
		if markErr := s.pr.MarkFailed(ctx, postID, err.Error()); markErr != nil {
			return fmt.Errorf("failed to record publish failure: %w", markErr)
		}
		return err
	}

	if err := s.pr.MarkPublished(ctx, postID, resultID); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

func (s *publishService) publish(ctx context.Context, post *models.Post) (string, error) {
	switch post.TargetType {
	case models.TargetTypePage:
		return s.publishToPage(ctx, post)
	case models.TargetTypeLinkedAccount:
		return s.publishToLinkedAccount(ctx, post)
	default:
		return "", fmt.Errorf("unknown target type %s", post.TargetType)
	}
}

func (s *publishService) publishToPage(ctx context.Context, post *models.Post) (string, error) {
	page, ok, err := s.pg.GetByExternalID(ctx, post.UserID, post.TargetID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("page is not connected")
	}

	pageToken, err := utils.Decrypt(page.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	mediaURLs, err := s.mediaURLs(ctx, post.ID)
	if err != nil {
		return "", err
	}

	var endpoint string
	payload := map[string]interface{}{
		"access_token": pageToken,
	}

	switch {
	case post.PostType == models.PostTypeVideo && len(mediaURLs) > 0:
		endpoint = fmt.Sprintf("%s/%s/%s/videos", s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, page.PageID)
		payload["file_url"] = mediaURLs[0]
		payload["description"] = post.Message
	case len(mediaURLs) > 0:
		endpoint = fmt.Sprintf("%s/%s/%s/photos", s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, page.PageID)
		payload["url"] = mediaURLs[0]
		payload["caption"] = post.Message
	default:
		endpoint = fmt.Sprintf("%s/%s/%s/feed", s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, page.PageID)
		payload["message"] = post.Message
		if post.Link != "" {
			payload["link"] = post.Link
		}
	}

	result, err := s.graphPost(ctx, endpoint, payload)
	if err != nil {
		return "", err
	}
	return result, nil
}

// publishToLinkedAccount runs the Instagram container flow: create an
// unpublished media container, then make it live with media_publish.
func (s *publishService) publishToLinkedAccount(ctx context.Context, post *models.Post) (string, error) {
	la, ok, err := s.lr.GetByExternalID(ctx, post.UserID, post.TargetID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("linked account is not connected")
	}

	// The credential is the owning page's token.
	page, ok, err := s.pg.GetByExternalID(ctx, post.UserID, la.PageID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("owning page %s is not connected", la.PageID)
	}

	pageToken, err := utils.Decrypt(page.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	mediaURLs, err := s.mediaURLs(ctx, post.ID)
	if err != nil {
		return "", err
	}
	if len(mediaURLs) == 0 {
		return "", errors.New("no media found for linked account post")
	}

	containerEndpoint := fmt.Sprintf("%s/%s/%s/media", s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, la.IGUserID)
	containerID, err := s.graphPost(ctx, containerEndpoint, map[string]interface{}{
		"image_url":    mediaURLs[0],
		"caption":      post.Message,
		"access_token": pageToken,
	})
	if err != nil {
		return "", err
	}

	publishEndpoint := fmt.Sprintf("%s/%s/%s/media_publish", s.cfg.GraphAPIBaseURL, s.cfg.GraphAPIVersion, la.IGUserID)
	mediaID, err := s.graphPost(ctx, publishEndpoint, map[string]interface{}{
		"creation_id":  containerID,
		"access_token": pageToken,
	})
	if err != nil {
		return "", err
	}

	return mediaID, nil
}

func (s *publishService) mediaURLs(ctx context.Context, postID int64) ([]string, error) {
	postMedias, err := s.pm.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error fetching post media for PostID %d: %w", postID, err)
	}

	var urls []string
	for _, pmRow := range postMedias {
		asset, err := s.ma.GetByID(ctx, pmRow.AssetID)
		if err != nil {
			return nil, fmt.Errorf("error retrieving media asset for AssetID %d: %w", pmRow.AssetID, err)
		}
		if asset == nil || asset.FileURL == "" {
			return nil, fmt.Errorf("media asset is missing or incomplete for AssetID %d", pmRow.AssetID)
		}
		urls = append(urls, asset.FileURL)
	}
	return urls, nil
}

// graphPost sends one JSON POST to the Graph API and returns the created
// object id.
func (s *publishService) graphPost(ctx context.Context, endpoint string, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Graph API error (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if result.PostID != "" {
		return result.PostID, nil
	}
	if result.ID == "" {
		return "", errors.New("no object ID returned from Graph API")
	}
	return result.ID, nil
}
