package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/models"
	"github.com/pagecast/pagecast/internal/repository"
	"github.com/pagecast/pagecast/internal/transfer"
	"github.com/pagecast/pagecast/pkg/utils"
)

// DiscoveryStore is the seam between the OAuth callback and the selection
// submit; the Redis-backed cache satisfies it.
type DiscoveryStore interface {
	Save(ctx context.Context, userID int64, result *transfer.DiscoveryResult) error
	Get(ctx context.Context, userID int64) (*transfer.DiscoveryResult, bool, error)
	Delete(ctx context.Context, userID int64) error
}

var (
	ErrEmptySelection     = errors.New("at least one page or linked account must be selected")
	ErrNoPendingDiscovery = errors.New("no pending discovery; reconnect the account")
	ErrUnknownSelection   = errors.New("selection includes ids outside the discovery")
)

type SelectionService interface {
	PendingDiscovery(ctx context.Context, userID int64) (*transfer.DiscoveryResult, bool, error)
	Submit(ctx context.Context, userID int64, sel *transfer.SelectionSubmit) (*transfer.SelectionResult, error)
}

type selectionService struct {
	cfg   config.Config
	store DiscoveryStore
	ss    repository.ConnectionStore
}

func NewSelectionService(cfg config.Config, store DiscoveryStore, ss repository.ConnectionStore) SelectionService {
	return &selectionService{
		cfg:   cfg,
		store: store,
		ss:    ss,
	}
}

func (s *selectionService) PendingDiscovery(ctx context.Context, userID int64) (*transfer.DiscoveryResult, bool, error) {
	result, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("error reading discovery result")
	}
	if !ok {
		return nil, false, nil
	}

	// The selection UI never needs token material.
	redacted := *result
	redacted.AccessToken = ""
	pages := make([]transfer.DiscoveredPage, len(result.Pages))
	for i, page := range result.Pages {
		pages[i] = page
		pages[i].AccessToken = ""
	}
	redacted.Pages = pages

	return &redacted, true, nil
}

// Submit validates the selection against the pending discovery and persists it
// in one transaction. Validation failures perform zero writes.
func (s *selectionService) Submit(ctx context.Context, userID int64, sel *transfer.SelectionSubmit) (*transfer.SelectionResult, error) {
	if sel == nil || (len(sel.PageIDs) == 0 && len(sel.LinkedAccountIDs) == 0) {
		slog.Info(ErrEmptySelection.Error())
		return nil, ErrEmptySelection
	}

	discovery, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error reading discovery result")
	}
	if !ok {
		slog.Info(ErrNoPendingDiscovery.Error())
		return nil, ErrNoPendingDiscovery
	}

	selectedPages, selectedLinked, err := resolveSelection(discovery, sel)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	encryptedToken, err := utils.Encrypt([]byte(discovery.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	conn := &models.Connection{
		UserID:         userID,
		Platform:       models.PlatformFacebook,
		AccountID:      discovery.AccountID,
		AccountName:    discovery.AccountName,
		AccessToken:    encryptedToken,
		TokenExpiresAt: discovery.TokenExpiresAt,
	}

	pages := make([]*models.Page, 0, len(selectedPages))
	for _, dp := range selectedPages {
		encryptedPageToken, err := utils.Encrypt([]byte(dp.AccessToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
		pages = append(pages, &models.Page{
			UserID:      userID,
			PageID:      dp.PageID,
			PageName:    dp.Name,
			AccessToken: encryptedPageToken,
		})
	}

	linked := make([]*models.LinkedAccount, 0, len(selectedLinked))
	for _, dl := range selectedLinked {
		linked = append(linked, &models.LinkedAccount{
			UserID:   userID,
			PageID:   dl.PageID,
			IGUserID: dl.IGUserID,
			Username: dl.Username,
		})
	}

	connectionID, err := s.ss.SaveSelection(ctx, conn, pages, linked)
	if err != nil {
		return nil, err
	}

	// A confirmed submit consumes the pending discovery.
	if err := s.store.Delete(ctx, userID); err != nil {
		slog.Warn("failed to clear pending discovery", "error", err)
	}

	return &transfer.SelectionResult{
		ConnectionID:  connectionID,
		PagesSaved:    len(pages),
		AccountsSaved: len(linked),
	}, nil
}

// resolveSelection maps selected external ids back onto the discovery result.
// Unknown ids are rejected, and a selected linked account pulls in its owning
// page even when the client left the page out.
func resolveSelection(discovery *transfer.DiscoveryResult, sel *transfer.SelectionSubmit) ([]transfer.DiscoveredPage, []transfer.DiscoveredLinkedAccount, error) {
	pagesByID := make(map[string]transfer.DiscoveredPage, len(discovery.Pages))
	for _, page := range discovery.Pages {
		pagesByID[page.PageID] = page
	}

	linkedByID := make(map[string]transfer.DiscoveredLinkedAccount, len(discovery.LinkedAccounts))
	for _, la := range discovery.LinkedAccounts {
		linkedByID[la.IGUserID] = la
	}

	selectedPageIDs := make(map[string]struct{})
	for _, id := range sel.PageIDs {
		if _, ok := pagesByID[id]; !ok {
			return nil, nil, fmt.Errorf("%w: page %s", ErrUnknownSelection, id)
		}
		selectedPageIDs[id] = struct{}{}
	}

	var selectedLinked []transfer.DiscoveredLinkedAccount
	for _, id := range sel.LinkedAccountIDs {
		la, ok := linkedByID[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: linked account %s", ErrUnknownSelection, id)
		}
		selectedLinked = append(selectedLinked, la)
		selectedPageIDs[la.PageID] = struct{}{}
	}

	// Iterate discovery order so output is stable.
	var selectedPages []transfer.DiscoveredPage
	for _, page := range discovery.Pages {
		if _, ok := selectedPageIDs[page.PageID]; ok {
			selectedPages = append(selectedPages, page)
		}
	}

	return selectedPages, selectedLinked, nil
}
