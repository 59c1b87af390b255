package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pagecast/pagecast/internal/models"
	"github.com/pagecast/pagecast/internal/transfer"
	"github.com/pagecast/pagecast/pkg/utils"
)

type fakeConnectionStore struct {
	saveCalls  int
	savedConn  *models.Connection
	savedPages []*models.Page
	savedLinks []*models.LinkedAccount
	saveErr    error
}

func (s *fakeConnectionStore) SaveSelection(ctx context.Context, conn *models.Connection, pages []*models.Page, linked []*models.LinkedAccount) (int64, error) {
	s.saveCalls++
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.savedConn = conn
	s.savedPages = pages
	s.savedLinks = linked
	return 1, nil
}

func (s *fakeConnectionStore) Disconnect(ctx context.Context, userID int64, platform string) error {
	return nil
}

func testDiscovery() *transfer.DiscoveryResult {
	return &transfer.DiscoveryResult{
		AccountID:      "fb-user-1",
		AccountName:    "Ada",
		AccessToken:    "user-token",
		TokenExpiresAt: time.Now().Add(60 * 24 * time.Hour),
		Pages: []transfer.DiscoveredPage{
			{PageID: "page-1", Name: "First Page", AccessToken: "page-token-1"},
			{PageID: "page-2", Name: "Second Page", AccessToken: "page-token-2"},
		},
		LinkedAccounts: []transfer.DiscoveredLinkedAccount{
			{IGUserID: "ig-1", Username: "ada.shop", PageID: "page-2"},
		},
	}
}

func newSelectionFixture(t *testing.T) (SelectionService, *fakeDiscoveryStore, *fakeConnectionStore) {
	t.Helper()
	store := newFakeDiscoveryStore()
	cs := &fakeConnectionStore{}
	s := NewSelectionService(testConfig("http://unused"), store, cs)
	return s, store, cs
}

func TestSubmitEmptySelection(t *testing.T) {
	s, store, cs := newSelectionFixture(t)
	store.saved[42] = testDiscovery()

	_, err := s.Submit(context.Background(), 42, &transfer.SelectionSubmit{})
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("got %v, want ErrEmptySelection", err)
	}
	if cs.saveCalls != 0 {
		t.Fatal("an empty selection must perform zero writes")
	}
}

func TestSubmitWithoutPendingDiscovery(t *testing.T) {
	s, _, cs := newSelectionFixture(t)

	_, err := s.Submit(context.Background(), 42, &transfer.SelectionSubmit{PageIDs: []string{"page-1"}})
	if !errors.Is(err, ErrNoPendingDiscovery) {
		t.Fatalf("got %v, want ErrNoPendingDiscovery", err)
	}
	if cs.saveCalls != 0 {
		t.Fatal("no writes expected without a pending discovery")
	}
}

func TestSubmitRejectsUnknownIDs(t *testing.T) {
	s, store, cs := newSelectionFixture(t)
	store.saved[42] = testDiscovery()

	_, err := s.Submit(context.Background(), 42, &transfer.SelectionSubmit{PageIDs: []string{"page-999"}})
	if !errors.Is(err, ErrUnknownSelection) {
		t.Fatalf("got %v for a page id outside the discovery, want ErrUnknownSelection", err)
	}

	_, err = s.Submit(context.Background(), 42, &transfer.SelectionSubmit{LinkedAccountIDs: []string{"ig-999"}})
	if !errors.Is(err, ErrUnknownSelection) {
		t.Fatalf("got %v for a linked account id outside the discovery, want ErrUnknownSelection", err)
	}

	if cs.saveCalls != 0 {
		t.Fatal("rejected selections must perform zero writes")
	}
}

func TestSubmitLinkedAccountPullsInOwningPage(t *testing.T) {
	s, store, cs := newSelectionFixture(t)
	store.saved[42] = testDiscovery()

	// Only the linked account is selected; its owning page-2 must come along.
	result, err := s.Submit(context.Background(), 42, &transfer.SelectionSubmit{
		LinkedAccountIDs: []string{"ig-1"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.PagesSaved != 1 || result.AccountsSaved != 1 {
		t.Fatalf("got %d pages and %d accounts saved, want 1 and 1", result.PagesSaved, result.AccountsSaved)
	}
	if len(cs.savedPages) != 1 || cs.savedPages[0].PageID != "page-2" {
		t.Fatalf("owning page was not persisted: %+v", cs.savedPages)
	}
	if len(cs.savedLinks) != 1 || cs.savedLinks[0].IGUserID != "ig-1" {
		t.Fatalf("linked account was not persisted: %+v", cs.savedLinks)
	}
	if cs.savedLinks[0].PageID != "page-2" {
		t.Fatalf("linked account back-references page %q, want page-2", cs.savedLinks[0].PageID)
	}
}

func TestSubmitEncryptsTokens(t *testing.T) {
	s, store, cs := newSelectionFixture(t)
	store.saved[42] = testDiscovery()

	_, err := s.Submit(context.Background(), 42, &transfer.SelectionSubmit{PageIDs: []string{"page-1"}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	key := []byte(testConfig("http://unused").SecretKey)

	if cs.savedConn.AccessToken == "user-token" {
		t.Fatal("connection token stored in plaintext")
	}
	got, err := utils.Decrypt(cs.savedConn.AccessToken, key)
	if err != nil || got != "user-token" {
		t.Fatalf("connection token does not decrypt back: %v", err)
	}

	if cs.savedPages[0].AccessToken == "page-token-1" {
		t.Fatal("page token stored in plaintext")
	}
	got, err = utils.Decrypt(cs.savedPages[0].AccessToken, key)
	if err != nil || got != "page-token-1" {
		t.Fatalf("page token does not decrypt back: %v", err)
	}
}

func TestSubmitConsumesPendingDiscovery(t *testing.T) {
	s, store, cs := newSelectionFixture(t)
	store.saved[42] = testDiscovery()

	if _, err := s.Submit(context.Background(), 42, &transfer.SelectionSubmit{PageIDs: []string{"page-1"}}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, ok := store.saved[42]; ok {
		t.Fatal("pending discovery survived a confirmed submit")
	}

	// A failed save keeps the discovery around for a retry.
	store.saved[42] = testDiscovery()
	cs.saveErr = errors.New("db down")

	if _, err := s.Submit(context.Background(), 42, &transfer.SelectionSubmit{PageIDs: []string{"page-1"}}); err == nil {
		t.Fatal("expected save failure to propagate")
	}
	if _, ok := store.saved[42]; !ok {
		t.Fatal("pending discovery was cleared even though nothing was saved")
	}
}

func TestPendingDiscoveryRedactsTokens(t *testing.T) {
	s, store, _ := newSelectionFixture(t)
	store.saved[42] = testDiscovery()

	result, ok, err := s.PendingDiscovery(context.Background(), 42)
	if err != nil || !ok {
		t.Fatalf("PendingDiscovery: ok=%v err=%v", ok, err)
	}

	if result.AccessToken != "" {
		t.Fatal("user token leaked into the discovery listing")
	}
	for _, page := range result.Pages {
		if page.AccessToken != "" {
			t.Fatalf("page token leaked for %s", page.PageID)
		}
	}

	// The cached original keeps its tokens for the submit step.
	if store.saved[42].AccessToken != "user-token" {
		t.Fatal("redaction must not mutate the cached discovery")
	}
}

func TestPendingDiscoveryMissing(t *testing.T) {
	s, _, _ := newSelectionFixture(t)

	_, ok, err := s.PendingDiscovery(context.Background(), 42)
	if err != nil {
		t.Fatalf("PendingDiscovery: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false without a pending discovery")
	}
}

func TestResolveSelectionStableOrder(t *testing.T) {
	discovery := testDiscovery()

	pages, linked, err := resolveSelection(discovery, &transfer.SelectionSubmit{
		PageIDs:          []string{"page-2", "page-1"},
		LinkedAccountIDs: []string{"ig-1"},
	})
	if err != nil {
		t.Fatalf("resolveSelection: %v", err)
	}

	if len(pages) != 2 || pages[0].PageID != "page-1" || pages[1].PageID != "page-2" {
		t.Fatalf("pages not in discovery order: %+v", pages)
	}
	if len(linked) != 1 {
		t.Fatalf("got %d linked accounts, want 1", len(linked))
	}
}
