package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pagecast/pagecast/internal/transfer"
	"github.com/pagecast/pagecast/pkg/utils"
)

type stubFacebookService struct {
	exchangeCalls int
	token         *transfer.FacebookToken
	err           error
}

func (s *stubFacebookService) GetAuthURL(ctx context.Context, userID int64) (string, error) {
	return "http://unused", nil
}

func (s *stubFacebookService) ExchangeCodeForToken(ctx context.Context, code string) (*transfer.FacebookToken, error) {
	s.exchangeCalls++
	return s.token, s.err
}

func (s *stubFacebookService) RefreshLongLivedToken(ctx context.Context, accessToken string) (*transfer.FacebookToken, error) {
	return s.token, s.err
}

type stubDiscoveryService struct {
	discoverCalls int
	result        *transfer.DiscoveryResult
	err           error
}

func (s *stubDiscoveryService) Discover(ctx context.Context, token *transfer.FacebookToken) (*transfer.DiscoveryResult, error) {
	s.discoverCalls++
	return s.result, s.err
}

type fakeDiscoveryStore struct {
	saved   map[int64]*transfer.DiscoveryResult
	saveErr error
}

func newFakeDiscoveryStore() *fakeDiscoveryStore {
	return &fakeDiscoveryStore{saved: make(map[int64]*transfer.DiscoveryResult)}
}

func (s *fakeDiscoveryStore) Save(ctx context.Context, userID int64, result *transfer.DiscoveryResult) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[userID] = result
	return nil
}

func (s *fakeDiscoveryStore) Get(ctx context.Context, userID int64) (*transfer.DiscoveryResult, bool, error) {
	result, ok := s.saved[userID]
	return result, ok, nil
}

func (s *fakeDiscoveryStore) Delete(ctx context.Context, userID int64) error {
	delete(s.saved, userID)
	return nil
}

func TestHandleCallbackSavesDiscovery(t *testing.T) {
	fb := &stubFacebookService{token: testToken()}
	disc := &stubDiscoveryService{result: &transfer.DiscoveryResult{AccountID: "fb-user-1"}}
	store := newFakeDiscoveryStore()

	s := NewConnectService(fb, disc, store)

	state, err := utils.MintState(42)
	if err != nil {
		t.Fatalf("MintState: %v", err)
	}

	if err := s.HandleCallback(context.Background(), 42, "auth-code", state); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if fb.exchangeCalls != 1 || disc.discoverCalls != 1 {
		t.Fatalf("got %d exchange and %d discover calls, want 1 each", fb.exchangeCalls, disc.discoverCalls)
	}
	if store.saved[42] == nil {
		t.Fatal("discovery result was not saved")
	}
}

func TestHandleCallbackRejectsForgedStateBeforeNetwork(t *testing.T) {
	fb := &stubFacebookService{token: testToken()}
	disc := &stubDiscoveryService{result: &transfer.DiscoveryResult{}}
	store := newFakeDiscoveryStore()

	s := NewConnectService(fb, disc, store)

	// State minted for a different user.
	state, err := utils.MintState(7)
	if err != nil {
		t.Fatalf("MintState: %v", err)
	}

	err = s.HandleCallback(context.Background(), 42, "auth-code", state)
	if !errors.Is(err, utils.ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}

	if fb.exchangeCalls != 0 {
		t.Fatalf("token exchange ran %d times on a forged state, want 0", fb.exchangeCalls)
	}
	if disc.discoverCalls != 0 {
		t.Fatalf("discovery ran %d times on a forged state, want 0", disc.discoverCalls)
	}
	if len(store.saved) != 0 {
		t.Fatal("a forged state must not write to the store")
	}
}

func TestHandleCallbackEmptyParams(t *testing.T) {
	fb := &stubFacebookService{token: testToken()}
	s := NewConnectService(fb, &stubDiscoveryService{}, newFakeDiscoveryStore())

	if err := s.HandleCallback(context.Background(), 42, "", "some-state"); err == nil {
		t.Fatal("expected error for empty code")
	}
	if err := s.HandleCallback(context.Background(), 42, "auth-code", ""); err == nil {
		t.Fatal("expected error for empty state")
	}
	if fb.exchangeCalls != 0 {
		t.Fatalf("token exchange ran %d times, want 0", fb.exchangeCalls)
	}
}

func TestHandleCallbackExchangeFailure(t *testing.T) {
	fb := &stubFacebookService{err: errors.New("exchange failed")}
	disc := &stubDiscoveryService{}
	store := newFakeDiscoveryStore()

	s := NewConnectService(fb, disc, store)

	state, err := utils.MintState(42)
	if err != nil {
		t.Fatalf("MintState: %v", err)
	}

	if err := s.HandleCallback(context.Background(), 42, "auth-code", state); err == nil {
		t.Fatal("expected exchange failure to propagate")
	}
	if disc.discoverCalls != 0 {
		t.Fatal("discovery must not run after a failed exchange")
	}
	if len(store.saved) != 0 {
		t.Fatal("nothing should be saved after a failed exchange")
	}
}
