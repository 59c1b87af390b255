package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	config "github.com/pagecast/pagecast/configs"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		FacebookAppID:       "app-id",
		FacebookAppSecret:   "app-secret",
		FacebookRedirectURI: "http://localhost:3000/auth/facebook/callback",
		GraphAPIBaseURL:     baseURL,
		GraphAPIVersion:     "v21.0",
		SecretKey:           "0123456789abcdef0123456789abcdef",
	}
}

func TestGetAuthURLCarriesUserState(t *testing.T) {
	s := NewFacebookService(testConfig("http://unused"))

	authURL, err := s.GetAuthURL(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetAuthURL: %v", err)
	}

	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parsing auth url: %v", err)
	}

	state := parsed.Query().Get("state")
	if !strings.HasPrefix(state, "42-") {
		t.Fatalf("state %q does not start with the user id", state)
	}
	if parsed.Query().Get("scope") != FacebookScopes {
		t.Fatalf("unexpected scope %q", parsed.Query().Get("scope"))
	}
}

func TestExchangeCodeForToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v21.0/oauth/access_token" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		if q.Get("grant_type") == "fb_exchange_token" {
			if q.Get("fb_exchange_token") != "short-token" {
				t.Errorf("long-lived leg got token %q", q.Get("fb_exchange_token"))
			}
			w.Write([]byte(`{"access_token":"long-token","token_type":"bearer","expires_in":5184000}`))
			return
		}

		if q.Get("code") != "auth-code" {
			t.Errorf("short-lived leg got code %q", q.Get("code"))
		}
		w.Write([]byte(`{"access_token":"short-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	s := NewFacebookService(testConfig(ts.URL))

	token, err := s.ExchangeCodeForToken(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCodeForToken: %v", err)
	}

	if token.AccessToken != "long-token" {
		t.Fatalf("got token %q, want the long-lived token", token.AccessToken)
	}

	wantExpiry := time.Now().Add(5184000 * time.Second)
	if token.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || token.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("unexpected expiry %v", token.ExpiresAt)
	}
}

func TestExchangeCodeForTokenLongLivedFailureIsHard(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") == "fb_exchange_token" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"invalid token"}}`))
			return
		}
		w.Write([]byte(`{"access_token":"short-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	s := NewFacebookService(testConfig(ts.URL))

	token, err := s.ExchangeCodeForToken(context.Background(), "auth-code")
	if err == nil {
		t.Fatal("expected a hard error when the long-lived exchange fails")
	}
	if token != nil {
		t.Fatalf("expected no token, got %+v", token)
	}
	if !strings.Contains(err.Error(), "long-lived") {
		t.Fatalf("error %q does not name the failing leg", err)
	}
}

func TestExchangeCodeForTokenAssumesDefaultExpiry(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") == "fb_exchange_token" {
			w.Write([]byte(`{"access_token":"long-token","token_type":"bearer"}`))
			return
		}
		w.Write([]byte(`{"access_token":"short-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	s := NewFacebookService(testConfig(ts.URL))

	token, err := s.ExchangeCodeForToken(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCodeForToken: %v", err)
	}

	wantExpiry := time.Now().Add(60 * 24 * time.Hour)
	if token.ExpiresAt.Before(wantExpiry.Add(-time.Hour)) || token.ExpiresAt.After(wantExpiry.Add(time.Hour)) {
		t.Fatalf("expected ~60 day default expiry, got %v", token.ExpiresAt)
	}
}

func TestExchangeCodeForTokenEmptyCode(t *testing.T) {
	s := NewFacebookService(testConfig("http://unused"))

	if _, err := s.ExchangeCodeForToken(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty code")
	}
}
