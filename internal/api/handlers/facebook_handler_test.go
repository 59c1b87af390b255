package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/service"
	"github.com/pagecast/pagecast/internal/transfer"
)

type stubSelectionService struct {
	submitErr error
}

func (s *stubSelectionService) PendingDiscovery(ctx context.Context, userID int64) (*transfer.DiscoveryResult, bool, error) {
	return nil, false, nil
}

func (s *stubSelectionService) Submit(ctx context.Context, userID int64, sel *transfer.SelectionSubmit) (*transfer.SelectionResult, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &transfer.SelectionResult{ConnectionID: 1, PagesSaved: 1}, nil
}

func newSelectTestApp(sel service.SelectionService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	h := NewFacebookHandler(config.Config{}, nil, nil, sel)
	app.Post("/api/facebook/select", h.Select)
	return app
}

func TestSelectStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, fiber.StatusOK},
		{"unknown ids", fmt.Errorf("%w: page page-9", service.ErrUnknownSelection), fiber.StatusBadRequest},
		{"empty selection", service.ErrEmptySelection, fiber.StatusBadRequest},
		{"no pending discovery", service.ErrNoPendingDiscovery, fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newSelectTestApp(&stubSelectionService{submitErr: tc.err})

			req := httptest.NewRequest("POST", "/api/facebook/select", strings.NewReader(`{"page_ids":["page-1"]}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.want {
				t.Fatalf("got status %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}
