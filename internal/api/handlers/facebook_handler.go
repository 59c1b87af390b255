package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/service"
	"github.com/pagecast/pagecast/internal/transfer"
	"github.com/pagecast/pagecast/pkg/utils"
)

type FacebookHandler struct {
	fb  service.FacebookService
	cn  service.ConnectService
	sel service.SelectionService
	cfg config.Config
}

func NewFacebookHandler(cfg config.Config, fb service.FacebookService, cn service.ConnectService, sel service.SelectionService) *FacebookHandler {
	return &FacebookHandler{fb: fb, cn: cn, sel: sel, cfg: cfg}
}

func (h *FacebookHandler) Connect(c *fiber.Ctx) error {
	userID := GetUserID(c)

	authURL, err := h.fb.GetAuthURL(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start Facebook connection",
		})
	}

	return c.Redirect(authURL)
}

func (h *FacebookHandler) CallbackHandler(c *fiber.Ctx) error {
	userID := GetUserID(c)
	code := c.Query("code")
	state := c.Query("state")

	if reason := c.Query("error_reason"); reason != "" {
		slog.Info(fmt.Sprintf("facebook authorization denied: %s", reason))
		return c.Redirect(h.cfg.FrontendURL+"/connections?error=denied", fiber.StatusTemporaryRedirect)
	}

	err := h.cn.HandleCallback(c.Context(), userID, code, state)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidState) || errors.Is(err, utils.ErrExpiredState) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid or expired state",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Unable to connect Facebook account",
		})
	}

	return c.Redirect(h.cfg.FrontendURL+"/connections/select", fiber.StatusTemporaryRedirect)
}

// Discovery returns the cached page and linked account listing waiting for
// selection. Access tokens never appear in the response.
func (h *FacebookHandler) Discovery(c *fiber.Ctx) error {
	userID := GetUserID(c)

	result, ok, err := h.sel.PendingDiscovery(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get discovery result",
		})
	}

	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No pending discovery. Connect a Facebook account first.",
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *FacebookHandler) Select(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var sel transfer.SelectionSubmit
	if err := c.BodyParser(&sel); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	result, err := h.sel.Submit(c.Context(), userID, &sel)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySelection), errors.Is(err, service.ErrUnknownSelection):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrNoPendingDiscovery):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
