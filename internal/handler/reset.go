package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adboard/adboard/internal/queue"
	"github.com/adboard/adboard/internal/repository"
	"github.com/adboard/adboard/internal/token"
	"github.com/adboard/adboard/internal/utils"
)

// Two-step password reset.  Step one emails a link carrying an encoded
// user id and a state-bound token; step two validates both and rewrites
// the password.  No reset state is stored server side: the token goes
// stale on its own once the password (or last login) changes.

const minPasswordLen = 8

type resetRequestReq struct {
	Email string `json:"email"`
}

type resetConfirmReq struct {
	UID         string `json:"uid"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetRequest handles POST /reset_password/.  A known email gets a reset
// link by mail; an unknown one gets a 404.  The 404 confirms account
// existence to anyone asking, which is a documented weakness of this API
// kept for compatibility.
func (h *AuthHandler) ResetRequest(c echo.Context) error {
	var req resetRequestReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	uid := token.EncodeUID(u.ID)
	tok := h.Resets.Make(u)
	resetURL := fmt.Sprintf("%s/reset_password_confirm/%s/%s/",
		strings.TrimRight(h.Cfg.FrontendURL, "/"), uid, tok)

	// Mail dispatch is best effort: a broker failure is logged but never
	// turns the accepted request into an error response.
	ev := queue.PasswordResetRequested{
		UserID:      u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		ResetURL:    resetURL,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.PublishReset(ctx, ev); err != nil {
		log.Printf("reset: publish mail event for user %d: %v", u.ID, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password reset link sent"})
}

// ResetConfirm handles POST /reset_password_confirm/.  Validation order:
// uid, then token, then password policy.  Nothing is mutated until all
// three pass.  Persisting the new hash is the very act that invalidates
// every token issued before it.
func (h *AuthHandler) ResetConfirm(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	id, err := token.DecodeUID(strings.TrimSpace(req.UID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid uid"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid uid"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if !h.Resets.Check(u, strings.TrimSpace(req.Token)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	if len(req.NewPassword) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	// UpdatePassword commits before returning, so the success response is
	// only sent once the new password is durably visible.
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}
