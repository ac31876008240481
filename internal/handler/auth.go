package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adboard/adboard/internal/config"
	"github.com/adboard/adboard/internal/middleware"
	"github.com/adboard/adboard/internal/model"
	"github.com/adboard/adboard/internal/queue"
	"github.com/adboard/adboard/internal/repository"
	mail_publisher "github.com/adboard/adboard/internal/service"
	"github.com/adboard/adboard/internal/token"
	"github.com/adboard/adboard/internal/utils"
)

// AuthHandler bundles dependencies for the auth and password-reset
// endpoints.  PublishReset is a field so tests can observe or suppress
// the broker call.
type AuthHandler struct {
	Cfg          config.Config
	Users        *repository.UserRepo
	Resets       *token.Generator
	PublishReset func(context.Context, queue.PasswordResetRequested) error
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{
		Cfg:          cfg,
		Users:        users,
		Resets:       token.NewGenerator(cfg.SecretKey, cfg.ResetTimeout),
		PublishReset: mail_publisher.PublishPasswordReset,
	}
}

// ----- DTOs -----

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

type registerResp struct {
	User    userPart `json:"user"`
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
}

// Register creates a user and returns a token pair immediately, so the
// client is logged in right after signing up.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name/last_name required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case "":
		role = model.RoleUser
	case model.RoleUser, model.RoleAdmin:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	u := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		Avatar:       strings.TrimSpace(req.Avatar),
		IsActive:     true,
		// Staff and superuser are never client-settable; role is profile
		// metadata only.
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	access, refresh, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, registerResp{
		User:    projectUser(u),
		Access:  access,
		Refresh: refresh,
	})
}

// Login verifies credentials and returns a fresh token pair.  Unknown
// email and wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, refresh, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	// Recording the login also invalidates reset tokens minted before it,
	// since last_login participates in their derivation.
	if err := h.Users.UpdateLastLogin(ctx, u.ID, time.Now()); err != nil {
		log.Printf("auth: update last_login for user %d: %v", u.ID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access": access, "refresh": refresh})
}

// Refresh exchanges a valid refresh token for a new access token.  The
// refresh token itself is not rotated; it stays usable until its expiry.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Refresh) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh required"})
	}

	id, err := utils.ParseToken(h.Cfg.SecretKey, strings.TrimSpace(req.Refresh), utils.TokenTypeRefresh)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	// Role and staff bits are re-read from the store so the new access
	// token reflects the current account state, not the one at login.
	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}

	access, err := utils.NewAccessToken(h.Cfg.SecretKey, u.ID, u.Role, u.IsStaff, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

// Profile returns the authenticated user's public fields.
func (h *AuthHandler) Profile(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, projectUser(u))
}

func (h *AuthHandler) issuePair(u *model.User) (access, refresh string, err error) {
	access, err = utils.NewAccessToken(h.Cfg.SecretKey, u.ID, u.Role, u.IsStaff, h.Cfg.AccessTTLMin)
	if err != nil {
		return "", "", err
	}
	refresh, err = utils.NewRefreshToken(h.Cfg.SecretKey, u.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
