package handler

import (
	"context"  // provides context with cancellation for DB calls
	"net/http" // HTTP status codes and primitives
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/jsteinbach/mineral-catalog/internal/config"     // app configuration
	"github.com/jsteinbach/mineral-catalog/internal/repository" // DB repositories
	"github.com/jsteinbach/mineral-catalog/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for the admin login endpoints.  The
// system has exactly one administrative identity, so there is no user table
// behind this: just a single stored credential and short-lived session
// tokens.
type AuthHandler struct {
	Cfg   config.Config
	Admin *repository.AdminRepo
}

func NewAuthHandler(cfg config.Config, a *repository.AdminRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Admin: a}
}

// ----- DTOs -----

type loginReq struct {
	Password string `json:"password"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
type sessionResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login verifies the admin password and returns a session token.  Failed
// attempts are indistinguishable from a missing credential so the endpoint
// leaks nothing; brute force is additionally throttled by the rate limit
// middleware in front of this handler.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := h.Admin.GetHash(ctx)
	if err != nil {
		if err == repository.ErrNoCredential {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(hash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	session, err := utils.NewSessionToken(h.Cfg.SessionSecret, h.Cfg.SessionTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.JSON(http.StatusOK, sessionResp{Token: session.Token, Expires: session.Exp})
}

// ChangePassword rotates the admin credential.  It runs behind AdminAuth
// and still demands the current password, so a leaked session token alone
// cannot take over the account.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CurrentPassword == "" || len(req.NewPassword) < 8 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "new password must have at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := h.Admin.GetHash(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(hash, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	newHash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	if err := h.Admin.SetHash(ctx, newHash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	publishChange("credential", "updated", 1, "", "")
	return c.NoContent(http.StatusNoContent)
}
