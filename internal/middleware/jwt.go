package middleware // middleware contains reusable HTTP middleware for the API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adboard/adboard/internal/permission"
	"github.com/adboard/adboard/internal/utils"
)

// Context keys populated by JWTAuth.  Handlers read the actor for
// permission checks and the role for profile-style projections.
const (
	ContextActor = "actor" // permission.Actor
	ContextRole  = "role"  // string
)

// JWTAuth validates a Bearer access token and injects the authenticated
// actor into the request context.  Refresh tokens are rejected here: only
// tokens with the access type pass.  Wrap protected routes with this so
// handlers can call ActorFrom(c).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			id, err := utils.ParseToken(secret, raw, utils.TokenTypeAccess)
			if err != nil {
				// Expired, forged and malformed all look the same to the
				// client; only the server may know the difference.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextActor, permission.Actor{ID: id.UserID, IsStaff: id.IsStaff})
			c.Set(ContextRole, id.Role)
			return next(c)
		}
	}
}

// ActorFrom extracts the authenticated actor stored by JWTAuth.
func ActorFrom(c echo.Context) (permission.Actor, bool) {
	a, ok := c.Get(ContextActor).(permission.Actor)
	return a, ok
}
