package auth

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/session"
)

const (
	userKey      = "user"
	attemptedKey = "auth_token_seen"
	resolveKey   = "auth_resolve_error"
)

// Resolver turns a bearer token into the profile of its owner.
type Resolver interface {
	GetUser(ctx context.Context, token string) (*models.User, error)
}

// Bearer requires an "Authorization: Bearer <token>" header. A missing header
// is always 401; a token the resolver rejects with session.ErrUnauthorized gets
// invalidStatus, any other resolver failure is a 500.
func Bearer(r Resolver, invalidStatus int) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  userKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			c.Set(attemptedKey, true)
			user, err := r.GetUser(c.Request().Context(), token)
			if err != nil {
				c.Set(resolveKey, err)
			}
			return user, err
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("mw", "auth.bearer")
			if seen, _ := c.Get(attemptedKey).(bool); !seen {
				l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			if rerr, _ := c.Get(resolveKey).(error); rerr != nil && !errors.Is(rerr, session.ErrUnauthorized) {
				l.Error("auth_error", "status", http.StatusInternalServerError, "reason", "token lookup failed", "error", rerr)
				return echo.NewHTTPError(http.StatusInternalServerError, rerr.Error())
			}
			l.Warn("auth_error", "status", invalidStatus, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(invalidStatus, "invalid token")
		},
	})
}

// RequireAdmin runs after Bearer and checks the caller's profile flag.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			logging.FromContext(c.Request().Context()).Warn("auth_error", "mw", "auth.require_admin", "status", http.StatusForbidden, "reason", "not an admin")
			return echo.NewHTTPError(http.StatusForbidden, "Admin access denied")
		}
		return next(c)
	}
}

func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(userKey).(*models.User)
	return user, ok && user != nil
}
