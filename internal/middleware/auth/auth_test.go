package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/session"
)

type resolverFunc func(ctx context.Context, token string) (*models.User, error)

func (f resolverFunc) GetUser(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

var errDBDown = errors.New("connection refused")

func fakeResolver(ctx context.Context, token string) (*models.User, error) {
	switch token {
	case "admin":
		return &models.User{ID: uuid.New(), IsAdmin: true}, nil
	case "user":
		return &models.User{ID: uuid.New()}, nil
	case "outage":
		return nil, fmt.Errorf("session lookup: %w", errDBDown)
	default:
		return nil, fmt.Errorf("%w: token is malformed", session.ErrUnauthorized)
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/admin", ok, Bearer(resolverFunc(fakeResolver), http.StatusForbidden), RequireAdmin)
	e.GET("/me", ok, Bearer(resolverFunc(fakeResolver), http.StatusUnauthorized))
	return e
}

func TestBearer_Statuses(t *testing.T) {
	e := newEcho()

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "admin missing token", path: "/admin", want: http.StatusUnauthorized},
		{name: "admin invalid token", path: "/admin", header: "Bearer garbage", want: http.StatusForbidden},
		{name: "admin non-admin", path: "/admin", header: "Bearer user", want: http.StatusForbidden},
		{name: "admin ok", path: "/admin", header: "Bearer admin", want: http.StatusOK},
		{name: "admin lookup failure", path: "/admin", header: "Bearer outage", want: http.StatusInternalServerError},
		{name: "me missing token", path: "/me", want: http.StatusUnauthorized},
		{name: "me invalid token", path: "/me", header: "Bearer garbage", want: http.StatusUnauthorized},
		{name: "me lookup failure", path: "/me", header: "Bearer outage", want: http.StatusInternalServerError},
		{name: "me ok", path: "/me", header: "Bearer user", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBearer_LookupFailureCarriesMessage(t *testing.T) {
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer outage")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
