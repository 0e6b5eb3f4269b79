package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/middleware/auth"
	"github.com/Skotchmaster/pcshop/internal/users"
)

type UserHTTP struct {
	Svc *users.UserService
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list_users")

	items, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	if items == nil {
		items = []users.Account{}
	}
	c.Response().Header().Set(headerTotalCount, strconv.Itoa(len(items)))
	return c.JSON(http.StatusOK, items)
}

func (h *UserHTTP) ToggleAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.toggle_admin")

	caller, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("toggle_admin_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	isAdmin, err := h.Svc.ToggleAdmin(ctx, caller.ID, id)
	if err != nil {
		return fail(l, "toggle_admin_error", err)
	}

	l.Info("toggle_admin_success", "user_id", id, "is_admin", isAdmin)
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_profile")

	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}

	var req users.ProfileInput
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	acc, err := h.Svc.UpdateProfile(ctx, user.ID, req)
	if err != nil {
		return fail(l, "update_profile_error", err)
	}
	return c.JSON(http.StatusOK, acc)
}
