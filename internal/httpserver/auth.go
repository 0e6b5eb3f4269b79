package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/middleware/auth"
	"github.com/Skotchmaster/pcshop/internal/session"
)

type AuthHTTP struct {
	Provider *session.Provider
}

type signUpRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.sign_up")

	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("sign_up_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Provider.SignUp(ctx, req.Email, req.Password, session.Profile{FirstName: req.FirstName, LastName: req.LastName})
	if err != nil {
		return fail(l, "sign_up_error", err)
	}

	l.Info("sign_up_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) SignIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.sign_in")

	var req signInRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("sign_in_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "sign_in_error", err)
	}

	l.Info("sign_in_success", "user_id", sess.User.ID)
	return c.JSON(http.StatusOK, sess)
}

func (h *AuthHTTP) SignOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.sign_out")

	token := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if err := h.Provider.SignOut(ctx, token); err != nil {
		return fail(l, "sign_out_error", err)
	}

	l.Info("sign_out_success")
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) User(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return c.JSON(http.StatusOK, user)
}
