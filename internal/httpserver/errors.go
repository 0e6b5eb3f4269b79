package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pcshop/internal/catalog"
	"github.com/Skotchmaster/pcshop/internal/checkout"
	"github.com/Skotchmaster/pcshop/internal/orders"
	"github.com/Skotchmaster/pcshop/internal/query"
	"github.com/Skotchmaster/pcshop/internal/session"
	"github.com/Skotchmaster/pcshop/internal/users"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, catalog.ErrValidation),
		errors.Is(err, orders.ErrValidation),
		errors.Is(err, users.ErrValidation),
		errors.Is(err, session.ErrValidation),
		errors.Is(err, query.ErrInvalid),
		errors.Is(err, checkout.ErrInvalidLine),
		errors.Is(err, checkout.ErrInvalidDetails),
		errors.Is(err, checkout.ErrIncompleteBuild),
		errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrConflict),
		errors.Is(err, orders.ErrConflict),
		errors.Is(err, users.ErrSelfDemotion),
		errors.Is(err, session.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail logs err under event and converts it to the matching HTTP error. The
// message is passed through, 500s included.
func fail(l *slog.Logger, event string, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "error", err)
	}
	return echo.NewHTTPError(status, err.Error())
}
