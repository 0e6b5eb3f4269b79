package httpserver

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pcshop/internal/catalog"
	"github.com/Skotchmaster/pcshop/internal/checkout"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/middleware/auth"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/orders"
	"github.com/Skotchmaster/pcshop/internal/query"
	"github.com/Skotchmaster/pcshop/internal/util"
)

type OrderHTTP struct {
	Svc      *orders.OrderService
	Checkout *checkout.Service
	Catalog  *catalog.CatalogService
}

type statusRequest struct {
	Status string `json:"status"`
}

type buildRequest struct {
	ComponentIDs []string `json:"component_ids"`
}

// CreateOrder is the trusted order path: prices come from the catalog.
func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.create_order")

	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}

	var req orders.CreateInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.CreateOrder(ctx, user.ID, req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, map[string]any{"orderId": order.ID})
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.my_orders")

	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, err := h.Svc.ListForUser(ctx, user.ID, limit, offset)
	if err != nil {
		return fail(l, "my_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *OrderHTTP) MyOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.my_order")

	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("my_order_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	order, err := h.Svc.GetForUser(ctx, user.ID, id)
	if err != nil {
		return fail(l, "my_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CreateBuild(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.create_build")

	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}

	var req buildRequest
	if err := c.Bind(&req); err != nil || len(req.ComponentIDs) == 0 {
		l.Warn("create_build_error", "status", 400, "reason", "component_ids required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "component_ids required")
	}

	components, err := h.Catalog.ProductsByIDs(ctx, req.ComponentIDs)
	if err != nil {
		return fail(l, "create_build_error", err)
	}
	build, err := h.Checkout.CreateBuild(ctx, user.ID, components)
	if err != nil {
		return fail(l, "create_build_error", err)
	}

	l.Info("create_build_success", "build_id", build.ID)
	return c.JSON(http.StatusCreated, build)
}

// ListOrders takes the generic query parameters plus a plain status=<name>.
func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list_orders")

	params := url.Values{}
	for k, v := range c.QueryParams() {
		params[k] = v
	}
	status := params.Get("status")
	params.Del("status")

	q, err := query.Parse(params)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	if q.Limit == 0 {
		q.Limit = util.DefaultPageSize
	}

	total, items, err := h.Svc.ListAll(ctx, q, status)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	if items == nil {
		items = []models.Order{}
	}
	// Bare array; the total travels in X-Total-Count.
	c.Response().Header().Set(headerTotalCount, strconv.FormatInt(total, 10))
	return c.JSON(http.StatusOK, items)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.update_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdateStatus(ctx, id, req.Status); err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", id, "to", req.Status)
	return c.NoContent(http.StatusNoContent)
}
