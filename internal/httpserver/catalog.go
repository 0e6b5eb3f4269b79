package httpserver

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pcshop/internal/batch"
	"github.com/Skotchmaster/pcshop/internal/builder"
	"github.com/Skotchmaster/pcshop/internal/catalog"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/query"
	"github.com/Skotchmaster/pcshop/internal/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CatalogHTTP struct {
	Svc *catalog.CatalogService
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func pageOf(q *query.Query) int {
	if q.Limit <= 0 {
		return 1
	}
	return q.Offset/q.Limit + 1
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	q, err := query.Parse(c.QueryParams())
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	if q.Limit == 0 {
		q.Limit = util.DefaultPageSize
	}

	total, items, err := h.Svc.ListProducts(ctx, q)
	if err != nil {
		return fail(l, "list_products_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(pageOf(q), q.Limit, q.Offset, total),
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, limit, offset, total),
	})
}

func (h *CatalogHTTP) SlotCandidates(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.slot_candidates")

	slot, err := builder.ParseSlot(c.Param("slot"))
	if err != nil {
		l.Warn("slot_candidates_error", "status", 400, "reason", "unknown slot", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	q, err := query.Parse(c.QueryParams())
	if err != nil {
		return fail(l, "slot_candidates_error", err)
	}

	items, err := h.Svc.SlotCandidates(ctx, slot, q)
	if err != nil {
		return fail(l, "slot_candidates_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return fail(l, "patch_product_error", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_product_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) BulkDeleteProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.bulk_delete_products")

	var req idsRequest
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		l.Warn("bulk_delete_products_error", "status", 400, "reason", "ids required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "ids required")
	}

	return batchResponse(c, l, "bulk_delete_products", h.Svc.BulkDeleteProducts(ctx, req.IDs), http.StatusNoContent)
}

// BatchUpdateProducts answers 204 when every row landed and 207 with the
// per-row results otherwise.
func (h *CatalogHTTP) BatchUpdateProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.batch_update_products")

	var rows []catalog.ProductPatch
	if err := c.Bind(&rows); err != nil || len(rows) == 0 {
		l.Warn("batch_update_products_error", "status", 400, "reason", "array of products required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "array of products required")
	}

	return batchResponse(c, l, "batch_update_products", h.Svc.BatchUpdateProducts(ctx, rows), http.StatusNoContent)
}

func (h *CatalogHTTP) BatchCreateProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.batch_create_products")

	var rows []catalog.ProductInput
	if err := c.Bind(&rows); err != nil || len(rows) == 0 {
		l.Warn("batch_create_products_error", "status", 400, "reason", "array of products required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "array of products required")
	}

	return batchResponse(c, l, "batch_create_products", h.Svc.BatchCreateProducts(ctx, rows), http.StatusCreated)
}

func (h *CatalogHTTP) ExportProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.export_products")

	var buf bytes.Buffer
	if err := h.Svc.ExportProducts(ctx, &buf); err != nil {
		return fail(l, "export_products_error", err)
	}

	name := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	q, err := query.Parse(c.QueryParams())
	if err != nil {
		return fail(l, "list_categories_error", err)
	}

	items, err := h.Svc.ListCategories(ctx, q)
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req catalog.CategoryInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_category_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category_error", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_category")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_category_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req catalog.CategoryInput
	if err := c.Bind(&req); err != nil {
		l.Warn("update_category_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_category_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "delete_category_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) BulkDeleteCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.bulk_delete_categories")

	var req idsRequest
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		l.Warn("bulk_delete_categories_error", "status", 400, "reason", "ids required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "ids required")
	}

	return batchResponse(c, l, "bulk_delete_categories", h.Svc.BulkDeleteCategories(ctx, req.IDs), http.StatusNoContent)
}

// batchResponse writes okStatus when every row succeeded and 207 otherwise.
func batchResponse(c echo.Context, l *slog.Logger, op string, res batch.Results, okStatus int) error {
	if res.AllOK() {
		l.Info(op+"_success", "rows", len(res))
		if okStatus == http.StatusNoContent {
			return c.NoContent(okStatus)
		}
		return c.JSON(okStatus, map[string]any{"results": res})
	}

	l.Warn(op+"_partial", "status", http.StatusMultiStatus, "rows", len(res), "failed", res.Failed())
	return c.JSON(http.StatusMultiStatus, map[string]any{"results": res})
}
