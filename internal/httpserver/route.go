package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/middleware/auth"
)

const headerTotalCount = "X-Total-Count"

type Deps struct {
	DB *gorm.DB

	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	UserHandler    *UserHTTP

	Resolver auth.Resolver
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		sqlDB, err := d.DB.DB()
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	signedIn := auth.Bearer(d.Resolver, http.StatusUnauthorized)
	adminOnly := []echo.MiddlewareFunc{auth.Bearer(d.Resolver, http.StatusForbidden), auth.RequireAdmin}

	authG := e.Group("/auth")
	authG.POST("/signup", d.AuthHandler.SignUp)
	authG.POST("/signin", d.AuthHandler.SignIn)
	authG.POST("/signout", d.AuthHandler.SignOut, signedIn)
	authG.GET("/user", d.AuthHandler.User, signedIn)

	catalog := e.Group("/catalog")
	catalog.GET("/products", d.CatalogHandler.ListProducts)
	catalog.GET("/products/:id", d.CatalogHandler.GetProduct)
	catalog.GET("/categories", d.CatalogHandler.ListCategories)
	catalog.GET("/search", d.CatalogHandler.Search)
	catalog.GET("/builder/:slot", d.CatalogHandler.SlotCandidates)

	e.POST("/orders", d.OrderHandler.CreateOrder, signedIn)
	e.GET("/orders", d.OrderHandler.MyOrders, signedIn)
	e.GET("/orders/:id", d.OrderHandler.MyOrder, signedIn)
	e.POST("/builds", d.OrderHandler.CreateBuild, signedIn)
	e.PATCH("/profile", d.UserHandler.UpdateProfile, signedIn)

	admin := e.Group("/admin", adminOnly...)

	admin.GET("/users", d.UserHandler.ListUsers)
	admin.POST("/users/:id/toggle-admin", d.UserHandler.ToggleAdmin)

	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)

	admin.GET("/categories", d.CatalogHandler.ListCategories)
	admin.POST("/categories", d.CatalogHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CatalogHandler.UpdateCategory)
	admin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)
	admin.DELETE("/categories", d.CatalogHandler.BulkDeleteCategories)

	admin.GET("/products", d.CatalogHandler.ListProducts)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.GET("/products/export", d.CatalogHandler.ExportProducts)
	admin.PUT("/products/batch", d.CatalogHandler.BatchUpdateProducts)
	admin.POST("/products/batch", d.CatalogHandler.BatchCreateProducts)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)
	admin.DELETE("/products", d.CatalogHandler.BulkDeleteProducts)
}
