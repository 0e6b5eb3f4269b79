package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/pcshop/internal/catalog"
	"github.com/Skotchmaster/pcshop/internal/checkout"
	"github.com/Skotchmaster/pcshop/internal/config"
	pkgdb "github.com/Skotchmaster/pcshop/internal/db"
	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/httpserver"
	"github.com/Skotchmaster/pcshop/internal/logging"
	loggingmw "github.com/Skotchmaster/pcshop/internal/middleware/logging"
	"github.com/Skotchmaster/pcshop/internal/orders"
	"github.com/Skotchmaster/pcshop/internal/payment"
	"github.com/Skotchmaster/pcshop/internal/repo"
	"github.com/Skotchmaster/pcshop/internal/search"
	"github.com/Skotchmaster/pcshop/internal/session"
	"github.com/Skotchmaster/pcshop/internal/users"
)

func main() {
	cfg := config.Load()
	config.MustRequire(
		config.Str("DATABASE_URL", cfg.DatabaseURL),
		config.Bytes("JWT_SECRET", cfg.JWTSecret),
		config.Bytes("PAYMENT_TOKEN_SECRET", cfg.PaymentTokenSecret),
	)

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL, pkgdb.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	cancel()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
	}

	r := &repo.GormRepo{DB: db}
	catalogSvc := &catalog.CatalogService{Repo: r, Events: publisher}

	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		index, err := search.NewClient(esCtx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		esCancel()
		if err != nil {
			logger.Warn("search_index_disabled", "error", err)
		} else {
			catalogSvc.Index = index
		}
	}

	provider := &session.Provider{Repo: r, Secret: cfg.JWTSecret, TTL: cfg.SessionTTL, Events: publisher}
	tokenizer := payment.Tokenizer{Secret: cfg.PaymentTokenSecret}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		ExposeHeaders: []string{"X-Total-Count"},
	}))

	httpserver.Register(e, &httpserver.Deps{
		DB:             db,
		AuthHandler:    &httpserver.AuthHTTP{Provider: provider},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		OrderHandler: &httpserver.OrderHTTP{
			Svc:      &orders.OrderService{Repo: r, Payments: tokenizer, Events: publisher},
			Checkout: &checkout.Service{Orders: r, Builds: r, Payments: tokenizer, Events: publisher},
			Catalog:  catalogSvc,
		},
		UserHandler: &httpserver.UserHTTP{Svc: &users.UserService{Repo: r, Events: publisher}},
		Resolver:    provider,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("admin api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = publisher.Close()
	_ = pkgdb.Close(db)

	logger.Info("admin api stopped")
}
