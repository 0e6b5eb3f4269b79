// Command storefront is the customer side of the shop: it browses the catalog,
// keeps a cart and a PC build on local disk and places orders.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/builder"
	"github.com/Skotchmaster/pcshop/internal/cart"
	"github.com/Skotchmaster/pcshop/internal/catalog"
	"github.com/Skotchmaster/pcshop/internal/checkout"
	"github.com/Skotchmaster/pcshop/internal/config"
	pkgdb "github.com/Skotchmaster/pcshop/internal/db"
	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/localstore"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/orders"
	"github.com/Skotchmaster/pcshop/internal/payment"
	"github.com/Skotchmaster/pcshop/internal/repo"
	"github.com/Skotchmaster/pcshop/internal/session"
	"github.com/Skotchmaster/pcshop/internal/users"
)

var errNotSignedIn = errors.New("not signed in, run `storefront login` first")

// app is the composition root. Local stores are always available; the
// database side is opened on first use.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer

	storage localstore.Storage
	cart    *cart.Store
	build   *builder.Store
	prefs   *localstore.PreferenceStore

	db       *gorm.DB
	events   events.Publisher
	client   *session.Client
	catalog  *catalog.CatalogService
	orders   *orders.OrderService
	users    *users.UserService
	checkout *checkout.Service
}

func newApp(cfg config.Config, out io.Writer) (*app, error) {
	logger := logging.NewText(os.Stderr, cfg.LogLevel).With("service", "storefront")
	slog.SetDefault(logger)

	storage, err := localstore.NewDir(cfg.StorefrontHome)
	if err != nil {
		return nil, err
	}
	c, err := cart.New(storage)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	c.Logger = logger
	b, err := builder.New(storage)
	if err != nil {
		return nil, fmt.Errorf("load build: %w", err)
	}
	prefs, err := localstore.NewPreferenceStore(storage)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		storage: storage,
		cart:    c,
		build:   b,
		prefs:   prefs,
	}, nil
}

// connect opens the database and restores the stored session.
func (a *app) connect(ctx context.Context) error {
	if a.db != nil {
		return nil
	}
	err := config.Require(
		config.Str("DATABASE_URL", a.cfg.DatabaseURL),
		config.Bytes("JWT_SECRET", a.cfg.JWTSecret),
	)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	// one command at a time
	db, err := pkgdb.Open(openCtx, a.cfg.DatabaseURL, pkgdb.Pool{MaxOpenConns: 2})
	if err != nil {
		return err
	}
	a.db = db

	a.events = events.Nop{}
	if len(a.cfg.KafkaBrokers) > 0 {
		a.events = events.NewProducer(a.cfg.KafkaBrokers)
	}

	r := &repo.GormRepo{DB: db}
	tokenizer := payment.Tokenizer{Secret: a.cfg.PaymentTokenSecret}
	provider := &session.Provider{Repo: r, Secret: a.cfg.JWTSecret, TTL: a.cfg.SessionTTL, Events: a.events}

	a.client = session.NewClient(provider, a.storage)
	a.catalog = &catalog.CatalogService{Repo: r, Events: a.events}
	a.orders = &orders.OrderService{Repo: r, Payments: tokenizer, Events: a.events}
	a.users = &users.UserService{Repo: r, Events: a.events}
	a.checkout = &checkout.Service{Orders: r, Builds: r, Payments: tokenizer, Events: a.events}

	a.client.Subscribe(func(ev session.Event, s *session.Session) {
		if s != nil {
			a.logger.Debug("auth_state_changed", "event", ev, "user_id", s.User.ID)
			return
		}
		a.logger.Debug("auth_state_changed", "event", ev)
	})
	_, err = a.client.Restore(ctx)
	return err
}

func (a *app) currentSession(ctx context.Context) (*session.Session, error) {
	if err := a.connect(ctx); err != nil {
		return nil, err
	}
	s := a.client.Session()
	if s == nil {
		return nil, errNotSignedIn
	}
	return s, nil
}

func (a *app) close() {
	if a.events != nil {
		_ = a.events.Close()
	}
	if a.db != nil {
		_ = pkgdb.Close(a.db)
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the PC components shop, build a PC and place orders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		authCommands(a)...,
	)
	root.AddCommand(
		productsCmd(a),
		categoriesCmd(a),
		searchCmd(a),
		cartCmd(a),
		buildCmd(a),
		checkoutCmd(a),
		ordersCmd(a),
		profileCmd(a),
		prefsCmd(a),
	)
	return root
}

func main() {
	a, err := newApp(config.Load(), os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}

	err = newRootCmd(a).ExecuteContext(context.Background())
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}
