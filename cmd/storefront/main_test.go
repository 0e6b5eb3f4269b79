package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pcshop/internal/builder"
	"github.com/Skotchmaster/pcshop/internal/cart"
	"github.com/Skotchmaster/pcshop/internal/config"
)

func newTestApp(t *testing.T, home string) (*app, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	a, err := newApp(config.Config{StorefrontHome: home, LogLevel: "error"}, out)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a, out
}

func run(a *app, args ...string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestPrefsPersistAcrossRuns(t *testing.T) {
	home := t.TempDir()

	a, out := newTestApp(t, home)
	require.NoError(t, run(a, "prefs", "set", "productsSortField=price", "productsSortDirection=asc"))
	assert.Contains(t, out.String(), `"productsSortField": "price"`)

	err := run(a, "prefs", "set", "colour=blue")
	assert.ErrorContains(t, err, "unknown preference")
	err = run(a, "prefs", "set", "draftText")
	assert.ErrorContains(t, err, "expected key=value")

	b, _ := newTestApp(t, home)
	prefs := b.prefs.Get()
	assert.Equal(t, "price", prefs.ProductsSortField)
	assert.Equal(t, "asc", prefs.ProductsSortDirection)

	require.NoError(t, run(b, "prefs", "reset"))
	assert.Equal(t, "created_at", b.prefs.Get().ProductsSortField)
}

func TestCartCommands(t *testing.T) {
	home := t.TempDir()
	a, out := newTestApp(t, home)

	require.NoError(t, run(a, "cart"))
	assert.Contains(t, out.String(), "cart is empty")

	require.NoError(t, a.cart.AddItem(cart.Item{
		ID:       "p-1",
		Name:     "Keyboard",
		Price:    decimal.RequireFromString("49.99"),
		ImageURL: "kb.png",
	}, 1))

	out.Reset()
	require.NoError(t, run(a, "cart", "qty", "p-1", "3"))
	assert.Contains(t, out.String(), "3 items, total 149.97")

	assert.ErrorIs(t, run(a, "cart", "qty", "p-1", "0"), cart.ErrInvalidQuantity)
	assert.ErrorIs(t, run(a, "cart", "remove", "p-2"), cart.ErrNotInCart)

	b, _ := newTestApp(t, home)
	assert.Equal(t, 3, b.cart.TotalItems())

	require.NoError(t, run(b, "cart", "clear"))
	assert.Zero(t, b.cart.TotalItems())
}

func TestBuildCommandsWithoutDatabase(t *testing.T) {
	a, out := newTestApp(t, t.TempDir())

	require.NoError(t, run(a, "build"))
	assert.Contains(t, out.String(), "0/8 parts, total 0.00")

	assert.ErrorIs(t, run(a, "build", "remove", "fan"), builder.ErrUnknownSlot)
	assert.ErrorIs(t, run(a, "build", "set", "fan", "00000000-0000-0000-0000-000000000000"), builder.ErrUnknownSlot)
	assert.Error(t, run(a, "build", "set", "cpu", "not-a-uuid"))

	require.NoError(t, run(a, "build", "clear"))
}

func TestOnlineCommandsNeedConfiguration(t *testing.T) {
	a, _ := newTestApp(t, t.TempDir())
	err := run(a, "whoami")
	assert.EqualError(t, err, "missing required env DATABASE_URL, JWT_SECRET")
}
