package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/db/testdb"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/repo"
)

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: testdb.Open(t)}
}

func TestCreateOrder_WritesOrderAndLines(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	prod, err := r.CreateProduct(ctx, &models.Product{Name: "CPU", Price: decimal.NewFromInt(300), ImageURL: "cpu.png"})
	require.NoError(t, err)

	order := &models.Order{
		UserID:     uuid.New(),
		Status:     models.OrderStatusPlaced,
		TotalPrice: decimal.NewFromInt(600),
		Items: []models.OrderItem{
			{ProductID: &prod.ID, Quantity: 2, UnitPrice: prod.Price, Price: decimal.NewFromInt(600)},
		},
	}
	_, err = r.CreateOrder(ctx, order)
	require.NoError(t, err)

	got, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, order.ID, got.Items[0].OrderID)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "CPU", got.Items[0].Product.Name)
	assert.True(t, decimal.NewFromInt(600).Equal(got.TotalPrice))
}

func TestCreateOrder_RollsBackOnBadLine(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	order := &models.Order{
		UserID:     uuid.New(),
		Status:     models.OrderStatusPlaced,
		TotalPrice: decimal.NewFromInt(10),
		Items: []models.OrderItem{
			{Quantity: 0, UnitPrice: decimal.NewFromInt(10), Price: decimal.Zero},
		},
	}
	_, err := r.CreateOrder(ctx, order)
	require.Error(t, err)

	var n int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateOrderStatus_Stale(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	order := &models.Order{UserID: uuid.New(), Status: models.OrderStatusPlaced, TotalPrice: decimal.NewFromInt(1)}
	_, err := r.CreateOrder(ctx, order)
	require.NoError(t, err)

	require.NoError(t, r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPlaced, models.OrderStatusShipped))
	err = r.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPlaced, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, repo.ErrStaleStatus)
}

func TestCreateAccount_Conflict(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateAccount(ctx, &models.Identity{Email: "a@b.c", PasswordHash: "x"}, &models.User{}))
	err := r.CreateAccount(ctx, &models.Identity{Email: "a@b.c", PasswordHash: "y"}, &models.User{})
	assert.ErrorIs(t, err, repo.ErrUserAlreadyExist)

	users, err := r.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@b.c", users[0].Email)
}

func TestToggleAdmin(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	profile := &models.User{}
	require.NoError(t, r.CreateAccount(ctx, &models.Identity{Email: "admin@shop", PasswordHash: "x"}, profile))

	isAdmin, err := r.ToggleAdmin(ctx, profile.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = r.ToggleAdmin(ctx, profile.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	_, err = r.ToggleAdmin(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteProduct_NotFound(t *testing.T) {
	r := newRepo(t)
	err := r.DeleteProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
