package catalog

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/pcshop/internal/builder"
	"github.com/Skotchmaster/pcshop/internal/db/testdb"
	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/query"
	"github.com/Skotchmaster/pcshop/internal/repo"
)

func ptr[T any](v T) *T { return &v }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type stubIndex struct {
	indexed map[uuid.UUID]string
	fail    bool
}

func (s *stubIndex) IndexProduct(_ context.Context, p models.Product) error {
	s.indexed[p.ID] = p.Name
	return nil
}

func (s *stubIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(s.indexed, id)
	return nil
}

func (s *stubIndex) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	if s.fail {
		return 0, nil, errors.New("index down")
	}
	return 1, []models.Product{{Name: "from index"}}, nil
}

func newTestService(t *testing.T) (*CatalogService, *events.Recorder) {
	t.Helper()
	rec := &events.Recorder{}
	return &CatalogService{
		Repo:       &repo.GormRepo{DB: testdb.Open(t)},
		Events:     rec,
		BatchLimit: 2,
	}, rec
}

func TestNormalizeSpecs(t *testing.T) {
	specs, err := NormalizeSpecs(map[string]any{
		" cores ":   "16",
		"boost_ghz": "5.7",
		"socket":    "AM5",
		"tdp":       105.0,
		"unlocked":  true,
		"note":      nil,
		"overflow":  "Inf",
	})
	require.NoError(t, err)

	assert.Equal(t, 16.0, specs["cores"])
	assert.Equal(t, 5.7, specs["boost_ghz"])
	assert.Equal(t, "AM5", specs["socket"])
	assert.Equal(t, 105.0, specs["tdp"])
	assert.Equal(t, true, specs["unlocked"])
	assert.Equal(t, "Inf", specs["overflow"])
	assert.NotContains(t, specs, "note")

	_, err = NormalizeSpecs(map[string]any{"nested": map[string]any{"a": 1}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NormalizeSpecs(map[string]any{"list": []any{1, 2}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NormalizeSpecs(map[string]any{"  ": "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateProduct(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: ptr("CPU")})
	require.NoError(t, err)

	p, err := svc.CreateProduct(ctx, ProductInput{
		Name:           ptr(" Ryzen 9 7950X "),
		Price:          price("549.999"),
		ImageURL:       ptr("r9.png"),
		Stock:          ptr(4),
		CategoryID:     ptr(cat.ID.String()),
		Specifications: map[string]any{"cores": "16"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ryzen 9 7950X", p.Name)
	assert.True(t, decimal.RequireFromString("550").Equal(p.Price))

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "CPU", got.Category.Name)
	assert.EqualValues(t, 16, got.Specifications["cores"])

	evs := rec.Events(events.TopicProducts)
	require.NotEmpty(t, evs)
	assert.Equal(t, "product_created", evs[len(evs)-1].Event["type"])
}

func TestCreateProduct_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   ProductInput
	}{
		{name: "no name", in: ProductInput{Price: price("1")}},
		{name: "no price", in: ProductInput{Name: ptr("x")}},
		{name: "negative price", in: ProductInput{Name: ptr("x"), Price: price("-1")}},
		{name: "negative stock", in: ProductInput{Name: ptr("x"), Price: price("1"), Stock: ptr(-1)}},
		{name: "unknown category", in: ProductInput{Name: ptr("x"), Price: price("1"), CategoryID: ptr(uuid.NewString())}},
		{name: "bad category id", in: ProductInput{Name: ptr("x"), Price: price("1"), CategoryID: ptr("nope")}},
		{name: "nested specification value", in: ProductInput{Name: ptr("x"), Price: price("1"), Specifications: map[string]any{"a": []any{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("SSD"), Price: price("100"), ImageURL: ptr("ssd.png")})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Price: price("89.90"), Stock: ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, "SSD", updated.Name)
	assert.True(t, decimal.RequireFromString("89.9").Equal(updated.Price))
	assert.Equal(t, 12, updated.Stock)

	_, err = svc.UpdateProduct(ctx, uuid.New(), ProductInput{Stock: ptr(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateProduct(ctx, p.ID, ProductInput{Name: ptr("")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteCategory_GuardedByProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: ptr("GPU")})
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("RTX"), Price: price("600"), CategoryID: ptr(cat.ID.String())})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, ErrConflict)

	cats, err := svc.ListCategories(ctx, query.New())
	require.NoError(t, err)
	assert.Len(t, cats, 1, "refused delete must leave the category")

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), ErrNotFound)
}

func TestCreateCategory_RequiresName(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteProduct_ReferencedByOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("PSU"), Price: price("120")})
	require.NoError(t, err)

	_, err = svc.Repo.CreateOrder(ctx, &models.Order{
		UserID:     uuid.New(),
		Status:     models.OrderStatusPlaced,
		TotalPrice: p.Price,
		Items:      []models.OrderItem{{ProductID: &p.ID, Quantity: 1, UnitPrice: p.Price, Price: p.Price}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrConflict)
}

func TestBatchCreateAndUpdate_PerRowResults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := svc.BatchCreateProducts(ctx, []ProductInput{
		{Name: ptr("A"), Price: price("10")},
		{Name: ptr(""), Price: price("10")},
		{Name: ptr("C"), Price: price("30")},
	})
	require.Len(t, created, 3)
	assert.True(t, created[0].OK)
	assert.False(t, created[1].OK)
	assert.ErrorIs(t, created[1].Err, ErrValidation)
	assert.True(t, created[2].OK)

	total, _, err := svc.ListProducts(ctx, query.New())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "one bad row must not roll back the others")

	updated := svc.BatchUpdateProducts(ctx, []ProductPatch{
		{ID: created[0].ID, ProductInput: ProductInput{Stock: ptr(5)}},
		{ID: "not-a-uuid", ProductInput: ProductInput{Stock: ptr(5)}},
		{ID: uuid.NewString(), ProductInput: ProductInput{Stock: ptr(5)}},
	})
	assert.True(t, updated[0].OK)
	assert.ErrorIs(t, updated[1].Err, ErrValidation)
	assert.ErrorIs(t, updated[2].Err, ErrNotFound)

	deleted := svc.BulkDeleteProducts(ctx, []string{created[0].ID, created[2].ID})
	assert.True(t, deleted.AllOK())
}

func TestSearch_FallsBackToDatabase(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("Noctua NH-D15"), Price: price("99")})
	require.NoError(t, err)

	ix := &stubIndex{indexed: map[uuid.UUID]string{}}
	svc.Index = ix

	_, items, err := svc.Search(ctx, "anything", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "from index", items[0].Name)

	ix.fail = true
	total, items, err := svc.Search(ctx, "noctua", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Noctua NH-D15", items[0].Name)

	total, _, err = svc.Search(ctx, "_", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total, "underscore is not a wildcard")

	_, _, err = svc.Search(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateProduct_Indexes(t *testing.T) {
	svc, _ := newTestService(t)
	ix := &stubIndex{indexed: map[uuid.UUID]string{}}
	svc.Index = ix

	p, err := svc.CreateProduct(context.Background(), ProductInput{Name: ptr("Case"), Price: price("70")})
	require.NoError(t, err)
	assert.Equal(t, "Case", ix.indexed[p.ID])

	require.NoError(t, svc.DeleteProduct(context.Background(), p.ID))
	assert.NotContains(t, ix.indexed, p.ID)
}

func TestSlotCandidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cpu, err := svc.CreateCategory(ctx, CategoryInput{Name: ptr("Processors")})
	require.NoError(t, err)
	gpu, err := svc.CreateCategory(ctx, CategoryInput{Name: ptr("GPU")})
	require.NoError(t, err)

	for _, in := range []ProductInput{
		{Name: ptr("Ryzen 5"), Price: price("199"), CategoryID: ptr(cpu.ID.String())},
		{Name: ptr("Ryzen 9"), Price: price("549"), CategoryID: ptr(cpu.ID.String())},
		{Name: ptr("RTX 4060"), Price: price("299"), CategoryID: ptr(gpu.ID.String())},
	} {
		_, err := svc.CreateProduct(ctx, in)
		require.NoError(t, err)
	}

	items, err := svc.SlotCandidates(ctx, builder.SlotCPU, query.New().Lte("price", 300.0))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ryzen 5", items[0].Name)

	_, err = svc.SlotCandidates(ctx, "monitor", query.New())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExportProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{
		Name:           ptr("DDR5 32GB"),
		Price:          price("119.99"),
		Specifications: map[string]any{"speed": "6000", "cl": "30"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportProducts(ctx, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "DDR5 32GB", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "cl: 30; speed: 6000", sheet.Rows[1].Cells[6].Value)
}
