package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pcshop/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"6f1c9a52-8c4e-4bde-9d0a-1f7d0f2c6a11","name":"RTX 4070","price":"599.99"}}]}}`)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"result":"not_found"}`)
	default:
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"result":"created"}`)
	}
}

func newIndex(t *testing.T) (*Index, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ix, err := NewClient(context.Background(), Config{URL: srv.URL, Index: "products"})
	require.NoError(t, err)
	return ix, fake
}

func TestIndexProduct(t *testing.T) {
	ix, fake := newIndex(t)
	p := models.Product{ID: uuid.New(), Name: "Ryzen 7", Price: decimal.NewFromInt(329)}

	require.NoError(t, ix.IndexProduct(context.Background(), p))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	last := len(fake.requests) - 1
	assert.Equal(t, http.MethodPut+" /products/_doc/"+p.ID.String(), fake.requests[last])

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.bodies[last]), &doc))
	assert.Equal(t, "Ryzen 7", doc["name"])
}

func TestSearch(t *testing.T) {
	ix, fake := newIndex(t)

	total, items, err := ix.Search(context.Background(), "rtx", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "RTX 4070", items[0].Name)
	assert.True(t, decimal.RequireFromString("599.99").Equal(items[0].Price))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.bodies[len(fake.bodies)-1], `"multi_match"`)
}

func TestDeleteProduct_MissingIsFine(t *testing.T) {
	ix, _ := newIndex(t)
	assert.NoError(t, ix.DeleteProduct(context.Background(), uuid.New()))
}
