package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestProductHandler_ListReturnsCatalogShape(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, repository.ProductFilter{Offset: 5, Limit: 5}).
		Return([]domain.Product{*sampleProduct()}, 12, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/products?page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=30")

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{"products", "totalProducts", "totalPages", "currentPage"}, keys(body))

	var page domain.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 12, page.TotalProducts)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Products, 1)
	assert.Equal(t, productID, page.Products[0].ID)
}

func TestProductHandler_ListDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("List", mock.Anything, repository.ProductFilter{Offset: 0, Limit: 10}).
		Return([]domain.Product{}, 0, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/products?page=abc&limit=1000", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[],"totalProducts":0,"totalPages":0,"currentPage":1}`, rec.Body.String())
}

func TestProductHandler_Get(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetByID", mock.Anything, productID).Return(sampleProduct(), nil)

	rec := env.do(t, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p domain.Product
	decodeData(t, rec, &p)
	assert.Equal(t, "Trail Runner", p.Name)
}

func TestProductHandler_GetErrors(t *testing.T) {
	env := newTestEnv(t)
	missing := "00000000-0000-4000-8000-00000000dead"
	env.products.On("GetByID", mock.Anything, missing).Return(nil, apperrors.NotFound("product", missing))

	rec := env.do(t, http.MethodGet, "/api/v1/products/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/products/"+missing, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, rec).Error.Code)
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
