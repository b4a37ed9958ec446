package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

func newProductService(repo *mockProductRepository) (*ProductService, *capturedEvents) {
	producer, events := newProducer()
	return NewProductService(repo, producer, newTestLogger()), events
}

func validProductInput() ProductInput {
	return ProductInput{Name: "Trail Runner", Price: 12900, Category: "shoes", Stock: 3}
}

func TestProductService_ListProducts(t *testing.T) {
	repo := new(mockProductRepository)
	svc, _ := newProductService(repo)

	products := []domain.Product{{ID: "p11", Name: "Eleventh"}}
	repo.On("List", mock.Anything, repository.ProductFilter{Offset: 10, Limit: 10}).Return(products, 11, nil)

	page, err := svc.ListProducts(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, &domain.ProductPage{Products: products, TotalProducts: 11, TotalPages: 2, CurrentPage: 2}, page)
	repo.AssertExpectations(t)
}

func TestProductService_ListProductsNormalisesParams(t *testing.T) {
	repo := new(mockProductRepository)
	svc, _ := newProductService(repo)

	repo.On("List", mock.Anything, repository.ProductFilter{Offset: 0, Limit: pagination.DefaultLimit}).
		Return([]domain.Product{}, 0, nil)

	page, err := svc.ListProducts(context.Background(), -3, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 0, page.TotalPages)
	assert.NotNil(t, page.Products)
}

func TestProductService_ListForAdmin(t *testing.T) {
	repo := new(mockProductRepository)
	svc, _ := newProductService(repo)

	p := pagination.NewParams(4, 10)
	repo.On("List", mock.Anything, repository.ProductFilter{Category: "shoes", Offset: 30, Limit: 10}).
		Return([]domain.Product{{ID: "x"}}, 95, nil)

	res, err := svc.ListForAdmin(context.Background(), p, "shoes")
	require.NoError(t, err)
	assert.Equal(t, 10, res.TotalPages)
	assert.Equal(t, []int{2, 3, 4, 5, 6}, res.PageWindow)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestProductService_CreateProduct(t *testing.T) {
	repo := new(mockProductRepository)
	svc, events := newProductService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Trail Runner" && p.Price == 12900 && p.Stock == 3
	})).Return(nil)

	p, err := svc.CreateProduct(context.Background(), validProductInput())
	require.NoError(t, err)
	assert.Equal(t, "generated-id", p.ID)
	assert.Equal(t, []string{event.TopicProductCreated}, events.topics)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductInput)
	}{
		{"missing name", func(in *ProductInput) { in.Name = "" }},
		{"zero price", func(in *ProductInput) { in.Price = 0 }},
		{"negative price", func(in *ProductInput) { in.Price = -5 }},
		{"zero stock", func(in *ProductInput) { in.Stock = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockProductRepository)
			svc, _ := newProductService(repo)
			in := validProductInput()
			tt.mutate(&in)

			_, err := svc.CreateProduct(context.Background(), in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	repo := new(mockProductRepository)
	svc, events := newProductService(repo)

	existing := &domain.Product{ID: "p1", Name: "Old", Price: 100, Stock: 1}
	repo.On("GetByID", mock.Anything, "p1").Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ID == "p1" && p.Name == "Trail Runner" && p.Category == "shoes"
	})).Return(nil)

	p, err := svc.UpdateProduct(context.Background(), "p1", validProductInput())
	require.NoError(t, err)
	assert.Equal(t, int64(12900), p.Price)
	assert.Equal(t, []string{event.TopicProductUpdated}, events.topics)
}

func TestProductService_UpdateMissingProduct(t *testing.T) {
	repo := new(mockProductRepository)
	svc, _ := newProductService(repo)

	repo.On("GetByID", mock.Anything, "nope").Return(nil, apperrors.NotFound("product", "nope"))

	_, err := svc.UpdateProduct(context.Background(), "nope", validProductInput())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	repo := new(mockProductRepository)
	svc, events := newProductService(repo)

	repo.On("Delete", mock.Anything, "p1").Return(nil)
	repo.On("Delete", mock.Anything, "p2").Return(errors.New("connection reset"))

	require.NoError(t, svc.DeleteProduct(context.Background(), "p1"))
	assert.Error(t, svc.DeleteProduct(context.Background(), "p2"))
	assert.Equal(t, []string{event.TopicProductDeleted}, events.topics)
}

func TestProductService_GetProductRequiresID(t *testing.T) {
	svc, _ := newProductService(new(mockProductRepository))
	_, err := svc.GetProduct(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestProductService_GetProductMalformedID(t *testing.T) {
	repo := new(mockProductRepository)
	svc, _ := newProductService(repo)

	_, err := svc.GetProduct(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProductService_GetProductByUUID(t *testing.T) {
	repo := new(mockProductRepository)
	svc, _ := newProductService(repo)
	id := "8d0c6a1e-2f4b-4d3a-9c1e-5b6f7a8b9c0d"
	repo.On("GetByID", mock.Anything, id).Return(&domain.Product{ID: id, Name: "Trail Runner"}, nil)

	got, err := svc.GetProduct(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "Trail Runner", got.Name)
}
