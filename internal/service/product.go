package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ProductInput is the admin form for creating or replacing a product.
type ProductInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Price       int64  `json:"price" validate:"gt=0"`
	Category    string `json:"category" validate:"max=100"`
	Stock       int    `json:"stock" validate:"gte=1"`
	ImageURL    string `json:"image_url"`
}

func (in ProductInput) check() error {
	if in.Name == "" {
		return apperrors.InvalidInput("name is required")
	}
	if in.Price <= 0 {
		return apperrors.InvalidInput("price must be greater than 0")
	}
	if in.Stock < 1 {
		return apperrors.InvalidInput("stock must be at least 1")
	}
	return nil
}

// ProductService implements the catalog: public browsing and admin CRUD.
type ProductService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// ListProducts returns one catalog page. Out-of-range page and limit values
// are normalised the same way as query parameters.
func (s *ProductService) ListProducts(ctx context.Context, page, limit int) (*domain.ProductPage, error) {
	p := pagination.NewParams(page, limit)
	products, total, err := s.repo.List(ctx, repository.ProductFilter{Offset: p.Offset, Limit: p.Limit})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &domain.ProductPage{
		Products:      products,
		TotalProducts: total,
		TotalPages:    pagination.TotalPages(total, p.Limit),
		CurrentPage:   p.Page,
	}, nil
}

// ListForAdmin returns the back-office listing with its page window.
func (s *ProductService) ListForAdmin(ctx context.Context, p pagination.Params, category string) (pagination.Result[domain.Product], error) {
	products, total, err := s.repo.List(ctx, repository.ProductFilter{
		Category: category,
		Offset:   p.Offset,
		Limit:    p.Limit,
	})
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewResult(products, total, p), nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("product", id)
	}
	return s.repo.GetByID(ctx, id)
}

// CreateProduct adds a product to the catalog.
func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := input.check(); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)
	return product, nil
}

// UpdateProduct replaces every editable field of product id.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if err := input.check(); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Category = input.Category
	product.Stock = input.Stock
	product.ImageURL = input.ImageURL

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}
	return product, nil
}

// DeleteProduct removes a product. Carts keep their snapshot of it.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// CountProducts is used by the admin overview.
func (s *ProductService) CountProducts(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
