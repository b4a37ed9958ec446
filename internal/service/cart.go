// Package service holds the storefront business logic between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// MaxQuantityPerAdd bounds a single add-to-cart request.
const MaxQuantityPerAdd = 100

// Reasons recorded on cart.cleared events.
const (
	ClearReasonCheckout = "checkout"
	ClearReasonSignout  = "signout"
)

// ProductLookup resolves a product id to the product whose display fields
// are snapshotted into the cart. Implemented by ProductService and
// catalog.Client.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=100"`
}

// UpdateQuantityInput holds the parameters for updating an item quantity.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// CartView is the cart as returned to clients.
type CartView struct {
	Items       domain.Cart `json:"items"`
	ItemCount   int         `json:"item_count"`
	TotalAmount int64       `json:"total_amount"`
}

func newCartView(items domain.Cart) *CartView {
	return &CartView{
		Items:       items,
		ItemCount:   items.ItemCount(),
		TotalAmount: items.TotalAmount(),
	}
}

// CartService validates cart requests and dispatches them to the session's
// store. Every mutation goes through cart.Store.Dispatch.
type CartService struct {
	carts    *cart.Registry
	products ProductLookup
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts *cart.Registry, products ProductLookup, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// GetCart returns the session's cart, hydrating it on first access.
func (s *CartService) GetCart(ctx context.Context, session string) (*CartView, error) {
	if session == "" {
		return nil, apperrors.Unauthorized("a session is required")
	}
	return newCartView(s.carts.Open(ctx, session).Items()), nil
}

// AddItem snapshots the product and adds quantity of it to the cart.
func (s *CartService) AddItem(ctx context.Context, session string, input AddItemInput) (*CartView, error) {
	if session == "" {
		return nil, apperrors.Unauthorized("sign in to add items to your cart")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity < 1 || input.Quantity > MaxQuantityPerAdd {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must be between 1 and %d", MaxQuantityPerAdd))
	}

	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product.ID == "" {
		return nil, apperrors.InvalidInput("product has no id")
	}

	return s.dispatch(ctx, session, domain.AddToCart{
		Item:     domain.Snapshot(*product, input.Quantity),
		Quantity: input.Quantity,
	}), nil
}

// UpdateQuantity sets the quantity of an item already in the cart. Unknown
// product ids leave the cart unchanged.
func (s *CartService) UpdateQuantity(ctx context.Context, session, productID string, quantity int) (*CartView, error) {
	if session == "" {
		return nil, apperrors.Unauthorized("a session is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be at least 1; remove the item instead")
	}
	return s.dispatch(ctx, session, domain.UpdateCart{ProductID: productID, Quantity: quantity}), nil
}

// RemoveItem drops an item from the cart. Removing an absent item is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, session, productID string) (*CartView, error) {
	if session == "" {
		return nil, apperrors.Unauthorized("a session is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	return s.dispatch(ctx, session, domain.RemoveFromCart{ProductID: productID}), nil
}

// Clear empties the cart. Only checkout and sign-out call it.
func (s *CartService) Clear(ctx context.Context, session, reason string) {
	s.carts.Open(ctx, session).Dispatch(domain.ClearCart{})

	if err := s.producer.PublishCartCleared(ctx, session, reason); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart.cleared event",
			slog.String("session", session),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session", session),
		slog.String("reason", reason),
	)
}

// SignOut clears the session's cart and drops its store from memory.
func (s *CartService) SignOut(ctx context.Context, session string) {
	s.Clear(ctx, session, ClearReasonSignout)
	s.carts.Release(session)
}

func (s *CartService) dispatch(ctx context.Context, session string, cmd domain.Command) *CartView {
	items := s.carts.Open(ctx, session).Dispatch(cmd)

	if err := s.producer.PublishCartUpdated(ctx, session, cmd.Kind(), items); err != nil {
		s.logger.WarnContext(ctx, "failed to publish cart.updated event",
			slog.String("session", session),
			slog.String("error", err.Error()),
		)
	}
	return newCartView(items)
}
