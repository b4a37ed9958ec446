package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// ProductFilter selects a page of the catalog.
type ProductFilter struct {
	Category string
	Offset   int
	Limit    int
}

// ProductRepository persists the catalog.
type ProductRepository interface {
	// Create inserts product, filling in ID and timestamps.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID returns apperrors.ErrNotFound when no product has id.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns one page ordered by newest first plus the total count
	// across all pages.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// UserRepository persists accounts.
type UserRepository interface {
	// Create returns an AlreadyExists error when the email is taken.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CartSlot is the durable key-value slot a session's serialized cart lives
// in. Values are opaque to the slot.
type CartSlot interface {
	// Load returns apperrors.ErrNotFound when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, value []byte) error
}
