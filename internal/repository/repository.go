package repository

import (
	"context"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// ProductFilter defines filter criteria for listing products. A nil Category
// and an empty Keyword list every product.
type ProductFilter struct {
	// Category matches exactly.
	Category *domain.Category

	// Keyword is a case-insensitive partial match on name or category.
	// It is matched literally; regex metacharacters have no special meaning.
	Keyword string
}

// ProductRepository defines the interface for product persistence operations.
// Every mutation is a single-document atomic operation in the store.
type ProductRepository interface {
	// Count returns the number of stored products.
	Count(ctx context.Context) (int64, error)

	// Create inserts a new product. The store-assigned ID is written back to
	// product.ID.
	Create(ctx context.Context, product *domain.Product) error

	// GetByProductID retrieves a product by its productId.
	GetByProductID(ctx context.Context, productID string) (*domain.Product, error)

	// List returns products matching the filter in store order.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	// Update applies a partial update and returns the post-update product.
	Update(ctx context.Context, productID string, update domain.ProductUpdate) (*domain.Product, error)

	// Delete removes a product and its embedded reviews.
	Delete(ctx context.Context, productID string) error

	// AppendReview pushes a review onto the product's review list and returns
	// the post-update product. The review ID is assigned by the store.
	AppendReview(ctx context.Context, productID string, review domain.Review) (*domain.Product, error)
}

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	// Count returns the number of stored users.
	Count(ctx context.Context) (int64, error)

	// Create inserts a new user. A taken email is reported as AlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByUserID retrieves a user by userId.
	GetByUserID(ctx context.Context, userID string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ReviewFeedCache stores the flattened review feed.
type ReviewFeedCache interface {
	// Get returns the cached feed. ok is false on a miss.
	Get(ctx context.Context) (feed []domain.FlattenedReview, ok bool, err error)

	// Set stores the feed for ttl.
	Set(ctx context.Context, feed []domain.FlattenedReview, ttl time.Duration) error

	// Invalidate drops the cached feed.
	Invalidate(ctx context.Context) error
}
