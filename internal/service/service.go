package service

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// EventPublisher publishes domain events. Failures are logged by the caller
// and never fail the operation that produced the event.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, productID string) error
	PublishReviewAdded(ctx context.Context, productID string, review domain.Review) error
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID, email, role string) (string, error)
}
