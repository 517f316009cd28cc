package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// DefaultFeedTTL bounds how long a cached review feed is served.
const DefaultFeedTTL = 30 * time.Second

// ReviewService implements the review subsystem. Reviews are embedded in
// products; every operation here is a single store call over the products
// collection.
type ReviewService struct {
	repo     repository.ProductRepository
	producer EventPublisher
	cache    repository.ReviewFeedCache
	feedTTL  time.Duration
	logger   *slog.Logger
}

// NewReviewService creates a new review service. cache may be nil; a
// non-positive feedTTL falls back to DefaultFeedTTL.
func NewReviewService(repo repository.ProductRepository, producer EventPublisher, cache repository.ReviewFeedCache, feedTTL time.Duration, logger *slog.Logger) *ReviewService {
	if feedTTL <= 0 {
		feedTTL = DefaultFeedTTL
	}
	return &ReviewService{
		repo:     repo,
		producer: producer,
		cache:    cache,
		feedTTL:  feedTTL,
		logger:   logger,
	}
}

// AddReview appends a review to the product with productID and returns the
// product as it is after the append. The rating is checked before the store
// is reached; an absent product leaves the store untouched.
func (s *ReviewService) AddReview(ctx context.Context, productID, rating, reviewMessage string) (*domain.Product, error) {
	r, ok := domain.ParseRating(rating)
	if !ok {
		return nil, apperrors.InvalidInput("rating must be one of: 1 2 3 4 5")
	}

	product, err := s.repo.AppendReview(ctx, productID, domain.Review{Rating: r, ReviewMessage: reviewMessage})
	if err != nil {
		return nil, fmt.Errorf("add review: %w", apperrors.FromStore(err))
	}

	s.invalidateFeed(ctx)

	if n := len(product.Reviews); n > 0 {
		added := product.Reviews[n-1]
		if err := s.producer.PublishReviewAdded(ctx, productID, added); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.added event",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("product_id", productID),
		slog.String("rating", rating),
		slog.Int("review_count", len(product.Reviews)),
	)

	return product, nil
}

// GetReviews returns the reviews of one product in insertion order. A
// product with no reviews yields an empty slice, not NotFound.
func (s *ReviewService) GetReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get reviews: %w", apperrors.FromStore(err))
	}
	if product.Reviews == nil {
		return []domain.Review{}, nil
	}
	return product.Reviews, nil
}

// GetAllReviews returns the flattened review feed across every product.
// The feed is read in one store call and is not a consistent snapshot with
// respect to concurrent writes. Any store failure fails the whole call.
func (s *ReviewService) GetAllReviews(ctx context.Context) ([]domain.FlattenedReview, error) {
	if feed, ok := s.cachedFeed(ctx); ok {
		return feed, nil
	}

	products, err := s.repo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("get all reviews: %w", apperrors.FromStore(err))
	}

	feed := domain.FlattenReviews(products)

	if s.cache != nil {
		if err := s.cache.Set(ctx, feed, s.feedTTL); err != nil {
			s.logger.WarnContext(ctx, "failed to cache review feed", slog.String("error", err.Error()))
		}
	}

	return feed, nil
}

func (s *ReviewService) cachedFeed(ctx context.Context) ([]domain.FlattenedReview, bool) {
	if s.cache == nil {
		return nil, false
	}
	feed, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "review feed cache read failed", slog.String("error", err.Error()))
		return nil, false
	}
	return feed, ok
}

func (s *ReviewService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate review feed cache", slog.String("error", err.Error()))
	}
}
