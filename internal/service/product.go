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

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	producer EventPublisher
	cache    repository.ReviewFeedCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewProductService creates a new product service. cache may be nil.
func NewProductService(repo repository.ProductRepository, producer EventPublisher, cache repository.ReviewFeedCache, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		producer: producer,
		cache:    cache,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddProduct assigns the next productId and persists a new product. The
// count and the insert are separate store calls; a concurrent creation that
// derived the same ID fails on the unique index.
func (s *ProductService) AddProduct(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	if fields.Category != "" && !fields.Category.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown category %q", fields.Category))
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("add product: %w", apperrors.FromStore(err))
	}

	product := domain.NewProduct(domain.NextProductID(count), fields, s.now())
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("add product: %w", apperrors.FromStore(err))
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ProductID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ProductID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetProduct retrieves a product by productId.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", apperrors.FromStore(err))
	}
	return product, nil
}

// ListProducts returns every product in store order.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, repository.ProductFilter{})
}

// SearchProducts returns products whose name or category contains keyword,
// ignoring case. An empty keyword returns every product.
func (s *ProductService) SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error) {
	return s.list(ctx, repository.ProductFilter{Keyword: keyword})
}

// ListByCategory returns products whose category equals category exactly.
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	c, ok := domain.ParseCategory(category)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown category %q", category))
	}
	return s.list(ctx, repository.ProductFilter{Category: &c})
}

func (s *ProductService) list(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", apperrors.FromStore(err))
	}
	return products, nil
}

// UpdateProduct applies a shallow partial update and returns the
// post-update product.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, update domain.ProductUpdate) (*domain.Product, error) {
	if update.Category != nil && !update.Category.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown category %q", *update.Category))
	}

	product, err := s.repo.Update(ctx, productID, update)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", apperrors.FromStore(err))
	}

	s.invalidateFeed(ctx)
	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", productID))

	return product, nil
}

// DeleteProduct removes a product together with its reviews.
func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", apperrors.FromStore(err))
	}

	s.invalidateFeed(ctx)
	if err := s.producer.PublishProductDeleted(ctx, productID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", productID))

	return nil
}

// invalidateFeed drops the cached review feed. A product rename or deletion
// changes the feed even though no review changed.
func (s *ProductService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate review feed cache",
			slog.String("error", err.Error()),
		)
	}
}
