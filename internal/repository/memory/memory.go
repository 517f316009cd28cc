// Package memory provides in-process implementations of the repository
// interfaces. Each call holds a single lock, which gives the same
// per-document atomicity the document store provides.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ProductRepository is an in-memory repository.ProductRepository that keeps
// products in insertion order.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product
	now      func() time.Time
}

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *ProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(p.ProductID) >= 0 {
		return fmt.Errorf("insert product: duplicate key productId %q", p.ProductID)
	}

	if p.ID == "" {
		p.ID = newID()
	}
	r.products = append(r.products, cloneProduct(*p))
	return nil
}

func (r *ProductRepository) GetByProductID(_ context.Context, productID string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(productID)
	if i < 0 {
		return nil, apperrors.NotFound("product", productID)
	}
	p := cloneProduct(r.products[i])
	return &p, nil
}

func (r *ProductRepository) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keyword := strings.ToLower(filter.Keyword)
	out := []domain.Product{}
	for _, p := range r.products {
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(p.Name), keyword) &&
			!strings.Contains(strings.ToLower(string(p.Category)), keyword) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

func (r *ProductRepository) Update(_ context.Context, productID string, u domain.ProductUpdate) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(productID)
	if i < 0 {
		return nil, apperrors.NotFound("product", productID)
	}
	u.Apply(&r.products[i])
	r.products[i].UpdatedAt = r.now()

	p := cloneProduct(r.products[i])
	return &p, nil
}

func (r *ProductRepository) Delete(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(productID)
	if i < 0 {
		return apperrors.NotFound("product", productID)
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

func (r *ProductRepository) AppendReview(_ context.Context, productID string, review domain.Review) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(productID)
	if i < 0 {
		return nil, apperrors.NotFound("product", productID)
	}
	if review.ID == "" {
		review.ID = newID()
	}
	r.products[i].Reviews = append(r.products[i].Reviews, review)
	r.products[i].UpdatedAt = r.now()

	p := cloneProduct(r.products[i])
	return &p, nil
}

func (r *ProductRepository) indexLocked(productID string) int {
	for i := range r.products {
		if r.products[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		if existing.UserID == u.UserID {
			return fmt.Errorf("insert user: duplicate key userId %q", u.UserID)
		}
	}

	if u.ID == "" {
		u.ID = newID()
	}
	r.users = append(r.users, *u)
	return nil
}

func (r *UserRepository) GetByUserID(_ context.Context, userID string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.UserID == userID }, userID)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email }, email)
}

func (r *UserRepository) find(match func(domain.User) bool, key string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.NotFound("user", key)
}

func cloneProduct(p domain.Product) domain.Product {
	reviews := make([]domain.Review, len(p.Reviews))
	copy(reviews, p.Reviews)
	p.Reviews = reviews
	return p
}

// newID returns a 24 character hex identifier shaped like a store ObjectID.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
