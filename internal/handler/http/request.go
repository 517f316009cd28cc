package http

import (
	"net/http"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var registerRulesOnce sync.Once

// registerRules installs the storefront's custom validation tags.
func registerRules() {
	registerRulesOnce.Do(func() {
		rules := map[string]func(string) bool{
			"category": func(s string) bool { return domain.Category(s).Valid() },
			"rating":   func(s string) bool { return domain.Rating(s).Valid() },
			"role":     func(s string) bool { return domain.Role(s).Valid() },
		}
		for tag, fn := range rules {
			if err := validator.RegisterStringRule(tag, fn); err != nil {
				panic(err)
			}
		}
	})
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name         string   `json:"name" validate:"required,max=500"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Category     string   `json:"category" validate:"omitempty,category"`
	Brand        string   `json:"brand" validate:"required"`
	Quantity     *int64   `json:"quantity" validate:"required,gte=0"`
	Images       string   `json:"images"`
	Availability string   `json:"availability"`
}

func (req CreateProductRequest) fields() domain.ProductFields {
	return domain.ProductFields{
		Name:         req.Name,
		Description:  req.Description,
		Price:        *req.Price,
		Category:     domain.Category(req.Category),
		Brand:        req.Brand,
		Quantity:     *req.Quantity,
		Images:       req.Images,
		Availability: req.Availability,
	}
}

// UpdateProductRequest is the JSON request body for a partial product
// update. productId and reviews are not accepted.
type UpdateProductRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=500"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Category     *string  `json:"category" validate:"omitempty,category"`
	Brand        *string  `json:"brand" validate:"omitempty,min=1"`
	Quantity     *int64   `json:"quantity" validate:"omitempty,gte=0"`
	Images       *string  `json:"images"`
	Availability *string  `json:"availability"`
}

func (req UpdateProductRequest) update() domain.ProductUpdate {
	u := domain.ProductUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Brand:        req.Brand,
		Quantity:     req.Quantity,
		Images:       req.Images,
		Availability: req.Availability,
	}
	if req.Category != nil {
		c := domain.Category(*req.Category)
		u.Category = &c
	}
	return u
}

// AddReviewRequest is the JSON request body for adding a review.
type AddReviewRequest struct {
	Rating        string `json:"rating" validate:"required,rating"`
	ReviewMessage string `json:"reviewMessage"`
}

// RegisterRequest is the JSON request body for registering an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,role"`
}

// LoginRequest is the JSON request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// decode limits, decodes and validates the request body, writing a 400 and
// returning false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := validator.DecodeAndValidate(r, dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}
