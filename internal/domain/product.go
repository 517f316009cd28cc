package domain

import "time"

// DefaultAvailability is assigned to products created without one.
const DefaultAvailability = "Available"

// Product is a catalog entry. ProductID is generated on creation and never
// changes; Reviews grows only by appending.
type Product struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Category     Category  `json:"category,omitempty"`
	Brand        string    `json:"brand"`
	Quantity     int64     `json:"quantity"`
	Images       string    `json:"images"`
	Availability string    `json:"availability"`
	Reviews      []Review  `json:"reviews"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductFields are the client-supplied attributes of a new product.
type ProductFields struct {
	Name         string
	Description  string
	Price        float64
	Category     Category
	Brand        string
	Quantity     int64
	Images       string
	Availability string
}

// NewProduct builds an unsaved product with the given ID and an empty review
// list.
func NewProduct(productID string, f ProductFields, now time.Time) *Product {
	availability := f.Availability
	if availability == "" {
		availability = DefaultAvailability
	}
	return &Product{
		ProductID:    productID,
		Name:         f.Name,
		Description:  f.Description,
		Price:        f.Price,
		Category:     f.Category,
		Brand:        f.Brand,
		Quantity:     f.Quantity,
		Images:       f.Images,
		Availability: availability,
		Reviews:      []Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProductUpdate is a shallow partial update. Nil fields are left untouched.
// ProductID and Reviews cannot be changed through an update.
type ProductUpdate struct {
	Name         *string
	Description  *string
	Price        *float64
	Category     *Category
	Brand        *string
	Quantity     *int64
	Images       *string
	Availability *string
}

// Empty reports whether u sets no field.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.Brand == nil && u.Quantity == nil &&
		u.Images == nil && u.Availability == nil
}

// Apply merges u into p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Images != nil {
		p.Images = *u.Images
	}
	if u.Availability != nil {
		p.Availability = *u.Availability
	}
}
