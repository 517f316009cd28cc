package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utafrali/storefront/internal/domain"
)

const (
	productsCollection = "products"
	usersCollection    = "users"
)

type reviewDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Rating        string             `bson:"rating"`
	ReviewMessage string             `bson:"reviewMessage"`
}

type productDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ProductID    string             `bson:"productId"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description"`
	Price        float64            `bson:"price"`
	Category     string             `bson:"category,omitempty"`
	Brand        string             `bson:"brand"`
	Quantity     int64              `bson:"quantity"`
	Images       string             `bson:"images"`
	Availability string             `bson:"availability"`
	Reviews      []reviewDocument   `bson:"reviews"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func newProductDocument(p *domain.Product) productDocument {
	doc := productDocument{
		ProductID:    p.ProductID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Category:     string(p.Category),
		Brand:        p.Brand,
		Quantity:     p.Quantity,
		Images:       p.Images,
		Availability: p.Availability,
		Reviews:      make([]reviewDocument, 0, len(p.Reviews)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if id, err := primitive.ObjectIDFromHex(p.ID); err == nil {
		doc.ID = id
	}
	for _, r := range p.Reviews {
		doc.Reviews = append(doc.Reviews, newReviewDocument(r))
	}
	return doc
}

func newReviewDocument(r domain.Review) reviewDocument {
	id, err := primitive.ObjectIDFromHex(r.ID)
	if err != nil {
		id = primitive.NewObjectID()
	}
	return reviewDocument{ID: id, Rating: string(r.Rating), ReviewMessage: r.ReviewMessage}
}

func (d productDocument) toDomain() domain.Product {
	p := domain.Product{
		ID:           d.ID.Hex(),
		ProductID:    d.ProductID,
		Name:         d.Name,
		Description:  d.Description,
		Price:        d.Price,
		Category:     domain.Category(d.Category),
		Brand:        d.Brand,
		Quantity:     d.Quantity,
		Images:       d.Images,
		Availability: d.Availability,
		Reviews:      make([]domain.Review, 0, len(d.Reviews)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, r := range d.Reviews {
		p.Reviews = append(p.Reviews, domain.Review{
			ID:            r.ID.Hex(),
			Rating:        domain.Rating(r.Rating),
			ReviewMessage: r.ReviewMessage,
		})
	}
	return p
}

func newUserDocument(u *domain.User) userDocument {
	doc := userDocument{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if id, err := primitive.ObjectIDFromHex(u.ID); err == nil {
		doc.ID = id
	}
	return doc
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         domain.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// setFields builds the $set document for a partial update. updatedAt is
// always refreshed.
func setFields(u domain.ProductUpdate, now time.Time) bson.D {
	set := bson.D{}
	if u.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *u.Name})
	}
	if u.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *u.Description})
	}
	if u.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *u.Price})
	}
	if u.Category != nil {
		set = append(set, bson.E{Key: "category", Value: string(*u.Category)})
	}
	if u.Brand != nil {
		set = append(set, bson.E{Key: "brand", Value: *u.Brand})
	}
	if u.Quantity != nil {
		set = append(set, bson.E{Key: "quantity", Value: *u.Quantity})
	}
	if u.Images != nil {
		set = append(set, bson.E{Key: "images", Value: *u.Images})
	}
	if u.Availability != nil {
		set = append(set, bson.E{Key: "availability", Value: *u.Availability})
	}
	return append(set, bson.E{Key: "updatedAt", Value: now})
}
