package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using MongoDB.
// Reviews live in an embedded array on each product document.
type ProductRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewProductRepository creates a new MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		coll: db.Collection(productsCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Count returns the number of product documents.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Create inserts a new product document.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	doc := newProductDocument(p)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	p.ID = doc.ID.Hex()
	return nil
}

// GetByProductID retrieves a product by productId.
func (r *ProductRepository) GetByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "productId", Value: productID}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	p := doc.toDomain()
	return &p, nil
}

// List returns products matching the filter in natural store order.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	cur, err := r.coll.Find(ctx, listQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	products := []domain.Product{}
	for cur.Next(ctx) {
		var doc productDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func listQuery(filter repository.ProductFilter) bson.D {
	q := bson.D{}
	if filter.Category != nil {
		q = append(q, bson.E{Key: "category", Value: string(*filter.Category)})
	}
	if filter.Keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Keyword), Options: "i"}
		q = append(q, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: pattern}},
			bson.D{{Key: "category", Value: pattern}},
		}})
	}
	return q
}

// Update applies a shallow $set and returns the post-update document.
func (r *ProductRepository) Update(ctx context.Context, productID string, u domain.ProductUpdate) (*domain.Product, error) {
	update := bson.D{{Key: "$set", Value: setFields(u, r.now())}}
	return r.findOneAndUpdate(ctx, productID, update)
}

// Delete removes a product document.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "productId", Value: productID}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("product", productID)
	}
	return nil
}

// AppendReview pushes a review onto the embedded reviews array in a single
// atomic update.
func (r *ProductRepository) AppendReview(ctx context.Context, productID string, review domain.Review) (*domain.Product, error) {
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "reviews", Value: newReviewDocument(review)}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
	}
	return r.findOneAndUpdate(ctx, productID, update)
}

func (r *ProductRepository) findOneAndUpdate(ctx context.Context, productID string, update bson.D) (*domain.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "productId", Value: productID}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	p := doc.toDomain()
	return &p, nil
}
