package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicProductCreated = pkgkafka.Topic(AggregateTypeProduct, "created")
	TopicProductUpdated = pkgkafka.Topic(AggregateTypeProduct, "updated")
	TopicProductDeleted = pkgkafka.Topic(AggregateTypeProduct, "deleted")
	TopicReviewAdded    = pkgkafka.Topic("review", "added")
)

// AggregateTypeProduct is the aggregate every event belongs to. Reviews are
// embedded in products, so review events are keyed by product as well.
const AggregateTypeProduct = "product"

// Source identifies events originating from this service.
const Source = "storefront-api"

// ProductData is the payload for product.created and product.updated.
type ProductData struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Brand        string  `json:"brand"`
	Price        float64 `json:"price"`
	Quantity     int64   `json:"quantity"`
	Availability string  `json:"availability"`
}

// ProductDeletedData is the payload for product.deleted.
type ProductDeletedData struct {
	ProductID string `json:"productId"`
}

// ReviewAddedData is the payload for review.added.
type ReviewAddedData struct {
	ProductID     string `json:"productId"`
	ReviewID      string `json:"reviewId"`
	Rating        string `json:"rating"`
	ReviewMessage string `json:"reviewMessage"`
}

// Publisher is satisfied by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events. A Producer built with a nil
// Publisher drops every event, which is how Kafka is disabled.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new domain event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// Enabled reports whether events reach a broker.
func (p *Producer) Enabled() bool {
	return p != nil && p.kafka != nil
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ProductID, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ProductID, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, TopicProductDeleted, productID, ProductDeletedData{ProductID: productID})
}

// PublishReviewAdded publishes a review.added event.
func (p *Producer) PublishReviewAdded(ctx context.Context, productID string, review domain.Review) error {
	return p.publish(ctx, TopicReviewAdded, productID, ReviewAddedData{
		ProductID:     productID,
		ReviewID:      review.ID,
		Rating:        string(review.Rating),
		ReviewMessage: review.ReviewMessage,
	})
}

func (p *Producer) publish(ctx context.Context, topic, productID string, data any) error {
	if !p.Enabled() {
		return nil
	}

	evt, err := pkgkafka.NewEvent(topic, AggregateTypeProduct, productID, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("topic", topic),
		slog.String("product_id", productID),
	)
	return nil
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ProductID:    p.ProductID,
		Name:         p.Name,
		Category:     string(p.Category),
		Brand:        p.Brand,
		Price:        p.Price,
		Quantity:     p.Quantity,
		Availability: p.Availability,
	}
}
