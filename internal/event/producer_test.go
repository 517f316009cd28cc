package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func newTestProducer(w *recordingWriter) *Producer {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProducer(pkgkafka.NewProducerWithWriter(w, []string{"localhost:9092"}, l), l)
}

func decode(t *testing.T, msg kafka.Message) *pkgkafka.Event {
	t.Helper()
	evt, err := pkgkafka.UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	return evt
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.product.created", TopicProductCreated)
	assert.Equal(t, "storefront.product.updated", TopicProductUpdated)
	assert.Equal(t, "storefront.product.deleted", TopicProductDeleted)
	assert.Equal(t, "storefront.review.added", TopicReviewAdded)
}

func TestProducer_PublishProductCreated(t *testing.T) {
	w := &recordingWriter{}
	p := newTestProducer(w)

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	product := &domain.Product{ProductID: "p_001", Name: "Lamp", Brand: "Lumo", Price: 19.5, Category: domain.CategoryHomeKitchen}
	require.NoError(t, p.PublishProductCreated(ctx, product))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, TopicProductCreated, msg.Topic)
	assert.Equal(t, "p_001", string(msg.Key))

	evt := decode(t, msg)
	assert.Equal(t, TopicProductCreated, evt.EventType)
	assert.Equal(t, AggregateTypeProduct, evt.AggregateType)
	assert.Equal(t, "p_001", evt.AggregateID)
	assert.Equal(t, Source, evt.Source)
	assert.Equal(t, "corr-1", evt.CorrelationID)

	var data ProductData
	require.NoError(t, evt.UnmarshalData(&data))
	assert.Equal(t, "Lamp", data.Name)
	assert.Equal(t, "Home and Kitchen", data.Category)
}

func TestProducer_PublishReviewAdded(t *testing.T) {
	w := &recordingWriter{}
	p := newTestProducer(w)

	review := domain.Review{ID: "r1", Rating: domain.RatingFive, ReviewMessage: "Great!"}
	require.NoError(t, p.PublishReviewAdded(context.Background(), "p_001", review))

	require.Len(t, w.msgs, 1)
	evt := decode(t, w.msgs[0])
	assert.Equal(t, TopicReviewAdded, w.msgs[0].Topic)
	assert.Empty(t, evt.CorrelationID)

	var data ReviewAddedData
	require.NoError(t, evt.UnmarshalData(&data))
	assert.Equal(t, ReviewAddedData{ProductID: "p_001", ReviewID: "r1", Rating: "5", ReviewMessage: "Great!"}, data)
}

func TestProducer_UpdatedAndDeleted(t *testing.T) {
	w := &recordingWriter{}
	p := newTestProducer(w)
	ctx := context.Background()

	require.NoError(t, p.PublishProductUpdated(ctx, &domain.Product{ProductID: "p_002"}))
	require.NoError(t, p.PublishProductDeleted(ctx, "p_003"))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, TopicProductUpdated, w.msgs[0].Topic)
	assert.Equal(t, TopicProductDeleted, w.msgs[1].Topic)

	var data ProductDeletedData
	require.NoError(t, decode(t, w.msgs[1]).UnmarshalData(&data))
	assert.Equal(t, "p_003", data.ProductID)
}

func TestProducer_PublishFailure(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker unavailable")}
	p := newTestProducer(w)

	err := p.PublishProductDeleted(context.Background(), "p_001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish storefront.product.deleted event")
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestProducer_Disabled(t *testing.T) {
	p := NewProducer(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.False(t, p.Enabled())
	assert.NoError(t, p.PublishProductCreated(context.Background(), &domain.Product{ProductID: "p_001"}))

	var nilProducer *Producer
	assert.False(t, nilProducer.Enabled())
}
