package database

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func rawCommand(t *testing.T, doc bson.D) bson.Raw {
	t.Helper()
	b, err := bson.Marshal(doc)
	require.NoError(t, err)
	return bson.Raw(b)
}

func startEvent(t *testing.T, name, coll string, reqID int64) *event.CommandStartedEvent {
	return &event.CommandStartedEvent{
		Command:      rawCommand(t, bson.D{{Key: name, Value: coll}}),
		DatabaseName: "storefront",
		CommandName:  name,
		RequestID:    reqID,
		ConnectionID: "localhost:27017[-1]",
	}
}

func finishedEvent(name string, reqID int64, d time.Duration) event.CommandFinishedEvent {
	return event.CommandFinishedEvent{
		CommandName:  name,
		DatabaseName: "storefront",
		RequestID:    reqID,
		ConnectionID: "localhost:27017[-1]",
		Duration:     d,
	}
}

func sampleCount(t *testing.T, service, command, status string) uint64 {
	t.Helper()
	metric, ok := mongoCommandDuration.WithLabelValues(service, command, status).(prometheus.Metric)
	require.True(t, ok)
	var d dto.Metric
	require.NoError(t, metric.Write(&d))
	return d.GetHistogram().GetSampleCount()
}

func TestMonitor_SucceededCommand(t *testing.T) {
	exporter := setupTestTracer(t)
	m := NewMonitor(MonitorOptions{Service: "mon-ok"})
	cm := m.CommandMonitor()
	ctx := context.Background()

	cm.Started(ctx, startEvent(t, "find", "products", 1))
	cm.Succeeded(ctx, &event.CommandSucceededEvent{CommandFinishedEvent: finishedEvent("find", 1, 3*time.Millisecond)})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "mongo.find", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	var coll string
	for _, a := range spans[0].Attributes {
		if a.Key == "db.mongodb.collection" {
			coll = a.Value.AsString()
		}
	}
	assert.Equal(t, "products", coll)

	assert.Equal(t, uint64(1), sampleCount(t, "mon-ok", "find", "ok"))
}

func TestMonitor_FailedCommand(t *testing.T) {
	exporter := setupTestTracer(t)
	m := NewMonitor(MonitorOptions{Service: "mon-fail"})
	cm := m.CommandMonitor()
	ctx := context.Background()

	cm.Started(ctx, startEvent(t, "insert", "products", 2))
	cm.Failed(ctx, &event.CommandFailedEvent{
		CommandFinishedEvent: finishedEvent("insert", 2, time.Millisecond),
		Failure:              "E11000 duplicate key error",
	})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "E11000 duplicate key error", spans[0].Status.Description)
	assert.Equal(t, uint64(1), sampleCount(t, "mon-fail", "insert", "error"))
}

func TestMonitor_SkipsHandshakeCommands(t *testing.T) {
	exporter := setupTestTracer(t)
	cm := NewMonitor(MonitorOptions{Service: "mon-skip"}).CommandMonitor()
	ctx := context.Background()

	cm.Started(ctx, startEvent(t, "hello", "", 3))
	cm.Succeeded(ctx, &event.CommandSucceededEvent{CommandFinishedEvent: finishedEvent("hello", 3, time.Millisecond)})

	assert.Empty(t, exporter.GetSpans())
}

func TestMonitor_SlowCommandLogged(t *testing.T) {
	setupTestTracer(t)
	var buf bytes.Buffer
	m := NewMonitor(MonitorOptions{
		Service:       "mon-slow",
		SlowThreshold: 100 * time.Millisecond,
		Logger:        slog.New(slog.NewJSONHandler(&buf, nil)),
	})
	cm := m.CommandMonitor()
	ctx := context.Background()

	cm.Started(ctx, startEvent(t, "aggregate", "products", 4))
	cm.Succeeded(ctx, &event.CommandSucceededEvent{CommandFinishedEvent: finishedEvent("aggregate", 4, 10*time.Millisecond)})
	assert.Empty(t, buf.String())

	cm.Started(ctx, startEvent(t, "aggregate", "products", 5))
	cm.Succeeded(ctx, &event.CommandSucceededEvent{CommandFinishedEvent: finishedEvent("aggregate", 5, 250*time.Millisecond)})
	assert.Contains(t, buf.String(), "slow mongo command")
	assert.Contains(t, buf.String(), `"command":"aggregate"`)
}

func TestMonitor_FinishWithoutStart(t *testing.T) {
	exporter := setupTestTracer(t)
	cm := NewMonitor(MonitorOptions{Service: "mon-orphan"}).CommandMonitor()

	assert.NotPanics(t, func() {
		cm.Succeeded(context.Background(), &event.CommandSucceededEvent{CommandFinishedEvent: finishedEvent("find", 99, time.Millisecond)})
	})
	assert.Empty(t, exporter.GetSpans())
}

func TestPoolMonitor(t *testing.T) {
	pm := NewMonitor(MonitorOptions{Service: "pool-svc"}).PoolMonitor()

	for _, typ := range []string{
		event.ConnectionCreated, event.ConnectionCreated,
		event.GetSucceeded, event.GetSucceeded, event.ConnectionReturned,
		event.ConnectionClosed, event.GetFailed,
	} {
		pm.Event(&event.PoolEvent{Type: typ})
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(mongoPoolConnections.WithLabelValues("pool-svc", "open")))
	assert.Equal(t, float64(1), testutil.ToFloat64(mongoPoolConnections.WithLabelValues("pool-svc", "in_use")))
	assert.Equal(t, float64(1), testutil.ToFloat64(mongoPoolCheckoutFailures.WithLabelValues("pool-svc")))
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "users", collectionName(rawCommand(t, bson.D{{Key: "find", Value: "users"}}), "find"))
	assert.Empty(t, collectionName(rawCommand(t, bson.D{{Key: "aggregate", Value: 1}}), "aggregate"))
	assert.Empty(t, collectionName(nil, "find"))
}
