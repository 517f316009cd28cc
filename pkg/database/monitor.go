package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/storefront/pkg/database"

// Handshake and session housekeeping are not worth a span or a sample.
var unmonitoredCommands = map[string]struct{}{
	"hello":        {},
	"isMaster":     {},
	"ismaster":     {},
	"ping":         {},
	"saslStart":    {},
	"saslContinue": {},
	"endSessions":  {},
	"buildInfo":    {},
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	Service string
	// SlowThreshold logs commands at or above this duration. Zero disables it.
	SlowThreshold time.Duration
	Logger        *slog.Logger
}

// Monitor observes driver commands: one client span per command, a latency
// histogram sample, and a warning for slow commands.
type Monitor struct {
	service       string
	slowThreshold time.Duration
	logger        *slog.Logger
	tracer        trace.Tracer
	spans         sync.Map // commandKey -> trace.Span
}

// NewMonitor creates a Monitor.
func NewMonitor(opts MonitorOptions) *Monitor {
	return &Monitor{
		service:       opts.Service,
		slowThreshold: opts.SlowThreshold,
		logger:        opts.Logger,
		tracer:        otel.Tracer(tracerName),
	}
}

// CommandMonitor returns the driver hook for command events.
func (m *Monitor) CommandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: m.started,
		Succeeded: func(ctx context.Context, e *event.CommandSucceededEvent) {
			m.finished(ctx, e.CommandFinishedEvent, "")
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			m.finished(ctx, e.CommandFinishedEvent, e.Failure)
		},
	}
}

func commandKey(connID string, requestID int64) string {
	return fmt.Sprintf("%s/%d", connID, requestID)
}

func monitored(command string) bool {
	_, skip := unmonitoredCommands[command]
	return !skip
}

func (m *Monitor) started(ctx context.Context, e *event.CommandStartedEvent) {
	if !monitored(e.CommandName) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("db.system", "mongodb"),
		attribute.String("db.name", e.DatabaseName),
		attribute.String("db.operation", e.CommandName),
	}
	if coll := collectionName(e.Command, e.CommandName); coll != "" {
		attrs = append(attrs, attribute.String("db.mongodb.collection", coll))
	}

	_, span := m.tracer.Start(ctx, "mongo."+e.CommandName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	m.spans.Store(commandKey(e.ConnectionID, e.RequestID), span)
}

func (m *Monitor) finished(ctx context.Context, e event.CommandFinishedEvent, failure string) {
	if !monitored(e.CommandName) {
		return
	}

	status := "ok"
	if failure != "" {
		status = "error"
	}
	mongoCommandDuration.WithLabelValues(m.service, e.CommandName, status).Observe(e.Duration.Seconds())

	if v, ok := m.spans.LoadAndDelete(commandKey(e.ConnectionID, e.RequestID)); ok {
		span := v.(trace.Span)
		if failure != "" {
			span.RecordError(fmt.Errorf("%s", failure))
			span.SetStatus(codes.Error, failure)
		}
		span.End()
	}

	if m.slowThreshold > 0 && m.logger != nil && e.Duration >= m.slowThreshold {
		attrs := []any{
			slog.String("command", e.CommandName),
			slog.String("database", e.DatabaseName),
			slog.Duration("duration", e.Duration),
		}
		if failure != "" {
			attrs = append(attrs, slog.String("error", failure))
		}
		m.logger.WarnContext(ctx, "slow mongo command", attrs...)
	}
}

// collectionName reads the collection from the command document, where it is
// the value of the command-name key for CRUD commands.
func collectionName(cmd bson.Raw, name string) string {
	if len(cmd) == 0 {
		return ""
	}
	v, err := cmd.LookupErr(name)
	if err != nil {
		return ""
	}
	s, _ := v.StringValueOK()
	return s
}
