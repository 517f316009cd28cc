package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI                    string
	Database               string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
	// ConnectAttempts bounds startup retries. Zero means three attempts.
	ConnectAttempts int
}

// DefaultMongoConfig returns defaults for a local MongoDB.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:                    "mongodb://localhost:27017",
		Database:               "storefront",
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		MaxPoolSize:            100,
		MinPoolSize:            0,
		ConnectAttempts:        3,
	}
}

// Mongo is an open client bound to one database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

const (
	retryBaseWait       = 1 * time.Second
	retryJitterFraction = 0.25
)

// retryBackoff doubles from one second per attempt with ±25% jitter.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := retryBaseWait << attempt
	jitter := time.Duration(float64(base) * retryJitterFraction * (2*rand.Float64() - 1)) // #nosec G404 -- retry jitter
	return base + jitter
}

// ClientOptions builds driver options from cfg and m. A nil monitor leaves the
// driver unmonitored.
func ClientOptions(cfg MongoConfig, m *Monitor) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(cfg.MinPoolSize)
	}
	if m != nil {
		opts.SetMonitor(m.CommandMonitor()).SetPoolMonitor(m.PoolMonitor())
	}
	return opts
}

// NewMongo connects to MongoDB and pings the primary, retrying the whole
// sequence with exponential backoff.
func NewMongo(ctx context.Context, cfg MongoConfig, m *Monitor, logger *slog.Logger) (*Mongo, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo: database name is required")
	}
	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 3
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		client, err := connect(ctx, cfg, m)
		if err == nil {
			return &Mongo{Client: client, DB: client.Database(cfg.Database)}, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		wait := retryBackoff(attempt)
		if logger != nil {
			logger.Warn("mongo connection failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", attempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to mongo: context canceled during retry: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("connect to mongo after %d attempts: %w", attempts, lastErr)
}

func connect(ctx context.Context, cfg MongoConfig, m *Monitor) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, ClientOptions(cfg, m))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ServerSelectionTimeout+time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

// Ping checks that the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting for in-use connections up to ctx.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
