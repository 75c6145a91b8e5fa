package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures the cart store's MongoDB client. Zero values fall
// back to the defaults below.
type MongoOptions struct {
	URI             string
	Database        string
	AppName         string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	ConnectTimeout  time.Duration
	MaxConnIdleTime time.Duration
}

const (
	defaultMongoMaxPool     = 50
	defaultMongoMinPool     = 2
	defaultMongoConnTimeout = 10 * time.Second
	defaultMongoIdleTime    = 5 * time.Minute
)

var errInvalidPoolSize = errors.New("mongo min pool size exceeds max pool size")

func (o MongoOptions) withDefaults() MongoOptions {
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = defaultMongoMaxPool
	}
	if o.MinPoolSize == 0 {
		o.MinPoolSize = min(defaultMongoMinPool, o.MaxPoolSize)
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultMongoConnTimeout
	}
	if o.MaxConnIdleTime <= 0 {
		o.MaxConnIdleTime = defaultMongoIdleTime
	}
	if o.AppName == "" {
		o.AppName = "storefront"
	}
	return o
}

func (o MongoOptions) clientOptions() (*options.ClientOptions, error) {
	o = o.withDefaults()
	if o.MinPoolSize > o.MaxPoolSize {
		return nil, fmt.Errorf("%w: %d > %d", errInvalidPoolSize, o.MinPoolSize, o.MaxPoolSize)
	}
	return options.Client().
		ApplyURI(o.URI).
		SetAppName(o.AppName).
		SetConnectTimeout(o.ConnectTimeout).
		SetServerSelectionTimeout(o.ConnectTimeout / 2).
		SetMaxPoolSize(o.MaxPoolSize).
		SetMinPoolSize(o.MinPoolSize).
		SetMaxConnIdleTime(o.MaxConnIdleTime), nil
}

// ConnectMongoDB opens a client and pings it before handing out the database.
// The caller owns the client: disconnect it through db.Client().
func ConnectMongoDB(ctx context.Context, opts MongoOptions) (*mongo.Database, error) {
	if opts.Database == "" {
		return nil, errors.New("mongo database name is required")
	}
	clientOpts, err := opts.clientOptions()
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(opts.Database), nil
}
