package mongo

import (
	"context"
	"fmt"

	"github.com/shalevclinic/backend/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DB wraps the MongoDB client and database handle shared by all
// repositories
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// Connect establishes the MongoDB connection and verifies it with a ping
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", cfg.Database))

	return &DB{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

// Ping verifies the connection is still alive
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Collection returns a handle to the named collection
func (d *DB) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}
