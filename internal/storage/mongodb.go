package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/electionwatch/candidate-dashboard/internal/config"
	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// MongoDBStorage implements Source using a MongoDB collection
type MongoDBStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	projection bool
}

// NewMongoDBStorage creates a new MongoDB source. The driver connects lazily,
// so an unreachable server surfaces on the first fetch rather than here.
func NewMongoDBStorage(cfg config.StorageConfig) (*MongoDBStorage, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoDBURI).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	slog.Info("[MongoDB] Client created",
		slog.String("database", cfg.Database),
		slog.String("collection", cfg.Collection),
		slog.Bool("projection", cfg.Projection))

	return newMongoDBStorage(client, client.Database(cfg.Database).Collection(cfg.Collection), cfg.Projection), nil
}

func newMongoDBStorage(client *mongo.Client, coll *mongo.Collection, projection bool) *MongoDBStorage {
	return &MongoDBStorage{
		client:     client,
		collection: coll,
		projection: projection,
	}
}

// projectionDoc requests the fixed field set and leaves out _id
func projectionDoc() bson.D {
	proj := bson.D{{Key: "_id", Value: 0}}
	for _, field := range models.Projection {
		proj = append(proj, bson.E{Key: field, Value: 1})
	}
	return proj
}

// FetchPosts retrieves every document in the collection
func (m *MongoDBStorage) FetchPosts(ctx context.Context) ([]models.Document, error) {
	opts := options.Find()
	if m.projection {
		opts.SetProjection(projectionDoc())
	}

	cursor, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, classifyMongoError("find posts", err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, classifyMongoError("decode posts", err)
	}

	docs := make([]models.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, models.Document(plainMap(r)))
	}

	slog.Debug("[MongoDB] Fetched posts", slog.Int("count", len(docs)))
	return docs, nil
}

// Ping checks that the primary is reachable
func (m *MongoDBStorage) Ping(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return classifyMongoError("ping", err)
	}
	return nil
}

// Close disconnects the client
func (m *MongoDBStorage) Close() error {
	if m.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func classifyMongoError(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return unavailable(op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// plainMap converts driver value types into the plain Go types the
// normalizer understands: maps, []interface{}, time.Time and scalars.
func plainMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.M:
		return plainMap(val)
	case map[string]interface{}:
		return plainMap(val)
	case primitive.D:
		out := make(map[string]interface{}, len(val))
		for _, e := range val {
			out[e.Key] = plainValue(e.Value)
		}
		return out
	case primitive.A:
		return plainSlice(val)
	case []interface{}:
		return plainSlice(val)
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return v
	}
}

func plainSlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = plainValue(v)
	}
	return out
}
