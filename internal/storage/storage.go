package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/electionwatch/candidate-dashboard/internal/config"
	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// ErrUnavailable marks failures to reach the data store. Callers decide
// whether to show an empty state or abort; nothing here retries.
var ErrUnavailable = errors.New("data store unavailable")

// Source defines the read-only contract for fetching post documents
type Source interface {
	// FetchPosts returns every document of the configured collection in
	// store order. One round trip per call, no filtering.
	FetchPosts(ctx context.Context) ([]models.Document, error)
	Ping(ctx context.Context) error
	Close() error
}

// NewSource creates a source based on configuration
func NewSource(cfg config.StorageConfig) (Source, error) {
	switch cfg.Type {
	case "mongodb":
		return NewMongoDBStorage(cfg)
	case "dynamodb":
		return NewDynamoDBStorage(cfg)
	case "postgresql":
		return NewPostgreSQLStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// unavailable wraps err so that errors.Is(err, ErrUnavailable) holds
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// project keeps only the projected fields of doc
func project(doc models.Document) models.Document {
	out := make(models.Document, len(models.Projection))
	for _, field := range models.Projection {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}
