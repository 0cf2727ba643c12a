package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/lib/pq"

	"github.com/electionwatch/candidate-dashboard/internal/config"
	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// PostgreSQLStorage implements Source over a table whose document column
// holds each post as JSONB
type PostgreSQLStorage struct {
	db         *sql.DB
	table      string
	projection bool
}

// NewPostgreSQLStorage opens a connection pool. Like the other sources it does
// not dial until the first query.
func NewPostgreSQLStorage(cfg config.StorageConfig) (*PostgreSQLStorage, error) {
	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}
	db.SetMaxOpenConns(2)

	slog.Info("[PostgreSQL] Pool created", slog.String("table", cfg.TableName))

	return &PostgreSQLStorage{
		db:         db,
		table:      cfg.TableName,
		projection: cfg.Projection,
	}, nil
}

func (p *PostgreSQLStorage) query() string {
	return fmt.Sprintf("SELECT document FROM %s", pq.QuoteIdentifier(p.table))
}

// FetchPosts reads every document row. Rows whose JSON does not decode to an
// object are skipped.
func (p *PostgreSQLStorage) FetchPosts(ctx context.Context) ([]models.Document, error) {
	rows, err := p.db.QueryContext(ctx, p.query())
	if err != nil {
		return nil, classifyPostgresError("query posts", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	skipped := 0
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}

		doc, err := decodeJSONDocument(raw)
		if err != nil {
			skipped++
			continue
		}
		if p.projection {
			doc = project(doc)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPostgresError("iterate posts", err)
	}

	if skipped > 0 {
		slog.Warn("[PostgreSQL] Skipped rows with malformed documents", slog.Int("skipped", skipped))
	}
	slog.Debug("[PostgreSQL] Fetched posts", slog.Int("count", len(docs)))
	return docs, nil
}

// Ping verifies a connection can be established
func (p *PostgreSQLStorage) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return classifyPostgresError("ping", err)
	}
	return nil
}

// Close closes the pool
func (p *PostgreSQLStorage) Close() error {
	return p.db.Close()
}

func decodeJSONDocument(raw []byte) (models.Document, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc == nil {
		return nil, errors.New("document is not a JSON object")
	}
	return models.Document(doc), nil
}

// classifyPostgresError treats dial failures and SQLSTATE class 08
// (connection exception) as the store being unavailable
func classifyPostgresError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return unavailable(op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return unavailable(op, err)
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}
