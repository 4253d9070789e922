// Package pgvector provides a PostgreSQL vector driver using the pgvector
// extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/papercomputeco/ragnotes/pkg/vector"
)

// DefaultTable is the table embeddings are written to.
const DefaultTable = "note_embeddings"

// Driver implements vector.Driver on PostgreSQL with pgvector.
type Driver struct {
	pool       *pgxpool.Pool
	table      string
	dimensions uint
	logger     *slog.Logger
}

// Config holds configuration for the pgvector driver.
type Config struct {
	// ConnString is a PostgreSQL connection string.
	ConnString string

	// Table defaults to DefaultTable.
	Table string

	// Dimensions is the vector column size.
	Dimensions uint
}

// NewDriver creates the pgvector extension and embeddings table if needed
// and opens a connection pool with the vector types registered.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.ConnString == "" {
		return nil, errors.New("postgres connection string is required")
	}
	if c.Dimensions == 0 {
		return nil, errors.New("pgvector embedding dimensions cannot be 0, must be configured")
	}

	table := c.Table
	if table == "" {
		table = DefaultTable
	}

	// The extension has to exist before the pool can register its types.
	conn, err := pgx.Connect(ctx, c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to postgres: %w", vector.ErrConnection, err)
	}
	if _, err := conn.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("creating vector extension: %w", err)
	}
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			doc_id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL
		)`, pgx.Identifier{table}.Sanitize(), c.Dimensions)
	if _, err := conn.Exec(ctx, createTable); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("creating embeddings table: %w", err)
	}
	conn.Close(ctx)

	poolConfig, err := pgxpool.ParseConfig(c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: opening pool: %w", vector.ErrConnection, err)
	}

	logger.Info("pgvector vector driver initialized",
		"table", table,
		"dimensions", c.Dimensions,
	)

	return &Driver{
		pool:       pool,
		table:      pgx.Identifier{table}.Sanitize(),
		dimensions: c.Dimensions,
		logger:     logger,
	}, nil
}

func (d *Driver) checkDimensions(embedding []float32) error {
	if uint(len(embedding)) != d.dimensions {
		return fmt.Errorf("%w: got %d, want %d", vector.ErrDimensions, len(embedding), d.dimensions)
	}
	return nil
}

// Add upserts documents in a single batch.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) (vector.Ack, error) {
	if len(docs) == 0 {
		return vector.NewAck(docs), nil
	}

	upsert := fmt.Sprintf(`
		INSERT INTO %s (doc_id, embedding) VALUES ($1, $2)
		ON CONFLICT (doc_id) DO UPDATE SET embedding = EXCLUDED.embedding`, d.table)

	batch := &pgx.Batch{}
	for _, doc := range docs {
		if err := d.checkDimensions(doc.Embedding); err != nil {
			return vector.Ack{}, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		batch.Queue(upsert, doc.ID, pgv.NewVector(doc.Embedding))
	}

	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return vector.Ack{}, fmt.Errorf("upserting embeddings: %w", err)
	}

	d.logger.Debug("upserted embeddings to pgvector", "count", len(docs))

	return vector.NewAck(docs), nil
}

// Query finds the topK most similar documents by cosine distance.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}
	if err := d.checkDimensions(embedding); err != nil {
		return nil, err
	}

	rows, err := d.pool.Query(ctx, fmt.Sprintf(`
		SELECT doc_id, embedding <=> $1 AS distance
		FROM %s
		ORDER BY distance
		LIMIT $2`, d.table), pgv.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var docID string
		var distance float64
		if err := rows.Scan(&docID, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		results = append(results, vector.QueryResult{
			Document: vector.Document{ID: docID},
			Score:    float32(1 - distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried pgvector", "results", len(results))

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, fmt.Sprintf(
		`SELECT doc_id, embedding FROM %s WHERE doc_id = ANY($1)`, d.table), ids)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []vector.Document
	for rows.Next() {
		var doc vector.Document
		var emb pgv.Vector
		if err := rows.Scan(&doc.ID, &emb); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Embedding = emb.Slice()
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := d.pool.Exec(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE doc_id = ANY($1)`, d.table), ids); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted embeddings from pgvector", "count", len(ids))

	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	d.pool.Close()
	return nil
}

var _ vector.Driver = (*Driver)(nil)
