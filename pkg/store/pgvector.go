package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"studychat/internal/models"
	"studychat/internal/types"
)

// PGVectorConfig configures the PostgreSQL backend.
type PGVectorConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
}

// PGVectorStore keeps the collection in PostgreSQL with the pgvector
// extension. Inserts are transactional per call; the whole batch commits or
// none of it does.
type PGVectorStore struct {
	config  PGVectorConfig
	pool    *pgxpool.Pool
	encoder types.Encoder
}

func NewPGVectorStore(ctx context.Context, config PGVectorConfig, encoder types.Encoder) (*PGVectorStore, error) {
	if config.TableName == "" {
		config.TableName = "chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &PGVectorStore{config: config, pool: pool, encoder: encoder}
	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return vs, nil
}

func (s *PGVectorStore) initialize(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source TEXT,
			content TEXT NOT NULL,
			metadata JSONB,
			embedding vector(%d)
		)`, s.config.TableName, s.config.VectorDim)
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		s.config.TableName, s.config.TableName)
	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (s *PGVectorStore) Insert(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.encoder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: encoder returned %d vectors for %d chunks", types.ErrEncoding, len(vectors), len(chunks))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexWrite, err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source, content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`,
		s.config.TableName)

	for i, c := range chunks {
		_, err := tx.Exec(ctx, stmt, c.ID, c.Source, c.Text, c.Metadata, pgvector.NewVector(vectors[i]))
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrIndexWrite, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexWrite, err)
	}
	return nil
}

func (s *PGVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]models.ScoredChunk, error) {
	if topK <= 0 {
		topK = 1
	}

	query := fmt.Sprintf(`
		SELECT id, source, content, metadata, 1 - (embedding <=> $1) AS similarity
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		s.config.TableName)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexQuery, err)
	}
	defer rows.Close()

	var chunks []models.ScoredChunk
	for rows.Next() {
		var c models.ScoredChunk
		if err := rows.Scan(&c.ID, &c.Source, &c.Text, &c.Metadata, &c.Similarity); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrIndexQuery, err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexQuery, err)
	}
	return chunks, nil
}

func (s *PGVectorStore) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.config.TableName)
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrIndexQuery, err)
	}
	return count, nil
}

func (s *PGVectorStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
