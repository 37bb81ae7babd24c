package store

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"

	"studychat/internal/models"
	"studychat/internal/types"
)

const collectionName = "documents"

// ChromemStore is the default index backend: an embedded, file-backed vector
// database at a single named path. Reopening the same path reproduces the
// stored collection.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	encoder    types.Encoder
}

func NewChromemStore(path string, encoder types.Encoder) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, map[string]string{
		"hnsw:space": "cosine",
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: collection,
		encoder:    encoder,
	}, nil
}

func (s *ChromemStore) Insert(ctx context.Context, chunks []models.Chunk) error {
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

	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		metadata := map[string]string{"source": c.Source}
		for k, v := range c.Metadata {
			metadata[k] = v
		}
		metadatas[i] = metadata
	}

	if err := s.collection.Add(ctx, ids, vectors, metadatas, texts); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexWrite, err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, vector []float32, topK int) ([]models.ScoredChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	// chromem rejects nResults greater than the number of stored documents.
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexQuery, err)
	}

	chunks := make([]models.ScoredChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, models.ScoredChunk{
			Chunk: models.Chunk{
				ID:       r.ID,
				Text:     r.Content,
				Source:   r.Metadata["source"],
				Metadata: r.Metadata,
			},
			Similarity: r.Similarity,
		})
	}
	return chunks, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close is a no-op: chromem persists on every write.
func (s *ChromemStore) Close() error {
	return nil
}
