package types

import (
	"context"

	"studychat/internal/models"
)

// Encoder converts text into dense vectors. The same encoder instance must
// be used at ingestion and at query time; mixing encoders corrupts the
// similarity space.
type Encoder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is the durable collection of chunk-embedding pairs.
type VectorStore interface {
	// Insert embeds each chunk's text and writes (id, vector, text, metadata)
	// tuples. IDs are assigned by the caller; an insert with a colliding ID
	// overwrites the earlier entry.
	Insert(ctx context.Context, chunks []models.Chunk) error
	// Search returns chunks ranked by descending cosine similarity. An empty
	// collection yields an empty slice, not an error.
	Search(ctx context.Context, vector []float32, topK int) ([]models.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Extractor pulls plain text out of one document format. It returns an empty
// string, not an error, when the document holds no extractable text.
type Extractor interface {
	Extract(content []byte) (string, error)
}
