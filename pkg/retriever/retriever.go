package retriever

import (
	"context"

	"studychat/internal/models"
	"studychat/internal/types"
)

// Retriever embeds a query with the shared encoder and returns the most
// similar chunks. Similarity scores are an internal ranking signal and are
// not exposed; the backend decides any thresholding.
type Retriever struct {
	encoder types.Encoder
	store   types.VectorStore
}

func New(encoder types.Encoder, store types.VectorStore) *Retriever {
	return &Retriever{encoder: encoder, store: store}
}

// Retrieve returns up to topK chunks ranked by similarity to the query. An
// empty collection yields an empty result, not an error; a failing index
// query propagates, since no context means no answer can be grounded.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Chunk, error) {
	if topK <= 0 {
		topK = 1
	}

	vector, err := r.encoder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := r.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, res.Chunk)
	}
	return chunks, nil
}
