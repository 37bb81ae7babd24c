package pipeline_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/internal/models"
	"studychat/internal/types"
	"studychat/pkg/chunker"
	"studychat/pkg/extract"
	"studychat/pkg/pipeline"
	"studychat/pkg/retriever"
	"studychat/pkg/store"
)

// plainTextExtractor lets tests feed raw text through the pipeline without a
// real document format.
type plainTextExtractor struct{}

func (plainTextExtractor) Extract(content []byte) (string, error) {
	return string(content), nil
}

const typeText = extract.DocumentType("text")

// vocabEncoder embeds text as a bag-of-words count over a fixed vocabulary.
// Deterministic, so similarity rankings in these tests are exact.
type vocabEncoder struct{}

var vocab = []string{
	"semester", "1", "2", "includes", "calculus",
	"physics", "algorithms", "and", "what", "is", "in",
}

func (vocabEncoder) EmbedText(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(vocab))
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?")
		for i, word := range vocab {
			if tok == word {
				vec[i]++
			}
		}
	}
	return vec, nil
}

func (e vocabEncoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newTestPipeline(t *testing.T) (*pipeline.Pipeline, types.VectorStore) {
	t.Helper()

	s, err := store.NewChromemStore(filepath.Join(t.TempDir(), "index"), vocabEncoder{})
	require.NoError(t, err)

	registry := extract.NewRegistry()
	registry.Register(typeText, plainTextExtractor{})

	ch := chunker.NewWithConfig(chunker.Config{ChunkSize: 40, ChunkOverlap: 10})
	return pipeline.New(registry, ch, s), s
}

func TestIngest_EndToEnd(t *testing.T) {
	ctx := context.Background()
	p, s := newTestPipeline(t)

	doc := []byte("Semester 1 includes Calculus and Physics. Semester 2 includes Algorithms.")

	n, err := p.Ingest(ctx, doc, typeText, "curriculum.txt")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 2)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)

	// The chunk naming Calculus must rank first for a semester 1 query.
	r := retriever.New(vocabEncoder{}, s)
	chunks, err := r.Retrieve(ctx, "What is in semester 1?", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Calculus")
	assert.Equal(t, "curriculum.txt", chunks[0].Source)
	assert.Equal(t, "uploaded_document", chunks[0].Metadata["source"])
}

func TestIngest_Idempotent(t *testing.T) {
	ctx := context.Background()
	p, s := newTestPipeline(t)

	doc := []byte("Semester 1 includes Calculus and Physics. Semester 2 includes Algorithms.")

	first, err := p.Ingest(ctx, doc, typeText, "curriculum.txt")
	require.NoError(t, err)
	second, err := p.Ingest(ctx, doc, typeText, "curriculum.txt")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, count)
}

func TestIngest_DistinctSourcesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	p, s := newTestPipeline(t)

	doc := []byte("Semester 1 includes Calculus and Physics.")

	n1, err := p.Ingest(ctx, doc, typeText, "a.txt")
	require.NoError(t, err)
	n2, err := p.Ingest(ctx, doc, typeText, "b.txt")
	require.NoError(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n1+n2, count)
}

func TestIngest_EmptyContent(t *testing.T) {
	p, _ := newTestPipeline(t)

	_, err := p.Ingest(context.Background(), []byte("   \n\t  "), typeText, "blank.txt")
	assert.ErrorIs(t, err, types.ErrEmptyContent)
}

func TestIngest_UnsupportedType(t *testing.T) {
	p, _ := newTestPipeline(t)

	_, err := p.Ingest(context.Background(), []byte("body"), extract.DocumentType("docx"), "f.docx")
	assert.ErrorIs(t, err, types.ErrUnsupportedType)
}

func TestChunkID(t *testing.T) {
	id := pipeline.ChunkID("doc.pdf", 0, "some text")

	assert.Len(t, id, 40) // sha1 hex
	assert.Equal(t, id, pipeline.ChunkID("doc.pdf", 0, "some text"))
	assert.NotEqual(t, id, pipeline.ChunkID("doc.pdf", 1, "some text"))
	assert.NotEqual(t, id, pipeline.ChunkID("other.pdf", 0, "some text"))
	assert.NotEqual(t, id, pipeline.ChunkID("doc.pdf", 0, "other text"))
}

func TestBootstrap_SkipsEmptyPages(t *testing.T) {
	ctx := context.Background()
	p, s := newTestPipeline(t)

	pages := []models.Page{
		{Title: "Informatyka", URL: "https://example.edu/studia/informatyka", Content: "Semester 1 includes Calculus and Physics."},
		{Title: "Pusta strona", URL: "https://example.edu/pusta", Content: "   "},
		{Title: "Algorytmy", URL: "https://example.edu/studia/algorytmy", Content: "Semester 2 includes Algorithms."},
	}

	total, err := p.Bootstrap(ctx, pages)
	require.NoError(t, err)
	assert.Greater(t, total, 0)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, total, count)

	r := retriever.New(vocabEncoder{}, s)
	chunks, err := r.Retrieve(ctx, "What is in semester 2?", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Algorithms")
	assert.Equal(t, "website", chunks[0].Metadata["source"])
}
