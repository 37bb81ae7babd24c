package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"studychat/internal/models"
	"studychat/internal/types"
	"studychat/pkg/chunker"
	"studychat/pkg/extract"
)

// Pipeline drives ingestion: extract, clean, chunk, embed, index. Each step
// can fail the whole request; nothing is retried and no partial index state
// is rolled back beyond what the store's own insert guarantees.
type Pipeline struct {
	registry *extract.Registry
	chunker  chunker.Chunker
	store    types.VectorStore
}

func New(registry *extract.Registry, ch chunker.Chunker, store types.VectorStore) *Pipeline {
	return &Pipeline{registry: registry, chunker: ch, store: store}
}

// ChunkID derives a chunk identifier from the source label, the chunk's
// position and its text. Re-ingesting identical content produces identical
// IDs, making ingestion idempotent; distinct uploads cannot collide.
func ChunkID(source string, index int, text string) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%d|%s", source, index, text)))
	return hex.EncodeToString(h[:])
}

// Ingest runs an uploaded document through the full pipeline and returns the
// number of chunks indexed.
func (p *Pipeline) Ingest(ctx context.Context, content []byte, docType extract.DocumentType, source string) (int, error) {
	text, err := p.registry.Extract(docType, content)
	if err != nil {
		return 0, err
	}

	text = chunker.Clean(text)
	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, types.ErrEmptyContent
	}

	records := make([]models.Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = models.Chunk{
			ID:     ChunkID(source, i, c),
			Text:   c,
			Source: source,
			Metadata: map[string]string{
				"source":   "uploaded_document",
				"filename": source,
			},
		}
	}

	if err := p.store.Insert(ctx, records); err != nil {
		return 0, err
	}
	log.Printf("indexed %d chunks from %s", len(records), source)
	return len(records), nil
}

// IngestPage indexes one scraped page, with IDs namespaced by the page title.
// Scraped content keeps locale letters through cleaning.
func (p *Pipeline) IngestPage(ctx context.Context, page models.Page) (int, error) {
	text := chunker.CleanLocale(page.Content)
	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, types.ErrEmptyContent
	}

	source := "website_" + page.Title
	records := make([]models.Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = models.Chunk{
			ID:     ChunkID(source, i, c),
			Text:   c,
			Source: source,
			Metadata: map[string]string{
				"source": "website",
				"title":  page.Title,
				"url":    page.URL,
			},
		}
	}

	if err := p.store.Insert(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Bootstrap indexes scraped pages when the collection starts out empty. Pages
// without usable text are skipped; an empty or partial scrape is accepted
// as-is, but index write failures abort.
func (p *Pipeline) Bootstrap(ctx context.Context, pages []models.Page) (int, error) {
	total := 0
	for _, page := range pages {
		n, err := p.IngestPage(ctx, page)
		if errors.Is(err, types.ErrEmptyContent) {
			continue
		}
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
