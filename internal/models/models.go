package models

// Chunk is a bounded, independently retrievable unit of document text.
// Chunks are immutable once created; the ID is a content hash so that
// re-ingesting the same source yields the same IDs.
type Chunk struct {
	ID       string
	Text     string
	Source   string
	Metadata map[string]string
}

// ScoredChunk pairs a chunk with its cosine similarity to a query vector.
type ScoredChunk struct {
	Chunk
	Similarity float32
}

// Page is a single piece of scraped website content used for bootstrap
// ingestion when the collection is empty.
type Page struct {
	Title   string
	URL     string
	Content string
}

// Answer is the result of grounded synthesis: the generated text plus the
// chunk texts that were supplied as context.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources"`
}
