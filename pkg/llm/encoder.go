package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"

	"studychat/internal/types"
)

// EncoderConfig configures the sentence encoder. The model is fixed for the
// process lifetime; its output dimensionality must match the index.
type EncoderConfig struct {
	Model   string
	BaseURL string
}

// Encoder embeds text with an Ollama-served embedding model.
type Encoder struct {
	config EncoderConfig
	llm    *ollama.LLM
}

func NewEncoder(config EncoderConfig) (*Encoder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	emb, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encoder: %w", err)
	}

	return &Encoder{config: config, llm: emb}, nil
}

func (e *Encoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEncoding, err)
	}
	return vectors, nil
}

func (e *Encoder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: encoder returned no vector", types.ErrEncoding)
	}
	return vectors[0], nil
}
