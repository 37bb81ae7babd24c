package store

import (
	"context"
	"fmt"

	"studychat/internal/types"
)

// Config selects and configures an index backend.
type Config struct {
	Backend    string // "chromem" or "pgvector"
	Path       string // chromem: on-disk location
	ConnString string // pgvector: PostgreSQL connection string
	TableName  string
	VectorDim  int
}

// New opens the configured backend. Both backends satisfy types.VectorStore
// and persist across process restarts.
func New(ctx context.Context, config Config, encoder types.Encoder) (types.VectorStore, error) {
	switch config.Backend {
	case "", "chromem":
		path := config.Path
		if path == "" {
			path = "./studychat.db"
		}
		return NewChromemStore(path, encoder)
	case "pgvector":
		return NewPGVectorStore(ctx, PGVectorConfig{
			ConnString: config.ConnString,
			TableName:  config.TableName,
			VectorDim:  config.VectorDim,
		}, encoder)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", config.Backend)
	}
}
