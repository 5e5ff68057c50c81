package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"waterfilter-rag/internal/config"
	"waterfilter-rag/internal/embedding"
	"waterfilter-rag/internal/models"
)

// ErrStoreUnavailable marks connection or backend failures, as opposed to a
// search that legitimately returned no results.
var ErrStoreUnavailable = errors.New("vector store unavailable")

// VectorStore wraps a similarity-search collection. Search embeds the query
// with the same embedder used at ingestion, returns only entries with score >=
// threshold, ordered by descending score, truncated to k.
type VectorStore interface {
	InsertMany(ctx context.Context, chunks []models.Chunk) ([]string, error)
	Search(ctx context.Context, query string, k int, scoreThreshold float32) ([]models.SearchResult, error)
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// New selects a store backend from config.
func New(cfg *config.VectorStoreConfig, embedder embedding.Embedder) (VectorStore, error) {
	switch cfg.Type {
	case "chromem":
		return NewChromemStore(&cfg.Chromem, embedder)
	case "supabase":
		return NewSupabaseStore(&cfg.Database, embedder)
	default:
		return nil, fmt.Errorf("unknown vector store type: %q", cfg.Type)
	}
}
