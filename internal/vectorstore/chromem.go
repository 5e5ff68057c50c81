package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"waterfilter-rag/internal/config"
	"waterfilter-rag/internal/embedding"
	"waterfilter-rag/internal/models"

	"github.com/philippgille/chromem-go"
)

const compress = false

// ChromemStore keeps the vector collection in a local chromem-go database.
// Document IDs are deterministic, so inserting the same chunk twice overwrites
// the existing entry instead of duplicating it.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embedding.Embedder
}

func NewChromemStore(cfg *config.ChromemConfig, embedder embedding.Embedder) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open chromem database: %v", ErrStoreUnavailable, err)
		}
	}

	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embedFn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create/get collection: %v", ErrStoreUnavailable, err)
	}

	return &ChromemStore{db: db, collection: collection, embedder: embedder}, nil
}

func (s *ChromemStore) InsertMany(ctx context.Context, chunks []models.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	docs := make([]chromem.Document, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  chunkMetadata(c),
			Embedding: vectors[i],
		}
		ids[i] = c.ID
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("%w: failed to add documents: %v", ErrStoreUnavailable, err)
	}
	return ids, nil
}

func (s *ChromemStore) Search(ctx context.Context, query string, k int, scoreThreshold float32) ([]models.SearchResult, error) {
	// chromem rejects queries asking for more results than the collection holds.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryText: query,
		NResults:  k,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query by similarity: %v", ErrStoreUnavailable, err)
	}

	// Results arrive ordered by descending similarity.
	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Similarity < scoreThreshold {
			continue
		}
		out = append(out, models.SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: r.Metadata,
			Score:    r.Similarity,
		})
	}
	return out, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int64, error) {
	return int64(s.collection.Count()), nil
}

func (s *ChromemStore) Close(ctx context.Context) error {
	return nil
}

func chunkMetadata(c models.Chunk) map[string]string {
	return map[string]string{
		"source": c.Source,
		"row":    strconv.Itoa(c.RowIndex),
		"chunk":  strconv.Itoa(c.ChunkID),
	}
}

var _ VectorStore = (*ChromemStore)(nil)
