package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"waterfilter-rag/internal/config"
	"waterfilter-rag/internal/embedding"
	"waterfilter-rag/internal/models"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Document is one vector entry in the Supabase pgvector table. The column
// dimension is fixed to the embedding model's output size; changing models
// requires a reset and full re-ingestion.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            int64     `bun:"id,pk,autoincrement"`
	DocID         string    `bun:"doc_id,notnull,unique"`
	Content       string    `bun:"content,notnull"`
	Source        string    `bun:"source,notnull"`
	RowIndex      int       `bun:"row_index"`
	ChunkIndex    int       `bun:"chunk_index"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
	Score         float32   `bun:"score,scanonly"`
}

// SupabaseStore keeps the vector collection in a hosted Postgres with the
// pgvector extension, reached through bun.
type SupabaseStore struct {
	db       *bun.DB
	embedder embedding.Embedder
}

func NewSupabaseStore(cfg *config.DatabaseConfig, embedder embedding.Embedder) (*SupabaseStore, error) {
	dsn := cfg.URL + "?sslmode=disable"
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &SupabaseStore{db: db, embedder: embedder}, nil
}

// Init creates the documents table if it does not exist.
func (s *SupabaseStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to create documents table: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Reset drops and recreates the documents table, for full re-ingestion runs.
func (s *SupabaseStore) Reset(ctx context.Context) error {
	if _, err := s.db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to drop documents table: %v", ErrStoreUnavailable, err)
	}
	return s.Init(ctx)
}

func (s *SupabaseStore) InsertMany(ctx context.Context, chunks []models.Chunk) ([]string, error) {
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

	docs := make([]Document, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		docs[i] = Document{
			DocID:      c.ID,
			Content:    c.Content,
			Source:     c.Source,
			RowIndex:   c.RowIndex,
			ChunkIndex: c.ChunkID,
			Embedding:  vectors[i],
		}
		ids[i] = c.ID
	}

	if _, err := s.insertQuery(&docs).Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to insert documents: %v", ErrStoreUnavailable, err)
	}
	return ids, nil
}

// insertQuery upserts on doc_id so re-ingesting an unchanged source converges
// to one entry per chunk instead of tripping the unique constraint.
func (s *SupabaseStore) insertQuery(docs *[]Document) *bun.InsertQuery {
	return s.db.NewInsert().
		Model(docs).
		On("CONFLICT (doc_id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("source = EXCLUDED.source").
		Set("row_index = EXCLUDED.row_index").
		Set("chunk_index = EXCLUDED.chunk_index").
		Set("embedding = EXCLUDED.embedding")
}

func (s *SupabaseStore) Search(ctx context.Context, query string, k int, scoreThreshold float32) ([]models.SearchResult, error) {
	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var docs []Document
	err = s.db.NewSelect().
		Model(&docs).
		ColumnExpr("d.*").
		ColumnExpr("1 - (embedding <=> ?) AS score", queryEmbedding).
		OrderExpr("embedding <=> ?", queryEmbedding).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search documents: %v", ErrStoreUnavailable, err)
	}

	out := make([]models.SearchResult, 0, len(docs))
	for _, doc := range docs {
		if doc.Score < scoreThreshold {
			continue
		}
		out = append(out, models.SearchResult{
			ID:      doc.DocID,
			Content: doc.Content,
			Metadata: map[string]string{
				"source": doc.Source,
				"row":    strconv.Itoa(doc.RowIndex),
				"chunk":  strconv.Itoa(doc.ChunkIndex),
			},
			Score: doc.Score,
		})
	}
	return out, nil
}

func (s *SupabaseStore) Count(ctx context.Context) (int64, error) {
	n, err := s.db.NewSelect().Model((*Document)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count documents: %v", ErrStoreUnavailable, err)
	}
	return int64(n), nil
}

func (s *SupabaseStore) Close(ctx context.Context) error {
	return s.db.Close()
}

var _ VectorStore = (*SupabaseStore)(nil)
