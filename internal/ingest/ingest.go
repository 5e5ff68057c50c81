package ingest

import (
	"context"
	"fmt"

	"waterfilter-rag/internal/config"
	"waterfilter-rag/internal/helper"
	"waterfilter-rag/internal/models"
	"waterfilter-rag/internal/vectorstore"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Ingestor loads a source file, splits it into chunks and writes them to the
// vector store in one batch. Any failure aborts the whole run; re-running is
// safe because chunk IDs are deterministic.
type Ingestor struct {
	store vectorstore.VectorStore
	cfg   *config.RAGConfig
}

func NewIngestor(store vectorstore.VectorStore, cfg *config.RAGConfig) *Ingestor {
	return &Ingestor{store: store, cfg: cfg}
}

// Ingest reads the source, chunks it and inserts all chunks. Returns the
// number of inserted entries.
func (ing *Ingestor) Ingest(ctx context.Context, sourcePath string) (int, error) {
	docs, err := LoadDocuments(ctx, sourcePath)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", sourcePath, err)
	}
	log.Info().Int("documents", len(docs)).Str("source", sourcePath).Msg("Loaded documents")

	chunks, err := SplitDocuments(docs, ing.cfg.ChunkSize, ing.cfg.ChunkOverlap)
	if err != nil {
		return 0, fmt.Errorf("failed to split documents: %w", err)
	}
	log.Info().Int("chunks", len(chunks)).Msg("Split into text chunks")

	ids, err := ing.store.InsertMany(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to insert chunks: %w", err)
	}
	return len(ids), nil
}

// SplitDocuments cuts each document into bounded overlapping chunks using the
// recursive character splitter, preferring paragraph, sentence and word
// boundaries before raw character cuts. Chunk counts are deterministic for a
// fixed input and fixed size/overlap.
func SplitDocuments(docs []schema.Document, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var chunks []models.Chunk
	for _, doc := range docs {
		parts, err := splitter.SplitText(doc.PageContent)
		if err != nil {
			return nil, err
		}
		source, row := provenanceOf(doc)
		for i, part := range parts {
			chunks = append(chunks, models.Chunk{
				ID:       helper.ChunkID(source, row, i),
				Content:  part,
				Source:   source,
				RowIndex: row,
				ChunkID:  i,
			})
		}
	}
	return chunks, nil
}

func provenanceOf(doc schema.Document) (string, int) {
	source, _ := doc.Metadata["source"].(string)
	row, _ := doc.Metadata["row"].(int)
	return source, row
}
