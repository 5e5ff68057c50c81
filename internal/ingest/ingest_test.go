package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"waterfilter-rag/internal/config"
	"waterfilter-rag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
)

type recordingStore struct {
	inserted []models.Chunk
}

func (r *recordingStore) InsertMany(ctx context.Context, chunks []models.Chunk) ([]string, error) {
	r.inserted = append(r.inserted, chunks...)
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids, nil
}

func (r *recordingStore) Search(ctx context.Context, query string, k int, threshold float32) ([]models.SearchResult, error) {
	return nil, nil
}

func (r *recordingStore) Count(ctx context.Context) (int64, error) { return int64(len(r.inserted)), nil }
func (r *recordingStore) Close(ctx context.Context) error          { return nil }

const catalogCSV = `name,type,price,description
AquaPure Classic,RO purifier,8999,Entry-level RO purifier with 10L storage tank
AquaPure UV Max,UV purifier,12499,UV purifier suitable for municipal water under 200 TDS
HydroShield Pro,RO+UV purifier,18999,Premium purifier with TDS controller and mineral cartridge
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSVOneDocumentPerRow(t *testing.T) {
	path := writeTempFile(t, "water_filter_data.csv", catalogCSV)

	docs, err := LoadDocuments(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Column identity stays in the content; provenance in the metadata.
	assert.Contains(t, docs[0].PageContent, "AquaPure Classic")
	assert.Contains(t, docs[0].PageContent, "name")
	assert.Equal(t, "water_filter_data.csv", docs[0].Metadata["source"])
	assert.Equal(t, 1, docs[0].Metadata["row"])
	assert.Equal(t, 3, docs[2].Metadata["row"])
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeTempFile(t, "catalog.bin", "binary")

	_, err := LoadDocuments(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestSplitShortRowsYieldOneChunkEach(t *testing.T) {
	path := writeTempFile(t, "water_filter_data.csv", catalogCSV)
	docs, err := LoadDocuments(context.Background(), path)
	require.NoError(t, err)

	chunks, err := SplitDocuments(docs, 1000, 150)
	require.NoError(t, err)
	require.Len(t, chunks, 3, "rows under the chunk size map to one chunk each")

	for i, c := range chunks {
		assert.Equal(t, "water_filter_data.csv", c.Source)
		assert.Equal(t, i+1, c.RowIndex)
		assert.Equal(t, 0, c.ChunkID)
		assert.NotEmpty(t, c.ID)
	}
}

func TestSplitLongDocumentOverlaps(t *testing.T) {
	// No natural boundaries, so the splitter falls back to character cuts
	// and the overlap is exact.
	doc := schema.Document{
		PageContent: "abcdefghijklmnopqrst",
		Metadata:    map[string]any{"source": "manual.txt", "row": 1},
	}

	chunks, err := SplitDocuments([]schema.Document{doc}, 10, 3)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 10)
		assert.Equal(t, i, c.ChunkID)
	}
	for i := 0; i < len(chunks)-1; i++ {
		prev := chunks[i].Content
		next := chunks[i+1].Content
		assert.True(t, strings.HasPrefix(next, prev[len(prev)-3:]),
			"chunk %d should start with the last 3 chars of chunk %d", i+1, i)
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	path := writeTempFile(t, "water_filter_data.csv", catalogCSV)
	docs, err := LoadDocuments(context.Background(), path)
	require.NoError(t, err)

	first, err := SplitDocuments(docs, 1000, 150)
	require.NoError(t, err)
	second, err := SplitDocuments(docs, 1000, 150)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same input and parameters must produce identical chunks")
}

func TestIngestThreeRowCSVInsertsThreeEntries(t *testing.T) {
	path := writeTempFile(t, "water_filter_data.csv", catalogCSV)
	store := &recordingStore{}
	ing := NewIngestor(store, &config.RAGConfig{ChunkSize: 1000, ChunkOverlap: 150})

	count, err := ing.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Len(t, store.inserted, 3)
}

func TestIngestMissingFileAborts(t *testing.T) {
	store := &recordingStore{}
	ing := NewIngestor(store, &config.RAGConfig{ChunkSize: 1000, ChunkOverlap: 150})

	_, err := ing.Ingest(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Empty(t, store.inserted)
}

func TestLoadTextAndMarkdown(t *testing.T) {
	txt := writeTempFile(t, "faq.txt", "RO purifiers need membrane changes every year.")
	docs, err := LoadDocuments(context.Background(), txt)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "faq.txt", docs[0].Metadata["source"])

	md := writeTempFile(t, "manual.md", "# Maintenance\n\n- Change filter every 6 months\n")
	docs, err = LoadDocuments(context.Background(), md)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].PageContent, "Change filter every 6 months")
}
