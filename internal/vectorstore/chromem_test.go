package vectorstore

import (
	"context"
	"testing"

	"waterfilter-rag/internal/config"
	"waterfilter-rag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps known texts to fixed unit vectors so similarity scores
// are predictable: cosine similarity against the query [1,0] is simply the
// first component.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newTestStore(t *testing.T) (*ChromemStore, *stubEmbedder) {
	t.Helper()
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"close":   {1, 0},
		"near":    {0.8, 0.6},
		"far":     {0, 1},
		"distant": {-1, 0},
	}}
	store, err := NewChromemStore(&config.ChromemConfig{
		Collection: "test_collection",
		InMemory:   true,
	}, embedder)
	require.NoError(t, err)
	return store, embedder
}

func testChunks() []models.Chunk {
	return []models.Chunk{
		{ID: "c1", Content: "close", Source: "data.csv", RowIndex: 1, ChunkID: 0},
		{ID: "c2", Content: "near", Source: "data.csv", RowIndex: 2, ChunkID: 0},
		{ID: "c3", Content: "far", Source: "data.csv", RowIndex: 3, ChunkID: 0},
		{ID: "c4", Content: "distant", Source: "data.csv", RowIndex: 4, ChunkID: 0},
	}
}

func TestInsertManyReturnsIDs(t *testing.T) {
	store, _ := newTestStore(t)

	ids, err := store.InsertMany(context.Background(), testChunks())
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, ids)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestInsertManyEmptyIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	ids, err := store.InsertMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReinsertionOverwritesByID(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.InsertMany(context.Background(), testChunks())
	require.NoError(t, err)
	_, err = store.InsertMany(context.Background(), testChunks())
	require.NoError(t, err)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, count, "deterministic IDs make re-ingestion idempotent")
}

func TestSearchOrderedThresholdedAndCapped(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.InsertMany(context.Background(), testChunks())
	require.NoError(t, err)

	results, err := store.Search(context.Background(), "close", 4, 0.3)
	require.NoError(t, err)

	// Only "close" (1.0) and "near" (0.8) clear the 0.3 threshold.
	require.Len(t, results, 2)
	assert.Equal(t, "close", results[0].Content)
	assert.Equal(t, "near", results[1].Content)
	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, float32(0.3))
	}

	// k caps the result count before thresholding can.
	capped, err := store.Search(context.Background(), "close", 1, 0)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, "close", capped[0].Content)
}

func TestSearchEmptyCollection(t *testing.T) {
	store, _ := newTestStore(t)

	results, err := store.Search(context.Background(), "anything", 6, 0.3)
	require.NoError(t, err)
	assert.Empty(t, results, "an empty index is zero results, not an error")
}

func TestSearchCarriesMetadata(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.InsertMany(context.Background(), testChunks())
	require.NoError(t, err)

	results, err := store.Search(context.Background(), "close", 1, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "data.csv", results[0].Metadata["source"])
	assert.Equal(t, "1", results[0].Metadata["row"])
	assert.Equal(t, "c1", results[0].ID)
}

func TestSearchKLargerThanCollection(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.InsertMany(context.Background(), testChunks()[:2])
	require.NoError(t, err)

	results, err := store.Search(context.Background(), "close", 6, 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
