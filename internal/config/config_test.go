package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
embed_llm:
  provider: ollama
  base_url: http://localhost:11434
  model: nomic-embed-text
chat_llm:
  provider: ollama
  base_url: http://localhost:11434
  model: llama3
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 150, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 6, cfg.RAG.TopK)
	assert.InDelta(t, 0.3, cfg.RAG.Threshold(), 1e-6)
	assert.Equal(t, 60, cfg.RAG.UpstreamTimeoutSecs)
	assert.Equal(t, "chromem", cfg.VectorStore.Type)
	assert.Equal(t, "water_filter_data", cfg.VectorStore.Chromem.Collection)
}

func TestExplicitZeroScoreThresholdIsKept(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig+`
rag:
  score_threshold: 0
`))
	require.NoError(t, err)
	assert.Zero(t, cfg.RAG.Threshold(), "an explicit zero threshold must not be replaced by the default")
}

func TestValidateNamesMissingKey(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
embed_llm:
  provider: openai
  model: text-embedding-004
chat_llm:
  provider: ollama
  model: llama3
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed_llm.key")
}

func TestValidateRequiresSupabaseURL(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
vector_store:
  type: supabase
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector_store.database.url")
}

func TestValidateRejectsUnknownStoreType(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, minimalConfig+`
vector_store:
  type: pinecone
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown vector_store.type")
}

func TestEnvOverridesSecrets(t *testing.T) {
	t.Setenv("EMBED_LLM_API_KEY", "sk-env")
	t.Setenv("HTTP_PORT", "9001")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.EmbedLLM.Key)
	assert.Equal(t, "9001", cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
