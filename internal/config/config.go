package config

import (
	"fmt"
	"os"

	"waterfilter-rag/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLMConfig configures one OpenAI-compatible or ollama endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// DatabaseConfig holds the Supabase/pgvector connection settings.
type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

// ChromemConfig holds the local chromem-go store settings.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

// VectorStoreConfig selects the vector store backend.
type VectorStoreConfig struct {
	Type     string         `yaml:"type"` // "chromem" or "supabase"
	Chromem  ChromemConfig  `yaml:"chromem"`
	Database DatabaseConfig `yaml:"database"`
}

// RAGConfig holds the query pipeline parameters. ScoreThreshold is a pointer
// so an explicit `score_threshold: 0` (no threshold, useful for diagnostics)
// is distinguishable from the field being absent.
type RAGConfig struct {
	ChunkSize           int      `yaml:"chunk_size"`
	ChunkOverlap        int      `yaml:"chunk_overlap"`
	TopK                int      `yaml:"top_k"`
	ScoreThreshold      *float32 `yaml:"score_threshold"`
	UpstreamTimeoutSecs int      `yaml:"upstream_timeout_secs"`
}

// Threshold resolves the configured score threshold, defaulting when unset.
func (r *RAGConfig) Threshold() float32 {
	if r.ScoreThreshold == nil {
		return models.DefaultScoreThreshold
	}
	return *r.ScoreThreshold
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	EmbedLLM    LLMConfig         `yaml:"embed_llm"`
	ChatLLM     LLMConfig         `yaml:"chat_llm"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	RAG         RAGConfig         `yaml:"rag"`
}

// LoadConfig reads the yaml config, overlays secrets from the environment
// (a .env file is loaded first if present) and applies defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.EmbedLLM.Key, "EMBED_LLM_API_KEY")
	overrideString(&cfg.EmbedLLM.BaseURL, "EMBED_LLM_BASE_URL")
	overrideString(&cfg.ChatLLM.Key, "CHAT_LLM_API_KEY")
	overrideString(&cfg.ChatLLM.BaseURL, "CHAT_LLM_BASE_URL")
	overrideString(&cfg.VectorStore.Database.URL, "SUPABASE_URL")
	overrideString(&cfg.VectorStore.Database.Key, "SUPABASE_KEY")
	overrideString(&cfg.Server.Port, "HTTP_PORT")
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = models.DefaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = models.DefaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = models.DefaultTopK
	}
	if cfg.RAG.ScoreThreshold == nil {
		threshold := float32(models.DefaultScoreThreshold)
		cfg.RAG.ScoreThreshold = &threshold
	}
	if cfg.RAG.UpstreamTimeoutSecs == 0 {
		cfg.RAG.UpstreamTimeoutSecs = 60
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "chromem"
	}
	if cfg.VectorStore.Chromem.Path == "" {
		cfg.VectorStore.Chromem.Path = "./chromemdb"
	}
	if cfg.VectorStore.Chromem.Collection == "" {
		cfg.VectorStore.Chromem.Collection = "water_filter_data"
	}
}

// Validate fails fast on missing required settings, naming the key.
func (c *Config) Validate() error {
	if c.EmbedLLM.Model == "" {
		return fmt.Errorf("missing required config: embed_llm.model")
	}
	if c.EmbedLLM.Provider == "openai" && c.EmbedLLM.Key == "" {
		return fmt.Errorf("missing required config: embed_llm.key (or EMBED_LLM_API_KEY)")
	}
	if c.ChatLLM.Model == "" {
		return fmt.Errorf("missing required config: chat_llm.model")
	}
	if c.ChatLLM.Provider == "openai" && c.ChatLLM.Key == "" {
		return fmt.Errorf("missing required config: chat_llm.key (or CHAT_LLM_API_KEY)")
	}
	switch c.VectorStore.Type {
	case "chromem":
	case "supabase":
		if c.VectorStore.Database.URL == "" {
			return fmt.Errorf("missing required config: vector_store.database.url (or SUPABASE_URL)")
		}
	default:
		return fmt.Errorf("unknown vector_store.type: %q", c.VectorStore.Type)
	}
	return nil
}
