package models

// Chunk is a bounded span of catalog text with its provenance.
type Chunk struct {
	ID       string
	Content  string
	Source   string
	RowIndex int
	ChunkID  int
}

// SearchResult is one retrieved vector entry with its similarity score.
type SearchResult struct {
	ID       string
	Content  string
	Metadata map[string]string
	Score    float32
}

// SourcePreview is a truncated view of a retrieved chunk returned to callers.
type SourcePreview struct {
	ContentPreview string            `json:"content_preview"`
	Metadata       map[string]string `json:"metadata"`
}

// Answer is the shaped result of one query through the pipeline.
type Answer struct {
	Answer      string          `json:"answer"`
	ContextUsed bool            `json:"context_used"`
	NumSources  int             `json:"num_sources"`
	Sources     []SourcePreview `json:"sources,omitempty"`
}
