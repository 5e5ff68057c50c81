package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"waterfilter-rag/internal/config"
	"waterfilter-rag/internal/helper"
	"waterfilter-rag/internal/models"
	"waterfilter-rag/internal/vectorstore"

	"github.com/rs/zerolog/log"
)

// ErrInvalidInput marks an empty or whitespace-only query. It is rejected
// before any collaborator is called.
var ErrInvalidInput = errors.New("query cannot be empty")

// Generator is the chat-completion seam.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// RAG answers a question by retrieving catalog chunks above the score
// threshold and handing them to the generator as prompt context. Requests
// carry no state between calls.
type RAG struct {
	store     vectorstore.VectorStore
	generator Generator
	cfg       *config.RAGConfig
}

func NewRAG(store vectorstore.VectorStore, generator Generator, cfg *config.RAGConfig) *RAG {
	return &RAG{store: store, generator: generator, cfg: cfg}
}

// Answer runs one query through validate -> retrieve -> generate -> shape.
// Zero retrieved chunks is a valid outcome; the prompt instructs the model to
// fall back to general knowledge and flag that it did.
func (r *RAG) Answer(ctx context.Context, query string) (*models.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}

	retrieved, err := r.Search(ctx, query, r.cfg.TopK, r.cfg.Threshold())
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("num_sources", len(retrieved)).
		Str("query", helper.TruncateForLog(query, 50)).
		Msg("Retrieved context")

	prompt := BuildPrompt(query, retrieved)

	var answerText string
	err = r.withRetry(ctx, func(callCtx context.Context) error {
		var genErr error
		answerText, genErr = r.generator.GenerateContent(callCtx, prompt)
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return Shape(answerText, retrieved), nil
}

// Search embeds the query and returns context above the threshold, capped at
// k, ordered by descending score. Also used directly by the diagnostic
// endpoints with their own k and a zero threshold.
func (r *RAG) Search(ctx context.Context, query string, k int, threshold float32) ([]models.SearchResult, error) {
	var retrieved []models.SearchResult
	err := r.withRetry(ctx, func(callCtx context.Context) error {
		var searchErr error
		retrieved, searchErr = r.store.Search(callCtx, query, k, threshold)
		return searchErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}
	return retrieved, nil
}

// BuildPrompt assembles the persona preamble, retrieved context and the raw
// question into a single prompt.
func BuildPrompt(query string, retrieved []models.SearchResult) string {
	var contextText strings.Builder
	for _, doc := range retrieved {
		contextText.WriteString(doc.Content)
		contextText.WriteString("\n\n")
	}
	return fmt.Sprintf(models.RAGPromptTemplate, strings.TrimSpace(contextText.String()), query)
}

// Shape packages a generation result with the derived context fields. It is a
// pure transformation and tolerates an empty context.
func Shape(answerText string, retrieved []models.SearchResult) *models.Answer {
	answer := &models.Answer{
		Answer:      answerText,
		ContextUsed: len(retrieved) > 0,
		NumSources:  len(retrieved),
	}
	for _, doc := range retrieved {
		answer.Sources = append(answer.Sources, models.SourcePreview{
			ContentPreview: Preview(doc.Content, 100),
			Metadata:       doc.Metadata,
		})
	}
	return answer
}

// Preview truncates chunk content for diagnostic output, cutting on a rune
// boundary so multi-byte content stays valid UTF-8.
func Preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}

// withRetry bounds an upstream call with the configured timeout and retries
// it once after a short backoff. Upstream services get no further retries; a
// second failure propagates to the caller.
func (r *RAG) withRetry(ctx context.Context, call func(context.Context) error) error {
	timeout := time.Duration(r.cfg.UpstreamTimeoutSecs) * time.Second

	attempt := func() error {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return call(callCtx)
	}

	err := attempt()
	if err == nil || ctx.Err() != nil {
		return err
	}

	log.Warn().Err(err).Msg("Upstream call failed, retrying once")
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	return attempt()
}
