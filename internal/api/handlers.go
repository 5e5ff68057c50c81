package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"waterfilter-rag/internal/helper"
	"waterfilter-rag/internal/models"
	"waterfilter-rag/internal/rag"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// genericErrorMessage is the only failure detail callers see; the full error
// stays in the server logs.
const genericErrorMessage = "Sorry, something went wrong. Please try again in a moment."

// Pipeline is what the handlers need from the query pipeline.
type Pipeline interface {
	Answer(ctx context.Context, query string) (*models.Answer, error)
	Search(ctx context.Context, query string, k int, threshold float32) ([]models.SearchResult, error)
}

type APIHandler struct {
	pipeline    Pipeline
	environment string
}

func NewAPIHandler(pipeline Pipeline, environment string) *APIHandler {
	return &APIHandler{pipeline: pipeline, environment: environment}
}

type ChatRequest struct {
	Query string `json:"query"`
}

type ChatResponse struct {
	Answer      string `json:"answer"`
	Status      string `json:"status"`
	ContextUsed bool   `json:"context_used"`
	NumSources  int    `json:"num_sources"`
}

// RootHandler is the liveness probe.
func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message":     "Neer Sahayak API is running",
		"status":      "healthy",
		"environment": h.environment,
	})
}

// HealthHandler exercises one real retrieval+generation round trip.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.pipeline.Answer(r.Context(), models.HealthProbeQuery); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":       "healthy",
		"vector_store": "connected",
		"test_query":   "successful",
		"environment":  h.environment,
	})
}

// ChatHandler answers a single user question.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer, err := h.pipeline.Answer(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, rag.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "Query cannot be empty")
			return
		}
		log.Error().
			Err(err).
			Str("query", helper.TruncateForLog(req.Query, 50)).
			Msg("Chat request failed")
		respondError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{
		Answer:      answer.Answer,
		Status:      "success",
		ContextUsed: answer.ContextUsed,
		NumSources:  answer.NumSources,
	})
}

type retrievalResult struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// TestRetrievalHandler returns the raw top-5 similarity search results for a
// query, for diagnosing what the index retrieves.
func (h *APIHandler) TestRetrievalHandler(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")

	docs, err := h.pipeline.Search(r.Context(), query, 5, 0)
	if err != nil {
		log.Error().Err(err).Str("query", helper.TruncateForLog(query, 50)).Msg("Test retrieval failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]retrievalResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, retrievalResult{
			Content:  rag.Preview(doc.Content, 200),
			Metadata: doc.Metadata,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"query":       query,
		"num_results": len(docs),
		"results":     results,
	})
}

// VectorStoreInfoHandler runs a fixed probe-query set against the index and
// reports per-query hit counts with a top-result preview.
func (h *APIHandler) VectorStoreInfoHandler(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]map[string]any, len(models.VectorStoreProbeQueries))
	for _, query := range models.VectorStoreProbeQueries {
		docs, err := h.pipeline.Search(r.Context(), query, 3, 0)
		if err != nil {
			log.Error().Err(err).Str("query", query).Msg("Vector store probe failed")
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		topResult := "No results"
		if len(docs) > 0 {
			topResult = rag.Preview(docs[0].Content, 100)
		}
		results[query] = map[string]any{
			"count":      len(docs),
			"top_result": topResult,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"vector_store": "connected",
		"test_results": results,
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
