package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"waterfilter-rag/internal/config"
	"waterfilter-rag/internal/embedding"
	"waterfilter-rag/internal/helper"
	"waterfilter-rag/internal/ingest"
	"waterfilter-rag/internal/vectorstore"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "data/water_filter_data.csv", "Path to the catalog file")
	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	dryRun := flag.Bool("dry-run", false, "Parse and chunk only, do not write to the vector store")
	reset := flag.Bool("reset", false, "Drop and recreate the documents table first (supabase only)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()

	if *dryRun {
		docs, err := ingest.LoadDocuments(ctx, *filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error loading documents")
		}
		chunks, err := ingest.SplitDocuments(docs, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
		if err != nil {
			log.Fatal().Err(err).Msg("Error splitting documents")
		}
		log.Info().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("Dry run")
		helper.PrettyPrint(chunks)
		return
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	store, err := vectorstore.New(&cfg.VectorStore, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing vector store")
	}
	defer store.Close(ctx)

	if s, ok := store.(*vectorstore.SupabaseStore); ok {
		if *reset {
			if err := s.Reset(ctx); err != nil {
				log.Fatal().Err(err).Msg("Error resetting documents table")
			}
		} else if err := s.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error initializing documents table")
		}
	}

	ingestor := ingest.NewIngestor(store, &cfg.RAG)
	count, err := ingestor.Ingest(ctx, *filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}
	log.Info().Int("inserted", count).Msg("Data ingestion complete")
}
