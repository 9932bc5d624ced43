package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/config"
	"pdf-rag/internal/db"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/ingest"
	"pdf-rag/internal/parser"
	"pdf-rag/internal/rag"
	"pdf-rag/internal/splitter"
)

const defaultConfigPath = "./configs/config.yaml"

// chunkStore is the union of what the two pipelines need from a store
// backend.
type chunkStore interface {
	ingest.Store
	rag.Searcher
	Close() error
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// secrets come from the environment; a local .env is optional
	_ = godotenv.Load()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Document file to ingest")
	query := flag.String("query", "", "Question to search stored chunks with")
	docID := flag.String("doc-id", "", "Override the configured document id")
	initFlag := flag.Bool("init", false, "Create the store schema and exit")
	dryRun := flag.Bool("dry-run", false, "Chunk the document, skip embedding and storage")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *filePath != "" {
		cfg.Document.Path = *filePath
	}
	if *docID != "" {
		cfg.Document.ID = *docID
	}
	if !*dryRun {
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()
	switch {
	case *initFlag:
		initSchema(ctx, cfg)
	case *filePath != "":
		ingestFile(ctx, cfg, *dryRun)
	case *query != "":
		runQuery(ctx, cfg, *query)
	default:
		log.Fatal().Msg("Provide a document with -file, a question with -query, or -init")
	}
}

func initSchema(ctx context.Context, cfg *config.Config) {
	if cfg.Store.Type != "supabase" {
		log.Info().Msg("chromem store needs no schema")
		return
	}
	store := db.Connect(cfg.Store.Supabase.URL, cfg.Store.Supabase.Key, cfg.Store.InsertBatchSize, cfg.Store.Supabase.Debug)
	defer store.Close()
	if err := store.InitSchema(ctx, cfg.Embedder.Dimensions); err != nil {
		log.Fatal().Err(err).Msg("Error initializing schema")
	}
	log.Info().Int("dimensions", cfg.Embedder.Dimensions).Msg("Schema ready")
}

func ingestFile(ctx context.Context, cfg *config.Config, dryRun bool) {
	pages, err := parser.ExtractPages(cfg.Document.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading document")
	}
	log.Info().Str("file", cfg.Document.Path).Int("pages", len(pages)).Msg("Extracted pages")

	if dryRun {
		sp := splitter.New(cfg.Chunking.Size, cfg.Chunking.Overlap, nil)
		chunks := ingest.BuildChunks(cfg.Document.ID, cfg.Document.Path, pages, sp)
		for _, c := range chunks {
			fmt.Printf("[%d] page %d  %d bytes\n", c.Index, c.Metadata.Page, len(c.Content))
		}
		log.Info().Int("chunks", len(chunks)).Msg("Dry run, nothing stored")
		return
	}

	embedder := newEmbedder(cfg)
	store := newStore(ctx, cfg)
	defer store.Close()

	n, err := ingest.Run(ctx, cfg, pages, embedder, store)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting document")
	}
	log.Info().Int("chunks", n).Str("doc_id", cfg.Document.ID).Msg("Ingest complete")
}

func runQuery(ctx context.Context, cfg *config.Config, question string) {
	embedder := newEmbedder(cfg)
	store := newStore(ctx, cfg)
	defer store.Close()

	r := rag.New(embedder, store, cfg.Query.TopK, cfg.Document.Path)
	matches, err := r.Query(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}
	fmt.Print(rag.Format(question, matches))
}

func newEmbedder(cfg *config.Config) embedding.Embedder {
	switch cfg.Embedder.Type {
	case "openai":
		e, err := embedding.NewOpenAI(cfg.Embedder.BaseURL, cfg.Embedder.APIKey, cfg.Embedder.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing embedder")
		}
		return e
	default:
		return embedding.NewClient(cfg.Embedder.Endpoint, cfg.Embedder.Model, cfg.Embedder.Dimensions)
	}
}

func newStore(ctx context.Context, cfg *config.Config) chunkStore {
	switch cfg.Store.Type {
	case "chromem":
		store, err := chromemdb.NewStore(cfg.Store.Chromem.Path, cfg.Store.Chromem.Collection, cfg.Store.Chromem.InMemory)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening chromem store")
		}
		return store
	default:
		store := db.Connect(cfg.Store.Supabase.URL, cfg.Store.Supabase.Key, cfg.Store.InsertBatchSize, cfg.Store.Supabase.Debug)
		if err := store.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		return store
	}
}
