package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"studychat/internal/types"
	"studychat/pkg/chunker"
	cfgPkg "studychat/pkg/config"
	"studychat/pkg/extract"
	"studychat/pkg/llm"
	"studychat/pkg/pipeline"
	"studychat/pkg/retriever"
	"studychat/pkg/scraper"
	"studychat/pkg/store"
	"studychat/server"
)

func main() {
	// Environment first so config env-merge sees .env values
	godotenv.Load()

	config, err := parseFlags()
	if err != nil {
		log.Fatal(err)
	}

	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		log.Fatal("invalid configuration")
	}

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() (*cfgPkg.Config, error) {
	var configPath string
	var dbPath, dbBackend, docsURL, port string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&dbPath, "db-path", "", "Vector database path (chromem backend)")
	flag.StringVar(&dbBackend, "backend", "", "Vector store backend: chromem or pgvector")
	flag.StringVar(&docsURL, "docs-url", "", "Website to scrape when the collection is empty")
	flag.StringVar(&port, "port", "", "HTTP listen port")
	flag.Parse()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	// Command line flags override the config file
	if dbPath != "" {
		config.Database.Path = dbPath
	}
	if dbBackend != "" {
		config.Database.Backend = dbBackend
	}
	if docsURL != "" {
		config.Scraper.BaseURL = docsURL
	}
	if port != "" {
		config.Server.Port = port
	}

	return config, nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config *cfgPkg.Config) error {
	ctx := context.Background()

	encoder, err := llm.NewEncoder(llm.EncoderConfig{
		Model:   config.Encoder.Model,
		BaseURL: config.Encoder.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize encoder: %v", err)
	}

	vectorStore, err := store.New(ctx, store.Config{
		Backend:    config.Database.Backend,
		Path:       config.Database.Path,
		ConnString: config.Database.URL,
		TableName:  config.Database.TableName,
		VectorDim:  config.Encoder.VectorDim,
	}, encoder)
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	registry := extract.NewRegistry()
	ch := chunker.NewWithConfig(chunker.Config{
		ChunkSize:    config.Processor.ChunkSize,
		ChunkOverlap: config.Processor.ChunkOverlap,
	})
	ingest := pipeline.New(registry, ch, vectorStore)

	if err := bootstrapIfEmpty(ctx, config, ingest, vectorStore); err != nil {
		return err
	}

	client := llm.NewClient(llm.ClientConfig{
		BaseURL:     config.LLM.BaseURL,
		APIKey:      config.LLM.APIKey,
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.MaxTokens,
		Temperature: config.LLM.Temperature,
		Timeout:     time.Duration(config.LLM.TimeoutSecs) * time.Second,
	})

	srv := server.New(
		ingest,
		retriever.New(encoder, vectorStore),
		llm.NewSynthesizer(client),
		vectorStore,
		config.Server.TopK,
	)

	log.Printf("Starting server on port %s", config.Server.Port)
	return http.ListenAndServe(":"+config.Server.Port, srv.Routes())
}

// bootstrapIfEmpty fills an empty collection from the configured website.
// A failed or partial scrape is not fatal; the server still starts.
func bootstrapIfEmpty(ctx context.Context, config *cfgPkg.Config, ingest *pipeline.Pipeline, vectorStore types.VectorStore) error {
	count, err := vectorStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to read collection size: %v", err)
	}
	if count > 0 {
		color.Green("Loaded existing collection (%d chunks)", count)
		return nil
	}
	if config.Scraper.BaseURL == "" {
		color.Yellow("Collection is empty and no scrape URL is configured; starting with no documents")
		return nil
	}

	color.Blue("Collection is empty, scraping %s", config.Scraper.BaseURL)

	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:   config.Scraper.BaseURL,
		RateLimit: config.Scraper.RateLimit,
		Timeout:   time.Duration(config.Scraper.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %v", err)
	}

	pages := s.AllContent(ctx)
	if len(pages) == 0 {
		color.Yellow("No content found on website")
		return nil
	}

	bar := getProgressBar(len(pages), "Indexing website content...")
	total := 0
	for _, page := range pages {
		n, err := ingest.IngestPage(ctx, page)
		if err != nil && !errors.Is(err, types.ErrEmptyContent) {
			return fmt.Errorf("failed to index %q: %v", page.Title, err)
		}
		total += n
		bar.Add(1)
	}
	bar.Finish()
	color.Green("\nIndexed %d chunks from %d pages", total, len(pages))
	return nil
}
