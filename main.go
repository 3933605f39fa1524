package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"github.com/nyayasetu/nyayasetu/config"
	"github.com/nyayasetu/nyayasetu/db"
	"github.com/nyayasetu/nyayasetu/logging"
	"github.com/nyayasetu/nyayasetu/retry"
	"github.com/nyayasetu/nyayasetu/server"
	"github.com/nyayasetu/nyayasetu/services/alert_service"
	"github.com/nyayasetu/nyayasetu/services/ingest_service"
	"github.com/nyayasetu/nyayasetu/services/llm_service"
	"github.com/nyayasetu/nyayasetu/services/rag_service"
	"github.com/nyayasetu/nyayasetu/services/translation_service"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("Could not initialize logging: %v", err)
	}

	pool, err := db.Connect()
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer pool.Close()

	retryPolicy := retry.Policy{
		MaxAttempts: cfg.LLMMaxRetries,
		BaseDelay:   cfg.LLMRetryBaseDelay,
		Backoff:     retry.Exponential,
	}

	embedder := rag_service.NewGeminiEmbedder(cfg.GeminiEmbeddingURL, cfg.GeminiAPIKey, retryPolicy, logger)
	searcher := rag_service.NewPgvectorSearcher(pool, logger)
	llm := llm_service.NewGeminiService(retryPolicy, logger)
	llmCfg := map[string]interface{}{
		"api_url": cfg.GeminiAPIURL,
		"api_key": cfg.GeminiAPIKey,
	}

	notifier := alert_service.NewNotifier(
		cfg.TwilioAccountSID,
		cfg.TwilioAuthToken,
		cfg.TwilioFromNumber,
		cfg.OpsAlertNumber,
		cfg.AlertCooldown,
		logger,
	)

	pipeline := rag_service.NewPipeline(embedder, searcher, llm, llmCfg, notifier, logger, rag_service.PipelineOptions{
		TopK:            cfg.SearchTopK,
		MinScore:        cfg.SearchMinScore,
		ContextMaxChars: cfg.ContextMaxChars,
		Timeout:         cfg.PipelineTimeout,
	})

	processor := ingest_service.NewProcessor(pool, embedder, logger)

	var translator *translation_service.Client
	if cfg.BhashiniUserID != "" && cfg.BhashiniAPIKey != "" {
		translator = translation_service.NewClient(
			cfg.BhashiniAuthURL,
			cfg.BhashiniComputeURL,
			cfg.BhashiniUserID,
			cfg.BhashiniAPIKey,
			logger,
		)
	}

	indexManager := ingest_service.NewIndexManager(pool, logger)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := indexManager.ReindexIfNeeded(ctx); err != nil {
			logger.Warn("Vector index maintenance failed", "error", err)
		}
	}()

	deps := server.Dependencies{
		Pipeline:  pipeline,
		Embedder:  embedder,
		Searcher:  searcher,
		Processor: processor,
		DB:        pool,
	}
	if translator != nil {
		deps.Translator = translator
	}

	r := server.SetupRoutes(cfg, deps, logger)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
		}
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.UseHandler(r)
	return n
}
