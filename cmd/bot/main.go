// Package main is the entry point for the seller bot.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/akmal-2004/easify-seller/internal/agent"
	"github.com/akmal-2004/easify-seller/internal/catalog"
	"github.com/akmal-2004/easify-seller/internal/catalog/memory"
	"github.com/akmal-2004/easify-seller/internal/catalog/qdrant"
	"github.com/akmal-2004/easify-seller/internal/config"
	"github.com/akmal-2004/easify-seller/internal/embedding"
	"github.com/akmal-2004/easify-seller/internal/events"
	"github.com/akmal-2004/easify-seller/internal/handler"
	"github.com/akmal-2004/easify-seller/internal/llm"
	"github.com/akmal-2004/easify-seller/internal/payment"
	"github.com/akmal-2004/easify-seller/internal/search"
	"github.com/akmal-2004/easify-seller/internal/session"
	"github.com/akmal-2004/easify-seller/internal/telegram"
	"github.com/akmal-2004/easify-seller/pkg/logger"
	"github.com/akmal-2004/easify-seller/pkg/tracing"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	log.Info("starting seller bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "easify-seller", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	// Connect to NATS when configured; event publishing is optional
	var publisher events.Publisher = events.NoopPublisher{}
	var natsClient *events.Client
	if cfg.NATSURL != "" {
		natsClient, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher, err = events.NewStreamPublisher(ctx, natsClient)
		if err != nil {
			log.Error("failed to ensure event stream", zap.Error(err))
			os.Exit(1)
		}
	}

	// Initialize embedder
	var embedder embedding.Embedder
	switch cfg.EmbedderType {
	case "openai":
		embedder, err = embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingTimeout)
		if err != nil {
			log.Error("failed to create embedder", zap.Error(err))
			os.Exit(1)
		}
	default:
		embedder = embedding.NewClipEmbedder(cfg.ClipServiceURL, cfg.EmbeddingTimeout)
	}

	// Initialize catalog store
	var store catalog.Store
	switch cfg.CatalogType {
	case "memory":
		store = memory.NewStore()
	default:
		store = qdrant.NewStore(qdrant.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
			Timeout:    cfg.CatalogTimeout,
		})
	}

	// Initialize LLM client
	llmClient, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.CompletionTimeout)
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}

	// Initialize core components
	searchAdapter := search.NewAdapter(embedder, store, log)
	payments := payment.NewBuilder(payment.Config{
		BaseURL:    cfg.ClickBaseURL,
		ServiceID:  cfg.ClickServiceID,
		MerchantID: cfg.ClickMerchantID,
		ReturnURL:  cfg.ClickReturnURL,
	})
	sessions := session.NewStore(cfg.SessionIdleTTL, cfg.SessionMaxTurns, log)
	go sessions.Run(ctx)

	sellerAgent := agent.New(llmClient, searchAdapter, payments, sessions, publisher, log, agent.Options{
		Model:         cfg.CompletionModel,
		MaxToolRounds: cfg.MaxToolRounds,
		Language:      cfg.DefaultLanguage,
	})

	// Initialize Telegram adapter
	bot, err := telegram.NewBot(cfg.TelegramBotToken, sellerAgent, log)
	if err != nil {
		log.Error("failed to create Telegram bot", zap.Error(err))
		os.Exit(1)
	}
	go bot.Run(ctx)

	// Ops HTTP server: health and metrics
	healthHandler := handler.NewHealthHandler(natsClient, sessions)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.OpsPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("ops server listening", zap.String("port", cfg.OpsPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ops server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("ops server forced to shutdown", zap.Error(err))
	}

	log.Info("stopped")
}
