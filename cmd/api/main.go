package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hostwise-ai/hostwise/internal/api/router"
	appconfig "github.com/hostwise-ai/hostwise/internal/config"
	"github.com/hostwise-ai/hostwise/internal/conversation"
	"github.com/hostwise-ai/hostwise/internal/crm"
	"github.com/hostwise-ai/hostwise/internal/http/handlers"
	"github.com/hostwise-ai/hostwise/internal/knowledge"
	"github.com/hostwise-ai/hostwise/internal/observability/metrics"
	"github.com/hostwise-ai/hostwise/internal/reservations"
	"github.com/hostwise-ai/hostwise/internal/tools"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hostwise API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	chatMetrics := metrics.NewChatMetrics(reg)

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		repo     reservations.Repository
		contacts tools.ContactRecorder
		crmStore *crm.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = reservations.NewPostgresRepository(pool)
		crmStore = crm.NewStore(pool, logger)
		contacts = crmStore
		logger.Info("using postgres storage")
	} else {
		repo = reservations.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, reservations are held in memory")
	}

	// Thread state: Redis when configured, in-memory otherwise.
	var (
		slotStore conversation.SlotStore
		history   conversation.HistoryStore
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		slotStore = conversation.NewRedisSlotStore(client, cfg.SessionTTL)
		history = conversation.NewRedisHistoryStore(client, cfg.SessionTTL)
		logger.Info("using redis thread storage", "ttl", cfg.SessionTTL)
	} else {
		slotStore = conversation.NewMemorySlotStore()
		history = conversation.NewMemoryHistoryStore()
		logger.Warn("REDIS_ADDR not set, conversation threads are held in memory")
	}

	// Model provider.
	var (
		llm   conversation.LLMClient
		model string
	)
	switch cfg.LLMProvider {
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		llm = conversation.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
		model = cfg.BedrockModelID
	default:
		if cfg.OpenAIAPIKey == "" {
			logger.Error("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
			os.Exit(1)
		}
		llm = conversation.NewOpenAIClient(cfg.OpenAIAPIKey)
		model = cfg.OpenAIModel
	}
	if model == "" {
		logger.Error("no model configured for provider", "provider", cfg.LLMProvider)
		os.Exit(1)
	}

	// Knowledge base: semantic search when embeddings are available, canned
	// fallbacks otherwise.
	var retriever knowledge.Retriever
	if cfg.OpenAIAPIKey != "" {
		store := knowledge.NewMemoryStore(openai.NewClient(cfg.OpenAIAPIKey), cfg.EmbeddingModel, logger)
		for collection, path := range map[string]string{
			knowledge.CollectionFAQ:  "data/faq.txt",
			knowledge.CollectionMenu: "data/menu.txt",
		} {
			n, err := knowledge.LoadFile(ctx, store, collection, path)
			if err != nil {
				logger.Warn("knowledge load failed", "collection", collection, "error", err)
				continue
			}
			if n > 0 {
				logger.Info("knowledge loaded", "collection", collection, "chunks", n)
			}
		}
		retriever = store
	}

	checker := reservations.NewChecker(repo, logger, chatMetrics, cfg.MaxTables, cfg.MaxCapacityPerTimeSlot)
	manager := reservations.NewManager(repo, checker, logger, chatMetrics)

	registry := tools.NewRegistry(logger, chatMetrics)
	toolset := tools.NewBookingToolset(
		manager,
		checker,
		knowledge.NewFAQSearcher(retriever, logger),
		knowledge.NewMenuSearcher(retriever, logger),
		contacts,
		logger,
	)
	toolset.RegisterAll(registry)

	svc := conversation.NewService(
		llm,
		registry,
		conversation.NewTracker(slotStore, logger),
		history,
		logger,
		chatMetrics,
		conversation.ServiceConfig{
			Model:        model,
			MaxTokens:    1024,
			Temperature:  0.3,
			MaxToolSteps: cfg.MaxToolSteps,
		},
	)

	var contactsHandler *handlers.ContactsHandler
	if crmStore != nil {
		contactsHandler = handlers.NewContactsHandler(crmStore, logger)
	}

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(svc, repo, logger),
		ContactsHandler:    contactsHandler,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
