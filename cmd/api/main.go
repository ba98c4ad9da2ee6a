package main

import (
	"context"
	"fmt"
	"time"

	"rag-qa/internal/adapter/openai"
	conversationmem "rag-qa/internal/adapter/repository/memory"
	vectormem "rag-qa/internal/adapter/vectorindex/memory"
	"rag-qa/internal/adapter/vectorindex/pgvector"
	"rag-qa/internal/adapter/vectorindex/pinecone"
	"rag-qa/internal/delivery/http/handler"
	"rag-qa/internal/delivery/http/middleware"
	"rag-qa/internal/domain/repository"
	"rag-qa/internal/usecase/document"
	"rag-qa/internal/usecase/query"
	"rag-qa/pkg/config"
	"rag-qa/pkg/database"
	"rag-qa/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	index, cleanup, err := buildVectorIndex(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize vector index", "provider", cfg.VectorProvider, "error", err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	log.Info("vector index ready", "provider", cfg.VectorProvider)

	// provider clients
	embeddingClient := openai.NewEmbeddingClient(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
	chatClient := openai.NewChatClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)

	// conversation memory (process-local, bounded per session)
	conversations := conversationmem.NewConversationRepository(cfg.MaxHistory)

	// usecases
	docUsecase := document.NewDocumentUsecase(
		log,
		index,
		embeddingClient,
		cfg.ChunkSize,
		cfg.ChunkOverlap,
		cfg.MaxFileSizeMB,
		cfg.EmbeddingDim,
	)
	router := query.NewIntentRouter(log, chatClient)
	queryUsecase := query.NewQueryUsecase(
		log,
		conversations,
		router,
		chatClient,
		embeddingClient,
		index,
		cfg.TopK,
		cfg.ScoreThreshold,
		cfg.MaxContextChunks,
		cfg.Temperature,
		cfg.AnswerMaxTokens,
	)

	// handlers
	docHandler := handler.NewDocumentHandler(docUsecase)
	queryHandler := handler.NewQueryHandler(queryUsecase)
	healthHandler := handler.NewHealthHandler(docUsecase, cfg.LLMModel)

	app := fiber.New()
	app.Use(fiberlogger.New())

	api := app.Group("/api")
	api.Get("/health", healthHandler.Health)
	api.Post("/query", queryHandler.Query)

	// session-scoped routes
	session := api.Group("", middleware.Session())
	session.Post("/upload", docHandler.Upload)
	session.Get("/documents", docHandler.List)
	session.Delete("/documents/:id", docHandler.Delete)
	session.Delete("/documents", docHandler.DeleteAll)
	session.Delete("/history", queryHandler.ClearHistory)

	log.Info("server starting", "port", cfg.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal("failed to start server", "error", err)
	}
}

func buildVectorIndex(cfg *config.Config, log *logger.Logger) (repository.VectorIndex, func(), error) {
	switch cfg.VectorProvider {
	case "pgvector":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		return pgvector.NewIndex(log, db, cfg.EmbeddingDim), func() { db.Close() }, nil

	case "memory":
		return vectormem.NewIndex(cfg.EmbeddingDim), nil, nil

	default:
		client, err := pinecone.NewClient(pinecone.ClientConfig{APIKey: cfg.PineconeAPIKey})
		if err != nil {
			return nil, nil, err
		}
		index, err := pinecone.NewIndex(log, client, pinecone.IndexConfig{
			IndexName: cfg.PineconeIndexName,
			IndexHost: cfg.PineconeIndexHost,
		})
		if err != nil {
			return nil, nil, err
		}
		return index, nil, nil
	}
}
