package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"corrective-rag-be/internal/config"
	"corrective-rag-be/internal/controller"
	"corrective-rag-be/internal/dto"
	"corrective-rag-be/internal/pkg/logger"
	"corrective-rag-be/internal/repository/implementation"
	"corrective-rag-be/internal/service"
	"corrective-rag-be/internal/websocket"
	"corrective-rag-be/pkg/embedding"
	"corrective-rag-be/pkg/llm/factory"
	"corrective-rag-be/pkg/rag/orchestrator"
	"corrective-rag-be/pkg/rag/routing"
	"corrective-rag-be/pkg/websearch"

	pktNats "corrective-rag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	FeedbackController controller.IFeedbackController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Repositories
	documentRepo := implementation.NewDocumentRepository(db)
	chunkRepo := implementation.NewDocumentChunkRepository(db)
	feedbackRepo := implementation.NewFeedbackRepository(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 5. Workflow Orchestrator
	gate := routing.GateRelaxed
	if cfg.Rag.RelevanceGate == "strict" {
		gate = routing.GateStrict
	}

	orch := orchestrator.New(orchestrator.Dependencies{
		LLMProvider: llmProvider,
		Searcher:    service.NewVectorSearcher(chunkRepo, 0.0),
		Embedder:    embeddingProvider,
		WebClient:   websearch.NewTavilyClient(cfg.Keys.Tavily, cfg.Keys.TavilyMaxResults),
		Events:      fanoutEventSink{service.NewNatsEventSink(natsPub), wsHub},
		Logger:      initWorkflowLogger(),
	}, orchestrator.Config{
		RelevanceThreshold:   cfg.Rag.RelevanceThreshold,
		MinHighRelevanceDocs: cfg.Rag.MinHighRelevanceDocs,
		MaxRetrievalResults:  cfg.Rag.MaxRetrievalResults,
		MaxCorrectionRetries: cfg.Rag.MaxCorrectionRetries,
		MaxHITLInteractions:  cfg.Rag.MaxHITLInteractions,
		Gate:                 gate,
		HITLEnabled:          cfg.Rag.HITLEnabled,
		PendingTTL:           time.Duration(cfg.Rag.PendingTTLSeconds) * time.Second,
	})

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Rag.IndexTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Rag.IndexTopic,
		documentRepo,
		chunkRepo,
		embeddingProvider,
		natsPub,
	)

	ragService := service.NewRagService(orch)
	documentService := service.NewDocumentService(documentRepo, chunkRepo, publisherService, natsPub)
	feedbackService := service.NewFeedbackService(feedbackRepo)

	// Chat queries and clarification answers arriving over a websocket run a
	// workflow turn; the outcome goes back out on the same socket.
	wsHub.SetSessionMessageHandler(func(ctx context.Context, sessionID, query, answer string) {
		res, err := ragService.Chat(ctx, &dto.ChatRequest{Query: query, SessionId: sessionID, UserResponse: answer})
		if err != nil {
			wsHub.Send(sessionID, websocket.FrameError, map[string]interface{}{"error": err.Error()})
			return
		}
		if res.NeedsClarification {
			wsHub.Send(sessionID, websocket.FrameClarificationRequest, map[string]interface{}{
				"question": res.Clarification.Question,
				"options":  res.Clarification.Options,
			})
			return
		}
		wsHub.Send(sessionID, websocket.FrameFinalResponse, map[string]interface{}{
			"response":         res.Response,
			"sources":          res.Sources,
			"confidence":       res.Confidence,
			"needs_disclaimer": res.NeedsDisclaimer,
			"retrieval_source": string(res.RetrievalSource),
		})
	})
	go wsHub.Run()

	return &Container{
		ChatController:     controller.NewChatController(ragService),
		DocumentController: controller.NewDocumentController(documentService),
		FeedbackController: controller.NewFeedbackController(feedbackService),
		ConsumerService:    consumerService,
		WebSocketHub:       wsHub,
	}
}

// initWorkflowLogger writes the RAG pipeline trace to its own file so the
// phase-by-phase output stays out of the request logs.
func initWorkflowLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// fanoutEventSink delivers workflow events to both NATS and the websocket hub.
type fanoutEventSink []orchestrator.EventSink

func (f fanoutEventSink) NodeEntered(sessionID, node string) {
	for _, sink := range f {
		sink.NodeEntered(sessionID, node)
	}
}

func (f fanoutEventSink) Completed(sessionID string, durationMs int64) {
	for _, sink := range f {
		sink.Completed(sessionID, durationMs)
	}
}
