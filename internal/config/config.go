package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	LLMBaseURL        string
	LLMAPIKey         string
}

// RagConfig tunes the corrective workflow.
type RagConfig struct {
	RelevanceThreshold   float64
	MinHighRelevanceDocs int
	MaxRetrievalResults  int
	MaxCorrectionRetries int
	MaxHITLInteractions  int
	RelevanceGate        string // "relaxed" or "strict"
	HITLEnabled          bool
	PendingTTLSeconds    int
	IndexTopic           string
}

type APIKeys struct {
	GoogleGemini     string
	Tavily           string
	TavilyMaxResults int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "qwen2.5"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		},
		Rag: RagConfig{
			RelevanceThreshold:   getEnvAsFloat("RAG_RELEVANCE_THRESHOLD", 0.5),
			MinHighRelevanceDocs: getEnvAsInt("RAG_MIN_HIGH_RELEVANCE_DOCS", 1),
			MaxRetrievalResults:  getEnvAsInt("RAG_MAX_RETRIEVAL_RESULTS", 10),
			MaxCorrectionRetries: getEnvAsInt("RAG_MAX_CORRECTION_RETRIES", 2),
			MaxHITLInteractions:  getEnvAsInt("RAG_MAX_HITL_INTERACTIONS", 2),
			RelevanceGate:        getEnv("RAG_RELEVANCE_GATE", "relaxed"),
			HITLEnabled:          getEnvAsBool("RAG_HITL_ENABLED", true),
			PendingTTLSeconds:    getEnvAsInt("RAG_PENDING_TTL_SECONDS", 3600),
			IndexTopic:           getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
		},
		Keys: APIKeys{
			GoogleGemini:     getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Tavily:           getEnv("TAVILY_API_KEY", ""),
			TavilyMaxResults: getEnvAsInt("TAVILY_MAX_RESULTS", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
