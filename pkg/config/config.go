package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    int
	LogMode string

	// vector index
	VectorProvider    string // pinecone | pgvector | memory
	PineconeAPIKey    string
	PineconeIndexName string
	PineconeIndexHost string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int

	// llm provider (OpenAI-compatible; Groq works via base url)
	LLMAPIKey       string
	LLMBaseURL      string
	LLMModel        string
	Temperature     float64
	AnswerMaxTokens int

	// embedding provider (may differ from the llm provider)
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingDim     int

	// rag parameters
	ChunkSize        int
	ChunkOverlap     int
	TopK             int
	ScoreThreshold   float64
	MaxContextChunks int
	MaxFileSizeMB    int
	MaxHistory       int
}

func Load() *Config {
	godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		port = 8000
	}

	return &Config{
		Port:    port,
		LogMode: getEnv("LOG_MODE", "dev"),

		VectorProvider:    getEnv("VECTOR_PROVIDER", "pinecone"),
		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", "rag-qa-system"),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),

		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:        getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
		Temperature:     getEnvFloat("TEMPERATURE", 0.7),
		AnswerMaxTokens: getEnvInt("ANSWER_MAX_TOKENS", 1024),

		EmbeddingAPIKey:  getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIMENSION", 384),

		ChunkSize:        getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 200),
		TopK:             getEnvInt("TOP_K", 7),
		ScoreThreshold:   getEnvFloat("SCORE_THRESHOLD", 0.35),
		MaxContextChunks: getEnvInt("MAX_CONTEXT_CHUNKS", 5),
		MaxFileSizeMB:    getEnvInt("MAX_FILE_SIZE_MB", 10),
		MaxHistory:       getEnvInt("MAX_HISTORY", 10),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
