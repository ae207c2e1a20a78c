// Package config holds environment configuration and the tunable policy.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider identifies the LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// LLM backend
	LLMProvider     Provider
	BaseModel       string
	EscalatedModel  string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	BedrockRegion   string
	GenerateTimeout time.Duration

	// SurrealDB persistence collaborator
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string
	PersistenceEnabled bool

	// Session
	SessionID     string
	MemoryMaxSize int
	ArtifactsDir  string

	// Policy overrides
	PolicyFile string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		LLMProvider:     Provider(getEnv("ANIMA_LLM_PROVIDER", string(ProviderOpenAI))),
		BaseModel:       getEnv("ANIMA_BASE_MODEL", "gpt-4o-mini"),
		EscalatedModel:  getEnv("ANIMA_ESCALATED_MODEL", "gpt-4o"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		BedrockRegion:   getEnv("AWS_REGION", "us-east-1"),
		GenerateTimeout: getDuration("ANIMA_GENERATE_TIMEOUT", 60*time.Second),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "anima"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "sessions"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),
		PersistenceEnabled: getEnv("ANIMA_PERSISTENCE", "false") == "true",

		SessionID:     getEnv("ANIMA_SESSION_ID", "default"),
		MemoryMaxSize: getInt("ANIMA_MEMORY_MAX_SIZE", 1000),
		ArtifactsDir:  getEnv("ANIMA_ARTIFACTS_DIR", "artifacts"),

		PolicyFile: getEnv("ANIMA_POLICY_FILE", ""),

		LogFile:  getEnv("ANIMA_LOG_FILE", "/tmp/anima.log"),
		LogLevel: parseLogLevel(getEnv("ANIMA_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
