package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kradenko/rag-assistant/internal/core/domain"
)

type Config struct {
	LogLevel string

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiGenModel   string
	GeminiEmbedModel string

	TavilyAPIKey  string
	TavilyBaseURL string

	ChunkSize    int
	ChunkOverlap int
	MaxResults   int
	MinScore     float64
	MemoryWindow int

	// RouterPolicy is one of: all, classify, gate, union.
	RouterPolicy       string
	RouterFailClosed   bool
	GateTopic          string
	GateNegativeTokens string

	SourcesFile string
	MetricsPort string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:     mustEnv("GEMINI_KEY", ""),
		GeminiBaseURL:    mustEnv("GEMINI_BASE_URL", ""),
		GeminiGenModel:   mustEnv("GEMINI_GEN_MODEL", "gemini-2.5-flash"),
		GeminiEmbedModel: mustEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),

		TavilyAPIKey:  mustEnv("TAVILY_API_KEY", ""),
		TavilyBaseURL: mustEnv("TAVILY_BASE_URL", ""),

		ChunkSize:    mustEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 50),
		MaxResults:   mustEnvInt("RAG_MAX_RESULTS", 2),
		MinScore:     mustEnvFloat("RAG_MIN_SCORE", 0.5),
		MemoryWindow: mustEnvInt("MEMORY_WINDOW", 10),

		RouterPolicy:       mustEnv("ROUTER_POLICY", "all"),
		RouterFailClosed:   mustEnvBool("ROUTER_FAIL_CLOSED", false),
		GateTopic:          mustEnv("GATE_TOPIC", "the ingested documents"),
		GateNegativeTokens: mustEnv("GATE_NEGATIVE_TOKENS", "no,non"),

		SourcesFile: mustEnv("SOURCES_FILE", "sources.yaml"),
		MetricsPort: mustEnv("METRICS_PORT", ""),
	}
}

// LoadSources reads the registered-source list. Each entry names one
// document, its path and the natural-language description the LLM-based
// routers present to the model.
func LoadSources(path string) ([]domain.SourceConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file struct {
		Sources []domain.SourceConfig `yaml:"sources"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	for i, src := range file.Sources {
		if src.Name == "" || src.Path == "" {
			return nil, fmt.Errorf("sources[%d]: name and path are required", i)
		}
	}
	return file.Sources, nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
