// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.hulomind/config.yaml or ./config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Store: vector store backend selection and PostgreSQL connection
//   - Embedder: embedding provider, model and vector dimension
//   - Retrieval: multi-round search passes, thresholds and result caps
//   - LLM: provider fallback chain and generation tuning
//   - Docs: documentation corpus location and chunking sizes
//   - HTTP/OTLP: server address and trace export
//
// Security: sensitive data (passwords) is never logged; see MarshalJSON.
// Validation: fail-fast range checks with sentinel errors for errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidStoreKind indicates an unsupported vector store backend.
	ErrInvalidStoreKind = errors.New("invalid store kind")

	// ErrInvalidEmbedder indicates an unsupported embedding provider.
	ErrInvalidEmbedder = errors.New("invalid embedder")

	// ErrInvalidDimension indicates the embedding dimension is out of range.
	ErrInvalidDimension = errors.New("invalid embedding dimension")

	// ErrInvalidThreshold indicates a similarity threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid similarity threshold")

	// ErrInvalidTopK indicates a retrieval pass size out of range.
	ErrInvalidTopK = errors.New("invalid top-k")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidProvider indicates an unsupported LLM provider name.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidPostgres indicates a broken PostgreSQL setting.
	ErrInvalidPostgres = errors.New("invalid PostgreSQL configuration")

	// ErrInvalidChunking indicates broken chunk size or overlap values.
	ErrInvalidChunking = errors.New("invalid chunking configuration")
)

// Vector store backends accepted in Config.StoreKind.
const (
	StoreMemory     = "memory"
	StorePersistent = "persistent"
)

// Embedding providers accepted in Config.EmbedderProvider.
const (
	EmbedderGemini = "gemini"
	EmbedderOpenAI = "openai"
	EmbedderMock   = "mock"
)

// LLM providers accepted in Config.LLMProviders.
const (
	LLMOpenAI = "openai"
	LLMGemini = "gemini"
	LLMOllama = "ollama"
	LLMMock   = "mock"
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (passwords, API keys), update MarshalJSON.
type Config struct {
	// Vector store configuration
	StoreKind string `mapstructure:"store_kind" json:"store_kind"` // "memory" (default) or "persistent"

	// Embedder configuration
	EmbedderProvider  string `mapstructure:"embedder_provider" json:"embedder_provider"` // "gemini" (default), "openai", "mock"
	EmbedderModel     string `mapstructure:"embedder_model" json:"embedder_model"`
	EmbedderDimension int    `mapstructure:"embedder_dimension" json:"embedder_dimension"`

	// Retrieval configuration
	BroadTopK        int     `mapstructure:"broad_top_k" json:"broad_top_k"`
	RefinedTopK      int     `mapstructure:"refined_top_k" json:"refined_top_k"`
	BroadThreshold   float32 `mapstructure:"broad_threshold" json:"broad_threshold"`
	RefinedThreshold float32 `mapstructure:"refined_threshold" json:"refined_threshold"`
	MaxResults       int     `mapstructure:"max_results" json:"max_results"`

	// LLM configuration
	LLMProviders []string `mapstructure:"llm_providers" json:"llm_providers"` // fallback order
	OpenAIModel  string   `mapstructure:"openai_model" json:"openai_model"`
	GeminiModel  string   `mapstructure:"gemini_model" json:"gemini_model"`
	OllamaHost   string   `mapstructure:"ollama_host" json:"ollama_host"`
	OllamaModel  string   `mapstructure:"ollama_model" json:"ollama_model"`
	Temperature  float32  `mapstructure:"temperature" json:"temperature"`
	MaxTokens    int      `mapstructure:"max_tokens" json:"max_tokens"`
	MockFallback bool     `mapstructure:"mock_fallback" json:"mock_fallback"`
	LLMRateRPS   float64  `mapstructure:"llm_rate_rps" json:"llm_rate_rps"`
	LLMRateBurst int      `mapstructure:"llm_rate_burst" json:"llm_rate_burst"`

	// Docs corpus configuration
	DocsPath     string `mapstructure:"docs_path" json:"docs_path"`
	ChunkSize    int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`

	// PostgreSQL configuration (persistent store only; see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// HTTP API configuration
	HTTPAddr string `mapstructure:"http_addr" json:"http_addr"`

	// Observability configuration
	OTLPEndpoint string `mapstructure:"otlp_endpoint" json:"otlp_endpoint"` // empty disables trace export
	Environment  string `mapstructure:"environment" json:"environment"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".hulomind")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, when set, overrides the individual postgres_* values.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// Store defaults
	viper.SetDefault("store_kind", StoreMemory)

	// Embedder defaults. gemini-embedding-001 outputs 3072 dimensions by
	// default but supports truncation to 768 via OutputDimensionality;
	// the pgvector schema uses 768.
	viper.SetDefault("embedder_provider", EmbedderGemini)
	viper.SetDefault("embedder_model", "")
	viper.SetDefault("embedder_dimension", 768)

	// Retrieval defaults: a broad low-threshold pass for recall and a
	// refined high-threshold pass for precision.
	viper.SetDefault("broad_top_k", 20)
	viper.SetDefault("refined_top_k", 5)
	viper.SetDefault("broad_threshold", 0.3)
	viper.SetDefault("refined_threshold", 0.7)
	viper.SetDefault("max_results", 5)

	// LLM defaults
	viper.SetDefault("llm_providers", []string{LLMOpenAI, LLMGemini, LLMOllama})
	viper.SetDefault("openai_model", "gpt-4o-mini")
	viper.SetDefault("gemini_model", "gemini-2.5-flash")
	viper.SetDefault("ollama_host", "http://localhost:11434")
	viper.SetDefault("ollama_model", "qwen2.5:7b")
	viper.SetDefault("temperature", 0.7)
	viper.SetDefault("max_tokens", 2048)
	viper.SetDefault("mock_fallback", true)
	viper.SetDefault("llm_rate_rps", 0)
	viper.SetDefault("llm_rate_burst", 1)

	// Docs defaults
	viper.SetDefault("docs_path", "docs")
	viper.SetDefault("chunk_size", 1000)
	viper.SetDefault("chunk_overlap", 200)

	// PostgreSQL defaults for a local development database
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "hulomind")
	viper.SetDefault("postgres_password", "hulomind_dev_password")
	viper.SetDefault("postgres_db_name", "hulomind")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// HTTP defaults
	viper.SetDefault("http_addr", ":8765")

	// Observability defaults
	viper.SetDefault("otlp_endpoint", "")
	viper.SetDefault("environment", "dev")
}

// bindEnvVariables binds environment variable overrides explicitly.
// API keys are not routed through Viper: OPENAI_API_KEY and GEMINI_API_KEY
// are read directly by their SDKs.
func bindEnvVariables() {
	// Hardcoded keys cannot fail to bind; a panic here is a bug, not a
	// runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("store_kind", "HULOMIND_STORE_KIND")
	mustBind("embedder_provider", "HULOMIND_EMBEDDER_PROVIDER")
	mustBind("embedder_model", "HULOMIND_EMBEDDER_MODEL")
	mustBind("llm_providers", "HULOMIND_LLM_PROVIDERS")
	mustBind("mock_fallback", "HULOMIND_MOCK_FALLBACK")
	mustBind("ollama_host", "HULOMIND_OLLAMA_HOST")
	mustBind("docs_path", "HULOMIND_DOCS_PATH")
	mustBind("http_addr", "HULOMIND_HTTP_ADDR")
	mustBind("otlp_endpoint", "HULOMIND_OTLP_ENDPOINT")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) avoid substring matching against real secrets.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 bytes or fewer are fully masked to prevent substring
// leaks; longer secrets keep the first and last 2 characters for debug
// utility. This defends against accidental logging, not compromised logs.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
