package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/schedule-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// External service configurations
	LLMConnectorCfg LLMConnectorConfig `envPrefix:"LLM_"`
	ContentStoreCfg ContentStoreConfig `envPrefix:"CONTENT_STORE_"`

	// Pipeline configuration
	GenerationCfg GenerationConfig `envPrefix:"GENERATION_"`
	TriageCfg     TriageConfig     `envPrefix:"TRIAGE_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Rate limit for the generation endpoint
	RateLimitCfg RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// Metered unioffice key; .docx documents are rejected without it
	DocxLicenseKey string `env:"UNIDOC_LICENSE_API_KEY"`

	// Model price table (loaded from YAML, not from env)
	Prices PriceTable

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	// Provider selects the generator backend: http, openai or gemini.
	Provider     string `env:"PROVIDER" envDefault:"http"`
	Model        string `env:"MODEL" envDefault:"gpt-4o-mini"`
	APIKey       string `env:"API_KEY"`
	ChatEndpoint string `env:"CHAT_ENDPOINT" envDefault:"/chat/completions"`
}

// GenerationConfig caps the single generator call made per request.
type GenerationConfig struct {
	Temperature       float64       `env:"TEMPERATURE" envDefault:"0.3"`
	MaxOutputTokens   int           `env:"MAX_OUTPUT_TOKENS" envDefault:"8000"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"3m"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"15s"`
}

// TriageConfig holds the document triage tuning constants.
type TriageConfig struct {
	ChunkSize              int     `env:"CHUNK_SIZE" envDefault:"2000"`
	MinSectionLength       int     `env:"MIN_SECTION_LENGTH" envDefault:"100"`
	AutoSelectThreshold    int     `env:"AUTO_SELECT_THRESHOLD" envDefault:"20"`
	HighRelevanceThreshold int     `env:"HIGH_RELEVANCE_THRESHOLD" envDefault:"50"`
	CharsPerToken          int     `env:"CHARS_PER_TOKEN" envDefault:"4"`
	TruncationRatio        float64 `env:"TRUNCATION_RATIO" envDefault:"0.75"`
	ReadConcurrency        int     `env:"READ_CONCURRENCY" envDefault:"4"`
	PricingFile            string  `env:"PRICING_FILE"`
}

type ContentStoreConfig struct {
	HTTPClientConfig
	// Kind selects the store implementation: file or http.
	Kind           string               `env:"KIND" envDefault:"file"`
	RootDir        string               `env:"ROOT_DIR" envDefault:"."`
	ObjectEndpoint string               `env:"OBJECT_ENDPOINT" envDefault:"/objects/{path}"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"5m"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"5m"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`  // 10 MiB
	MaxTotalSize  int64 `env:"MAX_TOTAL_SIZE" envDefault:"52428800"` // 50 MiB
	MaxFileCount  int   `env:"MAX_FILE_COUNT" envDefault:"16"`
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"67108864"` // 64 MiB
}

type RateLimitConfig struct {
	RequestsPerMinute int `env:"REQUESTS_PER_MINUTE" envDefault:"30"`
	Burst             int `env:"BURST" envDefault:"5"`
}

// PriceTable maps model identifiers to the input price per 1K tokens.
type PriceTable struct {
	DefaultPer1K float64            `yaml:"default_per_1k"`
	Models       map[string]float64 `yaml:"models"`
}

//go:embed pricing.yaml
var defaultPricingYAML []byte

func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	prices, err := LoadPriceTable(cfg.TriageCfg.PricingFile)
	if err != nil {
		return nil, fmt.Errorf("load price table: %w", err)
	}
	cfg.Prices = prices

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.LLMConnectorCfg.Provider {
	case "http", "openai", "gemini":
	default:
		errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be one of http, openai, gemini, got %q", cfg.LLMConnectorCfg.Provider))
	}

	switch cfg.ContentStoreCfg.Kind {
	case "file", "http":
	default:
		errors = append(errors, fmt.Sprintf("CONTENT_STORE_KIND must be file or http, got %q", cfg.ContentStoreCfg.Kind))
	}

	gen := cfg.GenerationCfg
	if gen.Temperature < 0 || gen.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("GENERATION_TEMPERATURE must be between 0 and 2, got %g", gen.Temperature))
	}
	if gen.MaxOutputTokens < 1 || gen.MaxOutputTokens > 128000 {
		errors = append(errors, fmt.Sprintf("GENERATION_MAX_OUTPUT_TOKENS must be between 1 and 128000, got %d", gen.MaxOutputTokens))
	}
	if gen.Timeout < time.Second || gen.Timeout > 30*time.Minute {
		errors = append(errors, fmt.Sprintf("GENERATION_TIMEOUT must be between 1s and 30m, got %s", gen.Timeout))
	}

	tr := cfg.TriageCfg
	if tr.ChunkSize < 200 {
		errors = append(errors, fmt.Sprintf("TRIAGE_CHUNK_SIZE must be at least 200, got %d", tr.ChunkSize))
	}
	if tr.MinSectionLength < 0 || tr.MinSectionLength >= tr.ChunkSize {
		errors = append(errors, fmt.Sprintf("TRIAGE_MIN_SECTION_LENGTH must be between 0 and TRIAGE_CHUNK_SIZE(%d), got %d", tr.ChunkSize, tr.MinSectionLength))
	}
	if tr.AutoSelectThreshold < 0 || tr.AutoSelectThreshold > 100 {
		errors = append(errors, fmt.Sprintf("TRIAGE_AUTO_SELECT_THRESHOLD must be between 0 and 100, got %d", tr.AutoSelectThreshold))
	}
	if tr.HighRelevanceThreshold < 0 || tr.HighRelevanceThreshold > 100 {
		errors = append(errors, fmt.Sprintf("TRIAGE_HIGH_RELEVANCE_THRESHOLD must be between 0 and 100, got %d", tr.HighRelevanceThreshold))
	}
	if tr.CharsPerToken < 1 {
		errors = append(errors, fmt.Sprintf("TRIAGE_CHARS_PER_TOKEN must be positive, got %d", tr.CharsPerToken))
	}
	if tr.TruncationRatio <= 0 || tr.TruncationRatio > 1 {
		errors = append(errors, fmt.Sprintf("TRIAGE_TRUNCATION_RATIO must be in (0, 1], got %g", tr.TruncationRatio))
	}

	if tr.ReadConcurrency < 1 || tr.ReadConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("TRIAGE_READ_CONCURRENCY must be between 1 and 64, got %d", tr.ReadConcurrency))
	}

	if cfg.RateLimitCfg.RequestsPerMinute < 1 || cfg.RateLimitCfg.RequestsPerMinute > 600 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_REQUESTS_PER_MINUTE must be between 1 and 600, got %d", cfg.RateLimitCfg.RequestsPerMinute))
	}
	if cfg.RateLimitCfg.Burst < 1 || cfg.RateLimitCfg.Burst > 100 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_BURST must be between 1 and 100, got %d", cfg.RateLimitCfg.Burst))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// LoadPriceTable reads the model price table from path, or the embedded default when path is empty.
func LoadPriceTable(path string) (PriceTable, error) {
	data := defaultPricingYAML
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return PriceTable{}, fmt.Errorf("read pricing file: %w", err)
		}
		data = raw
	}

	if len(data) == 0 {
		return PriceTable{}, fmt.Errorf("pricing file is empty: %s", path)
	}

	var table PriceTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return PriceTable{}, fmt.Errorf("parse pricing YAML: %w", err)
	}

	if table.DefaultPer1K <= 0 {
		return PriceTable{}, fmt.Errorf("pricing table has no positive default_per_1k")
	}
	if table.Models == nil {
		table.Models = map[string]float64{}
	}

	return table, nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
