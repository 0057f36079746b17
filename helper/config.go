package helper

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"

	EmbedderHugot  = "hugot"
	EmbedderGemini = "gemini"

	BackendLocal    = "local"
	BackendPostgres = "postgres"

	AnswerModeExtraction = "extraction"
	AnswerModeText       = "text"
)

// Configuration is passed explicitly to every adapter at construction time
type Configuration struct {
	// LLM
	Provider        string  `json:"provider" env:"PROCESSRAG_PROVIDER" envDefault:"gemini"`
	ChatModel       string  `json:"chat_model" env:"PROCESSRAG_CHAT_MODEL"`
	Temperature     float32 `json:"temperature" env:"PROCESSRAG_TEMPERATURE" envDefault:"0"`
	MaxTokens       int     `json:"max_tokens" env:"PROCESSRAG_MAX_TOKENS" envDefault:"8192"`
	GeminiAPIKey    string  `json:"-" env:"GEMINI_API_KEY"`
	AnthropicAPIKey string  `json:"-" env:"ANTHROPIC_API_KEY"`

	// Embeddings
	Embedder       string `json:"embedder" env:"PROCESSRAG_EMBEDDER" envDefault:"hugot"`
	EmbeddingModel string `json:"embedding_model" env:"PROCESSRAG_EMBEDDING_MODEL"`
	EmbeddingDim   int    `json:"embedding_dim" env:"PROCESSRAG_EMBEDDING_DIM" envDefault:"384"`

	// Index
	IndexBackend string                `json:"index_backend" env:"PROCESSRAG_INDEX_BACKEND" envDefault:"local"`
	PersistDir   string                `json:"persist_dir" env:"PROCESSRAG_PERSIST_DIR" envDefault:"index_db"`
	Database     DatabaseConfiguration `json:"database"`

	// Retrieval
	TopK               int     `json:"top_k" env:"PROCESSRAG_TOP_K" envDefault:"10"`
	RelevanceThreshold float64 `json:"relevance_threshold" env:"PROCESSRAG_RELEVANCE_THRESHOLD" envDefault:"0.1"`
	AnswerMode         string  `json:"answer_mode" env:"PROCESSRAG_ANSWER_MODE" envDefault:"extraction"`

	LogLevel string `json:"log_level" env:"PROCESSRAG_LOG_LEVEL" envDefault:"info"`
}

// NewConfiguration reads the configuration from the environment.
// If envFile is set and exists it is loaded first; variables already set in the
// environment take precedence over the file.
func NewConfiguration(envFile string) (*Configuration, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, NewError("load env file", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, NewError("stat env file", err)
		}
	}

	config := &Configuration{}
	if err := env.Parse(config); err != nil {
		return nil, NewError("parse configuration", err)
	}

	return config, nil
}

// ChatProvider returns the provider that serves ChatModel.
// A provider prefix in the model name takes precedence over Provider.
func (c *Configuration) ChatProvider() string {
	return DetectProvider(c.ChatModel, c.Provider)
}

// DetectProvider determines the provider from a model name like
// "claude-sonnet-4-20250514", "gemini/gemini-2.5-flash" or "anthropic/claude-3-haiku".
// Names without a known prefix use fallback.
func DetectProvider(chatModel string, fallback string) string {
	chatModel = strings.ToLower(chatModel)

	switch {
	case strings.HasPrefix(chatModel, "claude/"), strings.HasPrefix(chatModel, "anthropic/"), strings.HasPrefix(chatModel, "claude-"):
		return ProviderClaude
	case strings.HasPrefix(chatModel, "gemini/"), strings.HasPrefix(chatModel, "google/"), strings.HasPrefix(chatModel, "gemini-"):
		return ProviderGemini
	default:
		return fallback
	}
}

// APIKey returns the credential of the chat provider
func (c *Configuration) APIKey() string {
	switch c.ChatProvider() {
	case ProviderClaude:
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// SetAPIKey sets the credential of the chat provider
func (c *Configuration) SetAPIKey(key string) {
	switch c.ChatProvider() {
	case ProviderClaude:
		c.AnthropicAPIKey = key
	default:
		c.GeminiAPIKey = key
	}
}

// Validate checks the configuration before any pipeline work starts
func (c *Configuration) Validate() error {
	provider := c.ChatProvider()
	switch provider {
	case ProviderGemini, ProviderClaude:
	default:
		return NewError("validate provider", fmt.Errorf("unsupported provider %q", provider))
	}

	if strings.TrimSpace(c.APIKey()) == "" {
		return NewError("validate "+provider+" credential", ErrMissingCredential)
	}

	switch c.Embedder {
	case EmbedderHugot:
	case EmbedderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return NewError("validate gemini embedder credential", ErrMissingCredential)
		}
	default:
		return NewError("validate embedder", fmt.Errorf("unsupported embedder %q", c.Embedder))
	}

	if c.EmbeddingDim <= 0 {
		return NewError("validate embedding dimension", fmt.Errorf("embedding dimension must be positive, got %d", c.EmbeddingDim))
	}

	switch c.IndexBackend {
	case BackendLocal:
		if c.PersistDir == "" {
			return NewError("validate persist dir", fmt.Errorf("persist dir is required for the local backend"))
		}
	case BackendPostgres:
	default:
		return NewError("validate index backend", fmt.Errorf("unsupported index backend %q", c.IndexBackend))
	}

	if c.TopK <= 0 {
		return NewError("validate top k", fmt.Errorf("top k must be positive, got %d", c.TopK))
	}
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		return NewError("validate relevance threshold", fmt.Errorf("relevance threshold must be in [0, 1], got %v", c.RelevanceThreshold))
	}

	switch c.AnswerMode {
	case AnswerModeExtraction, AnswerModeText:
	default:
		return NewError("validate answer mode", fmt.Errorf("unsupported answer mode %q", c.AnswerMode))
	}

	return nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info
func (c *Configuration) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
