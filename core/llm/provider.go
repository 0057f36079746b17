package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultClaudeModel = "claude-sonnet-4-20250514"
	DefaultMaxTokens   = 8192
)

// ErrSchemaViolation is returned when a structured response does not match the requested schema
var ErrSchemaViolation = errors.New("response does not match schema")

// Request is a provider independent chat request
type Request struct {
	System  string
	History []model.Message
	Prompt  string
}

// Provider generates text or schema constrained JSON from a chat request
type Provider interface {
	Generate(ctx context.Context, request *Request) (string, error)
	// GenerateStructured decodes the response into out, which must be a pointer.
	// Undecodable output is reported as ErrSchemaViolation.
	GenerateStructured(ctx context.Context, request *Request, schema Schema, out interface{}) error
	Type() string
	Close() error
}

// NewProvider creates the chat provider selected by config.
// The provider is taken from the model name if it has a provider prefix.
func NewProvider(ctx context.Context, config *helper.Configuration, logger *slog.Logger) (Provider, error) {
	provider := config.ChatProvider()
	chatModel := NormalizeModel(config.ChatModel)

	switch provider {
	case helper.ProviderClaude:
		return NewClaude(config.AnthropicAPIKey, chatModel, config.Temperature, config.MaxTokens, logger)
	case helper.ProviderGemini:
		return NewGemini(ctx, config.GeminiAPIKey, chatModel, config.Temperature, config.MaxTokens, logger)
	default:
		return nil, helper.NewError("create provider", fmt.Errorf("unsupported provider %q", provider))
	}
}

// NormalizeModel removes a provider prefix from the model name
func NormalizeModel(chatModel string) string {
	for _, prefix := range []string{"claude/", "anthropic/", "gemini/", "google/"} {
		if strings.HasPrefix(strings.ToLower(chatModel), prefix) {
			return chatModel[len(prefix):]
		}
	}
	return chatModel
}

func validateRequest(request *Request) error {
	if request == nil {
		return fmt.Errorf("request is nil")
	}
	if strings.TrimSpace(request.Prompt) == "" {
		return fmt.Errorf("prompt is empty")
	}
	return nil
}
