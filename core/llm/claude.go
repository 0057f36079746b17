package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
)

// Claude is a Provider backed by the Anthropic messages API.
// Structured output is requested through the system prompt and decoded from the text response.
type Claude struct {
	client      anthropic.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
	closed      bool
}

// NewClaude creates a Claude provider. An empty model uses DefaultClaudeModel.
func NewClaude(apiKey string, chatModel string, temperature float32, maxTokens int, logger *slog.Logger) (*Claude, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, helper.NewError("anthropic api key", helper.ErrMissingCredential)
	}
	if chatModel == "" {
		chatModel = DefaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	logger.Debug("Claude provider initialized", "model", chatModel, "temperature", temperature, "max_tokens", maxTokens)

	return &Claude{
		client:      client,
		model:       chatModel,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}, nil
}

func (c *Claude) Generate(ctx context.Context, request *Request) (string, error) {
	if err := validateRequest(request); err != nil {
		return "", helper.NewError("claude generate", err)
	}

	text, err := c.generate(ctx, request.System, request)
	if err != nil {
		return "", helper.NewError("claude generate", err)
	}
	return text, nil
}

func (c *Claude) GenerateStructured(ctx context.Context, request *Request, schema Schema, out interface{}) error {
	if err := validateRequest(request); err != nil {
		return helper.NewError("claude generate structured", err)
	}

	system, err := structuredSystemPrompt(request.System, schema)
	if err != nil {
		return helper.NewError("render schema", err)
	}

	text, err := c.generate(ctx, system, request)
	if err != nil {
		return helper.NewError("claude generate structured", err)
	}

	if err := DecodeStructured(text, out); err != nil {
		return helper.NewError("decode claude response", err)
	}
	return nil
}

func (c *Claude) Type() string {
	return helper.ProviderClaude
}

func (c *Claude) Close() error {
	c.closed = true
	return nil
}

func (c *Claude) generate(ctx context.Context, system string, request *Request) (string, error) {
	if c.closed {
		return "", fmt.Errorf("provider is closed")
	}

	messages := claudeMessages(request)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(float64(c.temperature)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	c.logger.Debug("Generating with claude", "model", c.model, "messages", len(messages))

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from claude")
	}
	return text.String(), nil
}

// claudeMessages converts history and prompt, system turns of the history are skipped
func claudeMessages(request *Request) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(request.History)+1)
	for _, message := range request.History {
		switch message.Role {
		case model.RoleSystem:
			continue
		case model.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(message.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(message.Content)))
		}
	}
	return append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)))
}

func structuredSystemPrompt(system string, schema Schema) (string, error) {
	schemaJSON, err := schema.JSON()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if system != "" {
		b.WriteString(strings.TrimRight(system, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Respond only with a single JSON object matching this JSON schema, without any other text:\n")
	b.WriteString(schemaJSON)
	return b.String(), nil
}
