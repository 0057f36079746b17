package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
	"google.golang.org/genai"
)

// Gemini is a Provider backed by the Google Gemini API
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// NewGemini creates a Gemini provider. An empty model uses DefaultGeminiModel.
func NewGemini(ctx context.Context, apiKey string, chatModel string, temperature float32, maxTokens int, logger *slog.Logger) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, helper.NewError("gemini api key", helper.ErrMissingCredential)
	}
	if chatModel == "" {
		chatModel = DefaultGeminiModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, helper.NewError("create gemini client", err)
	}

	logger.Debug("Gemini provider initialized", "model", chatModel, "temperature", temperature, "max_tokens", maxTokens)

	return &Gemini{
		client:      client,
		model:       chatModel,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, request *Request) (string, error) {
	text, err := g.generate(ctx, request, nil)
	if err != nil {
		return "", helper.NewError("gemini generate", err)
	}
	return text, nil
}

func (g *Gemini) GenerateStructured(ctx context.Context, request *Request, schema Schema, out interface{}) error {
	responseSchema, err := genaiSchema(schema)
	if err != nil {
		return helper.NewError("convert schema", err)
	}

	text, err := g.generate(ctx, request, responseSchema)
	if err != nil {
		return helper.NewError("gemini generate structured", err)
	}

	if err := DecodeStructured(text, out); err != nil {
		return helper.NewError("decode gemini response", err)
	}
	return nil
}

func (g *Gemini) Type() string {
	return helper.ProviderGemini
}

// Close releases the client, the genai client holds no closable resources
func (g *Gemini) Close() error {
	g.client = nil
	return nil
}

func (g *Gemini) generate(ctx context.Context, request *Request, responseSchema *genai.Schema) (string, error) {
	if err := validateRequest(request); err != nil {
		return "", err
	}
	if g.client == nil {
		return "", fmt.Errorf("provider is closed")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: int32(g.maxTokens),
	}
	if request.System != "" {
		config.SystemInstruction = genai.NewContentFromText(request.System, genai.RoleUser)
	}
	if responseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = responseSchema
	}

	contents := geminiContents(request)

	g.logger.Debug("Generating with gemini", "model", g.model, "messages", len(contents), "structured", responseSchema != nil)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty text in gemini response")
	}
	return text, nil
}

// geminiContents converts history and prompt, system turns of the history are skipped
func geminiContents(request *Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(request.History)+1)
	for _, message := range request.History {
		var role string
		switch message.Role {
		case model.RoleSystem:
			continue
		case model.RoleAssistant:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(message.Content)},
		})
	}
	return append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(request.Prompt)},
	})
}
