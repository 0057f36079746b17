package pipeline

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/processrag/helper"
	"google.golang.org/genai"
)

const (
	DefaultHugotModel    = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultHugotOnnxFile = "onnx/model.onnx"
	DefaultGeminiModel   = "gemini-embedding-001"
)

// NewEmbedder creates the embedder selected in the configuration
func NewEmbedder(ctx context.Context, config *helper.Configuration) (EmbedFunc, error) {
	switch config.Embedder {
	case helper.EmbedderGemini:
		return GeminiEmbedder(ctx, config.GeminiAPIKey, config.EmbeddingModel, config.EmbeddingDim)
	case helper.EmbedderHugot, "":
		modelName := config.EmbeddingModel
		onnxFile := ""
		if modelName == "" {
			modelName = DefaultHugotModel
			onnxFile = DefaultHugotOnnxFile
		}
		return HugotEmbedder(modelName, onnxFile)
	default:
		return nil, helper.NewError("create embedder", fmt.Errorf("unsupported embedder %q", config.Embedder))
	}
}

// DefaultEmbedder creates an embedder using a local sentence transformer model.
// all-MiniLM-L6-v2 produces 384-dimensional embeddings.
func DefaultEmbedder() (EmbedFunc, error) {
	return HugotEmbedder(DefaultHugotModel, DefaultHugotOnnxFile)
}

// HugotEmbedder runs a feature extraction model from Hugging Face locally.
// The model is downloaded to helper.ModelDir on first use.
func HugotEmbedder(modelName string, onnxFilePath string) (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(modelName, onnxFilePath)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return result.Embeddings[0], nil
	}, nil
}

// GeminiEmbedder embeds text with the Gemini embedding API, truncated to dim dimensions
func GeminiEmbedder(ctx context.Context, apiKey string, model string, dim int) (EmbedFunc, error) {
	if apiKey == "" {
		return nil, helper.NewError("create gemini embedder", helper.ErrMissingCredential)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	outputDim := int32(dim)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		result, err := client.Models.EmbedContent(ctx, model, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, embeddingConfig)
		if err != nil {
			return nil, fmt.Errorf("embedding generation failed: %w", err)
		}

		if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
			return nil, fmt.Errorf("no embedding returned from API")
		}

		embedding := result.Embeddings[0].Values
		if len(embedding) != dim {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", dim, len(embedding))
		}

		return embedding, nil
	}, nil
}
