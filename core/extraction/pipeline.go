package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/processrag/core/llm"
	"github.com/siherrmann/processrag/helper"
	"github.com/siherrmann/processrag/model"
)

// ErrSchemaViolation is returned when a stage output does not match its record schema
var ErrSchemaViolation = llm.ErrSchemaViolation

// Pipeline runs the LLD and GPM stages against one provider
type Pipeline struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewPipeline creates a new extraction pipeline
func NewPipeline(provider llm.Provider, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		provider: provider,
		logger:   logger,
	}
}

// Run extracts the LLD record for question and derives the GPM classes from it.
// The GPM stage only starts after the LLD stage succeeded.
func (p *Pipeline) Run(ctx context.Context, question string, retrieved string, history []model.Message) (*model.ExtractionRecord, *model.ClassRecord, error) {
	start := time.Now()

	lld, err := p.ExtractLLD(ctx, question, retrieved, history)
	if err != nil {
		return nil, nil, err
	}

	gpm, err := p.ClassifyGPM(ctx, lld, history)
	if err != nil {
		return nil, nil, err
	}

	p.logger.Info("Extraction finished", "actions", len(lld.IDs), "classes", len(gpm.IDs), "duration", time.Since(start))

	return lld, gpm, nil
}

// ExtractLLD runs the LLD stage
func (p *Pipeline) ExtractLLD(ctx context.Context, question string, retrieved string, history []model.Message) (*model.ExtractionRecord, error) {
	if strings.TrimSpace(question) == "" {
		return nil, helper.NewError("lld stage", fmt.Errorf("question is empty"))
	}

	request := &llm.Request{
		System:  SystemPrompt,
		History: history,
		Prompt:  LLDPrompt(question, retrieved),
	}

	record := &model.ExtractionRecord{}
	if err := p.provider.GenerateStructured(ctx, request, ExtractionSchema(), record); err != nil {
		return nil, helper.NewError("lld stage", err)
	}
	if err := record.Validate(); err != nil {
		return nil, helper.NewError("lld stage", fmt.Errorf("%w: %v", ErrSchemaViolation, err))
	}

	p.logger.Debug("LLD stage finished", "actions", len(record.IDs))

	return record, nil
}

// ClassifyGPM runs the GPM stage on the serialized LLD record
func (p *Pipeline) ClassifyGPM(ctx context.Context, lld *model.ExtractionRecord, history []model.Message) (*model.ClassRecord, error) {
	if lld == nil {
		return nil, helper.NewError("gpm stage", fmt.Errorf("lld record is nil"))
	}

	request := &llm.Request{
		System:  SystemPrompt,
		History: history,
		Prompt:  GPMPrompt(lld.String()),
	}

	record := &model.ClassRecord{}
	if err := p.provider.GenerateStructured(ctx, request, ClassSchema(), record); err != nil {
		return nil, helper.NewError("gpm stage", err)
	}
	if err := record.Validate(); err != nil {
		return nil, helper.NewError("gpm stage", fmt.Errorf("%w: %v", ErrSchemaViolation, err))
	}

	p.logger.Debug("GPM stage finished", "classes", len(record.IDs))

	return record, nil
}

// AnswerText answers question from context as free text
func (p *Pipeline) AnswerText(ctx context.Context, question string, retrieved string, history []model.Message) (string, error) {
	request := &llm.Request{
		System:  textSystemPrompt,
		History: history,
		Prompt:  TextPrompt(question, retrieved),
	}

	answer, err := p.provider.Generate(ctx, request)
	if err != nil {
		return "", helper.NewError("text answer", err)
	}
	return strings.TrimSpace(answer), nil
}
