// Package analyzer turns an uploaded image into the model's analysis text.
package analyzer

import (
	"context"
	stderrors "errors"

	"github.com/aashari/go-report-analyzer/internal/errors"
	"github.com/aashari/go-report-analyzer/internal/gemini"
	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/prompt"
	"github.com/aashari/go-report-analyzer/internal/types"
)

// Generator is the provider call the service depends on
type Generator interface {
	HasCredential() bool
	GenerateContent(ctx context.Context, payload *types.GenerateContentRequest) (*gemini.Outcome, error)
}

// OutcomeRecorder receives one label per analysis attempt
type OutcomeRecorder interface {
	RecordProviderOutcome(outcome string)
}

// Outcome labels reported to the recorder
const (
	OutcomeMissingCredential = "missing_credential"
	OutcomeProviderError     = "provider_error"
	OutcomeInternalError     = "internal_error"
)

// Service is stateless; one instance serves all requests
type Service struct {
	generator Generator
	recorder  OutcomeRecorder
}

// NewService creates the analysis service. recorder may be nil.
func NewService(generator Generator, recorder OutcomeRecorder) *Service {
	return &Service{generator: generator, recorder: recorder}
}

// BuildPayload wraps the instruction and the image into a single user turn
func BuildPayload(instruction string, req types.AnalysisRequest) *types.GenerateContentRequest {
	return &types.GenerateContentRequest{
		Contents: []types.Content{{
			Role: types.RoleUser,
			Parts: []types.Part{
				types.TextPart(instruction),
				types.InlineDataPart(req.MimeType, req.ImageData),
			},
		}},
	}
}

// Analyze returns the model text for req, or the APIError the caller should see
func (s *Service) Analyze(ctx context.Context, req types.AnalysisRequest) (string, *errors.APIError) {
	ctx = logger.WithComponent(ctx, logger.ComponentNames.Analyzer)

	if !s.generator.HasCredential() {
		s.record(OutcomeMissingCredential)
		logger.Error(ctx, "Provider credential is not configured", nil)
		return "", errors.NewMissingCredentialError()
	}

	instruction, err := prompt.Build(req.Language)
	if err != nil {
		s.record(OutcomeInternalError)
		return "", errors.NewInternalError(err)
	}
	logger.Debug(logger.WithStage(ctx, logger.LogStages.PromptBuilt), "Prompt built",
		"language", req.Language,
		"mime_type", req.MimeType,
		"image_size", len(req.ImageData),
	)

	outcome, err := s.generator.GenerateContent(ctx, BuildPayload(instruction, req))
	if err != nil {
		return "", s.mapError(ctx, err)
	}

	s.record(outcome.Kind.String())
	switch outcome.Kind {
	case gemini.OutcomeSuccess:
		return outcome.Text, nil
	case gemini.OutcomeBlocked:
		logger.Warn(ctx, "Analysis blocked by provider",
			"block_reason", outcome.BlockReason(),
			"prompt_feedback", string(outcome.Feedback),
		)
		return "", errors.NewBlockedError()
	default:
		logger.Warn(ctx, "Provider returned no usable candidate")
		return "", errors.NewMalformedResponseError()
	}
}

func (s *Service) mapError(ctx context.Context, err error) *errors.APIError {
	var providerErr *gemini.ProviderError
	switch {
	case stderrors.As(err, &providerErr):
		s.record(OutcomeProviderError)
		return errors.NewProviderError(providerErr.StatusCode, providerErr.StatusText).WithCause(err)
	case stderrors.Is(err, gemini.ErrMissingCredential):
		s.record(OutcomeMissingCredential)
		return errors.NewMissingCredentialError().WithCause(err)
	default:
		s.record(OutcomeInternalError)
		logger.Error(ctx, "Analysis failed", err)
		return errors.NewInternalError(err)
	}
}

func (s *Service) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordProviderOutcome(outcome)
	}
}
