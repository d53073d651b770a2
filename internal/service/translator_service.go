package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feedscribe/feedscribe/internal/taskmanager"
	"github.com/feedscribe/feedscribe/internal/translation"
)

// ValidateTaskName returns the task name used for validating a translation
// provider.
func ValidateTaskName(provider string) string {
	return fmt.Sprintf("validate_agent_%s", provider)
}

// ValidationResult is the task result of a provider validation.
type ValidationResult struct {
	Provider string `json:"provider"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

// TranslatorService validates the configured translation provider in the
// background.
type TranslatorService interface {
	// ValidateProvider submits a background task making a minimal live call
	// against the provider. The returned handle resolves to a
	// *ValidationResult; a failed probe is still a completed task.
	ValidateProvider(ctx context.Context) (*taskmanager.Handle, error)
}

// translatorServiceImpl implements the TranslatorService interface.
type translatorServiceImpl struct {
	translator translation.Translator
	tasks      *taskmanager.Manager
	logger     *slog.Logger
}

// NewTranslatorService creates a new TranslatorService.
func NewTranslatorService(
	translator translation.Translator,
	tasks *taskmanager.Manager,
	logger *slog.Logger,
) (TranslatorService, error) {
	if translator == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "translator cannot be nil"}
	}
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "task manager cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &translatorServiceImpl{
		translator: translator,
		tasks:      tasks,
		logger:     logger.With(slog.String("component", "translator_service")),
	}, nil
}

func (s *translatorServiceImpl) ValidateProvider(ctx context.Context) (*taskmanager.Handle, error) {
	handle, err := s.tasks.Submit(ValidateTaskName(s.translator.Name()), s.validateTask)
	if err != nil {
		return nil, NewServiceError("validate_provider", "failed to submit validation task", err)
	}
	return handle, nil
}

// validateTask probes the provider. The probe outcome is the task result, so
// an unreachable provider shows up as a completed task with Valid false
// rather than a failed one.
func (s *translatorServiceImpl) validateTask(ctx context.Context, _ ...any) (any, error) {
	result := &ValidationResult{Provider: s.translator.Name()}

	if err := s.translator.Validate(ctx); err != nil {
		result.Error = err.Error()
		s.logger.Warn("translation provider validation failed",
			slog.String("provider", result.Provider),
			slog.String("error", err.Error()))
		return result, nil
	}

	result.Valid = true
	s.logger.Info("translation provider validated",
		slog.String("provider", result.Provider))
	return result, nil
}
