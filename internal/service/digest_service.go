package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/feedscribe/feedscribe/internal/domain"
	"github.com/feedscribe/feedscribe/internal/store"
	"github.com/feedscribe/feedscribe/internal/taskmanager"
	"github.com/feedscribe/feedscribe/internal/translation"
)

// DigestTaskName returns the task name used for generating the digest of a
// given day.
func DigestTaskName(day time.Time) string {
	return fmt.Sprintf("digest_generation_%s", day.UTC().Format("2006-01-02"))
}

// DigestService generates daily digests from stored entries.
type DigestService interface {
	// GenerateDigest submits a background task that summarizes the entries
	// published on the given day. The returned handle resolves to a
	// *domain.Digest.
	GenerateDigest(ctx context.Context, day time.Time) (*taskmanager.Handle, error)

	// GetDigest retrieves the digest for a day.
	GetDigest(ctx context.Context, day time.Time) (*domain.Digest, error)

	// ListDigests returns the most recent digests.
	ListDigests(ctx context.Context, limit int) ([]*domain.Digest, error)
}

// digestServiceImpl implements the DigestService interface.
type digestServiceImpl struct {
	entries        store.EntryStore
	digests        store.DigestStore
	translator     translation.Translator
	tasks          *taskmanager.Manager
	targetLanguage string
	logger         *slog.Logger
}

// NewDigestService creates a new DigestService.
func NewDigestService(
	entries store.EntryStore,
	digests store.DigestStore,
	translator translation.Translator,
	tasks *taskmanager.Manager,
	targetLanguage string,
	logger *slog.Logger,
) (DigestService, error) {
	if entries == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "entries store cannot be nil"}
	}
	if digests == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "digests store cannot be nil"}
	}
	if translator == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "translator cannot be nil"}
	}
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "task manager cannot be nil"}
	}
	if targetLanguage == "" {
		return nil, &ServiceError{Operation: "create_service", Message: "target language cannot be empty"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &digestServiceImpl{
		entries:        entries,
		digests:        digests,
		translator:     translator,
		tasks:          tasks,
		targetLanguage: targetLanguage,
		logger:         logger.With(slog.String("component", "digest_service")),
	}, nil
}

func (s *digestServiceImpl) GenerateDigest(ctx context.Context, day time.Time) (*taskmanager.Handle, error) {
	handle, err := s.tasks.Submit(DigestTaskName(day), s.digestTask, day)
	if err != nil {
		return nil, NewServiceError("generate_digest", "failed to submit digest task", err)
	}
	return handle, nil
}

func (s *digestServiceImpl) GetDigest(ctx context.Context, day time.Time) (*domain.Digest, error) {
	digest, err := s.digests.GetByDay(ctx, day)
	if err != nil {
		return nil, NewServiceError("get_digest", "failed to load digest", err)
	}
	return digest, nil
}

func (s *digestServiceImpl) ListDigests(ctx context.Context, limit int) ([]*domain.Digest, error) {
	digests, err := s.digests.List(ctx, limit)
	if err != nil {
		return nil, NewServiceError("list_digests", "failed to list digests", err)
	}
	return digests, nil
}

// digestTask is the task function behind GenerateDigest.
func (s *digestServiceImpl) digestTask(ctx context.Context, args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("digest task expects a day argument, got %d args", len(args))
	}
	day, ok := args[0].(time.Time)
	if !ok {
		return nil, fmt.Errorf("digest task expects a time.Time argument, got %T", args[0])
	}

	taskName := DigestTaskName(day)

	entries, err := s.entries.FindByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for %s: %w", day.Format("2006-01-02"), err)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntriesForDay
	}
	s.tasks.UpdateProgress(taskName, 25)

	source := s.collectDigestSource(entries)

	result, err := s.translator.Summarize(ctx, source, s.targetLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize digest source: %w", err)
	}
	s.tasks.UpdateProgress(taskName, 75)

	title := fmt.Sprintf("Daily digest for %s", day.UTC().Format("2006-01-02"))
	digest, err := domain.NewDigest(day, title, result.Text, len(entries))
	if err != nil {
		return nil, fmt.Errorf("failed to build digest: %w", err)
	}

	if err := s.digests.Create(ctx, digest); err != nil {
		return nil, fmt.Errorf("failed to store digest: %w", err)
	}
	s.tasks.UpdateProgress(taskName, 100)

	s.logger.Info("digest generated",
		slog.String("day", day.UTC().Format("2006-01-02")),
		slog.Int("entries", len(entries)),
		slog.Int("tokens", result.Tokens))

	return digest, nil
}

// collectDigestSource builds the text fed to the summarizer from the day's
// entries, preferring translated fields over originals.
func (s *digestServiceImpl) collectDigestSource(entries []*domain.Entry) string {
	var b strings.Builder
	for _, entry := range entries {
		title := entry.TranslatedTitle
		if title == "" {
			title = entry.OriginalTitle
		}
		b.WriteString("- ")
		b.WriteString(title)
		b.WriteString("\n")

		summary := entry.GeneratedSummary
		if summary == "" {
			summary = entry.OriginalSummary
		}
		if summary != "" {
			b.WriteString("  ")
			b.WriteString(summary)
			b.WriteString("\n")
		}
	}
	return b.String()
}
