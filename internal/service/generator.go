package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/frankfika/gitlab-issuehelper/common/llm"
	"github.com/frankfika/gitlab-issuehelper/common/logger"
	"github.com/frankfika/gitlab-issuehelper/internal/mapper"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

// ClientFactory builds a completion client from the effective settings.
type ClientFactory func(settings model.Settings) (llm.Client, error)

type GenerateParams struct {
	// DraftID groups regenerations of the same draft. Optional.
	DraftID     string
	Description string
	Images      []model.Image
}

type GeneratorService interface {
	// Generate streams a draft. onIncrement receives the full text so far and
	// may be nil.
	Generate(ctx context.Context, params GenerateParams, onIncrement llm.IncrementFunc) (*model.Draft, error)
}

type generatorService struct {
	settings  store.SettingsStore
	newClient ClientFactory
	drafts    *Drafts
	recorder  Recorder
}

func NewGeneratorService(settings store.SettingsStore, newClient ClientFactory, drafts *Drafts, recorder Recorder) GeneratorService {
	if drafts == nil {
		drafts = NewDrafts()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &generatorService{
		settings:  settings,
		newClient: newClient,
		drafts:    drafts,
		recorder:  recorder,
	}
}

func (s *generatorService) Generate(ctx context.Context, params GenerateParams, onIncrement llm.IncrementFunc) (*model.Draft, error) {
	if strings.TrimSpace(params.Description) == "" && len(params.Images) == 0 {
		return nil, &ValidationError{Field: "description", Reason: "describe the issue or attach a screenshot"}
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if settings.APIKey == "" {
		return nil, &ValidationError{Field: "apiKey", Reason: "completion API key is not configured"}
	}

	client, err := s.newClient(settings)
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DraftID:   optional(params.DraftID),
		Operation: logger.Ptr("generate"),
		Component: "issuehelper.service.generator",
	})

	sc := logger.StartSpan(ctx, "service.generate")
	defer sc.End()
	sc.SetAttributes(
		attribute.String("llm.model", client.Model()),
		attribute.Int("issue.image_count", len(params.Images)),
	)

	runCtx, ticket := s.drafts.begin(sc.Context(), params.DraftID)
	defer ticket.finish()

	slog.InfoContext(runCtx, "generating draft",
		"model", client.Model(),
		"description_len", len(params.Description),
		"image_count", len(params.Images))

	forward := func(content string) {
		if onIncrement != nil && ticket.current() {
			onIncrement(content)
		}
	}

	start := time.Now()
	res, err := client.Generate(runCtx, llm.GenerateRequest{
		Description: params.Description,
		ImageCount:  len(params.Images),
	}, forward)
	elapsed := time.Since(start).Seconds()

	if !ticket.current() {
		slog.InfoContext(runCtx, "draft generation superseded")
		s.recorder.RecordGeneration("superseded", elapsed, 0)
		return nil, ErrSuperseded
	}
	if err != nil {
		sc.RecordError(err)
		result := "error"
		if errors.Is(err, context.Canceled) {
			result = "canceled"
		}
		s.recorder.RecordGeneration(result, elapsed, 0)
		return nil, err
	}

	draft := &model.Draft{
		Content:       res.Content,
		Title:         mapper.ExtractTitle(res.Content),
		Labels:        mapper.ExtractLabels(res.Content),
		SkippedFrames: res.SkippedFrames,
	}

	s.recorder.RecordGeneration("ok", elapsed, res.SkippedFrames)
	slog.InfoContext(runCtx, "draft generated",
		"content_len", len(draft.Content),
		"title", logger.Truncate(draft.Title, 80),
		"labels", draft.Labels,
		"skipped_frames", draft.SkippedFrames)

	return draft, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
