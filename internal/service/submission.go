package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/frankfika/gitlab-issuehelper/common/logger"
	"github.com/frankfika/gitlab-issuehelper/internal/mapper"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

type SubmitParams struct {
	// ProjectID selects a stored credential. Empty means the only stored one.
	ProjectID string
	Content   string
	// Title and Labels override what is derived from Content when set.
	Title  string
	Labels []string
	Images []model.Image
}

type SubmitResult struct {
	IssueID     int64
	DisplayID   string
	URL         string
	ProjectName string
	Title       string
	Labels      []string
	Message     string
}

type SubmissionService interface {
	Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error)
}

type submissionService struct {
	projects store.ProjectStore
	history  store.HistoryStore
	tracker  issue_tracker.IssueTrackerService
	recorder Recorder
}

func NewSubmissionService(
	projects store.ProjectStore,
	history store.HistoryStore,
	tracker issue_tracker.IssueTrackerService,
	recorder Recorder,
) SubmissionService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &submissionService{
		projects: projects,
		history:  history,
		tracker:  tracker,
		recorder: recorder,
	}
}

func (s *submissionService) Submit(ctx context.Context, params SubmitParams) (*SubmitResult, error) {
	if strings.TrimSpace(params.Content) == "" {
		return nil, required("content")
	}

	cred, err := s.resolveProject(ctx, params.ProjectID)
	if err != nil {
		if errors.Is(err, issue_tracker.ErrNoProjectSelected) {
			s.recorder.RecordSubmission("no_project")
		}
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProjectID: logger.Ptr(cred.ID),
		Operation: logger.Ptr("submit"),
		Component: "issuehelper.service.submission",
	})

	sc := logger.StartSpan(ctx, "service.submit")
	defer sc.End()
	ctx = sc.Context()

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = mapper.ExtractTitle(params.Content)
	}
	labels := params.Labels
	if labels == nil {
		labels = mapper.ExtractLabels(params.Content)
	}

	sc.SetAttributes(
		attribute.String("issue.title", logger.Truncate(title, 100)),
		attribute.StringSlice("issue.labels", labels),
		attribute.Int("issue.image_count", len(params.Images)),
	)

	created, err := s.tracker.CreateIssue(ctx, issue_tracker.CreateIssueParams{
		Title:       title,
		Description: mapper.ComposeDescription(params.Content, params.Images),
		Labels:      labels,
		Credential:  cred,
	})
	if err != nil {
		sc.RecordError(err)
		s.recorder.RecordSubmission("failed")
		return nil, err
	}
	s.recorder.RecordSubmission("created")

	if _, err := s.history.Save(ctx, model.HistoryRecord{
		Title:       title,
		Content:     params.Content,
		ProjectName: cred.Name,
		IssueURL:    created.URL,
		IssueID:     created.ID,
	}); err != nil {
		// History is best-effort once the issue exists.
		slog.WarnContext(ctx, "failed to save submission history", "error", err)
	}

	slog.InfoContext(ctx, "issue submitted", "issue", created.DisplayID, "url", created.URL)

	return &SubmitResult{
		IssueID:     created.ID,
		DisplayID:   created.DisplayID,
		URL:         created.URL,
		ProjectName: cred.Name,
		Title:       title,
		Labels:      labels,
		Message:     fmt.Sprintf("Issue %s submitted to %s", created.DisplayID, cred.Name),
	}, nil
}

// resolveProject picks the target credential: the requested one, else the
// only stored one.
func (s *submissionService) resolveProject(ctx context.Context, id string) (*model.ProjectCredential, error) {
	var cred *model.ProjectCredential

	if id != "" {
		found, err := s.projects.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: project %q does not exist", issue_tracker.ErrNoProjectSelected, id)
		}
		if err != nil {
			return nil, fmt.Errorf("loading project: %w", err)
		}
		cred = found
	} else {
		projects, err := s.projects.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		if len(projects) != 1 {
			return nil, issue_tracker.ErrNoProjectSelected
		}
		cred = &projects[0]
	}

	if !cred.Usable() {
		return nil, fmt.Errorf("%w: project %q is missing connection details", issue_tracker.ErrNoProjectSelected, cred.Name)
	}
	return cred, nil
}
