package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

type ProjectService interface {
	List(ctx context.Context) ([]model.ProjectCredential, error)
	Get(ctx context.Context, id string) (*model.ProjectCredential, error)
	Add(ctx context.Context, cred model.ProjectCredential) (*model.ProjectCredential, error)
	Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.ProjectCredential, error)
	Delete(ctx context.Context, id string) error
	// TestConnection checks cred against GitLab. When cred has no name, the
	// result carries one suggested from the project.
	TestConnection(ctx context.Context, cred model.ProjectCredential) (*ConnectionResult, error)
}

type ConnectionResult struct {
	Project       issue_tracker.ProjectInfo
	SuggestedName string
	Message       string
}

type projectService struct {
	projects store.ProjectStore
	tracker  issue_tracker.IssueTrackerService
}

func NewProjectService(projects store.ProjectStore, tracker issue_tracker.IssueTrackerService) ProjectService {
	return &projectService{projects: projects, tracker: tracker}
}

func (s *projectService) List(ctx context.Context) ([]model.ProjectCredential, error) {
	return s.projects.List(ctx)
}

func (s *projectService) Get(ctx context.Context, id string) (*model.ProjectCredential, error) {
	return s.projects.Get(ctx, id)
}

func (s *projectService) Add(ctx context.Context, cred model.ProjectCredential) (*model.ProjectCredential, error) {
	cred = trimCredential(cred)
	if err := validateCredential(cred, true); err != nil {
		return nil, err
	}

	added, err := s.projects.Add(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("adding project: %w", err)
	}

	slog.InfoContext(ctx, "project added", "id", added.ID, "name", added.Name, "gitlab_url", added.GitLabURL)
	return added, nil
}

func (s *projectService) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.ProjectCredential, error) {
	existing, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Validate the merged result so a patch cannot blank a required field.
	if err := validateCredential(trimCredential(patch.Apply(*existing)), true); err != nil {
		return nil, err
	}

	updated, err := s.projects.Update(ctx, id, trimPatch(patch))
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "project updated", "id", id)
	return updated, nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	slog.InfoContext(ctx, "project deleted", "id", id)
	return nil
}

func (s *projectService) TestConnection(ctx context.Context, cred model.ProjectCredential) (*ConnectionResult, error) {
	cred = trimCredential(cred)
	if err := validateCredential(cred, false); err != nil {
		return nil, err
	}

	info, err := s.tracker.TestConnection(ctx, cred)
	if err != nil {
		return nil, err
	}

	res := &ConnectionResult{
		Project: *info,
		Message: "connected to " + info.SuggestedName(),
	}
	if cred.Name == "" {
		res.SuggestedName = info.SuggestedName()
	}
	return res, nil
}

// validateCredential checks the fields GitLab needs; withName also requires a name.
func validateCredential(c model.ProjectCredential, withName bool) error {
	if withName && c.Name == "" {
		return required("name")
	}
	if c.GitLabURL == "" {
		return required("gitlabUrl")
	}
	if !strings.HasPrefix(c.GitLabURL, "http://") && !strings.HasPrefix(c.GitLabURL, "https://") {
		return &ValidationError{Field: "gitlabUrl", Reason: "must start with http:// or https://"}
	}
	if c.Token == "" {
		return required("token")
	}
	if c.ProjectID == "" {
		return required("projectId")
	}
	return nil
}

func trimCredential(c model.ProjectCredential) model.ProjectCredential {
	c.Name = strings.TrimSpace(c.Name)
	c.GitLabURL = strings.TrimRight(strings.TrimSpace(c.GitLabURL), "/")
	c.Token = strings.TrimSpace(c.Token)
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	return c
}

func trimPatch(p model.ProjectPatch) model.ProjectPatch {
	trim := func(s *string, f func(string) string) *string {
		if s == nil {
			return nil
		}
		v := f(*s)
		return &v
	}
	return model.ProjectPatch{
		Name:      trim(p.Name, strings.TrimSpace),
		GitLabURL: trim(p.GitLabURL, func(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }),
		Token:     trim(p.Token, strings.TrimSpace),
		ProjectID: trim(p.ProjectID, strings.TrimSpace),
	}
}
