package issue_tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/frankfika/gitlab-issuehelper/common/logger"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

type gitLabIssueTrackerService struct {
	httpClient *http.Client
}

// NewGitLabIssueTrackerService talks to whatever instance each credential
// names. A nil httpClient uses the library default.
func NewGitLabIssueTrackerService(httpClient *http.Client) IssueTrackerService {
	return &gitLabIssueTrackerService{httpClient: httpClient}
}

func (s *gitLabIssueTrackerService) TestConnection(ctx context.Context, cred model.ProjectCredential) (*ProjectInfo, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProjectID: logger.Ptr(cred.ProjectID),
		Operation: logger.Ptr("test_connection"),
		Component: "gitlab",
	})

	client, err := s.newClient(cred)
	if err != nil {
		return nil, &ConnectionFailedError{Err: fmt.Errorf("creating gitlab client: %w", err)}
	}

	project, _, err := client.Projects.GetProject(cred.ProjectID, nil, gitlab.WithContext(ctx))
	if err != nil {
		status, message := errorDetails(err)
		slog.WarnContext(ctx, "gitlab connection test failed", "status", status, "error", err)
		return nil, &ConnectionFailedError{StatusCode: status, Message: message, Err: err}
	}

	slog.InfoContext(ctx, "gitlab connection ok", "gitlab_project_id", project.ID)

	return &ProjectInfo{
		ID:                int64(project.ID),
		Name:              project.Name,
		NameWithNamespace: project.NameWithNamespace,
		WebURL:            project.WebURL,
	}, nil
}

func (s *gitLabIssueTrackerService) CreateIssue(ctx context.Context, params CreateIssueParams) (*CreatedIssue, error) {
	if params.Credential == nil {
		return nil, ErrNoProjectSelected
	}
	cred := *params.Credential

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProjectID: logger.Ptr(cred.ProjectID),
		Operation: logger.Ptr("create_issue"),
		Component: "gitlab",
	})

	client, err := s.newClient(cred)
	if err != nil {
		return nil, &SubmissionFailedError{Err: fmt.Errorf("creating gitlab client: %w", err)}
	}

	labels := gitlab.LabelOptions(params.Labels)
	issue, _, err := client.Issues.CreateIssue(cred.ProjectID, &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(params.Title),
		Description: gitlab.Ptr(params.Description),
		Labels:      &labels,
	}, gitlab.WithContext(ctx))
	if err != nil {
		status, message := errorDetails(err)
		slog.WarnContext(ctx, "gitlab issue creation failed", "status", status, "error", err)
		return nil, &SubmissionFailedError{StatusCode: status, Message: message, Err: err}
	}

	iid := int64(issue.IID)
	slog.InfoContext(ctx, "gitlab issue created", "iid", iid, "url", issue.WebURL)

	return &CreatedIssue{
		ID:        iid,
		DisplayID: fmt.Sprintf("#%d", iid),
		URL:       issue.WebURL,
	}, nil
}

func (s *gitLabIssueTrackerService) newClient(cred model.ProjectCredential) (*gitlab.Client, error) {
	opts := []gitlab.ClientOptionFunc{gitlab.WithoutRetries()}
	if cred.GitLabURL != "" {
		opts = append(opts, gitlab.WithBaseURL(strings.TrimSuffix(cred.GitLabURL, "/")+"/api/v4"))
	}
	if s.httpClient != nil {
		opts = append(opts, gitlab.WithHTTPClient(s.httpClient))
	}
	return gitlab.NewClient(cred.Token, opts...)
}

// errorDetails pulls the HTTP status and GitLab's own message out of err.
// Transport failures report status 0 and no message.
func errorDetails(err error) (int, string) {
	var apiErr *gitlab.ErrorResponse
	if !errors.As(err, &apiErr) || apiErr.Response == nil {
		return 0, ""
	}
	return apiErr.Response.StatusCode, apiErr.Message
}
