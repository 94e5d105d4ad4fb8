package issue_tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

// ErrNoProjectSelected is returned before any network call when a submission
// has no usable target credential.
var ErrNoProjectSelected = errors.New("no target project selected")

// ConnectionFailedError reports a failed project lookup. StatusCode is zero
// when the request never got a response.
type ConnectionFailedError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ConnectionFailedError) Error() string {
	return "gitlab connection failed: " + describe(e.StatusCode, e.Message, e.Err)
}

func (e *ConnectionFailedError) Unwrap() error { return e.Err }

// SubmissionFailedError reports a failed issue creation.
type SubmissionFailedError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *SubmissionFailedError) Error() string {
	return "gitlab issue creation failed: " + describe(e.StatusCode, e.Message, e.Err)
}

func (e *SubmissionFailedError) Unwrap() error { return e.Err }

func describe(status int, message string, err error) string {
	switch {
	case message != "":
		return message
	case status != 0:
		return fmt.Sprintf("status %d", status)
	case err != nil:
		return err.Error()
	default:
		return "unknown error"
	}
}

// ProjectInfo is what a successful connection test learns about the target.
type ProjectInfo struct {
	ID                int64
	Name              string
	NameWithNamespace string
	WebURL            string
}

// SuggestedName is the name to auto-fill for a credential saved without one.
func (p ProjectInfo) SuggestedName() string {
	if p.NameWithNamespace != "" {
		return p.NameWithNamespace
	}
	return p.Name
}

type CreateIssueParams struct {
	Title       string
	Description string
	Labels      []string
	Credential  *model.ProjectCredential
}

type CreatedIssue struct {
	ID        int64  // project-scoped iid
	DisplayID string // "#<iid>"
	URL       string
}

type IssueTrackerService interface {
	TestConnection(ctx context.Context, cred model.ProjectCredential) (*ProjectInfo, error)
	CreateIssue(ctx context.Context, params CreateIssueParams) (*CreatedIssue, error)
}
