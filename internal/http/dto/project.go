package dto

import (
	"time"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type ProjectRequest struct {
	Name      string `json:"name"`
	GitLabURL string `json:"gitlab_url"`
	Token     string `json:"token"`
	ProjectID string `json:"project_id"`
}

func (r ProjectRequest) ToModel() model.ProjectCredential {
	return model.ProjectCredential{
		Name:      r.Name,
		GitLabURL: r.GitLabURL,
		Token:     r.Token,
		ProjectID: r.ProjectID,
	}
}

type UpdateProjectRequest struct {
	Name      *string `json:"name,omitempty"`
	GitLabURL *string `json:"gitlab_url,omitempty"`
	Token     *string `json:"token,omitempty"`
	ProjectID *string `json:"project_id,omitempty"`
}

func (r UpdateProjectRequest) ToPatch() model.ProjectPatch {
	return model.ProjectPatch{
		Name:      r.Name,
		GitLabURL: r.GitLabURL,
		Token:     r.Token,
		ProjectID: r.ProjectID,
	}
}

// ProjectResponse never carries the raw token.
type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GitLabURL string    `json:"gitlab_url"`
	Token     string    `json:"token"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

func ToProjectResponse(p *model.ProjectCredential) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		GitLabURL: p.GitLabURL,
		Token:     p.MaskedToken(),
		ProjectID: p.ProjectID,
		CreatedAt: p.CreatedAt,
	}
}

func ToProjectResponses(ps []model.ProjectCredential) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(ps))
	for i := range ps {
		out = append(out, ToProjectResponse(&ps[i]))
	}
	return out
}

type TestConnectionResponse struct {
	GitLabProjectID   int64  `json:"gitlab_project_id"`
	Name              string `json:"name"`
	NameWithNamespace string `json:"name_with_namespace"`
	WebURL            string `json:"web_url"`
	SuggestedName     string `json:"suggested_name,omitempty"`
	Message           string `json:"message"`
}

func ToTestConnectionResponse(r *service.ConnectionResult) TestConnectionResponse {
	return TestConnectionResponse{
		GitLabProjectID:   r.Project.ID,
		Name:              r.Project.Name,
		NameWithNamespace: r.Project.NameWithNamespace,
		WebURL:            r.Project.WebURL,
		SuggestedName:     r.SuggestedName,
		Message:           r.Message,
	}
}
