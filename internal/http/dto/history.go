package dto

import (
	"time"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

type HistoryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ProjectName string    `json:"project_name"`
	IssueURL    string    `json:"issue_url"`
	IssueID     int64     `json:"issue_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToHistoryResponses(records []model.HistoryRecord) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, HistoryResponse{
			ID:          r.ID,
			Title:       r.Title,
			Content:     r.Content,
			ProjectName: r.ProjectName,
			IssueURL:    r.IssueURL,
			IssueID:     r.IssueID,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out
}
