package dto

import (
	"fmt"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

// MaxImages bounds the screenshots accepted per request.
const MaxImages = 10

type GenerateIssueRequest struct {
	DraftID     string   `json:"draft_id,omitempty" binding:"omitempty,max=128"`
	Description string   `json:"description"`
	Images      []string `json:"images,omitempty" binding:"omitempty,max=10,dive,required"` // data URLs
}

// DraftEvent is the payload of each "draft" server-sent event.
type DraftEvent struct {
	Content string `json:"content"`
}

type DraftResponse struct {
	Content       string   `json:"content"`
	Title         string   `json:"title"`
	Labels        []string `json:"labels"`
	SkippedFrames int      `json:"skipped_frames"`
}

type ExtractRequest struct {
	Content string `json:"content" binding:"required"`
}

type ExtractResponse struct {
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
}

type SubmitIssueRequest struct {
	ProjectID string `json:"project_id,omitempty"`
	Content   string `json:"content" binding:"required"`
	Title     string `json:"title,omitempty" binding:"omitempty,max=255"`
	// Labels replaces the derived labels when present, even if empty.
	Labels []string `json:"labels"`
	Images []string `json:"images,omitempty" binding:"omitempty,max=10,dive,required"`
}

type SubmitIssueResponse struct {
	IssueID     int64    `json:"issue_id"`
	DisplayID   string   `json:"display_id"`
	URL         string   `json:"url"`
	ProjectName string   `json:"project_name"`
	Title       string   `json:"title"`
	Labels      []string `json:"labels"`
	Message     string   `json:"message"`
}

func ToDraftResponse(d *model.Draft) DraftResponse {
	labels := d.Labels
	if labels == nil {
		labels = []string{}
	}
	return DraftResponse{
		Content:       d.Content,
		Title:         d.Title,
		Labels:        labels,
		SkippedFrames: d.SkippedFrames,
	}
}

func ToSubmitIssueResponse(r *service.SubmitResult) SubmitIssueResponse {
	return SubmitIssueResponse{
		IssueID:     r.IssueID,
		DisplayID:   r.DisplayID,
		URL:         r.URL,
		ProjectName: r.ProjectName,
		Title:       r.Title,
		Labels:      r.Labels,
		Message:     r.Message,
	}
}

// ParseImages decodes data URLs, naming the offending index on failure.
func ParseImages(urls []string) ([]model.Image, error) {
	if len(urls) > MaxImages {
		return nil, &service.ValidationError{Field: "images", Reason: fmt.Sprintf("at most %d screenshots", MaxImages)}
	}

	images := make([]model.Image, 0, len(urls))
	for i, u := range urls {
		img, err := model.ParseDataURL(u)
		if err != nil {
			return nil, &service.ValidationError{Field: fmt.Sprintf("images[%d]", i), Reason: err.Error()}
		}
		img.Name = fmt.Sprintf("screenshot-%d", i+1)
		images = append(images, img)
	}
	return images, nil
}
