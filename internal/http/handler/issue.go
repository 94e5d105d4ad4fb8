package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/internal/http/dto"
	"github.com/frankfika/gitlab-issuehelper/internal/mapper"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type IssueHandler struct {
	generator  service.GeneratorService
	submission service.SubmissionService
}

func NewIssueHandler(generator service.GeneratorService, submission service.SubmissionService) *IssueHandler {
	return &IssueHandler{generator: generator, submission: submission}
}

// Generate streams the draft as server-sent events: "draft" with the full
// text so far, then "done" with the derived title and labels, or "error".
// Failures before the first increment are plain JSON responses.
func (h *IssueHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	images, err := dto.ParseImages(req.Images)
	if err != nil {
		respondError(c, err)
		return
	}

	streaming := false
	onIncrement := func(content string) {
		if !streaming {
			setSSEHeaders(c)
			c.Status(http.StatusOK)
			streaming = true
		}
		sseWrite(c, "draft", dto.DraftEvent{Content: content})
	}

	draft, err := h.generator.Generate(ctx, service.GenerateParams{
		DraftID:     req.DraftID,
		Description: req.Description,
		Images:      images,
	}, onIncrement)

	if !streaming {
		if err != nil {
			respondError(c, err)
			return
		}
		setSSEHeaders(c)
		c.Status(http.StatusOK)
	}

	if err != nil {
		_ = c.Error(err)
		status := statusFor(err)
		sseWrite(c, "error", gin.H{"error": errorMessage(status, err), "status": status})
		return
	}

	sseWrite(c, "done", dto.ToDraftResponse(draft))
}

// Extract derives title and labels from edited content.
func (h *IssueHandler) Extract(c *gin.Context) {
	var req dto.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	labels := mapper.ExtractLabels(req.Content)
	if labels == nil {
		labels = []string{}
	}
	c.JSON(http.StatusOK, dto.ExtractResponse{
		Title:  mapper.ExtractTitle(req.Content),
		Labels: labels,
	})
}

func (h *IssueHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SubmitIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	images, err := dto.ParseImages(req.Images)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.submission.Submit(ctx, service.SubmitParams{
		ProjectID: req.ProjectID,
		Content:   req.Content,
		Title:     req.Title,
		Labels:    req.Labels,
		Images:    images,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubmitIssueResponse(res))
}
