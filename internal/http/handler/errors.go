package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/common/llm"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var (
		validation *service.ValidationError
		llmErr     *llm.RequestFailedError
		connErr    *issue_tracker.ConnectionFailedError
		subErr     *issue_tracker.SubmissionFailedError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, issue_tracker.ErrNoProjectSelected):
		return http.StatusPreconditionFailed
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &llmErr), errors.As(err, &connErr), errors.As(err, &subErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides internals behind a generic message for 500s.
func errorMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": errorMessage(status, err)})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
