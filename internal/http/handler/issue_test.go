package handler_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frankfika/gitlab-issuehelper/common/llm"
	"github.com/frankfika/gitlab-issuehelper/internal/http/handler"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
)

var _ = Describe("IssueHandler", func() {
	var (
		router     *gin.Engine
		generator  *mockGeneratorService
		submission *mockSubmissionService
	)

	BeforeEach(func() {
		router = gin.New()
		generator = &mockGeneratorService{}
		submission = &mockSubmissionService{}
		h := handler.NewIssueHandler(generator, submission)

		router.POST("/issues", h.Submit)
		router.POST("/issues/generate", h.Generate)
		router.POST("/issues/extract", h.Extract)
	})

	Describe("Generate", func() {
		It("streams draft events then done", func() {
			generator.generateFn = func(_ context.Context, _ service.GenerateParams, onIncrement llm.IncrementFunc) (*model.Draft, error) {
				onIncrement("[Bug] Export")
				onIncrement("[Bug] Export button unresponsive\n严重程度：P1")
				return &model.Draft{
					Content: "[Bug] Export button unresponsive\n严重程度：P1",
					Title:   "[Bug] Export button unresponsive",
					Labels:  []string{"bug", "p1"},
				}, nil
			}

			w := doJSON(router, http.MethodPost, "/issues/generate", map[string]any{
				"draft_id":    "d1",
				"description": "Export button does nothing on click",
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/event-stream"))

			events := parseSSE(w.Body.String())
			Expect(events).To(HaveLen(3))
			Expect(events[0].Event).To(Equal("draft"))
			Expect(events[0].Data["content"]).To(Equal("[Bug] Export"))
			Expect(events[1].Event).To(Equal("draft"))
			Expect(events[2].Event).To(Equal("done"))
			Expect(events[2].Data["title"]).To(Equal("[Bug] Export button unresponsive"))
			Expect(events[2].Data["labels"]).To(ConsistOf("bug", "p1"))

			Expect(generator.params[0].DraftID).To(Equal("d1"))
		})

		It("decodes screenshots", func() {
			w := doJSON(router, http.MethodPost, "/issues/generate", map[string]any{
				"images": []string{"data:image/jpeg;base64,/9g="},
			})
			Expect(w.Code).To(Equal(http.StatusOK))

			Expect(generator.params[0].Images).To(HaveLen(1))
			Expect(generator.params[0].Images[0].MediaType).To(Equal("image/jpeg"))
		})

		It("rejects malformed screenshots before generating", func() {
			w := doJSON(router, http.MethodPost, "/issues/generate", map[string]any{
				"description": "x",
				"images":      []string{"not-a-data-url"},
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeJSON(w)["error"]).To(ContainSubstring("images[0]"))
			Expect(generator.params).To(BeEmpty())
		})

		It("answers with JSON when validation fails", func() {
			generator.generateFn = func(context.Context, service.GenerateParams, llm.IncrementFunc) (*model.Draft, error) {
				return nil, &service.ValidationError{Field: "description", Reason: "is required"}
			}

			w := doJSON(router, http.MethodPost, "/issues/generate", map[string]any{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeJSON(w)["error"]).To(ContainSubstring("description"))
		})

		It("maps completion failures to 502 before streaming", func() {
			generator.generateFn = func(context.Context, service.GenerateParams, llm.IncrementFunc) (*model.Draft, error) {
				return nil, &llm.RequestFailedError{StatusCode: 401, Message: "invalid api key"}
			}

			w := doJSON(router, http.MethodPost, "/issues/generate", map[string]any{"description": "x"})
			Expect(w.Code).To(Equal(http.StatusBadGateway))
			Expect(decodeJSON(w)["error"]).To(ContainSubstring("invalid api key"))
		})

		It("ends an open stream with an error event", func() {
			generator.generateFn = func(_ context.Context, _ service.GenerateParams, onIncrement llm.IncrementFunc) (*model.Draft, error) {
				onIncrement("partial")
				return nil, &llm.RequestFailedError{Err: fmt.Errorf("connection reset")}
			}

			w := doJSON(router, http.MethodPost, "/issues/generate", map[string]any{"description": "x"})
			Expect(w.Code).To(Equal(http.StatusOK))

			events := parseSSE(w.Body.String())
			Expect(events).To(HaveLen(2))
			Expect(events[1].Event).To(Equal("error"))
			Expect(events[1].Data["error"]).To(ContainSubstring("connection reset"))
			Expect(events[1].Data["status"]).To(Equal(float64(http.StatusBadGateway)))
		})
	})

	Describe("Extract", func() {
		It("returns title and labels", func() {
			w := doJSON(router, http.MethodPost, "/issues/extract", map[string]any{
				"content": "[Feature] Dark mode\n优先级：中",
			})
			Expect(w.Code).To(Equal(http.StatusOK))

			resp := decodeJSON(w)
			Expect(resp["title"]).To(Equal("[Feature] Dark mode"))
			Expect(resp["labels"]).To(ConsistOf("feature", "priority::medium"))
		})

		It("returns an empty label list rather than null", func() {
			w := doJSON(router, http.MethodPost, "/issues/extract", map[string]any{"content": "plain"})
			Expect(w.Body.String()).To(ContainSubstring(`"labels":[]`))
		})
	})

	Describe("Submit", func() {
		DescribeTable("maps errors to statuses",
			func(err error, status int) {
				submission.submitFn = func(context.Context, service.SubmitParams) (*service.SubmitResult, error) {
					return nil, err
				}
				w := doJSON(router, http.MethodPost, "/issues", map[string]any{"content": "c"})
				Expect(w.Code).To(Equal(status))
			},
			Entry("validation", &service.ValidationError{Field: "content", Reason: "is required"}, http.StatusBadRequest),
			Entry("no project", issue_tracker.ErrNoProjectSelected, http.StatusPreconditionFailed),
			Entry("wrapped no project", fmt.Errorf("%w: gone", issue_tracker.ErrNoProjectSelected), http.StatusPreconditionFailed),
			Entry("gitlab failure", &issue_tracker.SubmissionFailedError{StatusCode: 403, Message: "403 Forbidden"}, http.StatusBadGateway),
			Entry("unexpected", fmt.Errorf("disk on fire"), http.StatusInternalServerError),
		)

		It("hides internal error details", func() {
			submission.submitFn = func(context.Context, service.SubmitParams) (*service.SubmitResult, error) {
				return nil, fmt.Errorf("disk on fire")
			}
			w := doJSON(router, http.MethodPost, "/issues", map[string]any{"content": "c"})
			Expect(decodeJSON(w)["error"]).To(Equal("internal server error"))
		})

		It("creates the issue and returns 201", func() {
			w := doJSON(router, http.MethodPost, "/issues", map[string]any{
				"project_id": "p1",
				"content":    "[Bug] x",
				"title":      "edited",
				"labels":     []string{},
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(decodeJSON(w)["display_id"]).To(Equal("#1"))

			params := submission.params[0]
			Expect(params.ProjectID).To(Equal("p1"))
			Expect(params.Title).To(Equal("edited"))
			Expect(params.Labels).NotTo(BeNil())
			Expect(params.Labels).To(BeEmpty())
		})

		It("leaves labels nil when omitted", func() {
			doJSON(router, http.MethodPost, "/issues", map[string]any{"content": "[Bug] x"})
			Expect(submission.params[0].Labels).To(BeNil())
		})

		It("requires content", func() {
			w := doJSON(router, http.MethodPost, "/issues", map[string]any{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(submission.params).To(BeEmpty())
		})
	})
})
