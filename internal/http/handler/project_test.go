package handler_test

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frankfika/gitlab-issuehelper/internal/http/handler"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

var _ = Describe("ProjectHandler", func() {
	var (
		router *gin.Engine
		svc    *mockProjectService
	)

	BeforeEach(func() {
		router = gin.New()
		svc = &mockProjectService{}
		h := handler.NewProjectHandler(svc)

		router.GET("/projects", h.List)
		router.POST("/projects", h.Create)
		router.POST("/projects/test-connection", h.TestConnection)
		router.PATCH("/projects/:id", h.Update)
		router.DELETE("/projects/:id", h.Delete)
	})

	It("masks tokens when listing", func() {
		svc.listFn = func(context.Context) ([]model.ProjectCredential, error) {
			return []model.ProjectCredential{{
				ID: "1", Name: "web", GitLabURL: "https://git", Token: "glpat-abcdefghijkl", ProjectID: "acme/web",
				CreatedAt: time.Now(),
			}}, nil
		}

		w := doJSON(router, http.MethodGet, "/projects", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("glpat-abcdefghijkl"))
		Expect(w.Body.String()).To(ContainSubstring(`"token":"glpa…ijkl"`))
	})

	It("creates a project", func() {
		var got model.ProjectCredential
		svc.addFn = func(_ context.Context, cred model.ProjectCredential) (*model.ProjectCredential, error) {
			got = cred
			cred.ID = "42"
			return &cred, nil
		}

		w := doJSON(router, http.MethodPost, "/projects", map[string]string{
			"name": "web", "gitlab_url": "https://git", "token": "glpat-abcdefghijkl", "project_id": "7",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(decodeJSON(w)["id"]).To(Equal("42"))
		Expect(got.ProjectID).To(Equal("7"))
		Expect(got.Token).To(Equal("glpat-abcdefghijkl"))
	})

	It("returns 400 for validation errors", func() {
		svc.addFn = func(context.Context, model.ProjectCredential) (*model.ProjectCredential, error) {
			return nil, &service.ValidationError{Field: "token", Reason: "is required"}
		}
		w := doJSON(router, http.MethodPost, "/projects", map[string]string{"name": "web"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for unknown ids", func() {
		svc.updateFn = func(context.Context, string, model.ProjectPatch) (*model.ProjectCredential, error) {
			return nil, store.ErrNotFound
		}
		w := doJSON(router, http.MethodPatch, "/projects/nope", map[string]string{"name": "x"})
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("passes only given fields in a patch", func() {
		var got model.ProjectPatch
		svc.updateFn = func(_ context.Context, id string, patch model.ProjectPatch) (*model.ProjectCredential, error) {
			got = patch
			return &model.ProjectCredential{ID: id}, nil
		}

		w := doJSON(router, http.MethodPatch, "/projects/1", map[string]string{"name": "x"})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(*got.Name).To(Equal("x"))
		Expect(got.Token).To(BeNil())
	})

	It("deletes with 204", func() {
		w := doJSON(router, http.MethodDelete, "/projects/1", nil)
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})

	It("reports a connection test", func() {
		svc.testFn = func(_ context.Context, _ model.ProjectCredential) (*service.ConnectionResult, error) {
			return &service.ConnectionResult{
				Project:       issue_tracker.ProjectInfo{ID: 7, Name: "web", NameWithNamespace: "Acme / web"},
				SuggestedName: "Acme / web",
				Message:       "connected to Acme / web",
			}, nil
		}

		w := doJSON(router, http.MethodPost, "/projects/test-connection", map[string]string{
			"gitlab_url": "https://git", "token": "glpat-abcdefghijkl", "project_id": "7",
		})
		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decodeJSON(w)
		Expect(resp["gitlab_project_id"]).To(Equal(float64(7)))
		Expect(resp["suggested_name"]).To(Equal("Acme / web"))
	})

	It("returns 502 when GitLab refuses the connection", func() {
		svc.testFn = func(context.Context, model.ProjectCredential) (*service.ConnectionResult, error) {
			return nil, &issue_tracker.ConnectionFailedError{StatusCode: 401, Message: "401 Unauthorized"}
		}
		w := doJSON(router, http.MethodPost, "/projects/test-connection", map[string]string{})
		Expect(w.Code).To(Equal(http.StatusBadGateway))
		Expect(decodeJSON(w)["error"]).To(ContainSubstring("401 Unauthorized"))
	})
})

var _ = Describe("HistoryHandler and SettingsHandler", func() {
	var (
		router   *gin.Engine
		history  *mockHistoryService
		settings *mockSettingsService
	)

	BeforeEach(func() {
		router = gin.New()
		history = &mockHistoryService{records: []model.HistoryRecord{{ID: "1", Title: "t", IssueID: 3}}}
		settings = &mockSettingsService{current: model.Settings{APIKey: "sk-0123456789abcdef", BaseURL: "https://llm/v1", Model: "m"}}

		hh := handler.NewHistoryHandler(history)
		router.GET("/history", hh.List)
		router.DELETE("/history", hh.Clear)
		router.DELETE("/history/:id", hh.Delete)

		sh := handler.NewSettingsHandler(settings)
		router.GET("/settings", sh.Get)
		router.PUT("/settings", sh.Update)
	})

	It("lists, deletes and clears history", func() {
		w := doJSON(router, http.MethodGet, "/history", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"issue_id":3`))

		Expect(doJSON(router, http.MethodDelete, "/history/1", nil).Code).To(Equal(http.StatusNoContent))
		Expect(history.deleted).To(Equal([]string{"1"}))

		Expect(doJSON(router, http.MethodDelete, "/history", nil).Code).To(Equal(http.StatusNoContent))
		Expect(history.cleared).To(BeTrue())
	})

	It("masks the API key", func() {
		w := doJSON(router, http.MethodGet, "/settings", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("sk-0123456789abcdef"))
		Expect(decodeJSON(w)["api_key_set"]).To(BeTrue())
	})

	It("updates settings", func() {
		w := doJSON(router, http.MethodPut, "/settings", map[string]string{"model": "m2"})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decodeJSON(w)["model"]).To(Equal("m2"))
		Expect(settings.current.APIKey).To(Equal("sk-0123456789abcdef"))
	})
})
