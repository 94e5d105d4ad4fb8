package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"github.com/frankfika/gitlab-issuehelper/common/llm"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type mockGeneratorService struct {
	generateFn func(ctx context.Context, params service.GenerateParams, onIncrement llm.IncrementFunc) (*model.Draft, error)
	params     []service.GenerateParams
}

func (m *mockGeneratorService) Generate(ctx context.Context, params service.GenerateParams, onIncrement llm.IncrementFunc) (*model.Draft, error) {
	m.params = append(m.params, params)
	if m.generateFn != nil {
		return m.generateFn(ctx, params, onIncrement)
	}
	return &model.Draft{}, nil
}

type mockSubmissionService struct {
	submitFn func(ctx context.Context, params service.SubmitParams) (*service.SubmitResult, error)
	params   []service.SubmitParams
}

func (m *mockSubmissionService) Submit(ctx context.Context, params service.SubmitParams) (*service.SubmitResult, error) {
	m.params = append(m.params, params)
	if m.submitFn != nil {
		return m.submitFn(ctx, params)
	}
	return &service.SubmitResult{IssueID: 1, DisplayID: "#1", URL: "https://git/1"}, nil
}

type mockProjectService struct {
	listFn   func(ctx context.Context) ([]model.ProjectCredential, error)
	addFn    func(ctx context.Context, cred model.ProjectCredential) (*model.ProjectCredential, error)
	updateFn func(ctx context.Context, id string, patch model.ProjectPatch) (*model.ProjectCredential, error)
	deleteFn func(ctx context.Context, id string) error
	testFn   func(ctx context.Context, cred model.ProjectCredential) (*service.ConnectionResult, error)
}

func (m *mockProjectService) List(ctx context.Context) ([]model.ProjectCredential, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockProjectService) Get(ctx context.Context, id string) (*model.ProjectCredential, error) {
	return nil, nil
}

func (m *mockProjectService) Add(ctx context.Context, cred model.ProjectCredential) (*model.ProjectCredential, error) {
	if m.addFn != nil {
		return m.addFn(ctx, cred)
	}
	cred.ID = "1"
	return &cred, nil
}

func (m *mockProjectService) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.ProjectCredential, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &model.ProjectCredential{ID: id}, nil
}

func (m *mockProjectService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockProjectService) TestConnection(ctx context.Context, cred model.ProjectCredential) (*service.ConnectionResult, error) {
	if m.testFn != nil {
		return m.testFn(ctx, cred)
	}
	return &service.ConnectionResult{}, nil
}

type mockHistoryService struct {
	records []model.HistoryRecord
	deleted []string
	cleared bool
}

func (m *mockHistoryService) List(context.Context) ([]model.HistoryRecord, error) {
	return m.records, nil
}

func (m *mockHistoryService) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockHistoryService) Clear(context.Context) error {
	m.cleared = true
	return nil
}

type mockSettingsService struct {
	current model.Settings
}

func (m *mockSettingsService) Get(context.Context) (model.Settings, error) {
	return m.current, nil
}

func (m *mockSettingsService) Update(_ context.Context, patch model.Settings) (model.Settings, error) {
	m.current = m.current.Merge(patch)
	return m.current, nil
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp
}

// sseEvent is one parsed server-sent event.
type sseEvent struct {
	Event string
	Data  map[string]any
}

func parseSSE(body string) []sseEvent {
	var events []sseEvent
	for _, block := range bytes.Split([]byte(body), []byte("\n\n")) {
		if len(bytes.TrimSpace(block)) == 0 {
			continue
		}
		var ev sseEvent
		var data []byte
		for _, line := range bytes.Split(block, []byte("\n")) {
			if name, ok := bytes.CutPrefix(line, []byte("event:")); ok {
				ev.Event = string(bytes.TrimSpace(name))
			} else if payload, ok := bytes.CutPrefix(line, []byte("data:")); ok {
				data = append(data, bytes.TrimPrefix(payload, []byte(" "))...)
			}
		}
		Expect(json.Unmarshal(data, &ev.Data)).To(Succeed())
		events = append(events, ev)
	}
	return events
}

