package service

import (
	"github.com/frankfika/gitlab-issuehelper/common/llm"
	"github.com/frankfika/gitlab-issuehelper/core/config"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

type Services struct {
	stores    *store.Stores
	tracker   issue_tracker.IssueTrackerService
	newClient ClientFactory
	drafts    *Drafts
	recorder  Recorder
}

func NewServices(stores *store.Stores, tracker issue_tracker.IssueTrackerService, newClient ClientFactory, recorder Recorder) *Services {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Services{
		stores:    stores,
		tracker:   tracker,
		newClient: newClient,
		drafts:    NewDrafts(),
		recorder:  recorder,
	}
}

// NewLLMClientFactory builds clients from the stored settings, taking sampling
// parameters from configuration.
func NewLLMClientFactory(cfg config.LLMConfig) ClientFactory {
	return func(settings model.Settings) (llm.Client, error) {
		return llm.New(llm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Temperature: llm.Temp(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		})
	}
}

// DefaultSettings are the configuration values stored settings overlay.
func DefaultSettings(cfg config.LLMConfig) model.Settings {
	return model.Settings{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}
}

func (s *Services) Generator() GeneratorService {
	return NewGeneratorService(s.stores.Settings(), s.newClient, s.drafts, s.recorder)
}

func (s *Services) Projects() ProjectService {
	return NewProjectService(s.stores.Projects(), s.tracker)
}

func (s *Services) Submission() SubmissionService {
	return NewSubmissionService(s.stores.Projects(), s.stores.History(), s.tracker, s.recorder)
}

func (s *Services) History() HistoryService {
	return NewHistoryService(s.stores.History())
}

func (s *Services) Settings() SettingsService {
	return NewSettingsService(s.stores.Settings())
}
