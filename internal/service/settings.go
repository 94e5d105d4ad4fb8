package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

type SettingsService interface {
	Get(ctx context.Context) (model.Settings, error)
	// Update overlays the non-empty fields of patch on the stored settings.
	Update(ctx context.Context, patch model.Settings) (model.Settings, error)
}

type settingsService struct {
	settings store.SettingsStore
}

func NewSettingsService(settings store.SettingsStore) SettingsService {
	return &settingsService{settings: settings}
}

func (s *settingsService) Get(ctx context.Context) (model.Settings, error) {
	return s.settings.Load(ctx)
}

func (s *settingsService) Update(ctx context.Context, patch model.Settings) (model.Settings, error) {
	patch.APIKey = strings.TrimSpace(patch.APIKey)
	patch.BaseURL = strings.TrimSpace(patch.BaseURL)
	patch.Model = strings.TrimSpace(patch.Model)

	if patch.BaseURL != "" && !strings.HasPrefix(patch.BaseURL, "http://") && !strings.HasPrefix(patch.BaseURL, "https://") {
		return model.Settings{}, &ValidationError{Field: "baseUrl", Reason: "must start with http:// or https://"}
	}

	next, err := s.settings.Update(ctx, patch)
	if err != nil {
		return model.Settings{}, err
	}

	slog.InfoContext(ctx, "settings updated",
		"base_url", next.BaseURL,
		"model", next.Model,
		"api_key_set", next.APIKey != "")
	return next, nil
}
