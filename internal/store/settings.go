package store

import (
	"context"
	"fmt"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

const settingsKey = "gitlab-issue-reporter-settings"

type settingsStore struct {
	kv       Backend
	defaults model.Settings
}

func newSettingsStore(kv Backend, defaults model.Settings) SettingsStore {
	return &settingsStore{kv: kv, defaults: defaults}
}

// Load overlays stored values on the configured defaults.
func (s *settingsStore) Load(ctx context.Context) (model.Settings, error) {
	stored, err := s.stored(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	return s.defaults.Merge(stored), nil
}

func (s *settingsStore) Update(ctx context.Context, patch model.Settings) (model.Settings, error) {
	stored, err := s.stored(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	next := stored.Merge(patch)
	if err := writeJSON(ctx, s.kv, settingsKey, next); err != nil {
		return model.Settings{}, fmt.Errorf("saving settings: %w", err)
	}
	return s.defaults.Merge(next), nil
}

// stored is what the user set, without defaults.
func (s *settingsStore) stored(ctx context.Context) (model.Settings, error) {
	var stored model.Settings
	if err := readJSON(ctx, s.kv, settingsKey, &stored); err != nil {
		return model.Settings{}, err
	}
	return stored, nil
}
