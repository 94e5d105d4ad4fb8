package store

import (
	"context"
	"errors"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrWriteFailed is returned when no backend in a chain accepted a verified write.
var ErrWriteFailed = errors.New("no storage backend accepted the write")

// Backend is a flat string key-value store. Implementations report a missing
// or expired key as ok=false with a nil error.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ProjectStore defines the contract for GitLab project credential access.
// The whole collection is rewritten on every mutation.
type ProjectStore interface {
	List(ctx context.Context) ([]model.ProjectCredential, error)
	Get(ctx context.Context, id string) (*model.ProjectCredential, error)
	Add(ctx context.Context, project model.ProjectCredential) (*model.ProjectCredential, error)
	Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.ProjectCredential, error)
	Delete(ctx context.Context, id string) error
}

// HistoryStore defines the contract for the capped, newest-first submission history.
type HistoryStore interface {
	List(ctx context.Context) ([]model.HistoryRecord, error)
	Save(ctx context.Context, record model.HistoryRecord) (*model.HistoryRecord, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// SettingsStore defines the contract for persisted completion settings.
// Defaults are layered on when reading and are never persisted.
type SettingsStore interface {
	Load(ctx context.Context) (model.Settings, error)
	// Update merges the non-empty fields of patch into the stored document
	// and returns the effective settings.
	Update(ctx context.Context, patch model.Settings) (model.Settings, error)
}
