package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frankfika/gitlab-issuehelper/common/id"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

const projectsKey = "gitlab_projects"

type projectStore struct {
	kv Backend
}

func newProjectStore(kv Backend) ProjectStore {
	return &projectStore{kv: kv}
}

func (s *projectStore) List(ctx context.Context) ([]model.ProjectCredential, error) {
	projects := []model.ProjectCredential{}
	if err := readJSON(ctx, s.kv, projectsKey, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *projectStore) Get(ctx context.Context, id string) (*model.ProjectCredential, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *projectStore) Add(ctx context.Context, project model.ProjectCredential) (*model.ProjectCredential, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	project.ID = id.NewString()
	project.CreatedAt = time.Now().UTC()
	projects = append(projects, project)

	if err := writeJSON(ctx, s.kv, projectsKey, projects); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}
	return &project, nil
}

func (s *projectStore) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.ProjectCredential, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range projects {
		if projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	updated := patch.Apply(projects[idx])
	updated.ID = projects[idx].ID
	updated.CreatedAt = projects[idx].CreatedAt
	projects[idx] = updated

	if err := writeJSON(ctx, s.kv, projectsKey, projects); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return &updated, nil
}

// Delete is idempotent: removing an unknown id is not an error.
func (s *projectStore) Delete(ctx context.Context, id string) error {
	projects, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.ProjectCredential, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return nil
	}

	if err := writeJSON(ctx, s.kv, projectsKey, kept); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// readJSON decodes key into dst. A missing key leaves dst untouched; an
// undecodable value is logged and treated the same way.
func readJSON(ctx context.Context, kv Backend, key string, dst any) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.WarnContext(ctx, "discarding unreadable stored value",
			"key", key, "backend", kv.Name(), "error", err)
	}
	return nil
}

func writeJSON(ctx context.Context, kv Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}
