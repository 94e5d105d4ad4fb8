package store_test

import (
	"context"
	"errors"

	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

var errBackendDown = errors.New("backend down")

// flakyBackend wraps a memory backend and can be told to fail or to
// silently drop writes.
type flakyBackend struct {
	*store.MemoryBackend
	name       string
	failReads  bool
	failWrites bool
	dropWrites bool
	writes     int
}

func newFlakyBackend(name string) *flakyBackend {
	return &flakyBackend{MemoryBackend: store.NewMemoryBackend(), name: name}
}

func (b *flakyBackend) Name() string { return b.name }

func (b *flakyBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if b.failReads {
		return "", false, errBackendDown
	}
	return b.MemoryBackend.Get(ctx, key)
}

func (b *flakyBackend) Set(ctx context.Context, key, value string) error {
	b.writes++
	if b.failWrites {
		return errBackendDown
	}
	if b.dropWrites {
		return nil
	}
	return b.MemoryBackend.Set(ctx, key, value)
}
