package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frankfika/gitlab-issuehelper/core/config"
	"github.com/frankfika/gitlab-issuehelper/core/db"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

type Stores struct {
	chain   *Chain
	local   Backend
	dflt    model.Settings
	closers []func() error
}

// Options tunes Open.
type Options struct {
	// OnFallback fires when a write lands on a backend other than the first.
	OnFallback func(key, backend string)

	// Settings are the defaults Settings().Load overlays stored values on.
	Settings model.Settings
}

// NewStores assembles stores from already-built backends. History and
// settings live in local.
func NewStores(chain *Chain, local Backend, defaults model.Settings) *Stores {
	return &Stores{chain: chain, local: local, dflt: defaults}
}

// Open builds the configured backend chain.
func Open(ctx context.Context, cfg config.Config, opts Options) (*Stores, error) {
	s := &Stores{dflt: opts.Settings}

	var backends []Backend
	for _, name := range cfg.Store.Backends {
		b, err := s.open(ctx, cfg, name)
		if err != nil {
			s.Close()
			return nil, err
		}
		backends = append(backends, b)
	}

	if s.local == nil {
		local, err := NewLocalBackend(cfg.Store.Dir)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.local = local
	}

	s.chain = NewChain(backends...).OnFallback(opts.OnFallback)

	slog.InfoContext(ctx, "storage ready", "chain", s.chain.Name(), "dir", cfg.Store.Dir)
	return s, nil
}

func (s *Stores) open(ctx context.Context, cfg config.Config, name string) (Backend, error) {
	switch name {
	case "file":
		return NewCookieBackend(cfg.Store.Dir, cfg.Store.TTL)
	case "local":
		local, err := NewLocalBackend(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		s.local = local
		return local, nil
	case "memory":
		return NewMemoryBackend(), nil
	case "redis":
		rb, err := DialRedis(ctx, cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Store.TTL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, rb.Close)
		return rb, nil
	case "postgres":
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error { database.Close(); return nil })
		return NewPostgresBackend(ctx, database, cfg.Store.TTL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", name)
	}
}

func (s *Stores) Projects() ProjectStore {
	return newProjectStore(s.chain)
}

func (s *Stores) History() HistoryStore {
	return newHistoryStore(s.local)
}

func (s *Stores) Settings() SettingsStore {
	return newSettingsStore(s.local, s.dflt)
}

// Close releases remote backend connections.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.closers = nil
	return errors.Join(errs...)
}
