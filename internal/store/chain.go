package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Chain tries backends in priority order.
//
// Reads return the first hit and copy it into the higher-priority backends
// that missed. Writes go to the first backend whose read-back matches; the
// value is then mirrored to the lower-priority ones, and higher-priority
// backends that refused the write are cleared so they cannot serve a stale
// copy.
type Chain struct {
	backends   []Backend
	onFallback func(key, backend string)
}

func NewChain(backends ...Backend) *Chain {
	return &Chain{backends: backends}
}

// OnFallback registers a hook fired when a write lands on a backend other
// than the first.
func (c *Chain) OnFallback(fn func(key, backend string)) *Chain {
	c.onFallback = fn
	return c
}

func (c *Chain) Name() string {
	names := make([]string, len(c.backends))
	for i, b := range c.backends {
		names[i] = b.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) Get(ctx context.Context, key string) (string, bool, error) {
	for i, b := range c.backends {
		value, ok, err := b.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "storage backend read failed",
				"backend", b.Name(), "key", key, "error", err)
			continue
		}
		if !ok {
			continue
		}

		c.heal(ctx, key, value, i)
		return value, true, nil
	}
	return "", false, nil
}

func (c *Chain) heal(ctx context.Context, key, value string, found int) {
	for _, b := range c.backends[:found] {
		if err := b.Set(ctx, key, value); err != nil {
			slog.DebugContext(ctx, "storage self-heal skipped",
				"backend", b.Name(), "key", key, "error", err)
			continue
		}
		slog.InfoContext(ctx, "storage self-healed", "backend", b.Name(), "key", key)
	}
}

func (c *Chain) Set(ctx context.Context, key, value string) error {
	for i, b := range c.backends {
		if err := b.Set(ctx, key, value); err != nil {
			slog.WarnContext(ctx, "storage backend write failed",
				"backend", b.Name(), "key", key, "error", err)
			continue
		}

		got, ok, err := b.Get(ctx, key)
		if err != nil || !ok || got != value {
			slog.WarnContext(ctx, "storage backend write not verified",
				"backend", b.Name(), "key", key, "found", ok, "error", err)
			continue
		}

		c.mirror(ctx, key, value, c.backends[i+1:])
		c.evict(ctx, key, c.backends[:i])

		if i > 0 && c.onFallback != nil {
			c.onFallback(key, b.Name())
		}
		return nil
	}
	return fmt.Errorf("%w: key %q", ErrWriteFailed, key)
}

func (c *Chain) mirror(ctx context.Context, key, value string, backends []Backend) {
	for _, b := range backends {
		if err := b.Set(ctx, key, value); err != nil {
			slog.WarnContext(ctx, "storage mirror failed",
				"backend", b.Name(), "key", key, "error", err)
		}
	}
}

func (c *Chain) evict(ctx context.Context, key string, backends []Backend) {
	for _, b := range backends {
		if err := b.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "storage evict failed",
				"backend", b.Name(), "key", key, "error", err)
		}
	}
}

func (c *Chain) Delete(ctx context.Context, key string) error {
	var firstErr error
	for _, b := range c.backends {
		if err := b.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("deleting %q from %s: %w", key, b.Name(), err)
		}
	}
	return firstErr
}
