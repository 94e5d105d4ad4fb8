package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// CookieMaxValueBytes mirrors the per-cookie size browsers enforce.
	CookieMaxValueBytes = 4096

	// DefaultCookieTTL is how long a value written to the expiring backend lives.
	DefaultCookieTTL = 365 * 24 * time.Hour

	cookieFilename = "cookies.json"
	localFilename  = "local.json"
)

var ErrValueTooLarge = errors.New("value exceeds backend size limit")

type fileEntry struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// FileBackend keeps every key in a single JSON document on disk.
// Entries may carry an expiry; expired entries read as missing.
type FileBackend struct {
	mu       sync.Mutex
	name     string
	path     string
	ttl      time.Duration
	maxValue int
	now      func() time.Time
}

type FileOption func(*FileBackend)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) FileOption {
	return func(b *FileBackend) { b.now = now }
}

// NewCookieBackend creates the expiring, size-capped backend under dir.
func NewCookieBackend(dir string, ttl time.Duration, opts ...FileOption) (*FileBackend, error) {
	if ttl <= 0 {
		ttl = DefaultCookieTTL
	}
	return newFileBackend("file", dir, cookieFilename, ttl, CookieMaxValueBytes, opts...)
}

// NewLocalBackend creates the non-expiring backend under dir.
func NewLocalBackend(dir string, opts ...FileOption) (*FileBackend, error) {
	return newFileBackend("local", dir, localFilename, 0, 0, opts...)
}

func newFileBackend(name, dir, filename string, ttl time.Duration, maxValue int, opts ...FileOption) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("%s backend: directory is required", name)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating %s backend directory: %w", name, err)
	}

	b := &FileBackend{
		name:     name,
		path:     filepath.Join(dir, filename),
		ttl:      ttl,
		maxValue: maxValue,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *FileBackend) Name() string { return b.name }

// Path returns the document location.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Get(ctx context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load()
	if err != nil {
		return "", false, err
	}

	entry, ok := entries[key]
	if !ok || b.expired(entry) {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (b *FileBackend) Set(ctx context.Context, key, value string) error {
	if b.maxValue > 0 && len(key)+len(value) > b.maxValue {
		return fmt.Errorf("%w: %d bytes for %q (limit %d)", ErrValueTooLarge, len(value), key, b.maxValue)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load()
	if err != nil {
		return err
	}

	entry := fileEntry{Value: value}
	if b.ttl > 0 {
		expires := b.now().Add(b.ttl).UTC()
		entry.ExpiresAt = &expires
	}
	entries[key] = entry

	return b.save(entries)
}

func (b *FileBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}

	delete(entries, key)
	return b.save(entries)
}

func (b *FileBackend) expired(e fileEntry) bool {
	return e.ExpiresAt != nil && !b.now().Before(*e.ExpiresAt)
}

func (b *FileBackend) load() (map[string]fileEntry, error) {
	entries := map[string]fileEntry{}

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("reading %s backend: %w", b.name, err)
	}

	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding %s backend: %w", b.name, err)
	}

	for key, e := range entries {
		if b.expired(e) {
			delete(entries, key)
		}
	}
	return entries, nil
}

func (b *FileBackend) save(entries map[string]fileEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s backend: %w", b.name, err)
	}

	// Atomic write: temp file, then rename
	tmpPath := b.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing %s backend: %w", b.name, err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s backend: %w", b.name, err)
	}
	return nil
}
