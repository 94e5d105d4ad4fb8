package store

import (
	"context"
	"fmt"
	"time"

	"github.com/frankfika/gitlab-issuehelper/common/id"
	"github.com/frankfika/gitlab-issuehelper/internal/model"
)

const historyKey = "issue_history"

type historyStore struct {
	kv Backend
}

func newHistoryStore(kv Backend) HistoryStore {
	return &historyStore{kv: kv}
}

// List returns records newest first.
func (s *historyStore) List(ctx context.Context) ([]model.HistoryRecord, error) {
	records := []model.HistoryRecord{}
	if err := readJSON(ctx, s.kv, historyKey, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save prepends record and evicts anything past model.MaxHistory.
func (s *historyStore) Save(ctx context.Context, record model.HistoryRecord) (*model.HistoryRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if record.ID == "" {
		record.ID = id.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	records = append([]model.HistoryRecord{record}, records...)
	if len(records) > model.MaxHistory {
		records = records[:model.MaxHistory]
	}

	if err := writeJSON(ctx, s.kv, historyKey, records); err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}
	return &record, nil
}

func (s *historyStore) Delete(ctx context.Context, id string) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.HistoryRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}

	if err := writeJSON(ctx, s.kv, historyKey, kept); err != nil {
		return fmt.Errorf("deleting history record: %w", err)
	}
	return nil
}

func (s *historyStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, historyKey); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
