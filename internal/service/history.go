package service

import (
	"context"
	"fmt"

	"github.com/frankfika/gitlab-issuehelper/internal/model"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

type HistoryService interface {
	List(ctx context.Context) ([]model.HistoryRecord, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type historyService struct {
	history store.HistoryStore
}

func NewHistoryService(history store.HistoryStore) HistoryService {
	return &historyService{history: history}
}

func (s *historyService) List(ctx context.Context) ([]model.HistoryRecord, error) {
	return s.history.List(ctx)
}

func (s *historyService) Delete(ctx context.Context, id string) error {
	if err := s.history.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting history record: %w", err)
	}
	return nil
}

func (s *historyService) Clear(ctx context.Context) error {
	return s.history.Clear(ctx)
}
