package service

import (
	"context"

	"hostnav/internal/modules/history/domain"
	historyout "hostnav/internal/modules/history/port/out"
	"hostnav/internal/platform/clock"
	"hostnav/internal/platform/id"
)

type HistoryService struct {
	clock clock.Clock
	idGen id.Generator
	store historyout.ConnectionStore
}

func NewHistoryService(clock clock.Clock, idGen id.Generator, store historyout.ConnectionStore) *HistoryService {
	return &HistoryService{clock: clock, idGen: idGen, store: store}
}

func (s *HistoryService) Record(ctx context.Context, connection domain.Connection) (domain.Connection, error) {
	connection.ID = s.idGen.New()
	if connection.StartedAt.IsZero() {
		connection.StartedAt = s.clock.Now()
	}
	if err := connection.Validate(); err != nil {
		return domain.Connection{}, err
	}
	if err := s.store.Save(ctx, connection); err != nil {
		return domain.Connection{}, err
	}
	return connection, nil
}

func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.Connection, error) {
	return s.store.Recent(ctx, domain.NormalizeLimit(limit))
}
