package usecase

import (
	"context"
	"fmt"

	"hostnav/internal/modules/history/domain"
	"hostnav/internal/modules/history/dto"
	historyin "hostnav/internal/modules/history/port/in"
	"hostnav/internal/modules/history/service"
	apperrors "hostnav/internal/platform/errors"
)

type Interactor struct {
	svc *service.HistoryService
}

func NewInteractor(svc *service.HistoryService) historyin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Record(ctx context.Context, input dto.RecordInput) (dto.ConnectionOutput, error) {
	if input.NodeID == "" {
		return dto.ConnectionOutput{}, fmt.Errorf("%w: node id is required", apperrors.ErrInvalidInput)
	}
	saved, err := i.svc.Record(ctx, domain.Connection{
		NodeID:    input.NodeID,
		Title:     input.Title,
		Mode:      input.Mode,
		Connector: input.Connector,
		StartedAt: input.StartedAt,
	})
	if err != nil {
		return dto.ConnectionOutput{}, err
	}
	return toOutput(saved), nil
}

func (i *Interactor) Recent(ctx context.Context, limit int) ([]dto.ConnectionOutput, error) {
	items, err := i.svc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConnectionOutput, 0, len(items))
	for _, item := range items {
		out = append(out, toOutput(item))
	}
	return out, nil
}

func toOutput(c domain.Connection) dto.ConnectionOutput {
	return dto.ConnectionOutput{
		ID:        c.ID,
		NodeID:    c.NodeID,
		Title:     c.Title,
		Mode:      c.Mode,
		Connector: c.Connector,
		StartedAt: c.StartedAt,
	}
}
