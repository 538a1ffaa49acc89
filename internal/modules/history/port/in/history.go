package in

import (
	"context"

	"hostnav/internal/modules/history/dto"
)

type Usecase interface {
	Record(ctx context.Context, input dto.RecordInput) (dto.ConnectionOutput, error)
	Recent(ctx context.Context, limit int) ([]dto.ConnectionOutput, error)
}
