package in

import (
	"context"

	"hostnav/internal/modules/connect/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Connect(ctx context.Context, input dto.ConnectInput) (dto.SessionPlanOutput, error)
}
