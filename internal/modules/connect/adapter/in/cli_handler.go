package in

import (
	"context"

	"hostnav/internal/modules/connect/dto"
	connectin "hostnav/internal/modules/connect/port/in"
)

type CLIHandler struct {
	usecase connectin.Usecase
}

func NewCLIHandler(usecase connectin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Connect(ctx context.Context, input dto.ConnectInput) (dto.SessionPlanOutput, error) {
	return h.usecase.Connect(ctx, input)
}
