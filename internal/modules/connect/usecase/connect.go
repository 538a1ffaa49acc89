package usecase

import (
	"context"
	"fmt"
	"strings"

	"hostnav/internal/modules/connect/domain"
	"hostnav/internal/modules/connect/dto"
	connectin "hostnav/internal/modules/connect/port/in"
	"hostnav/internal/modules/connect/service"
	apperrors "hostnav/internal/platform/errors"
)

type Interactor struct {
	svc *service.ConnectService
}

func NewInteractor(svc *service.ConnectService) connectin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Connect(ctx context.Context, input dto.ConnectInput) (dto.SessionPlanOutput, error) {
	req, err := toRequest(input)
	if err != nil {
		return dto.SessionPlanOutput{}, err
	}
	return i.svc.Connect(ctx, req)
}

func toRequest(input dto.ConnectInput) (domain.Request, error) {
	mode := domain.Mode(strings.ToLower(strings.TrimSpace(input.Mode)))
	if mode == "" {
		mode = domain.ModeAsset
	}
	if err := mode.Validate(); err != nil {
		return domain.Request{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	node := input.Node
	if node.IsParent {
		return domain.Request{}, fmt.Errorf("%w: %s is a group", apperrors.ErrNotConnectable, node.ID)
	}
	target := domain.Target{NodeID: node.ID, Title: node.Title}
	switch node.MetaType {
	case "asset":
		target.Hostname = node.Hostname
		target.IP = node.IP
		target.Platform = node.Platform
		target.Protocols = append([]string(nil), node.Protocols...)
	case "remote_app":
		if mode == domain.ModeSFTP {
			return domain.Request{}, fmt.Errorf("%w: sftp is not offered for remote app %s", apperrors.ErrNotConnectable, node.ID)
		}
		target.IP = node.AssetIP
		target.AppType = node.AppType
	default:
		return domain.Request{}, fmt.Errorf("%w: %s carries no asset data", apperrors.ErrNotConnectable, node.ID)
	}
	return domain.Request{Mode: mode, Target: target}, nil
}
