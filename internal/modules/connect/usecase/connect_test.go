package usecase_test

import (
	"context"
	"errors"
	"testing"

	"hostnav/internal/modules/connect/domain"
	"hostnav/internal/modules/connect/dto"
	connectin "hostnav/internal/modules/connect/port/in"
	"hostnav/internal/modules/connect/service"
	"hostnav/internal/modules/connect/usecase"
	treedto "hostnav/internal/modules/tree/dto"
	apperrors "hostnav/internal/platform/errors"
)

type emptyStore struct{}

func (emptyStore) Load(context.Context) ([]domain.Manifest, error) { return nil, nil }

type capturePlanner struct {
	last domain.Request
}

func (p *capturePlanner) Name() string { return "capture" }
func (p *capturePlanner) Plan(_ context.Context, req domain.Request) (domain.SessionPlan, error) {
	p.last = req
	return domain.SessionPlan{Argv: []string{"ssh"}}, nil
}

func newUsecase(planner *capturePlanner) connectin.Usecase {
	return usecase.NewInteractor(service.NewConnectService(emptyStore{}, nil, planner, nil, nil, nil))
}

func TestConnectMapsAssetNode(t *testing.T) {
	t.Parallel()
	planner := &capturePlanner{}
	uc := newUsecase(planner)
	node := treedto.NodeOutput{ID: "h1", Title: "web-1", MetaType: "asset", Hostname: "web-1", IP: "10.0.0.1", Protocols: []string{"ssh/2222"}}

	out, err := uc.Connect(context.Background(), dto.ConnectInput{Node: node, Mode: "SFTP"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if out.Mode != "sftp" || planner.last.Mode != domain.ModeSFTP {
		t.Fatalf("expected sftp mode, got %+v", out)
	}
	if planner.last.Target.Port("ssh", 22) != 2222 || planner.last.Target.Address() != "10.0.0.1" {
		t.Fatalf("unexpected target: %+v", planner.last.Target)
	}
}

func TestConnectDefaultsToAssetMode(t *testing.T) {
	t.Parallel()
	planner := &capturePlanner{}
	uc := newUsecase(planner)
	node := treedto.NodeOutput{ID: "h1", MetaType: "asset", IP: "10.0.0.1"}
	if _, err := uc.Connect(context.Background(), dto.ConnectInput{Node: node}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if planner.last.Mode != domain.ModeAsset {
		t.Fatalf("expected asset mode, got %s", planner.last.Mode)
	}
}

func TestConnectRemoteApp(t *testing.T) {
	t.Parallel()
	planner := &capturePlanner{}
	uc := newUsecase(planner)
	node := treedto.NodeOutput{ID: "app-1", MetaType: "remote_app", AppType: "chrome", AssetIP: "10.0.0.9"}
	if _, err := uc.Connect(context.Background(), dto.ConnectInput{Node: node}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !planner.last.Target.IsRemoteApp() || planner.last.Target.Address() != "10.0.0.9" {
		t.Fatalf("unexpected remote app target: %+v", planner.last.Target)
	}
	if _, err := uc.Connect(context.Background(), dto.ConnectInput{Node: node, Mode: "sftp"}); !errors.Is(err, apperrors.ErrNotConnectable) {
		t.Fatalf("expected ErrNotConnectable for sftp on remote app, got %v", err)
	}
}

func TestConnectRejectsGroupsAndBareNodes(t *testing.T) {
	t.Parallel()
	uc := newUsecase(&capturePlanner{})
	cases := []treedto.NodeOutput{
		{ID: "g1", IsParent: true, MetaType: "asset", IP: "10.0.0.1"},
		{ID: "n1"},
	}
	for _, node := range cases {
		if _, err := uc.Connect(context.Background(), dto.ConnectInput{Node: node}); !errors.Is(err, apperrors.ErrNotConnectable) {
			t.Fatalf("node %s: expected ErrNotConnectable, got %v", node.ID, err)
		}
	}
	if _, err := uc.Connect(context.Background(), dto.ConnectInput{Node: treedto.NodeOutput{ID: "h1", MetaType: "asset", IP: "1.1.1.1"}, Mode: "rdp"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown mode, got %v", err)
	}
}
