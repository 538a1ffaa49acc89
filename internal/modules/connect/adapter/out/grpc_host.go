package out

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	connectrpc "hostnav/internal/modules/connect/adapter/out/rpc"
	"hostnav/internal/modules/connect/domain"
	connectout "hostnav/internal/modules/connect/port/out"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

type GRPCHost struct {
	logger hclog.Logger
}

// NewGRPCHost launches connector plugins on demand. Plugin stderr and
// handshake chatter go to a "plugin" sub-logger.
func NewGRPCHost(logger hclog.Logger) connectout.Host {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GRPCHost{logger: logger.Named("plugin")}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) PrepareSession(ctx context.Context, manifest domain.Manifest, req domain.Request) (domain.SessionPlan, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return domain.SessionPlan{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	response, err := client.PrepareSession(callCtx, &connectrpc.PrepareSessionRequest{
		Mode: string(req.Mode),
		Target: connectrpc.Target{
			NodeID:    req.Target.NodeID,
			Title:     req.Target.Title,
			Hostname:  req.Target.Hostname,
			IP:        req.Target.IP,
			Platform:  req.Target.Platform,
			Protocols: req.Target.Protocols,
			AppType:   req.Target.AppType,
		},
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.SessionPlan{}, fmt.Errorf("%w: prepare session on %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return domain.SessionPlan{}, fmt.Errorf("prepare session: %w", err)
	}
	return domain.SessionPlan{Argv: response.Argv, Cwd: response.Cwd, Env: response.Env}, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest, startTimeout time.Duration) (connectrpc.ConnectorClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  connectrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          connectrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           h.logger.With("plugin", manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(connectrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(connectrpc.ConnectorClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
