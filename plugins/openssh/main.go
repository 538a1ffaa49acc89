package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	connectrpc "hostnav/internal/modules/connect/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *connectrpc.Empty) (*connectrpc.Metadata, error) {
	return &connectrpc.Metadata{
		Name:         "openssh",
		Version:      "1.0.0",
		Capabilities: []string{"terminal", "sftp"},
	}, nil
}

func (s *server) PrepareSession(_ context.Context, in *connectrpc.PrepareSessionRequest) (*connectrpc.PrepareSessionResponse, error) {
	address := strings.TrimSpace(in.Target.IP)
	if address == "" {
		address = strings.TrimSpace(in.Target.Hostname)
	}
	if address == "" {
		return nil, fmt.Errorf("target %s has no address", in.Target.NodeID)
	}
	port := sshPort(in.Target.Protocols)
	switch in.Mode {
	case "asset":
		return &connectrpc.PrepareSessionResponse{Argv: []string{"ssh", "-p", port, address}}, nil
	case "sftp":
		return &connectrpc.PrepareSessionResponse{Argv: []string{"sftp", "-P", port, address}}, nil
	default:
		return nil, fmt.Errorf("unsupported mode: %s", in.Mode)
	}
}

func sshPort(protocols []string) string {
	for _, p := range protocols {
		name, raw, ok := strings.Cut(strings.ToLower(p), "/")
		if !ok || name != "ssh" {
			continue
		}
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return raw
		}
	}
	return "22"
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: connectrpc.HandshakeConfig,
		Plugins:         connectrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
