package out

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"hostnav/internal/modules/connect/domain"
	connectout "hostnav/internal/modules/connect/port/out"
	apperrors "hostnav/internal/platform/errors"
)

const defaultSSHPort = 22

// OpenSSHPlanner drives the local ssh and sftp clients.
type OpenSSHPlanner struct {
	lookPath func(string) (string, error)
}

func NewOpenSSHPlanner() connectout.Planner {
	return &OpenSSHPlanner{lookPath: exec.LookPath}
}

// NewOpenSSHPlannerWithLookPath is used when the client binaries live
// somewhere other than PATH.
func NewOpenSSHPlannerWithLookPath(lookPath func(string) (string, error)) connectout.Planner {
	return &OpenSSHPlanner{lookPath: lookPath}
}

func (p *OpenSSHPlanner) Name() string { return "openssh" }

func (p *OpenSSHPlanner) Plan(_ context.Context, req domain.Request) (domain.SessionPlan, error) {
	if req.Target.IsRemoteApp() {
		return domain.SessionPlan{}, fmt.Errorf("%w: openssh cannot open %s applications", apperrors.ErrNoConnector, req.Target.AppType)
	}
	binary, flag := "ssh", "-p"
	if req.Mode == domain.ModeSFTP {
		binary, flag = "sftp", "-P"
	}
	path, err := p.lookPath(binary)
	if err != nil {
		return domain.SessionPlan{}, fmt.Errorf("%w: %s not found: %v", apperrors.ErrNoConnector, binary, err)
	}
	port := req.Target.Port("ssh", defaultSSHPort)
	return domain.SessionPlan{
		Argv: []string{path, flag, strconv.Itoa(port), req.Target.Address()},
	}, nil
}
