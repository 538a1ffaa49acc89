package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"

	"hostnav/internal/modules/connect/domain"
	"hostnav/internal/modules/connect/dto"
	connectout "hostnav/internal/modules/connect/port/out"
	"hostnav/internal/platform/clock"
	apperrors "hostnav/internal/platform/errors"
)

type ConnectService struct {
	store    connectout.ManifestStore
	host     connectout.Host
	fallback connectout.Planner
	recorder connectout.Recorder
	clock    clock.Clock
	logger   hclog.Logger
}

// NewConnectService wires the plugin path and its fallbacks. host, fallback
// and recorder may be nil.
func NewConnectService(store connectout.ManifestStore, host connectout.Host, fallback connectout.Planner, recorder connectout.Recorder, clk clock.Clock, logger hclog.Logger) *ConnectService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ConnectService{store: store, host: host, fallback: fallback, recorder: recorder, clock: clk, logger: logger}
}

func (s *ConnectService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.PluginInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

func (s *ConnectService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

// Connect turns a request into a session plan. The first enabled plugin
// advertising the mode's capability wins; without one the builtin planner is
// used, and without that the request fails with ErrNoConnector.
func (s *ConnectService) Connect(ctx context.Context, req domain.Request) (dto.SessionPlanOutput, error) {
	if err := req.Validate(); err != nil {
		if errors.Is(err, domain.ErrNoSSH) {
			return dto.SessionPlanOutput{}, fmt.Errorf("%w: %w", apperrors.ErrNotConnectable, err)
		}
		return dto.SessionPlanOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	manifest, found, err := s.selectManifest(ctx, req.Mode.Capability())
	if err != nil {
		return dto.SessionPlanOutput{}, err
	}

	var plan domain.SessionPlan
	var connector string
	switch {
	case found:
		if err := s.checkRunnable(ctx, manifest); err != nil {
			return dto.SessionPlanOutput{}, err
		}
		plan, err = s.host.PrepareSession(ctx, manifest, req)
		if err != nil {
			return dto.SessionPlanOutput{}, err
		}
		connector = manifest.Name
	case s.fallback != nil:
		plan, err = s.fallback.Plan(ctx, req)
		if err != nil {
			return dto.SessionPlanOutput{}, err
		}
		connector = s.fallback.Name()
	default:
		return dto.SessionPlanOutput{}, fmt.Errorf("%w: capability %s", apperrors.ErrNoConnector, req.Mode.Capability())
	}
	if err := plan.Validate(); err != nil {
		return dto.SessionPlanOutput{}, err
	}
	s.logger.Debug("session planned", "node", req.Target.NodeID, "mode", req.Mode, "connector", connector)

	if s.recorder != nil {
		dispatch := connectout.Dispatch{
			NodeID:    req.Target.NodeID,
			Title:     req.Target.Title,
			Mode:      req.Mode,
			Connector: connector,
			StartedAt: s.clock.Now(),
		}
		if err := s.recorder.Record(ctx, dispatch); err != nil {
			s.logger.Warn("record connection failed", "node", req.Target.NodeID, "error", err)
		}
	}
	return dto.SessionPlanOutput{
		Connector: connector,
		Mode:      string(req.Mode),
		NodeID:    req.Target.NodeID,
		Title:     req.Target.Title,
		Argv:      plan.Argv,
		Cwd:       plan.Cwd,
		Env:       plan.Env,
	}, nil
}

func (s *ConnectService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *ConnectService) selectManifest(ctx context.Context, capability domain.Capability) (domain.Manifest, bool, error) {
	if s.host == nil {
		return domain.Manifest{}, false, nil
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, false, err
	}
	for _, m := range manifests {
		if m.Enabled && m.HasCapability(capability) {
			return m, true, nil
		}
	}
	return domain.Manifest{}, false, nil
}

func (s *ConnectService) checkRunnable(ctx context.Context, manifest domain.Manifest) error {
	if !manifest.Enabled {
		return fmt.Errorf("%w: %s", domain.ErrPluginDisabled, manifest.Name)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return err
	}
	if err := s.host.CheckLifecycle(ctx, manifest); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return err
	}
	return nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
