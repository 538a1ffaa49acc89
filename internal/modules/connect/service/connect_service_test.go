package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hostnav/internal/modules/connect/domain"
	connectout "hostnav/internal/modules/connect/port/out"
	"hostnav/internal/modules/connect/service"
	"hostnav/internal/platform/clock"
	apperrors "hostnav/internal/platform/errors"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (s fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	lifecycleErr error
	prepared     []string
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return h.lifecycleErr }
func (h *fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "fake", Version: "1"}, nil
}
func (h *fakeHost) PrepareSession(_ context.Context, m domain.Manifest, req domain.Request) (domain.SessionPlan, error) {
	h.prepared = append(h.prepared, m.Name)
	return domain.SessionPlan{Argv: []string{"/usr/bin/" + m.Name, req.Target.Address()}}, nil
}

type fakePlanner struct {
	calls int
}

func (p *fakePlanner) Name() string { return "builtin" }
func (p *fakePlanner) Plan(_ context.Context, req domain.Request) (domain.SessionPlan, error) {
	p.calls++
	return domain.SessionPlan{Argv: []string{"ssh", req.Target.Address()}}, nil
}

type fakeRecorder struct {
	err        error
	dispatches []connectout.Dispatch
}

func (r *fakeRecorder) Record(_ context.Context, d connectout.Dispatch) error {
	r.dispatches = append(r.dispatches, d)
	return r.err
}

func manifestWithBinary(t *testing.T, name string, enabled bool, caps []domain.Capability) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), name)
	payload := []byte("binary-" + name)
	if err := os.WriteFile(binPath, payload, 0o755); err != nil {
		t.Fatalf("write plugin binary: %v", err)
	}
	hash := sha256.Sum256(payload)
	return domain.Manifest{
		Name:         name,
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      enabled,
		Capabilities: caps,
	}
}

func sshRequest(mode domain.Mode) domain.Request {
	return domain.Request{Mode: mode, Target: domain.Target{
		NodeID:    "h1",
		Title:     "web-1",
		IP:        "10.0.0.1",
		Protocols: []string{"ssh/22"},
	}}
}

func TestConnectPrefersCapablePlugin(t *testing.T) {
	t.Parallel()
	term := manifestWithBinary(t, "term", true, []domain.Capability{domain.CapabilityTerminal})
	host := &fakeHost{}
	planner := &fakePlanner{}
	svc := service.NewConnectService(fakeStore{manifests: []domain.Manifest{term}}, host, planner, nil, nil, nil)

	out, err := svc.Connect(context.Background(), sshRequest(domain.ModeAsset))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if out.Connector != "term" || len(host.prepared) != 1 || planner.calls != 0 {
		t.Fatalf("expected plugin path, got %+v (prepared=%v planner=%d)", out, host.prepared, planner.calls)
	}
	if out.Argv[1] != "10.0.0.1" || out.Mode != "asset" || out.NodeID != "h1" {
		t.Fatalf("unexpected plan: %+v", out)
	}
}

func TestConnectFallsBackWithoutCapability(t *testing.T) {
	t.Parallel()
	term := manifestWithBinary(t, "term", true, []domain.Capability{domain.CapabilityTerminal})
	disabled := manifestWithBinary(t, "files", false, []domain.Capability{domain.CapabilitySFTP})
	host := &fakeHost{}
	planner := &fakePlanner{}
	svc := service.NewConnectService(fakeStore{manifests: []domain.Manifest{term, disabled}}, host, planner, nil, nil, nil)

	out, err := svc.Connect(context.Background(), sshRequest(domain.ModeSFTP))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if out.Connector != "builtin" || planner.calls != 1 || len(host.prepared) != 0 {
		t.Fatalf("expected builtin planner, got %+v", out)
	}
}

func TestConnectWithoutConnector(t *testing.T) {
	t.Parallel()
	svc := service.NewConnectService(fakeStore{}, &fakeHost{}, nil, nil, nil, nil)
	_, err := svc.Connect(context.Background(), sshRequest(domain.ModeAsset))
	if !errors.Is(err, apperrors.ErrNoConnector) {
		t.Fatalf("expected ErrNoConnector, got %v", err)
	}
}

func TestConnectRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	term := manifestWithBinary(t, "term", true, []domain.Capability{domain.CapabilityTerminal})
	term.SHA256 = strings.Repeat("0", 64)
	svc := service.NewConnectService(fakeStore{manifests: []domain.Manifest{term}}, &fakeHost{}, &fakePlanner{}, nil, nil, nil)
	_, err := svc.Connect(context.Background(), sshRequest(domain.ModeAsset))
	if !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestConnectMapsLifecycleTimeout(t *testing.T) {
	t.Parallel()
	term := manifestWithBinary(t, "term", true, []domain.Capability{domain.CapabilityTerminal})
	host := &fakeHost{lifecycleErr: context.DeadlineExceeded}
	svc := service.NewConnectService(fakeStore{manifests: []domain.Manifest{term}}, host, nil, nil, nil, nil)
	_, err := svc.Connect(context.Background(), sshRequest(domain.ModeAsset))
	if !errors.Is(err, domain.ErrPluginTimeout) {
		t.Fatalf("expected ErrPluginTimeout, got %v", err)
	}
}

func TestConnectRejectsSFTPWithoutSSH(t *testing.T) {
	t.Parallel()
	svc := service.NewConnectService(fakeStore{}, nil, &fakePlanner{}, nil, nil, nil)
	req := sshRequest(domain.ModeSFTP)
	req.Target.Protocols = []string{"rdp/3389"}
	_, err := svc.Connect(context.Background(), req)
	if !errors.Is(err, apperrors.ErrNotConnectable) || !errors.Is(err, domain.ErrNoSSH) {
		t.Fatalf("expected ErrNotConnectable wrapping ErrNoSSH, got %v", err)
	}
}

func TestConnectRecordsDispatch(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	recorder := &fakeRecorder{err: errors.New("disk full")}
	svc := service.NewConnectService(fakeStore{}, nil, &fakePlanner{}, recorder, clock.Fixed{At: now}, nil)

	if _, err := svc.Connect(context.Background(), sshRequest(domain.ModeAsset)); err != nil {
		t.Fatalf("recorder failure must not fail connect: %v", err)
	}
	if len(recorder.dispatches) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(recorder.dispatches))
	}
	got := recorder.dispatches[0]
	if got.NodeID != "h1" || got.Title != "web-1" || got.Connector != "builtin" || got.Mode != domain.ModeAsset || !got.StartedAt.Equal(now) {
		t.Fatalf("unexpected dispatch: %+v", got)
	}
}

func TestConnectInvalidRequest(t *testing.T) {
	t.Parallel()
	svc := service.NewConnectService(fakeStore{}, nil, &fakePlanner{}, nil, nil, nil)
	_, err := svc.Connect(context.Background(), domain.Request{Mode: domain.ModeAsset, Target: domain.Target{NodeID: "h1"}})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDoctorDetectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, "demo", true, []domain.Capability{domain.CapabilityTerminal})
	manifest.SHA256 = strings.Repeat("0", 64)
	missing := manifestWithBinary(t, "gone", true, []domain.Capability{domain.CapabilitySFTP})
	missing.Binary = filepath.Join(t.TempDir(), "does-not-exist")

	svc := service.NewConnectService(fakeStore{manifests: []domain.Manifest{manifest, missing}}, &fakeHost{}, nil, nil, nil, nil)
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if results[0].ChecksumValid || results[0].Error != "checksum mismatch" {
		t.Fatalf("expected checksum mismatch, got %+v", results[0])
	}
	if results[1].BinaryReachable || !strings.Contains(results[1].Error, "binary does not exist") {
		t.Fatalf("expected unreachable binary, got %+v", results[1])
	}
}

func TestListRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	a := manifestWithBinary(t, "dup", true, []domain.Capability{domain.CapabilityTerminal})
	b := manifestWithBinary(t, "dup", true, []domain.Capability{domain.CapabilitySFTP})
	svc := service.NewConnectService(fakeStore{manifests: []domain.Manifest{a, b}}, nil, nil, nil, nil, nil)
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}
