package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Capability string

const (
	CapabilityTerminal Capability = "terminal"
	CapabilitySFTP     Capability = "sftp"
)

func (c Capability) Validate() error {
	switch c {
	case CapabilityTerminal, CapabilitySFTP:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

type Mode string

const (
	ModeAsset Mode = "asset"
	ModeSFTP  Mode = "sftp"
)

func (m Mode) Validate() error {
	switch m {
	case ModeAsset, ModeSFTP:
		return nil
	default:
		return fmt.Errorf("unknown connect mode: %s", m)
	}
}

// Capability is the connector capability a mode needs.
func (m Mode) Capability() Capability {
	if m == ModeSFTP {
		return CapabilitySFTP
	}
	return CapabilityTerminal
}

var (
	ErrPluginDisabled    = errors.New("plugin is disabled")
	ErrChecksumMismatch  = errors.New("plugin checksum mismatch")
	ErrCapabilityMissing = errors.New("plugin capability missing")
	ErrPluginTimeout     = errors.New("plugin timeout")
	ErrNoSSH             = errors.New("host advertises no ssh protocol")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("plugin capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

// Target is the asset a session is opened against. AppType is set for
// remote applications, whose address is the hosting asset's IP.
type Target struct {
	NodeID    string
	Title     string
	Hostname  string
	IP        string
	Platform  string
	Protocols []string
	AppType   string
}

func (t Target) IsRemoteApp() bool { return t.AppType != "" }

// Address prefers the IP and falls back to the hostname.
func (t Target) Address() string {
	if strings.TrimSpace(t.IP) != "" {
		return t.IP
	}
	return strings.TrimSpace(t.Hostname)
}

func (t Target) HasSSH() bool {
	for _, p := range t.Protocols {
		if strings.HasPrefix(strings.ToLower(p), "ssh") {
			return true
		}
	}
	return false
}

// Port returns the port advertised as "<proto>/<port>", or fallback.
func (t Target) Port(proto string, fallback int) int {
	for _, p := range t.Protocols {
		name, raw, ok := strings.Cut(strings.ToLower(strings.TrimSpace(p)), "/")
		if !ok || name != proto {
			continue
		}
		if port, err := strconv.Atoi(raw); err == nil && port > 0 && port < 65536 {
			return port
		}
	}
	return fallback
}

type Request struct {
	Mode   Mode
	Target Target
}

func (r Request) Validate() error {
	if err := r.Mode.Validate(); err != nil {
		return err
	}
	if r.Target.NodeID == "" {
		return fmt.Errorf("target node id is required")
	}
	if r.Target.Address() == "" {
		return fmt.Errorf("target %s has no address", r.Target.NodeID)
	}
	if r.Mode == ModeSFTP && !r.Target.HasSSH() {
		return fmt.Errorf("%w: %s", ErrNoSSH, r.Target.NodeID)
	}
	return nil
}

// SessionPlan is the process the terminal hands control to. An empty Cwd
// inherits the caller's working directory.
type SessionPlan struct {
	Argv []string
	Cwd  string
	Env  map[string]string
}

func (p SessionPlan) Validate() error {
	if len(p.Argv) == 0 || strings.TrimSpace(p.Argv[0]) == "" {
		return fmt.Errorf("session argv is required")
	}
	return nil
}
