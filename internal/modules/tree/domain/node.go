package domain

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindHosts      Kind = "hosts"
	KindRemoteApps Kind = "apps"
)

func (k Kind) Validate() error {
	switch k {
	case KindHosts, KindRemoteApps:
		return nil
	default:
		return fmt.Errorf("unsupported tree kind %q", string(k))
	}
}

// Meta is the payload a data source attaches to a node. It is a closed set:
// AssetMeta on the hosts tree, RemoteAppMeta on the remote-apps tree, nil on
// grouping nodes.
type Meta interface {
	metaKind() string
}

type AssetMeta struct {
	Hostname  string
	IP        string
	Platform  string
	Protocols []string
}

func (AssetMeta) metaKind() string { return "asset" }

// HasSSH reports whether any advertised protocol is ssh based ("ssh", "ssh/22").
func (m AssetMeta) HasSSH() bool {
	for _, p := range m.Protocols {
		if strings.HasPrefix(strings.ToLower(p), "ssh") {
			return true
		}
	}
	return false
}

// Port returns the port of the first protocol named proto ("ssh/2222" -> 2222).
func (m AssetMeta) Port(proto string, fallback int) int {
	for _, p := range m.Protocols {
		name, port, ok := strings.Cut(strings.ToLower(p), "/")
		if !ok || name != proto {
			continue
		}
		var out int
		if _, err := fmt.Sscanf(port, "%d", &out); err == nil && out > 0 {
			return out
		}
	}
	return fallback
}

type RemoteAppMeta struct {
	AppType string
	AssetIP string
}

func (RemoteAppMeta) metaKind() string { return "remote_app" }

// Descriptor is the flat wire form of a node as delivered by a data source.
type Descriptor struct {
	ID       string
	PID      string
	Name     string
	Title    string
	IsParent bool
	Open     bool
	Meta     Meta
}

type Node struct {
	ID       string
	ParentID string
	Name     string
	Title    string
	IsParent bool
	Meta     Meta

	open      bool
	hidden    bool
	populated bool
	tree      *Tree
	parent    *Node
	children  []*Node
}

func (n *Node) Label() string {
	if strings.TrimSpace(n.Title) != "" {
		return n.Title
	}
	return n.Name
}

func (n *Node) IsOpen() bool { return n.open }

// IsPopulated reports whether the node's children have been materialised.
// Leaves are always populated.
func (n *Node) IsPopulated() bool { return n.populated }

func (n *Node) Asset() (AssetMeta, bool) {
	meta, ok := n.Meta.(AssetMeta)
	return meta, ok
}

func (n *Node) RemoteApp() (RemoteAppMeta, bool) {
	meta, ok := n.Meta.(RemoteAppMeta)
	return meta, ok
}
