package out

import (
	"hostnav/internal/modules/tree/domain"
)

// wireNode is the node shape served by the bastion API. The same shape is
// used for cached payloads and YAML fixtures.
type wireNode struct {
	ID       string    `json:"id" yaml:"id"`
	PID      string    `json:"pId" yaml:"pId"`
	Name     string    `json:"name" yaml:"name"`
	Title    string    `json:"title" yaml:"title"`
	IsParent bool      `json:"isParent" yaml:"isParent"`
	Open     bool      `json:"open" yaml:"open"`
	Meta     *wireMeta `json:"meta,omitempty" yaml:"meta,omitempty"`
}

type wireMeta struct {
	Type      string         `json:"type" yaml:"type"`
	Asset     *wireAsset     `json:"asset,omitempty" yaml:"asset,omitempty"`
	RemoteApp *wireRemoteApp `json:"remote_app,omitempty" yaml:"remote_app,omitempty"`
}

type wireAsset struct {
	Hostname  string   `json:"hostname" yaml:"hostname"`
	IP        string   `json:"ip" yaml:"ip"`
	Platform  string   `json:"platform" yaml:"platform"`
	Protocols []string `json:"protocols" yaml:"protocols"`
}

type wireRemoteApp struct {
	Type    string `json:"type" yaml:"type"`
	AssetIP string `json:"asset_ip" yaml:"asset_ip"`
}

func fromWire(nodes []wireNode) []domain.Descriptor {
	out := make([]domain.Descriptor, 0, len(nodes))
	for _, n := range nodes {
		d := domain.Descriptor{
			ID:       n.ID,
			PID:      n.PID,
			Name:     n.Name,
			Title:    n.Title,
			IsParent: n.IsParent,
			Open:     n.Open,
		}
		if n.Meta != nil {
			switch {
			case n.Meta.Asset != nil:
				d.Meta = domain.AssetMeta{
					Hostname:  n.Meta.Asset.Hostname,
					IP:        n.Meta.Asset.IP,
					Platform:  n.Meta.Asset.Platform,
					Protocols: n.Meta.Asset.Protocols,
				}
			case n.Meta.RemoteApp != nil:
				d.Meta = domain.RemoteAppMeta{AppType: n.Meta.RemoteApp.Type, AssetIP: n.Meta.RemoteApp.AssetIP}
			}
		}
		out = append(out, d)
	}
	return out
}

func toWire(descriptors []domain.Descriptor) []wireNode {
	out := make([]wireNode, 0, len(descriptors))
	for _, d := range descriptors {
		n := wireNode{
			ID:       d.ID,
			PID:      d.PID,
			Name:     d.Name,
			Title:    d.Title,
			IsParent: d.IsParent,
			Open:     d.Open,
		}
		switch m := d.Meta.(type) {
		case domain.AssetMeta:
			n.Meta = &wireMeta{Type: "asset", Asset: &wireAsset{Hostname: m.Hostname, IP: m.IP, Platform: m.Platform, Protocols: m.Protocols}}
		case domain.RemoteAppMeta:
			n.Meta = &wireMeta{Type: "remote_app", RemoteApp: &wireRemoteApp{Type: m.AppType, AssetIP: m.AssetIP}}
		}
		out = append(out, n)
	}
	return out
}
