package usecase

import (
	"hostnav/internal/modules/tree/domain"
	"hostnav/internal/modules/tree/dto"
)

func toNodeOutput(n *domain.Node) dto.NodeOutput {
	out := dto.NodeOutput{
		ID:       n.ID,
		ParentID: n.ParentID,
		Name:     n.Name,
		Title:    n.Label(),
		IsParent: n.IsParent,
		Open:     n.IsOpen(),
	}
	applyMeta(&out, n.Meta)
	return out
}

func descriptorToOutput(d domain.Descriptor) dto.NodeOutput {
	out := dto.NodeOutput{
		ID:       d.ID,
		ParentID: d.PID,
		Name:     d.Name,
		Title:    d.Title,
		IsParent: d.IsParent,
		Open:     d.Open,
	}
	applyMeta(&out, d.Meta)
	return out
}

func applyMeta(out *dto.NodeOutput, meta domain.Meta) {
	switch m := meta.(type) {
	case domain.AssetMeta:
		out.MetaType = "asset"
		out.Hostname = m.Hostname
		out.IP = m.IP
		out.Platform = m.Platform
		out.Protocols = append([]string(nil), m.Protocols...)
	case domain.RemoteAppMeta:
		out.MetaType = "remote_app"
		out.AppType = m.AppType
		out.AssetIP = m.AssetIP
	}
}

func outputToDescriptor(n dto.NodeOutput) domain.Descriptor {
	d := domain.Descriptor{
		ID:       n.ID,
		PID:      n.ParentID,
		Name:     n.Name,
		Title:    n.Title,
		IsParent: n.IsParent,
		Open:     n.Open,
	}
	switch n.MetaType {
	case "asset":
		d.Meta = domain.AssetMeta{Hostname: n.Hostname, IP: n.IP, Platform: n.Platform, Protocols: append([]string(nil), n.Protocols...)}
	case "remote_app":
		d.Meta = domain.RemoteAppMeta{AppType: n.AppType, AssetIP: n.AssetIP}
	}
	return d
}

func descriptorsToOutputs(descriptors []domain.Descriptor) []dto.NodeOutput {
	out := make([]dto.NodeOutput, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, descriptorToOutput(d))
	}
	return out
}

func outputsToDescriptors(nodes []dto.NodeOutput) []domain.Descriptor {
	out := make([]domain.Descriptor, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, outputToDescriptor(n))
	}
	return out
}

func rowsToOutputs(rows []domain.Row) []dto.RowOutput {
	out := make([]dto.RowOutput, 0, len(rows))
	for i, r := range rows {
		out = append(out, dto.RowOutput{
			Node:  toNodeOutput(r.Node),
			Index: i,
			Depth: r.Depth,
			Last:  r.Last,
			Rails: append([]bool(nil), r.Rails...),
		})
	}
	return out
}
