package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hostnav/internal/modules/tree/domain"
	treeout "hostnav/internal/modules/tree/port/out"
)

type fixtureFile struct {
	Hosts      []wireNode `yaml:"hosts"`
	RemoteApps []wireNode `yaml:"remote_apps"`
}

// FileNodeSource serves trees from a YAML fixture. It is re-read on every
// fetch so edits show up on refresh.
type FileNodeSource struct {
	path string
}

func NewFileNodeSource(path string) treeout.NodeSource {
	return &FileNodeSource{path: path}
}

func (s *FileNodeSource) FetchGrantedNodes(_ context.Context, async, _ bool) ([]domain.Descriptor, error) {
	fixture, err := s.load()
	if err != nil {
		return nil, err
	}
	if !async {
		return fromWire(fixture.Hosts), nil
	}
	roots := map[string]struct{}{}
	out := []wireNode{}
	for _, n := range fixture.Hosts {
		if n.PID == "" {
			roots[n.ID] = struct{}{}
			out = append(out, n)
		}
	}
	for _, n := range fixture.Hosts {
		if _, ok := roots[n.PID]; ok && n.PID != "" {
			out = append(out, n)
		}
	}
	return fromWire(out), nil
}

func (s *FileNodeSource) FetchNodeChildren(_ context.Context, key string) ([]domain.Descriptor, error) {
	fixture, err := s.load()
	if err != nil {
		return nil, err
	}
	out := []wireNode{}
	for _, n := range fixture.Hosts {
		if n.PID == key {
			out = append(out, n)
		}
	}
	return fromWire(out), nil
}

func (s *FileNodeSource) FetchGrantedRemoteApps(context.Context, bool) ([]domain.Descriptor, error) {
	fixture, err := s.load()
	if err != nil {
		return nil, err
	}
	return fromWire(fixture.RemoteApps), nil
}

func (s *FileNodeSource) FetchMatchingAssets(_ context.Context, keyword string) ([]domain.Descriptor, error) {
	fixture, err := s.load()
	if err != nil {
		return nil, err
	}
	kw := strings.ToLower(keyword)
	out := []wireNode{}
	for _, n := range fixture.Hosts {
		if n.IsParent || n.Meta == nil || n.Meta.Asset == nil {
			continue
		}
		if strings.Contains(strings.ToLower(n.Meta.Asset.Hostname), kw) || strings.Contains(strings.ToLower(n.Meta.Asset.IP), kw) {
			out = append(out, n)
		}
	}
	return fromWire(out), nil
}

func (s *FileNodeSource) load() (fixtureFile, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		return fixtureFile{}, fmt.Errorf("read fixture: %w", err)
	}
	fixture := fixtureFile{}
	dec := yaml.NewDecoder(bytes.NewReader(payload))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return fixtureFile{}, fmt.Errorf("decode fixture: %w", err)
	}
	return fixture, nil
}
