package out

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"hostnav/internal/modules/connect/domain"
	connectout "hostnav/internal/modules/connect/port/out"
)

type FileManifestStore struct {
	pluginDir string
	path      string
}

// NewFileManifestStore reads <pluginDir>/plugins.json. Relative binaries
// resolve against pluginDir.
func NewFileManifestStore(pluginDir string) connectout.ManifestStore {
	return &FileManifestStore{pluginDir: pluginDir, path: filepath.Join(pluginDir, "plugins.json")}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read plugin manifest store: %w", err)
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode plugin manifests: %w", err)
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.pluginDir, manifests[i].Binary))
		}
	}
	return manifests, nil
}
