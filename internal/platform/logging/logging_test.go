package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hostnav/internal/platform/logging"
)

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "hostnav.log")
	logger, closer, err := logging.New(path, true)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("filter tree", "kind", "hosts", "keyword", "web")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(payload), "filter tree") || !strings.Contains(string(payload), "keyword=web") {
		t.Fatalf("unexpected log content: %q", payload)
	}
}

func TestInfoLevelDropsDebug(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hostnav.log")
	logger, closer, err := logging.New(path, false)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	_ = closer.Close()
	payload, _ := os.ReadFile(path)
	if strings.Contains(string(payload), "hidden") || !strings.Contains(string(payload), "shown") {
		t.Fatalf("unexpected log content: %q", payload)
	}
}
