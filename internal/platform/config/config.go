package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	SourceAPI  = "api"
	SourceFile = "file"

	DefaultDataDir = "~/.hostnav"
	TokenEnv       = "HOSTNAV_TOKEN"
)

type Server struct {
	URL               string        `yaml:"url"`
	Token             string        `yaml:"token"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

type Tree struct {
	LoadAsync bool          `yaml:"load_async"`
	SearchTTL time.Duration `yaml:"search_ttl"`
}

type Config struct {
	DataDir     string `yaml:"-"`
	DBPath      string `yaml:"-"`
	LogPath     string `yaml:"-"`
	PluginDir   string `yaml:"-"`
	Source      string `yaml:"source"`
	FixturePath string `yaml:"fixture"`
	Server      Server `yaml:"server"`
	Tree        Tree   `yaml:"tree"`
	Debug       bool   `yaml:"debug"`
}

// Overrides carries command-line values; nil fields leave the loaded value
// untouched.
type Overrides struct {
	Server  *string
	Source  *string
	Fixture *string
	Async   *bool
	Debug   *bool
}

func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	dir, err := homedir.Expand(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("expand data dir: %w", err)
	}
	return Config{
		DataDir:   dir,
		DBPath:    filepath.Join(dir, "hostnav.db"),
		LogPath:   filepath.Join(dir, "hostnav.log"),
		PluginDir: filepath.Join(dir, "plugins"),
		Source:    SourceAPI,
		Server: Server{
			Timeout: 15 * time.Second,
		},
		Tree: Tree{
			SearchTTL: 30 * time.Second,
		},
	}, nil
}

// Load layers defaults, the YAML file and the environment. An empty
// configPath means <data>/config.yaml, which may be absent.
func Load(dataDir, configPath string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(cfg.DataDir, "config.yaml")
	}
	configPath, err = homedir.Expand(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("expand config path: %w", err)
	}
	payload, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if token := os.Getenv(TokenEnv); token != "" {
		cfg.Server.Token = token
	}
	if cfg.FixturePath != "" {
		if cfg.FixturePath, err = homedir.Expand(cfg.FixturePath); err != nil {
			return Config{}, fmt.Errorf("expand fixture path: %w", err)
		}
	}
	return cfg, nil
}

func (c *Config) Apply(o Overrides) {
	if o.Server != nil {
		c.Server.URL = *o.Server
	}
	if o.Source != nil {
		c.Source = *o.Source
	}
	if o.Fixture != nil {
		c.FixturePath = *o.Fixture
	}
	if o.Async != nil {
		c.Tree.LoadAsync = *o.Async
	}
	if o.Debug != nil {
		c.Debug = *o.Debug
	}
}

func (c Config) Validate() error {
	switch c.Source {
	case SourceAPI:
		if strings.TrimSpace(c.Server.URL) == "" {
			return fmt.Errorf("server url is required for source %q", SourceAPI)
		}
	case SourceFile:
		if strings.TrimSpace(c.FixturePath) == "" {
			return fmt.Errorf("fixture path is required for source %q", SourceFile)
		}
	default:
		return fmt.Errorf("unsupported source %q", c.Source)
	}
	if c.Server.Timeout < 0 || c.Tree.SearchTTL < 0 {
		return fmt.Errorf("durations must be non-negative")
	}
	return nil
}
