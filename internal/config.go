package internal

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

const (
	AppName        = "treegrep"
	ConfigFileName = "config.yaml"
)

// FileConfig is the optional YAML config. Empty fields keep the defaults.
type FileConfig struct {
	Extensions       []string `yaml:"extensions"`
	IgnoreDirs       []string `yaml:"ignore_dirs"`
	ArtifactSuffixes []string `yaml:"artifact_suffixes"`
	SpecialNames     []string `yaml:"special_names"`
	Editor           string   `yaml:"editor"`
	Color            string   `yaml:"color"`
}

// DefaultConfigPath is $XDG_CONFIG_HOME/treegrep/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// LoadConfig reads path. A missing file yields ErrConfigNotFound.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, Wrap(err, ErrConfigInvalid, path, "read config")
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, Wrap(err, ErrConfigInvalid, path, "parse config")
	}
	logrus.WithField("path", path).Debug("config loaded")
	return &cfg, nil
}

// ResolveConfig loads explicit when set (it must exist), otherwise the
// default location, where absence is not an error.
func ResolveConfig(explicit string) (*FileConfig, error) {
	if explicit != "" {
		cfg, err := LoadConfig(explicit)
		if errors.Is(err, ErrConfigNotFound) {
			return nil, NewConfigError("config file %s not found", explicit)
		}
		return cfg, err
	}
	cfg, err := LoadConfig(DefaultConfigPath())
	if errors.Is(err, ErrConfigNotFound) {
		return &FileConfig{}, nil
	}
	return cfg, err
}

// Apply overlays non-empty config lists on opts. Extensions are normalized.
func (c *FileConfig) Apply(opts *ScanOptions) error {
	if len(c.Extensions) > 0 {
		exts, err := NormalizeExtensions(c.Extensions)
		if err != nil {
			return err
		}
		opts.Extensions = exts
	}
	if len(c.IgnoreDirs) > 0 {
		opts.IgnoredRootDirs = c.IgnoreDirs
	}
	if len(c.ArtifactSuffixes) > 0 {
		opts.ArtifactSuffixes = c.ArtifactSuffixes
	}
	if len(c.SpecialNames) > 0 {
		opts.SpecialNames = c.SpecialNames
	}
	return nil
}
