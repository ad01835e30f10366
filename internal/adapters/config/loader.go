// Package config provides the configuration loader for depcache.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using depcache.yaml or depcache.toml.
type Loader struct {
	Logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers the configuration walking up from cwd and applies it over the defaults.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	configPath, ok := findConfiguration(cwd)
	if !ok {
		return domain.DefaultConfig(cwd), nil
	}

	var file Configfile
	if err := readAndUnmarshal(configPath, &file); err != nil {
		return nil, err
	}

	cfg := domain.DefaultConfig(filepath.Dir(configPath))
	cfg.Path = configPath
	if err := l.apply(cfg, &file); err != nil {
		return nil, zerr.With(err, "config", configPath)
	}
	return cfg, nil
}

// DiscoverRoot returns the directory holding the nearest configuration file, or cwd.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, ok := findConfiguration(cwd)
	if !ok {
		return cwd, nil
	}
	return filepath.Dir(configPath), nil
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := filepath.Clean(cwd)
	for {
		for _, name := range []string{domain.ConfigFileName, domain.ConfigTOMLFileName} {
			candidate := filepath.Join(currentDir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) apply(cfg *domain.Config, file *Configfile) error {
	if file.CacheDir != "" {
		cfg.CacheDir = file.CacheDir
	}

	if file.Backend != "" {
		switch file.Backend {
		case domain.BackendJavac, domain.BackendECJ:
			cfg.Backend = file.Backend
		default:
			return zerr.With(zerr.Wrap(domain.ErrInvalidBackend, "invalid configuration"), "backend", file.Backend)
		}
	}

	if file.ConstantPolicy != "" {
		switch file.ConstantPolicy {
		case domain.PolicyJavac, domain.PolicyNone:
			cfg.ConstantPolicy = file.ConstantPolicy
		default:
			return zerr.With(
				zerr.Wrap(domain.ErrInvalidConstantPolicy, "invalid configuration"),
				"constant_policy", file.ConstantPolicy,
			)
		}
	}

	if file.Workers != nil {
		if *file.Workers <= 0 {
			return zerr.With(zerr.Wrap(domain.ErrInvalidWorkers, "invalid configuration"), "workers", *file.Workers)
		}
		cfg.Workers = *file.Workers
	}

	if file.MaxPasses < 0 {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "max_passes must not be negative"), "max_passes", file.MaxPasses)
	}
	cfg.MaxPasses = file.MaxPasses

	for _, pattern := range file.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidExcludePattern, err.Error()), "pattern", pattern)
		}
	}
	cfg.Exclude = file.Exclude

	cfg.Telemetry.OTLPEndpoint = file.Telemetry.OTLPEndpoint
	cfg.Metrics.Textfile = file.Metrics.Textfile

	var err error
	if cfg.Watch.Debounce, err = parseDuration("watch.debounce", file.Watch.Debounce, cfg.Watch.Debounce); err != nil {
		return err
	}
	if cfg.Watch.MinInterval, err = parseDuration("watch.min_interval", file.Watch.MinInterval, cfg.Watch.MinInterval); err != nil {
		return err
	}

	if file.Version != "" && file.Version != "1" {
		l.Logger.Warn(fmt.Sprintf("unknown config version %q, reading it as version 1", file.Version))
	}
	return nil
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "invalid duration"), key, value)
	}
	return d, nil
}

// readAndUnmarshal reads a YAML or TOML file, picked by extension, into target.
func readAndUnmarshal[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by walking up from cwd
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "config", configPath)
	}

	var parseErr error
	if filepath.Ext(configPath) == ".toml" {
		parseErr = toml.Unmarshal(configFile, target)
	} else {
		parseErr = yaml.Unmarshal(configFile, target)
	}
	if parseErr != nil {
		return zerr.With(zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error()), "config", configPath)
	}
	return nil
}
