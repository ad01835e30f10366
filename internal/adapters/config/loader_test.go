package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depcache/internal/adapters/config"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	return config.NewLoader(logger), logger
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	loader, _ := newLoader(t)

	cfg, err := loader.Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultConfig(tmpDir), cfg)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, filepath.Join(tmpDir, domain.CacheDirName), cfg.CachePath())
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, domain.ConfigFileName), `
version: "1"
cache_dir: build/depcache
backend: ecj
constant_policy: none
workers: 8
max_passes: 3
exclude:
  - "**/generated/**"
telemetry:
  otlp_endpoint: localhost:4317
metrics:
  textfile: metrics/depcache.prom
watch:
  debounce: 50ms
  min_interval: 2s
`)
	loader, _ := newLoader(t)

	cfg, err := loader.Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, tmpDir, cfg.Root)
	assert.Equal(t, filepath.Join(tmpDir, domain.ConfigFileName), cfg.Path)
	assert.Equal(t, filepath.Join(tmpDir, "build", "depcache"), cfg.CachePath())
	assert.Equal(t, domain.BackendECJ, cfg.Backend)
	assert.Equal(t, domain.PolicyNone, cfg.ConstantPolicy)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxPasses)
	assert.Equal(t, []string{"**/generated/**"}, cfg.Exclude)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, "metrics/depcache.prom", cfg.Metrics.Textfile)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 2*time.Second, cfg.Watch.MinInterval)
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, domain.ConfigTOMLFileName), `
version = "1"
backend = "javac"
workers = 2

[watch]
debounce = "1s"
`)
	loader, _ := newLoader(t)

	cfg, err := loader.Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, domain.BackendJavac, cfg.Backend)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, time.Second, cfg.Watch.MinInterval)
}

func TestLoad_YAMLTakesPrecedenceOverTOML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, domain.ConfigFileName), "workers: 3\n")
	writeFile(t, filepath.Join(tmpDir, domain.ConfigTOMLFileName), "workers = 5\n")
	loader, _ := newLoader(t)

	cfg, err := loader.Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoad_Discovery(t *testing.T) {
	t.Parallel()

	// root/
	//   depcache.yaml
	//   module/src/ (cwd)
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, domain.ConfigFileName), "cache_dir: .cache\n")
	srcDir := filepath.Join(tmpDir, "module", "src")
	require.NoError(t, os.MkdirAll(srcDir, domain.DirPerm))

	loader, _ := newLoader(t)

	cfg, err := loader.Load(srcDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, cfg.Root)
	assert.Equal(t, filepath.Join(tmpDir, ".cache"), cfg.CachePath())

	root, err := loader.DiscoverRoot(srcDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestDiscoverRoot_NoConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	loader, _ := newLoader(t)

	root, err := loader.DiscoverRoot(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestLoad_UnknownVersionWarns(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, domain.ConfigFileName), "version: \"2\"\n")
	loader, logger := newLoader(t)
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	_, err := loader.Load(tmpDir)
	require.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
		msg     string
	}{
		{name: "backend", content: "backend: kotlinc\n", want: domain.ErrInvalidBackend},
		{name: "constant policy", content: "constant_policy: always\n", want: domain.ErrInvalidConstantPolicy},
		{name: "zero workers", content: "workers: 0\n", want: domain.ErrInvalidWorkers},
		{name: "negative passes", content: "max_passes: -1\n", want: domain.ErrConfigParseFailed},
		{name: "exclude glob", content: "exclude: [\"[z-a]\"]\n", want: domain.ErrInvalidExcludePattern},
		{name: "duration", content: "watch:\n  debounce: soon\n", want: domain.ErrConfigParseFailed},
		{name: "syntax", content: "workers: [\n", msg: domain.ErrConfigParseFailed.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, domain.ConfigFileName), tt.content)
			loader, _ := newLoader(t)

			cfg, err := loader.Load(tmpDir)
			require.Error(t, err)
			assert.Nil(t, cfg)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
			}
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}
		})
	}
}
