package domain

import "time"

// Supported compiler backends.
const (
	BackendJavac = "javac"
	BackendECJ   = "ecj"
)

// Supported constant extraction policies.
const (
	PolicyJavac = "javac"
	PolicyNone  = "none"
)

// Config is the resolved project configuration.
type Config struct {
	// Root is the directory the configuration was discovered in.
	Root string
	// Path is the configuration file, empty when defaults are used.
	Path           string
	CacheDir       string
	Backend        string
	ConstantPolicy string
	Workers        int
	// MaxPasses bounds how many build passes one watch session may run. Zero is unbounded.
	MaxPasses int
	Exclude   []string
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
	Watch     WatchConfig
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	OTLPEndpoint string
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	Textfile string
}

// WatchConfig configures the watch loop.
type WatchConfig struct {
	Debounce    time.Duration
	MinInterval time.Duration
}

// CachePath returns the cache root, resolved against Root when relative.
func (c *Config) CachePath() string {
	return ResolvePath(c.Root, c.CacheDir)
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:           root,
		CacheDir:       DefaultCachePath(),
		Backend:        BackendJavac,
		ConstantPolicy: PolicyJavac,
		Workers:        4,
		MaxPasses:      0,
		Watch: WatchConfig{
			Debounce:    200 * time.Millisecond,
			MinInterval: time.Second,
		},
	}
}
