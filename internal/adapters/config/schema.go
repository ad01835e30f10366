package config

// Configfile represents the structure of depcache.yaml and depcache.toml.
type Configfile struct {
	Version        string       `yaml:"version" toml:"version"`
	CacheDir       string       `yaml:"cache_dir" toml:"cache_dir"`
	Backend        string       `yaml:"backend" toml:"backend"`
	ConstantPolicy string       `yaml:"constant_policy" toml:"constant_policy"`
	Workers        *int         `yaml:"workers" toml:"workers"`
	MaxPasses      int          `yaml:"max_passes" toml:"max_passes"`
	Exclude        []string     `yaml:"exclude" toml:"exclude"`
	Telemetry      TelemetryDTO `yaml:"telemetry" toml:"telemetry"`
	Metrics        MetricsDTO   `yaml:"metrics" toml:"metrics"`
	Watch          WatchDTO     `yaml:"watch" toml:"watch"`
}

// TelemetryDTO represents the telemetry section.
type TelemetryDTO struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" toml:"otlp_endpoint"`
}

// MetricsDTO represents the metrics section.
type MetricsDTO struct {
	Textfile string `yaml:"textfile" toml:"textfile"`
}

// WatchDTO represents the watch section. Durations use time.ParseDuration syntax.
type WatchDTO struct {
	Debounce    string `yaml:"debounce" toml:"debounce"`
	MinInterval string `yaml:"min_interval" toml:"min_interval"`
}
