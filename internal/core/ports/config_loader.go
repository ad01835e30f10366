package ports

import "go.trai.ch/depcache/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration walking up from cwd.
	// Defaults are returned when no configuration file exists.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to find the directory holding the configuration file.
	// It returns cwd when none is found.
	DiscoverRoot(cwd string) (string, error)
}
