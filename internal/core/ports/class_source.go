package ports

import (
	"context"

	"go.trai.ch/depcache/internal/core/domain"
)

// ClassSource collects compiled classes from the file system.
//
//go:generate mockgen -source=class_source.go -destination=mocks/mock_class_source.go -package=mocks
type ClassSource interface {
	// Collect walks dir and returns every class file below it, sorted by class name.
	Collect(ctx context.Context, dir string) ([]domain.CompiledClass, error)

	// Read loads the given root-relative class files below dir. Missing files are
	// returned as removed internal class names.
	Read(ctx context.Context, dir string, paths []string) ([]domain.CompiledClass, []string, error)

	// LoadReferences reads a manifest mapping class names to the classes they depend on.
	LoadReferences(path string) (map[string][]string, error)
}
