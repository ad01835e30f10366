package ports

import "go.trai.ch/depcache/internal/core/domain"

// Reporter renders command results for the user or the build driver.
//
//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks
type Reporter interface {
	// Pass renders the recompilation set of one build pass.
	Pass(result *domain.PassResult) error
	// Dependents renders the classes that depend on class.
	Dependents(class string, dependents []string) error
	// Class renders one committed class record.
	Class(view domain.ClassView) error
	// Supertype renders the common superclass of a and b.
	Supertype(a, b, common string) error
}
