package ports

import (
	"time"

	"go.trai.ch/depcache/internal/core/domain"
)

// Metrics records build pass statistics.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ObservePass records one completed build pass.
	ObservePass(result *domain.PassResult, elapsed time.Duration)
	// ObserveCorruption records a discarded cache.
	ObserveCorruption()
	// Flush writes the collected metrics to the configured sink.
	Flush() error
}
