package invalidation

import (
	"slices"

	"go.trai.ch/depcache/internal/core/domain"
)

// overlay adds the edges of not yet committed records to a committed graph.
type overlay struct {
	base  Graph
	extra map[domain.SymbolID][]domain.SymbolID
}

// WithEdges returns a graph reporting the dependents of base plus the reverse of
// forward, where forward maps a pending class to the classes it references.
func WithEdges(base Graph, forward map[domain.SymbolID][]domain.SymbolID) Graph {
	extra := make(map[domain.SymbolID][]domain.SymbolID)
	for from, targets := range forward {
		for _, to := range targets {
			if to != from {
				extra[to] = append(extra[to], from)
			}
		}
	}
	return overlay{base: base, extra: extra}
}

func (o overlay) ReverseDependents(id domain.SymbolID) []domain.SymbolID {
	deps := o.base.ReverseDependents(id)
	if more, ok := o.extra[id]; ok {
		deps = domain.SortedSet(slices.Concat(deps, more))
	}
	return deps
}
