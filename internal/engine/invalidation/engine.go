// Package invalidation computes the classes that must be recompiled after a build pass.
package invalidation

import (
	"cmp"
	"maps"
	"slices"

	"go.trai.ch/depcache/internal/core/domain"
)

// Graph answers direct reverse-dependency queries.
type Graph interface {
	ReverseDependents(id domain.SymbolID) []domain.SymbolID
}

// Change is the classified change of one class in a build pass.
type Change struct {
	Class domain.SymbolID
	Kind  domain.ChangeKind
	// Inlinable is set for constant-only changes whose values consumers may have inlined.
	Inlinable bool
}

// Cause explains why one class was marked.
type Cause struct {
	Kind domain.ReasonKind
	// Via is the class that propagated the mark, or NoSymbol for seeds.
	Via domain.SymbolID
	// Inlinable is copied from a constant-only seed.
	Inlinable bool
}

// Result is the recompilation set of one build pass.
type Result struct {
	// Affected is sorted and never contains removed classes.
	Affected []domain.SymbolID
	// Seeds holds the classes marked before propagation started.
	Seeds   []domain.SymbolID
	Reasons map[domain.SymbolID]Cause
	// Rounds is the number of propagation rounds until the fixpoint.
	Rounds int
}

// Engine propagates recompilation marks over a reverse-dependency graph.
type Engine struct {
	graph Graph
}

// New creates an engine over graph.
func New(graph Graph) *Engine {
	return &Engine{graph: graph}
}

// Compute seeds the recompilation set from changes and removed classes and
// grows it over reverse dependencies until no new class is added.
//
// Structural and constant-only changes both fan out to direct dependents.
// Consumers of an inlined constant carry no type reference to its owner, so the
// reverse index must already hold the references reported by the driver.
// Removed classes are never marked but seed their former direct dependents.
func (e *Engine) Compute(changes []Change, removed []domain.SymbolID) Result {
	gone := make(map[domain.SymbolID]struct{}, len(removed))
	for _, id := range removed {
		gone[id] = struct{}{}
	}

	reasons := make(map[domain.SymbolID]Cause)
	mark := func(id domain.SymbolID, cause Cause) bool {
		if _, isGone := gone[id]; isGone {
			return false
		}
		if _, seen := reasons[id]; seen {
			return false
		}
		reasons[id] = cause
		return true
	}

	sorted := slices.Clone(changes)
	slices.SortFunc(sorted, func(a, b Change) int { return cmp.Compare(a.Class, b.Class) })

	var frontier []domain.SymbolID
	for _, ch := range sorted {
		switch ch.Kind {
		case domain.ChangeStructural:
			if mark(ch.Class, Cause{Kind: domain.ReasonStructural}) {
				frontier = append(frontier, ch.Class)
			}
		case domain.ChangeConstantOnly:
			if mark(ch.Class, Cause{Kind: domain.ReasonConstant, Inlinable: ch.Inlinable}) {
				frontier = append(frontier, ch.Class)
			}
		}
	}

	for _, id := range domain.SortedSet(removed) {
		for _, dep := range e.graph.ReverseDependents(id) {
			if mark(dep, Cause{Kind: domain.ReasonRemovedDependency, Via: id}) {
				frontier = append(frontier, dep)
			}
		}
	}

	seeds := slices.Sorted(maps.Keys(reasons))

	rounds := 0
	for len(frontier) > 0 {
		rounds++
		var next []domain.SymbolID
		for _, id := range frontier {
			for _, dep := range e.graph.ReverseDependents(id) {
				if mark(dep, Cause{Kind: domain.ReasonDependent, Via: id}) {
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}

	return Result{
		Affected: slices.Sorted(maps.Keys(reasons)),
		Seeds:    seeds,
		Reasons:  reasons,
		Rounds:   rounds,
	}
}
