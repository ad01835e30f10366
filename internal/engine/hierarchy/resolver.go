// Package hierarchy resolves common superclasses for stack map frame computation.
package hierarchy

import "go.trai.ch/depcache/internal/core/domain"

// maxDepth bounds every supertype walk so a cyclic hierarchy cannot loop forever.
const maxDepth = 1024

// ClassLookup resolves the direct superclass of a known class.
type ClassLookup interface {
	// Supertype returns the superclass name ("" for the root), whether the class
	// is an interface, and false when the class is unknown.
	Supertype(name string) (super string, isInterface, ok bool)
}

// Resolver finds the nearest common superclass of two classes.
type Resolver struct {
	lookup ClassLookup
}

// NewResolver creates a resolver over lookup.
func NewResolver(lookup ClassLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// CommonSuperClass returns the nearest common ancestor of a and b.
// If either class is unknown or an interface the result is java/lang/Object,
// since the verifier cannot express a common interface.
func (r *Resolver) CommonSuperClass(a, b string) string {
	_, aIface, aOK := r.lookup.Supertype(a)
	_, bIface, bOK := r.lookup.Supertype(b)
	if !aOK || !bOK || aIface || bIface {
		return domain.ObjectClassName
	}

	ancestor := a
	for range maxDepth {
		if r.IsSubclass(b, ancestor) {
			return ancestor
		}
		super, _, ok := r.lookup.Supertype(ancestor)
		if !ok || super == "" {
			break
		}
		ancestor = super
	}
	return domain.ObjectClassName
}

// IsSubclass reports whether class equals ancestor or has it in its superclass chain.
func (r *Resolver) IsSubclass(class, ancestor string) bool {
	current := class
	for range maxDepth {
		if current == ancestor {
			return true
		}
		super, _, ok := r.lookup.Supertype(current)
		if !ok || super == "" {
			return false
		}
		current = super
	}
	return false
}

// Chain returns the superclass chain of class, starting with class itself.
// The walk stops at the first unknown class.
func (r *Resolver) Chain(class string) []string {
	chain := []string{class}
	current := class
	for range maxDepth {
		super, _, ok := r.lookup.Supertype(current)
		if !ok || super == "" {
			break
		}
		chain = append(chain, super)
		current = super
	}
	return chain
}
