package invalidation

import (
	"slices"

	"go.trai.ch/depcache/internal/core/domain"
)

// Diff is the outcome of comparing two snapshots of one class.
type Diff struct {
	Kind domain.ChangeKind
	// Constants holds the names of fields whose constant value changed.
	Constants []domain.SymbolID
	// Inlinable is set when any changed constant may have been copied into consumers.
	Inlinable bool
}

// Change returns the engine input for class.
func (d Diff) Change(class domain.SymbolID) Change {
	return Change{Class: class, Kind: d.Kind, Inlinable: d.Inlinable}
}

// Classify returns how next differs from prev. A nil prev is a new class.
func Classify(prev *domain.ClassInfo, next domain.ClassInfo) domain.ChangeKind {
	return Compare(prev, next).Kind
}

// Compare diffs prev against next.
func Compare(prev *domain.ClassInfo, next domain.ClassInfo) Diff {
	if prev == nil {
		return Diff{Kind: domain.ChangeStructural}
	}
	if prev.Fingerprint != 0 && prev.Fingerprint == next.Fingerprint {
		return Diff{Kind: domain.ChangeNone}
	}
	if structuralChange(*prev, next) {
		return Diff{Kind: domain.ChangeStructural}
	}

	var d Diff
	for _, f := range next.Fields {
		old, _ := prev.Field(f.Name)
		if old.Constant.Equal(f.Constant) {
			continue
		}
		d.Constants = append(d.Constants, f.Name)
		if old.Constant.Inlinable() || f.Constant.Inlinable() {
			d.Inlinable = true
		}
	}
	if len(d.Constants) > 0 {
		d.Kind = domain.ChangeConstantOnly
	}
	return d
}

func structuralChange(prev, next domain.ClassInfo) bool {
	if prev.Super != next.Super || prev.Access != next.Access {
		return true
	}
	if !slices.Equal(domain.SortedSet(prev.Interfaces), domain.SortedSet(next.Interfaces)) {
		return true
	}
	return methodsChanged(prev.Methods, next.Methods) || fieldsChanged(prev.Fields, next.Fields)
}

type methodKey struct {
	name, desc domain.SymbolID
}

func methodsChanged(prev, next []domain.MethodInfo) bool {
	if len(prev) != len(next) {
		return true
	}
	index := make(map[methodKey]domain.MethodInfo, len(prev))
	for _, m := range prev {
		index[methodKey{m.Name, m.Descriptor}] = m
	}
	for _, m := range next {
		old, ok := index[methodKey{m.Name, m.Descriptor}]
		if !ok {
			return true
		}
		if old.Access != m.Access || old.Signature != m.Signature {
			return true
		}
		if !slices.Equal(domain.SortedSet(old.Exceptions), domain.SortedSet(m.Exceptions)) {
			return true
		}
		delete(index, methodKey{m.Name, m.Descriptor})
	}
	return len(index) != 0
}

func fieldsChanged(prev, next []domain.FieldInfo) bool {
	if len(prev) != len(next) {
		return true
	}
	index := make(map[domain.SymbolID]domain.FieldInfo, len(prev))
	for _, f := range prev {
		index[f.Name] = f
	}
	for _, f := range next {
		old, ok := index[f.Name]
		if !ok || old.Descriptor != f.Descriptor || old.Access != f.Access {
			return true
		}
		delete(index, f.Name)
	}
	return len(index) != 0
}
