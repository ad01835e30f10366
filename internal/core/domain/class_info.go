package domain

import (
	"slices"
)

// AccessFlags holds JVM access and property flags.
type AccessFlags uint16

// JVM access flag bit values. Some bits are shared between classes, fields and methods.
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

// Has reports whether every bit of f is set.
func (a AccessFlags) Has(f AccessFlags) bool {
	return a&f == f
}

// FieldInfo describes one field of a class.
// Constant is non-Empty only for compile-time constant static final fields.
type FieldInfo struct {
	Name       SymbolID
	Descriptor SymbolID
	Access     AccessFlags
	Constant   ConstantValue
}

// Clone returns a deep copy of the field.
func (f FieldInfo) Clone() FieldInfo {
	f.Constant = f.Constant.Clone()
	return f
}

// MethodInfo describes one method of a class.
type MethodInfo struct {
	Name       SymbolID
	Descriptor SymbolID
	// Params holds one interned type descriptor per decoded parameter.
	Params []SymbolID
	// Return is the interned return type descriptor, or NoSymbol when unknown.
	Return     SymbolID
	Exceptions []SymbolID
	Access     AccessFlags
	// Signature is the generic signature, or NoSymbol when absent.
	Signature SymbolID
	// ParamsUnknown marks a member whose descriptor could not be decoded.
	ParamsUnknown bool
}

// Clone returns a deep copy of the method.
func (m MethodInfo) Clone() MethodInfo {
	m.Params = slices.Clone(m.Params)
	m.Exceptions = slices.Clone(m.Exceptions)
	return m
}

// ClassInfo is the metadata snapshot of one compiled class.
type ClassInfo struct {
	Name SymbolID
	// Super is NoSymbol for the root of the hierarchy.
	Super SymbolID
	// Interfaces is a sorted set.
	Interfaces  []SymbolID
	Fields      []FieldInfo
	Methods     []MethodInfo
	Access      AccessFlags
	Fingerprint uint64
	// References is the sorted set of every class this class depends on.
	References []SymbolID
}

// IsInterface reports whether the class is an interface or annotation type.
func (c ClassInfo) IsInterface() bool {
	return c.Access.Has(AccInterface)
}

// Clone returns a deep copy of the class.
func (c ClassInfo) Clone() ClassInfo {
	out := c
	out.Interfaces = slices.Clone(c.Interfaces)
	out.References = slices.Clone(c.References)
	if c.Fields != nil {
		out.Fields = make([]FieldInfo, len(c.Fields))
		for i, f := range c.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	if c.Methods != nil {
		out.Methods = make([]MethodInfo, len(c.Methods))
		for i, m := range c.Methods {
			out.Methods[i] = m.Clone()
		}
	}
	return out
}

// Field returns the field with the given name.
func (c ClassInfo) Field(name SymbolID) (FieldInfo, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// SymbolIDs returns every symbol id the record refers to, in no particular order.
// NoSymbol entries are omitted.
func (c ClassInfo) SymbolIDs() []SymbolID {
	ids := make([]SymbolID, 0, 2+len(c.Interfaces)+len(c.References)+2*len(c.Fields)+4*len(c.Methods))
	add := func(id SymbolID) {
		if id != NoSymbol {
			ids = append(ids, id)
		}
	}
	add(c.Name)
	add(c.Super)
	for _, id := range c.Interfaces {
		add(id)
	}
	for _, id := range c.References {
		add(id)
	}
	for _, f := range c.Fields {
		add(f.Name)
		add(f.Descriptor)
		for _, id := range f.Constant.Symbols() {
			add(id)
		}
	}
	for _, m := range c.Methods {
		add(m.Name)
		add(m.Descriptor)
		add(m.Return)
		add(m.Signature)
		for _, id := range m.Params {
			add(id)
		}
		for _, id := range m.Exceptions {
			add(id)
		}
	}
	return ids
}

// SortedSet sorts ids and removes duplicates and NoSymbol entries.
// The result never aliases the input.
func SortedSet(ids []SymbolID) []SymbolID {
	out := make([]SymbolID, 0, len(ids))
	for _, id := range ids {
		if id != NoSymbol {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
