// Package domain contains the metadata model and the symbol table of the dependency cache.
package domain

import (
	"sync"

	"go.trai.ch/zerr"
)

// SymbolID is a dense identifier for an interned string.
type SymbolID uint32

// NoSymbol is the "none" sentinel. It is never returned by Intern.
const NoSymbol SymbolID = 0

// SymbolTable interns qualified names and descriptors into dense ids.
// Ids start at 1 and are never reused within a generation.
type SymbolTable struct {
	mu    sync.RWMutex
	ids   map[string]SymbolID
	names []string
}

// NewSymbolTable creates an empty SymbolTable.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		ids: make(map[string]SymbolID),
	}
}

// NewSymbolTableFrom restores a table from persisted names, where names[i] has id i+1.
// A duplicate name means the persisted segment is corrupted.
func NewSymbolTableFrom(names []string) (*SymbolTable, error) {
	t := &SymbolTable{
		ids:   make(map[string]SymbolID, len(names)),
		names: make([]string, 0, len(names)),
	}
	for i, name := range names {
		if _, exists := t.ids[name]; exists {
			return nil, zerr.With(zerr.Wrap(ErrCacheCorrupted, "duplicate symbol"), "id", i+1)
		}
		t.names = append(t.names, name)
		t.ids[name] = SymbolID(i + 1)
	}
	return t, nil
}

// Intern returns the id for s, assigning the next id if s has not been seen.
func (t *SymbolTable) Intern(s string) SymbolID {
	t.mu.RLock()
	id, ok := t.ids[s]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[s]; ok {
		return id
	}
	t.names = append(t.names, s)
	id = SymbolID(len(t.names))
	t.ids[s] = id
	return id
}

// Lookup returns the id for s without interning it.
func (t *SymbolTable) Lookup(s string) (SymbolID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.ids[s]
	return id, ok
}

// Resolve returns the string for id.
// It fails with ErrUnknownSymbol when id was never interned in this generation.
func (t *SymbolTable) Resolve(id SymbolID) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id == NoSymbol || int(id) > len(t.names) {
		return "", zerr.With(zerr.Wrap(ErrUnknownSymbol, "failed to resolve symbol"), "id", uint32(id))
	}
	return t.names[id-1], nil
}

// Contains reports whether id was interned in this generation.
func (t *SymbolTable) Contains(id SymbolID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return id != NoSymbol && int(id) <= len(t.names)
}

// Len returns the number of interned symbols.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Names returns a copy of all interned strings ordered by id.
func (t *SymbolTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}
