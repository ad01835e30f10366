// Package depcache holds the committed class metadata and the reverse-dependency index.
package depcache

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// CommitStage names the step of a commit at which a CommitHook runs.
type CommitStage uint8

const (
	// StageRecord runs before each put record is staged.
	StageRecord CommitStage = iota
	// StageIndex runs after the reverse index is rebuilt and before the swap.
	StageIndex
)

// CommitHook is invoked while a commit is staged. A non-nil error aborts the commit.
type CommitHook func(stage CommitStage, class domain.SymbolID) error

// Option configures a Cache.
type Option func(*Cache)

// WithCommitHook installs a hook that runs during every commit.
func WithCommitHook(hook CommitHook) Option {
	return func(c *Cache) {
		c.hook = hook
	}
}

// Cache maps class ids to their latest committed ClassInfo.
// Readers share the lock; a commit stages the new state off to the side and
// swaps it in under the write lock, so a failed commit is never observable.
type Cache struct {
	// commitMu serializes writers so staging always starts from the latest state.
	commitMu sync.Mutex

	mu         sync.RWMutex
	symbols    *domain.SymbolTable
	records    map[domain.SymbolID]domain.ClassInfo
	reverse    map[domain.SymbolID][]domain.SymbolID
	generation uint32
	pass       uint64

	hook CommitHook
}

// New creates an empty cache over symbols. A nil table starts a fresh one.
func New(symbols *domain.SymbolTable, opts ...Option) *Cache {
	if symbols == nil {
		symbols = domain.NewSymbolTable()
	}
	c := &Cache{
		symbols: symbols,
		records: make(map[domain.SymbolID]domain.ClassInfo),
		reverse: make(map[domain.SymbolID][]domain.SymbolID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Symbols returns the symbol table of the current generation.
func (c *Cache) Symbols() *domain.SymbolTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbols
}

// Get returns a copy of the committed record for id.
func (c *Cache) Get(id domain.SymbolID) (domain.ClassInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.records[id]
	if !ok {
		return domain.ClassInfo{}, zerr.With(zerr.Wrap(domain.ErrClassNotFound, "failed to get class"), "id", uint32(id))
	}
	return info.Clone(), nil
}

// GetByName returns a copy of the committed record for the internal class name.
func (c *Cache) GetByName(name string) (domain.ClassInfo, error) {
	c.mu.RLock()
	id, ok := c.symbols.Lookup(name)
	var info domain.ClassInfo
	if ok {
		info, ok = c.records[id]
	}
	c.mu.RUnlock()
	if !ok {
		return domain.ClassInfo{}, zerr.With(zerr.Wrap(domain.ErrClassNotFound, "failed to get class"), "class", name)
	}
	return info.Clone(), nil
}

// Contains reports whether a record is committed for id.
func (c *Cache) Contains(id domain.SymbolID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[id]
	return ok
}

// ReverseDependents returns the sorted ids of classes that directly reference id.
func (c *Cache) ReverseDependents(id domain.SymbolID) []domain.SymbolID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.reverse[id])
}

// Dependencies returns the sorted ids of classes id directly references.
func (c *Cache) Dependencies(id domain.SymbolID) []domain.SymbolID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.records[id]
	if !ok {
		return nil
	}
	return dependencies(info)
}

// Len returns the number of committed records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Classes returns the sorted ids of all committed records.
func (c *Cache) Classes() []domain.SymbolID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.records))
}

// Generation returns the persisted generation the cache belongs to, or 0 if none yet.
func (c *Cache) Generation() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// SetGeneration records the generation the cache was persisted into.
func (c *Cache) SetGeneration(gen uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation = gen
}

// Pass returns the id of the last committed build pass.
func (c *Cache) Pass() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pass
}

// PutAll atomically replaces the given records and rebuilds the reverse index.
func (c *Cache) PutAll(puts map[domain.SymbolID]domain.ClassInfo) error {
	return c.apply(0, puts, nil)
}

// Remove deletes the record for id and rebuilds the reverse index.
func (c *Cache) Remove(id domain.SymbolID) error {
	if !c.Contains(id) {
		return zerr.With(zerr.Wrap(domain.ErrClassNotFound, "failed to remove class"), "id", uint32(id))
	}
	return c.apply(0, nil, []domain.SymbolID{id})
}

// Apply commits puts and removes of build pass pass as one atomic step.
// Removing an id that is not committed is a no-op.
func (c *Cache) Apply(pass uint64, puts map[domain.SymbolID]domain.ClassInfo, removes []domain.SymbolID) error {
	return c.apply(pass, puts, removes)
}

func (c *Cache) apply(pass uint64, puts map[domain.SymbolID]domain.ClassInfo, removes []domain.SymbolID) error {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	c.mu.RLock()
	symbols := c.symbols
	next := maps.Clone(c.records)
	c.mu.RUnlock()

	for _, id := range removes {
		delete(next, id)
	}

	for _, id := range slices.Sorted(maps.Keys(puts)) {
		info := puts[id]
		if info.Name != id {
			err := zerr.With(zerr.New("record key does not match class name"), "name", uint32(info.Name))
			return corrupted(err, id)
		}
		if err := validate(symbols, info); err != nil {
			return err
		}
		if err := c.runHook(StageRecord, id); err != nil {
			return err
		}
		next[id] = normalize(info)
	}

	reverse := buildReverse(next)
	if err := c.runHook(StageIndex, domain.NoSymbol); err != nil {
		return err
	}

	c.mu.Lock()
	c.records = next
	c.reverse = reverse
	if pass > c.pass {
		c.pass = pass
	}
	c.mu.Unlock()
	return nil
}

func (c *Cache) runHook(stage CommitStage, id domain.SymbolID) error {
	if c.hook == nil {
		return nil
	}
	return c.hook(stage, id)
}

// Snapshot returns the persisted form of the current state.
func (c *Cache) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(c.records))
	classes := make([]domain.ClassInfo, len(ids))
	for i, id := range ids {
		classes[i] = c.records[id].Clone()
	}
	return domain.Snapshot{
		Generation: c.generation,
		Pass:       c.pass,
		Symbols:    c.symbols.Names(),
		Classes:    classes,
	}
}

// Restore replaces the whole state with snap. Every record is validated first;
// a dangling symbol id or a duplicate record fails with ErrCacheCorrupted and
// leaves the cache untouched.
func (c *Cache) Restore(snap domain.Snapshot) error {
	symbols, err := domain.NewSymbolTableFrom(snap.Symbols)
	if err != nil {
		return err
	}

	records := make(map[domain.SymbolID]domain.ClassInfo, len(snap.Classes))
	for _, info := range snap.Classes {
		if err := validate(symbols, info); err != nil {
			return err
		}
		if _, dup := records[info.Name]; dup {
			return corrupted(zerr.New("duplicate class record"), info.Name)
		}
		records[info.Name] = normalize(info)
	}
	reverse := buildReverse(records)

	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symbols = symbols
	c.records = records
	c.reverse = reverse
	c.generation = snap.Generation
	c.pass = snap.Pass
	return nil
}

// Reset drops all state and starts a fresh symbol table for a full rebuild.
func (c *Cache) Reset() {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symbols = domain.NewSymbolTable()
	c.records = make(map[domain.SymbolID]domain.ClassInfo)
	c.reverse = make(map[domain.SymbolID][]domain.SymbolID)
	c.generation = 0
	c.pass = 0
}

// Supertype returns the superclass name of a committed class and whether it is an interface.
func (c *Cache) Supertype(name string) (super string, isInterface, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, found := c.symbols.Lookup(name)
	if !found {
		return "", false, false
	}
	info, found := c.records[id]
	if !found {
		return "", false, false
	}
	if info.Super != domain.NoSymbol {
		s, err := c.symbols.Resolve(info.Super)
		if err != nil {
			return "", false, false
		}
		super = s
	}
	return super, info.IsInterface(), true
}

// validate checks that every id in info was interned in symbols.
func validate(symbols *domain.SymbolTable, info domain.ClassInfo) error {
	if info.Name == domain.NoSymbol {
		return corrupted(zerr.New("class record without name"), info.Name)
	}
	for _, id := range info.SymbolIDs() {
		if _, err := symbols.Resolve(id); err != nil {
			return corrupted(err, info.Name)
		}
	}
	return nil
}

// corrupted escalates err to ErrCacheCorrupted while keeping err in the chain.
func corrupted(err error, class domain.SymbolID) error {
	return zerr.With(errors.Join(domain.ErrCacheCorrupted, err), "class", uint32(class))
}

func normalize(info domain.ClassInfo) domain.ClassInfo {
	out := info.Clone()
	out.Interfaces = domain.SortedSet(out.Interfaces)
	out.References = slices.DeleteFunc(domain.SortedSet(out.References), func(id domain.SymbolID) bool {
		return id == out.Name
	})
	return out
}

// Edges returns the forward edges info contributes to the reverse index.
func Edges(info domain.ClassInfo) []domain.SymbolID {
	return dependencies(info)
}

// dependencies returns the forward edges of info: its references plus the
// supertype, interfaces and thrown exceptions, without self edges.
func dependencies(info domain.ClassInfo) []domain.SymbolID {
	deps := make([]domain.SymbolID, 0, len(info.References)+len(info.Interfaces)+1)
	deps = append(deps, info.References...)
	deps = append(deps, info.Super)
	deps = append(deps, info.Interfaces...)
	for _, m := range info.Methods {
		deps = append(deps, m.Exceptions...)
	}
	return slices.DeleteFunc(domain.SortedSet(deps), func(id domain.SymbolID) bool {
		return id == info.Name
	})
}

// buildReverse computes the exact transpose of the forward edges of records.
func buildReverse(records map[domain.SymbolID]domain.ClassInfo) map[domain.SymbolID][]domain.SymbolID {
	reverse := make(map[domain.SymbolID][]domain.SymbolID)
	for _, id := range slices.Sorted(maps.Keys(records)) {
		for _, dep := range dependencies(records[id]) {
			reverse[dep] = append(reverse[dep], id)
		}
	}
	return reverse
}
