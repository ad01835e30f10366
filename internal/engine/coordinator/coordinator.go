// Package coordinator runs incremental build passes against the dependency cache.
package coordinator

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/depcache/internal/engine/depcache"
	"go.trai.ch/depcache/internal/engine/invalidation"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Coordinator turns build passes reported by the driver into recompilation sets
// and commits them to the cache and the persisted store.
type Coordinator struct {
	cache   *depcache.Cache
	parser  ports.ClassParser
	store   ports.CacheStore
	tracer  ports.Tracer
	logger  ports.Logger
	workers int

	// commitMu serializes apply, save and rollback of pending passes.
	commitMu sync.Mutex

	mu      sync.Mutex
	rebuild bool
}

// New creates a coordinator over cache. Parsing runs on up to workers goroutines.
func New(
	cache *depcache.Cache,
	parser ports.ClassParser,
	store ports.CacheStore,
	tracer ports.Tracer,
	logger ports.Logger,
	workers int,
) *Coordinator {
	return &Coordinator{
		cache:   cache,
		parser:  parser,
		store:   store,
		tracer:  tracer,
		logger:  logger,
		workers: max(workers, 1),
	}
}

// Cache returns the committed dependency cache.
func (c *Coordinator) Cache() *depcache.Cache {
	return c.cache
}

// Rebuilding reports whether the next pass starts from a discarded cache.
func (c *Coordinator) Rebuilding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuild
}

// Load restores the cache from the current persisted generation. A corrupted
// generation is discarded and the cache starts empty; the next pass then
// reports every supplied class as affected. It returns true in that case.
func (c *Coordinator) Load(ctx context.Context) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "load")
	defer span.End()

	snap, err := c.store.Load(ctx)
	if err == nil {
		err = c.cache.Restore(snap)
	}
	if err == nil {
		span.SetAttribute("depcache.generation", snap.Generation)
		span.SetAttribute("depcache.classes", len(snap.Classes))
		return false, nil
	}
	if !errors.Is(err, domain.ErrCacheCorrupted) {
		span.RecordError(err)
		return false, err
	}

	c.logger.Warn("discarding corrupted dependency cache")
	c.logger.Error(err)
	if discardErr := c.store.Discard(ctx); discardErr != nil {
		span.RecordError(discardErr)
		return false, discardErr
	}
	c.cache.Reset()

	c.mu.Lock()
	c.rebuild = true
	c.mu.Unlock()
	span.SetAttribute("depcache.rebuild", true)
	return true, nil
}

// Begin parses and classifies every class of pass and computes the classes that
// must be recompiled. Nothing is committed until PendingPass.Commit.
func (c *Coordinator) Begin(ctx context.Context, pass domain.Pass) (*PendingPass, error) {
	ctx, span := c.tracer.Start(ctx, "pass")
	defer span.End()
	span.SetAttribute("depcache.pass", pass.ID)
	span.SetAttribute("depcache.classes", len(pass.Classes))

	pending, err := c.begin(ctx, pass)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("depcache.affected", len(pending.result.Affected))
	span.SetAttribute("depcache.rounds", pending.result.Rounds)
	c.tracer.EmitPlan(ctx, pending.result.Affected)
	return pending, nil
}

func (c *Coordinator) begin(ctx context.Context, pass domain.Pass) (*PendingPass, error) {
	if last := c.cache.Pass(); pass.ID <= last {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrStalePass, "failed to begin pass"), "pass", pass.ID), "last", last)
	}
	if err := checkDuplicates(pass); err != nil {
		return nil, err
	}

	symbols := c.cache.Symbols()
	infos, err := c.parse(ctx, pass.Classes, symbols)
	if err != nil {
		return nil, err
	}

	changes, kinds := c.classify(ctx, infos)

	removed := c.removedIDs(pass.Removed, symbols)
	result := c.propagate(ctx, infos, changes, removed)

	out, err := c.report(pass, symbols, kinds, result)
	if err != nil {
		return nil, err
	}

	return &PendingPass{
		coord:   c,
		id:      pass.ID,
		puts:    infos,
		removes: removed,
		result:  out,
	}, nil
}

// checkDuplicates rejects a class reported twice, or both compiled and removed.
func checkDuplicates(pass domain.Pass) error {
	seen := make(map[string]struct{}, len(pass.Classes))
	for _, class := range pass.Classes {
		if _, dup := seen[class.Name]; dup {
			return zerr.With(zerr.Wrap(domain.ErrDuplicateClass, "failed to begin pass"), "class", class.Name)
		}
		seen[class.Name] = struct{}{}
	}
	for _, name := range pass.Removed {
		if _, dup := seen[name]; dup {
			return zerr.With(zerr.Wrap(domain.ErrDuplicateClass, "class is both compiled and removed"), "class", name)
		}
	}
	return nil
}

func (c *Coordinator) parse(
	ctx context.Context,
	classes []domain.CompiledClass,
	symbols *domain.SymbolTable,
) (map[domain.SymbolID]domain.ClassInfo, error) {
	ctx, span := c.tracer.Start(ctx, "parse", ports.WithInternal())
	defer span.End()

	parsed := make([]domain.ClassInfo, len(classes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, class := range classes {
		g.Go(func() error {
			info, err := c.parser.Parse(ctx, class, symbols)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to parse class"), "class", class.Name)
			}
			parsed[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	infos := make(map[domain.SymbolID]domain.ClassInfo, len(parsed))
	for i, info := range parsed {
		// Names may differ from the class file when the driver left them empty.
		if _, dup := infos[info.Name]; dup {
			return nil, zerr.With(zerr.Wrap(domain.ErrDuplicateClass, "failed to parse pass"), "index", i)
		}
		infos[info.Name] = info
	}
	return infos, nil
}

func (c *Coordinator) classify(
	ctx context.Context,
	infos map[domain.SymbolID]domain.ClassInfo,
) ([]invalidation.Change, map[domain.SymbolID]domain.ChangeKind) {
	_, span := c.tracer.Start(ctx, "classify", ports.WithInternal())
	defer span.End()

	changes := make([]invalidation.Change, 0, len(infos))
	kinds := make(map[domain.SymbolID]domain.ChangeKind, len(infos))
	for _, id := range slices.Sorted(maps.Keys(infos)) {
		var prev *domain.ClassInfo
		if old, err := c.cache.Get(id); err == nil {
			prev = &old
		}
		diff := invalidation.Compare(prev, infos[id])
		kinds[id] = diff.Kind
		changes = append(changes, diff.Change(id))
	}
	span.SetAttribute("depcache.changed", len(changes))
	return changes, kinds
}

// removedIDs returns the ids of removed classes that have a committed record.
func (c *Coordinator) removedIDs(names []string, symbols *domain.SymbolTable) []domain.SymbolID {
	var ids []domain.SymbolID
	for _, name := range names {
		if id, ok := symbols.Lookup(name); ok && c.cache.Contains(id) {
			ids = append(ids, id)
		}
	}
	return domain.SortedSet(ids)
}

func (c *Coordinator) propagate(
	ctx context.Context,
	infos map[domain.SymbolID]domain.ClassInfo,
	changes []invalidation.Change,
	removed []domain.SymbolID,
) invalidation.Result {
	_, span := c.tracer.Start(ctx, "propagate", ports.WithInternal())
	defer span.End()

	forward := make(map[domain.SymbolID][]domain.SymbolID, len(infos))
	for id, info := range infos {
		forward[id] = depcache.Edges(info)
	}
	result := invalidation.New(invalidation.WithEdges(c.cache, forward)).Compute(changes, removed)
	span.SetAttribute("depcache.seeds", len(result.Seeds))
	span.SetAttribute("depcache.rounds", result.Rounds)
	return result
}

// report resolves the engine result into the answer for the driver.
func (c *Coordinator) report(
	pass domain.Pass,
	symbols *domain.SymbolTable,
	kinds map[domain.SymbolID]domain.ChangeKind,
	result invalidation.Result,
) (*domain.PassResult, error) {
	out := &domain.PassResult{
		Pass:    pass.ID,
		Reasons: make(map[string]domain.Reason, len(result.Affected)),
		Changes: make(map[string]domain.ChangeKind, len(kinds)),
		Removed: slices.Compact(slices.Sorted(slices.Values(pass.Removed))),
		Rounds:  result.Rounds,
		Rebuild: c.Rebuilding(),
	}

	for id, kind := range kinds {
		name, err := symbols.Resolve(id)
		if err != nil {
			return nil, errors.Join(domain.ErrCacheCorrupted, err)
		}
		out.Changes[name] = kind
	}

	for _, id := range result.Affected {
		name, err := symbols.Resolve(id)
		if err != nil {
			return nil, errors.Join(domain.ErrCacheCorrupted, err)
		}
		cause := result.Reasons[id]
		reason := domain.Reason{Kind: cause.Kind}
		switch {
		case out.Rebuild:
			reason = domain.Reason{Kind: domain.ReasonRebuild}
		case cause.Via != domain.NoSymbol:
			if reason.Via, err = symbols.Resolve(cause.Via); err != nil {
				return nil, errors.Join(domain.ErrCacheCorrupted, err)
			}
		}
		out.Affected = append(out.Affected, name)
		out.Reasons[name] = reason
	}
	slices.Sort(out.Affected)
	return out, nil
}
