// Package app implements the application layer for depcache.
package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.trai.ch/depcache/internal/adapters/telemetry"
	"go.trai.ch/depcache/internal/adapters/watcher"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/depcache/internal/engine/coordinator"
	"go.trai.ch/depcache/internal/engine/hierarchy"
	"go.trai.ch/zerr"
	"golang.org/x/time/rate"
)

// App represents the main application logic.
type App struct {
	config  *domain.Config
	coord   *coordinator.Coordinator
	source  ports.ClassSource
	store   ports.CacheStore
	metrics ports.Metrics
	watcher ports.Watcher
	logger  ports.Logger

	loadOnce sync.Once
	loadErr  error
}

// New creates a new App instance.
func New(
	cfg *domain.Config,
	coord *coordinator.Coordinator,
	source ports.ClassSource,
	store ports.CacheStore,
	metrics ports.Metrics,
	watch ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		config:  cfg,
		coord:   coord,
		source:  source,
		store:   store,
		metrics: metrics,
		watcher: watch,
		logger:  log,
	}
}

// Config returns the resolved project configuration.
func (a *App) Config() *domain.Config {
	return a.config
}

// StartTelemetry installs the trace provider configured for the project.
// The returned function flushes pending spans.
func (a *App) StartTelemetry(ctx context.Context) (func(context.Context) error, error) {
	return telemetry.Setup(ctx, a.config.Telemetry)
}

// PassOptions configuration for the Pass method.
type PassOptions struct {
	// Dir is the classes directory the compiler wrote to.
	Dir string
	// ID is the build pass id. Zero continues after the last committed pass.
	ID uint64
	// Refs is an optional references manifest written by the build driver.
	Refs string
	// Removed holds the classes whose sources were deleted.
	Removed []string
	// DryRun computes the recompilation set without committing it.
	DryRun bool
}

// Pass runs one build pass over every class file below opts.Dir.
func (a *App) Pass(ctx context.Context, opts PassOptions) (*domain.PassResult, error) {
	if err := a.load(ctx); err != nil {
		return nil, err
	}

	classes, err := a.source.Collect(ctx, opts.Dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to collect class files")
	}
	if err := a.applyReferences(classes, opts.Refs); err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(opts.Removed))
	for _, name := range opts.Removed {
		removed = append(removed, domain.InternalName(name))
	}

	return a.run(ctx, domain.Pass{
		ID:      a.nextID(opts.ID),
		Classes: classes,
		Removed: removed,
	}, opts.DryRun)
}

// Dependents returns the sorted names of the classes that directly depend on class.
func (a *App) Dependents(ctx context.Context, class string) ([]string, error) {
	if err := a.load(ctx); err != nil {
		return nil, err
	}

	cache := a.coord.Cache()
	info, err := cache.GetByName(domain.InternalName(class))
	if err != nil {
		return nil, err
	}

	symbols := cache.Symbols()
	dependents := make([]string, 0)
	for _, id := range cache.ReverseDependents(info.Name) {
		name, err := symbols.Resolve(id)
		if err != nil {
			return nil, errors.Join(domain.ErrCacheCorrupted, err)
		}
		dependents = append(dependents, name)
	}
	slices.Sort(dependents)
	return dependents, nil
}

// Show returns the cached metadata of class.
func (a *App) Show(ctx context.Context, class string) (domain.ClassView, error) {
	if err := a.load(ctx); err != nil {
		return domain.ClassView{}, err
	}

	cache := a.coord.Cache()
	info, err := cache.GetByName(domain.InternalName(class))
	if err != nil {
		return domain.ClassView{}, err
	}

	view, err := domain.NewClassView(info, cache.Symbols(), cache.ReverseDependents(info.Name))
	if err != nil {
		return domain.ClassView{}, errors.Join(domain.ErrCacheCorrupted, err)
	}
	slices.Sort(view.Dependents)
	return view, nil
}

// Supertype returns the nearest common superclass of two cached classes.
func (a *App) Supertype(ctx context.Context, first, second string) (string, error) {
	if err := a.load(ctx); err != nil {
		return "", err
	}
	resolver := hierarchy.NewResolver(a.coord.Cache())
	return resolver.CommonSuperClass(domain.InternalName(first), domain.InternalName(second)), nil
}

// Clean discards the persisted dependency cache.
func (a *App) Clean(ctx context.Context) error {
	if err := a.store.Discard(ctx); err != nil {
		return err
	}
	a.coord.Cache().Reset()
	a.logger.Info("removed dependency cache")
	return nil
}

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	Dir  string
	Refs string
}

// Watch runs a full pass over opts.Dir and then one pass per burst of class
// file changes until ctx is done or the pass budget is exhausted.
// Failed passes are logged and the loop keeps watching.
func (a *App) Watch(ctx context.Context, opts WatchOptions, reporter ports.Reporter) error {
	result, err := a.Pass(ctx, PassOptions{Dir: opts.Dir, Refs: opts.Refs})
	if err != nil {
		return err
	}
	if err := reporter.Pass(result); err != nil {
		return err
	}
	passes := 1

	if err := a.watcher.Start(ctx, opts.Dir); err != nil {
		return errors.Join(domain.ErrWatchFailed, err)
	}
	defer func() {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to stop watcher"))
		}
	}()

	batches := newBatchQueue()
	debouncer := watcher.NewDebouncer(a.config.Watch.Debounce, batches.push)
	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	limiter := rate.NewLimiter(rate.Every(a.config.Watch.MinInterval), 1)
	// The initial pass consumes the first token.
	limiter.Allow()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-batches.ready:
		}

		paths := batches.take()
		if len(paths) == 0 {
			continue
		}
		if a.config.MaxPasses > 0 && passes >= a.config.MaxPasses {
			return zerr.With(zerr.Wrap(domain.ErrPassBudgetExhausted, "watch stopped"), "passes", passes)
		}
		if err := limiter.Wait(ctx); err != nil {
			//nolint:nilerr // Cancellation ends the watch loop
			return nil
		}

		result, err := a.changedPass(ctx, opts, paths)
		if err != nil {
			a.logger.Error(err)
			continue
		}
		passes++
		if err := reporter.Pass(result); err != nil {
			return err
		}
	}
}

func (a *App) changedPass(ctx context.Context, opts WatchOptions, paths []string) (*domain.PassResult, error) {
	classes, removed, err := a.source.Read(ctx, opts.Dir, paths)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read changed class files")
	}
	if err := a.applyReferences(classes, opts.Refs); err != nil {
		return nil, err
	}
	return a.run(ctx, domain.Pass{
		ID:      a.nextID(0),
		Classes: classes,
		Removed: removed,
	}, false)
}

func (a *App) run(ctx context.Context, pass domain.Pass, dryRun bool) (*domain.PassResult, error) {
	start := time.Now()

	pending, err := a.coord.Begin(ctx, pass)
	if err != nil {
		return nil, errors.Join(domain.ErrPassFailed, err)
	}

	var result *domain.PassResult
	if dryRun {
		result = pending.Result()
		if err := pending.Abandon(); err != nil {
			return nil, err
		}
	} else {
		result, err = pending.Commit(ctx)
		if err != nil {
			return nil, errors.Join(domain.ErrPassFailed, err)
		}
	}

	a.metrics.ObservePass(result, time.Since(start))
	if err := a.metrics.Flush(); err != nil {
		a.logger.Error(zerr.Wrap(err, "failed to flush metrics"))
	}
	return result, nil
}

// load restores the persisted cache once per process.
func (a *App) load(ctx context.Context) error {
	a.loadOnce.Do(func() {
		rebuild, err := a.coord.Load(ctx)
		if err != nil {
			a.loadErr = zerr.Wrap(err, "failed to load dependency cache")
			return
		}
		if rebuild {
			a.metrics.ObserveCorruption()
		}
	})
	return a.loadErr
}

func (a *App) nextID(id uint64) uint64 {
	if id != 0 {
		return id
	}
	return a.coord.Cache().Pass() + 1
}

// applyReferences merges the driver's references manifest into classes.
func (a *App) applyReferences(classes []domain.CompiledClass, path string) error {
	if path == "" {
		return nil
	}
	refs, err := a.source.LoadReferences(path)
	if err != nil {
		return err
	}
	for i := range classes {
		extra, ok := refs[classes[i].Name]
		if !ok {
			continue
		}
		merged := append(slices.Clone(classes[i].References), extra...)
		slices.Sort(merged)
		classes[i].References = slices.Compact(merged)
	}
	return nil
}

// batchQueue merges debounced batches that arrive while a pass is running.
type batchQueue struct {
	mu      sync.Mutex
	pending []string
	ready   chan struct{}
}

func newBatchQueue() *batchQueue {
	return &batchQueue{ready: make(chan struct{}, 1)}
}

func (q *batchQueue) push(paths []string) {
	q.mu.Lock()
	q.pending = append(q.pending, paths...)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *batchQueue) take() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	paths := q.pending
	q.pending = nil
	slices.Sort(paths)
	return slices.Compact(paths)
}
