package coordinator

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// PendingPass holds the outcome of Begin until the driver commits or abandons it.
type PendingPass struct {
	coord   *Coordinator
	id      uint64
	puts    map[domain.SymbolID]domain.ClassInfo
	removes []domain.SymbolID
	result  *domain.PassResult

	mu     sync.Mutex
	closed bool
}

// Result returns the recompilation set computed by Begin.
func (p *PendingPass) Result() *domain.PassResult {
	return p.result
}

// Commit applies the pass to the cache and persists it. When persisting fails
// the cache is rolled back to its previous state.
func (p *PendingPass) Commit(ctx context.Context) (*domain.PassResult, error) {
	if err := p.close(); err != nil {
		return nil, err
	}

	c := p.coord
	ctx, span := c.tracer.Start(ctx, "commit")
	defer span.End()
	span.SetAttribute("depcache.pass", p.id)

	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	if last := c.cache.Pass(); p.id <= last {
		err := zerr.With(zerr.With(zerr.Wrap(domain.ErrStalePass, "failed to commit pass"), "pass", p.id), "last", last)
		span.RecordError(err)
		return nil, err
	}

	previous := c.cache.Snapshot()
	if err := c.cache.Apply(p.id, p.puts, p.removes); err != nil {
		span.RecordError(err)
		return nil, zerr.With(errors.Join(domain.ErrCommitFailed, err), "pass", p.id)
	}

	gen, err := c.store.Save(ctx, c.cache.Snapshot())
	if err != nil {
		if restoreErr := c.cache.Restore(previous); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
		span.RecordError(err)
		return nil, zerr.With(errors.Join(domain.ErrCommitFailed, err), "pass", p.id)
	}
	c.cache.SetGeneration(gen)
	span.SetAttribute("depcache.generation", gen)

	c.mu.Lock()
	c.rebuild = false
	c.mu.Unlock()

	p.result.Committed = true
	return p.result, nil
}

// Abandon drops the pass. The cache is left untouched.
func (p *PendingPass) Abandon() error {
	if err := p.close(); err != nil {
		return err
	}
	p.puts = nil
	p.removes = nil
	return nil
}

func (p *PendingPass) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return zerr.With(zerr.Wrap(domain.ErrPassClosed, "failed to close pass"), "pass", p.id)
	}
	p.closed = true
	return nil
}
