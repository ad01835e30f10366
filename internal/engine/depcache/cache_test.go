package depcache_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/engine/depcache"
)

// fixture interns the names of a small hierarchy: Sub extends Sup, User references Sub.
type fixture struct {
	symbols *domain.SymbolTable
	object  domain.SymbolID
	sup     domain.SymbolID
	sub     domain.SymbolID
	user    domain.SymbolID
	iface   domain.SymbolID
}

func newFixture() fixture {
	st := domain.NewSymbolTable()
	return fixture{
		symbols: st,
		object:  st.Intern("java/lang/Object"),
		sup:     st.Intern("com/acme/Sup"),
		sub:     st.Intern("com/acme/Sub"),
		user:    st.Intern("com/acme/User"),
		iface:   st.Intern("com/acme/Iface"),
	}
}

func (f fixture) records() map[domain.SymbolID]domain.ClassInfo {
	return map[domain.SymbolID]domain.ClassInfo{
		f.sup:   {Name: f.sup, Super: f.object, References: []domain.SymbolID{f.object}},
		f.sub:   {Name: f.sub, Super: f.sup, Interfaces: []domain.SymbolID{f.iface}},
		f.user:  {Name: f.user, Super: f.object, References: []domain.SymbolID{f.sub, f.user}},
		f.iface: {Name: f.iface, Access: domain.AccInterface | domain.AccAbstract},
	}
}

func TestCache_PutAllAndGet(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.PutAll(f.records()))

	got, err := c.Get(f.sub)
	require.NoError(t, err)
	assert.Equal(t, f.sup, got.Super)
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []domain.SymbolID{f.sup, f.sub, f.user, f.iface}, c.Classes())

	byName, err := c.GetByName("com/acme/User")
	require.NoError(t, err)
	assert.Equal(t, []domain.SymbolID{f.sub}, byName.References, "self references are dropped")

	_, err = c.Get(f.object)
	assert.ErrorIs(t, err, domain.ErrClassNotFound)
	_, err = c.GetByName("com/acme/Missing")
	assert.ErrorIs(t, err, domain.ErrClassNotFound)
}

func TestCache_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.PutAll(f.records()))

	got, err := c.Get(f.sub)
	require.NoError(t, err)
	got.Interfaces[0] = f.user

	again, err := c.Get(f.sub)
	require.NoError(t, err)
	assert.Equal(t, []domain.SymbolID{f.iface}, again.Interfaces)
}

func TestCache_ReverseDependents(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.PutAll(f.records()))

	assert.Equal(t, []domain.SymbolID{f.sub}, c.ReverseDependents(f.sup))
	assert.Equal(t, []domain.SymbolID{f.user}, c.ReverseDependents(f.sub))
	assert.Equal(t, []domain.SymbolID{f.sub}, c.ReverseDependents(f.iface))
	assert.Equal(t, []domain.SymbolID{f.sup, f.user}, c.ReverseDependents(f.object))
	assert.Empty(t, c.ReverseDependents(f.user))
	assert.Equal(t, []domain.SymbolID{f.sup, f.iface}, c.Dependencies(f.sub))
}

func TestCache_IndexIsRebuiltOnReplace(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.PutAll(f.records()))

	// Sub stops extending Sup.
	require.NoError(t, c.PutAll(map[domain.SymbolID]domain.ClassInfo{
		f.sub: {Name: f.sub, Super: f.object},
	}))

	assert.Empty(t, c.ReverseDependents(f.sup))
	assert.Empty(t, c.ReverseDependents(f.iface))
	assert.Equal(t, []domain.SymbolID{f.sup, f.sub, f.user}, c.ReverseDependents(f.object))
}

func TestCache_Remove(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.PutAll(f.records()))

	require.NoError(t, c.Remove(f.sub))
	assert.False(t, c.Contains(f.sub))
	assert.Empty(t, c.ReverseDependents(f.sup))
	assert.Empty(t, c.ReverseDependents(f.iface))
	// User still references the removed class.
	assert.Equal(t, []domain.SymbolID{f.user}, c.ReverseDependents(f.sub))

	assert.ErrorIs(t, c.Remove(f.sub), domain.ErrClassNotFound)
}

func TestCache_PutAllIsAtomic(t *testing.T) {
	t.Parallel()

	injected := errors.New("disk full")

	tests := []struct {
		name string
		hook depcache.CommitHook
	}{
		{
			name: "fails mid records",
			hook: func(stage depcache.CommitStage, class domain.SymbolID) error {
				if stage == depcache.StageRecord && class == 3 {
					return injected
				}
				return nil
			},
		},
		{
			name: "fails after index rebuild",
			hook: func(stage depcache.CommitStage, _ domain.SymbolID) error {
				if stage == depcache.StageIndex {
					return injected
				}
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			armed := false
			c := depcache.New(f.symbols, depcache.WithCommitHook(func(stage depcache.CommitStage, class domain.SymbolID) error {
				if !armed {
					return nil
				}
				return tt.hook(stage, class)
			}))
			require.NoError(t, c.PutAll(f.records()))

			before := observe(c, f)

			armed = true
			err := c.PutAll(map[domain.SymbolID]domain.ClassInfo{
				f.sup:  {Name: f.sup, Super: f.object, Interfaces: []domain.SymbolID{f.iface}},
				f.sub:  {Name: f.sub, Super: f.object},
				f.user: {Name: f.user, Super: f.sup},
			})
			require.ErrorIs(t, err, injected)

			assert.Equal(t, before, observe(c, f))
		})
	}
}

func TestCache_PutAllRejectsDanglingSymbol(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.PutAll(f.records()))
	before := observe(c, f)

	err := c.PutAll(map[domain.SymbolID]domain.ClassInfo{
		f.sub: {Name: f.sub, Super: f.sup, References: []domain.SymbolID{9999}},
	})
	require.ErrorIs(t, err, domain.ErrCacheCorrupted)
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
	assert.Equal(t, before, observe(c, f))

	err = c.PutAll(map[domain.SymbolID]domain.ClassInfo{
		f.sub: {Name: f.user},
	})
	assert.ErrorIs(t, err, domain.ErrCacheCorrupted)
}

func TestCache_SnapshotRestore(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.Apply(7, f.records(), nil))
	c.SetGeneration(2)

	snap := c.Snapshot()
	assert.Equal(t, uint32(2), snap.Generation)
	assert.Equal(t, uint64(7), snap.Pass)
	assert.Len(t, snap.Classes, 4)

	restored := depcache.New(nil)
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, observe(c, f), observe(restored, f))
	assert.Equal(t, uint64(7), restored.Pass())
	assert.Equal(t, uint32(2), restored.Generation())
	assert.Equal(t, f.symbols.Names(), restored.Symbols().Names())
}

func TestCache_RestoreRejectsCorruption(t *testing.T) {
	t.Parallel()

	f := newFixture()
	good := depcache.New(f.symbols)
	require.NoError(t, good.PutAll(f.records()))

	tests := []struct {
		name   string
		mutate func(*domain.Snapshot)
	}{
		{"uninterned super", func(s *domain.Snapshot) { s.Classes[0].Super = domain.SymbolID(len(s.Symbols) + 1) }},
		{"uninterned field name", func(s *domain.Snapshot) {
			s.Classes[1].Fields = []domain.FieldInfo{{Name: 500, Descriptor: 1}}
		}},
		{"nameless record", func(s *domain.Snapshot) { s.Classes[2].Name = domain.NoSymbol }},
		{"duplicate record", func(s *domain.Snapshot) { s.Classes[1] = s.Classes[0] }},
		{"duplicate symbol", func(s *domain.Snapshot) { s.Symbols[1] = s.Symbols[0] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := good.Snapshot()
			tt.mutate(&snap)

			target := depcache.New(nil)
			err := target.Restore(snap)
			require.ErrorIs(t, err, domain.ErrCacheCorrupted)
			assert.Zero(t, target.Len())
		})
	}
}

func TestCache_Supertype(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.PutAll(f.records()))

	super, iface, ok := c.Supertype("com/acme/Sub")
	assert.True(t, ok)
	assert.False(t, iface)
	assert.Equal(t, "com/acme/Sup", super)

	_, iface, ok = c.Supertype("com/acme/Iface")
	assert.True(t, ok)
	assert.True(t, iface)

	_, _, ok = c.Supertype("java/lang/Object")
	assert.False(t, ok)
}

func TestCache_Reset(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.Apply(3, f.records(), nil))
	c.Reset()

	assert.Zero(t, c.Len())
	assert.Zero(t, c.Pass())
	assert.Zero(t, c.Symbols().Len())
}

func TestCache_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	f := newFixture()
	c := depcache.New(f.symbols)
	require.NoError(t, c.PutAll(f.records()))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				deps := c.ReverseDependents(f.sup)
				// Either the old or the new state, never a mix.
				if len(deps) != 1 || deps[0] != f.sub {
					assert.Empty(t, deps)
				}
				_, _ = c.Get(f.sub)
			}
		}()
	}
	for range 50 {
		require.NoError(t, c.PutAll(map[domain.SymbolID]domain.ClassInfo{f.sub: {Name: f.sub, Super: f.object}}))
		require.NoError(t, c.PutAll(map[domain.SymbolID]domain.ClassInfo{f.sub: {Name: f.sub, Super: f.sup}}))
	}
	wg.Wait()
}

type observation struct {
	records map[domain.SymbolID]domain.ClassInfo
	reverse map[domain.SymbolID][]domain.SymbolID
}

func observe(c *depcache.Cache, f fixture) observation {
	obs := observation{
		records: make(map[domain.SymbolID]domain.ClassInfo),
		reverse: make(map[domain.SymbolID][]domain.SymbolID),
	}
	for _, id := range []domain.SymbolID{f.object, f.sup, f.sub, f.user, f.iface} {
		if info, err := c.Get(id); err == nil {
			obs.records[id] = info
		}
		obs.reverse[id] = c.ReverseDependents(id)
	}
	return obs
}

func TestEdges(t *testing.T) {
	t.Parallel()

	f := newFixture()
	thrown := f.symbols.Intern("java/io/IOException")
	info := domain.ClassInfo{
		Name:       f.user,
		Super:      f.sup,
		Interfaces: []domain.SymbolID{f.iface},
		References: []domain.SymbolID{f.sub, f.user},
		Methods:    []domain.MethodInfo{{Exceptions: []domain.SymbolID{thrown}}},
	}

	assert.Equal(t, []domain.SymbolID{f.sup, f.sub, f.iface, thrown}, depcache.Edges(info))
}
