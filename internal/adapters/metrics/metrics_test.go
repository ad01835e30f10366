package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depcache/internal/core/domain"
)

func TestRecorder_ObservePass(t *testing.T) {
	t.Parallel()

	r := New("")
	r.ObservePass(&domain.PassResult{
		Pass:     1,
		Affected: []string{"a/A", "a/B", "a/C"},
		Changes: map[string]domain.ChangeKind{
			"a/A": domain.ChangeConstantOnly,
			"a/D": domain.ChangeNone,
		},
		Rounds:    2,
		Committed: true,
	}, 250*time.Millisecond)
	r.ObservePass(&domain.PassResult{Pass: 2, Rebuild: true}, time.Second)
	r.ObserveCorruption()

	assert.InDelta(t, 1, testutil.ToFloat64(r.passes.WithLabelValues("committed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.passes.WithLabelValues("pending")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.changes.WithLabelValues("constant")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.changes.WithLabelValues("none")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.rebuilds), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.corruptions), 0)
	count, err := testutil.GatherAndCount(r.registry)
	require.NoError(t, err)
	assert.Equal(t, 9, count)
}

func TestRecorder_Flush(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "textfile", "depcache.prom")
	r := New(path)
	r.ObserveCorruption()

	require.NoError(t, r.Flush())

	//nolint:gosec // Test file with controlled path
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "depcache_cache_corruptions_total 1")
}

func TestRecorder_FlushWithoutTextfile(t *testing.T) {
	t.Parallel()

	require.NoError(t, New("").Flush())
}
