package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depcache/internal/core/domain"
)

func TestPassResult_JSONRoundTripsKinds(t *testing.T) {
	t.Parallel()

	in := domain.PassResult{
		Pass:     3,
		Affected: []string{"com/acme/A", "com/acme/B"},
		Reasons: map[string]domain.Reason{
			"com/acme/A": {Kind: domain.ReasonConstant},
			"com/acme/B": {Kind: domain.ReasonRemovedDependency, Via: "com/acme/Gone"},
		},
		Changes: map[string]domain.ChangeKind{"com/acme/A": domain.ChangeConstantOnly},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"removed-dependency"`)
	assert.Contains(t, string(data), `"com/acme/A":"constant"`)

	var out domain.PassResult
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Reasons, out.Reasons)
	assert.Equal(t, in.Changes, out.Changes)
}

func TestKinds_UnmarshalUnknown(t *testing.T) {
	t.Parallel()

	var reason domain.ReasonKind
	require.ErrorIs(t, reason.UnmarshalText([]byte("unknown")), domain.ErrInvalidKind)

	var change domain.ChangeKind
	require.ErrorIs(t, change.UnmarshalText([]byte("partial")), domain.ErrInvalidKind)
	require.NoError(t, change.UnmarshalText([]byte("none")))
	assert.Equal(t, domain.ChangeNone, change)
}
