package store_test

import (
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/depcache/internal/adapters/store"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// sampleSnapshot covers every record and constant kind.
//
// Symbols: 1 com/acme/A, 2 java/lang/Object, 3 com/acme/B, 4 X, 5 I, 6 s, 7 Ljava/lang/String;,
// 8 run, 9 ()V, 10 hello, 11 java/io/IOException, 12 V, 13 com/acme/Api, 14 [I.
func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Generation: 3,
		Pass:       42,
		Symbols: []string{
			"com/acme/A", "java/lang/Object", "com/acme/B", "X", "I", "s",
			"Ljava/lang/String;", "run", "()V", "hello", "java/io/IOException", "V",
			"com/acme/Api", "[I",
		},
		Classes: []domain.ClassInfo{
			{
				Name:        1,
				Super:       2,
				Interfaces:  []domain.SymbolID{13},
				Access:      domain.AccPublic | domain.AccSuper,
				Fingerprint: 0xDEADBEEFCAFEF00D,
				References:  []domain.SymbolID{2, 3, 11, 13},
				Fields: []domain.FieldInfo{
					{Name: 4, Descriptor: 5, Access: domain.AccStatic | domain.AccFinal, Constant: domain.IntConstant(-7)},
					{Name: 6, Descriptor: 7, Access: domain.AccStatic | domain.AccFinal, Constant: domain.StringConstant(10)},
					{Name: 4, Descriptor: 14, Constant: domain.ArrayConstant(
						domain.LongConstant(1<<40),
						domain.FloatConstant(1.5),
						domain.DoubleConstant(-2.25),
						domain.ClassConstant(3),
						domain.ArrayConstant(),
					)},
				},
				Methods: []domain.MethodInfo{
					{
						Name:       8,
						Descriptor: 9,
						Return:     12,
						Exceptions: []domain.SymbolID{11},
						Access:     domain.AccPublic,
					},
					{Name: 8, Descriptor: 10, Access: domain.AccPrivate, ParamsUnknown: true},
				},
			},
			{Name: 3, Super: 2, Fingerprint: 1},
			{Name: 13, Access: domain.AccInterface | domain.AccAbstract},
		},
	}
}

// reseal recomputes the checksum trailer after a test edits the body.
func reseal(data []byte) []byte {
	body := slices.Clone(data[:len(data)-8])
	return binary.LittleEndian.AppendUint64(body, xxhash.Sum64(body))
}

func reason(t *testing.T, err error) any {
	t.Helper()
	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	return zErr.Metadata()["reason"]
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	snap := sampleSnapshot()
	got, err := store.Decode(store.Encode(snap))
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestCodec_Empty(t *testing.T) {
	t.Parallel()

	got, err := store.Decode(store.Encode(domain.Snapshot{Generation: 1}))
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, uint32(1), got.Generation)
}

func TestCodec_Deterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, store.Encode(sampleSnapshot()), store.Encode(sampleSnapshot()))
}

func TestDecode_Truncated(t *testing.T) {
	t.Parallel()

	data := store.Encode(sampleSnapshot())
	for n := range len(data) {
		_, err := store.Decode(data[:n])
		require.Error(t, err, "prefix of %d bytes", n)
		assert.ErrorIs(t, err, domain.ErrCacheCorrupted, "prefix of %d bytes", n)
	}
}

func TestDecode_Corrupted(t *testing.T) {
	t.Parallel()

	// Header is magic(4) version(2) generation(4) pass(8); the symbol tag follows.
	const symbolTagOffset = 18

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		reason string
	}{
		{
			name: "checksum",
			mutate: func(b []byte) []byte {
				b[len(b)/2] ^= 0xFF
				return b
			},
			reason: "checksum",
		},
		{
			name: "magic",
			mutate: func(b []byte) []byte {
				b[0] = 'X'
				return reseal(b)
			},
			reason: "magic",
		},
		{
			name: "version",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint16(b[4:], store.FormatVersion+1)
				return reseal(b)
			},
			reason: "version",
		},
		{
			name: "unknown segment tag",
			mutate: func(b []byte) []byte {
				b[symbolTagOffset] = 0x99
				return reseal(b)
			},
			reason: "segment",
		},
		{
			name: "trailing bytes",
			mutate: func(b []byte) []byte {
				body := append(slices.Clone(b[:len(b)-8]), 0x00)
				return reseal(append(body, make([]byte, 8)...))
			},
			reason: "trailing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := tt.mutate(store.Encode(sampleSnapshot()))
			_, err := store.Decode(data)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCacheCorrupted)
			assert.Equal(t, tt.reason, reason(t, err))
		})
	}
}

func TestDecode_UninternedSymbol(t *testing.T) {
	t.Parallel()

	snap := domain.Snapshot{
		Generation: 1,
		Symbols:    []string{"com/acme/A"},
		Classes:    []domain.ClassInfo{{Name: 1, Super: 5}},
	}

	_, err := store.Decode(store.Encode(snap))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCacheCorrupted)
	assert.Equal(t, "symbol", reason(t, err))
}

func TestDecode_ClassIDMismatch(t *testing.T) {
	t.Parallel()

	snap := domain.Snapshot{
		Generation: 1,
		Symbols:    []string{"com/acme/A", "com/acme/B"},
		Classes:    []domain.ClassInfo{{Name: 1}},
	}
	data := store.Encode(snap)

	// The class segment is the last part of the body: tag, count, id, length, payload.
	// Rewrite the leading class id from 1 to 2.
	idx := slices.Index(data[18:], 0x43)
	require.Positive(t, idx)
	data[18+idx+2] = 2

	_, err := store.Decode(reseal(data))
	require.Error(t, err)
	assert.Equal(t, "class id", reason(t, err))
}
