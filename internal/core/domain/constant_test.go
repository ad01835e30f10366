package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.trai.ch/depcache/internal/core/domain"
)

func TestConstantValue_ZeroIsEmpty(t *testing.T) {
	t.Parallel()

	var c domain.ConstantValue
	assert.True(t, c.IsEmpty())
	assert.Equal(t, domain.ConstantEmpty, c.Kind())
	assert.True(t, c.Equal(domain.Empty()))
	assert.False(t, c.Inlinable())
}

func TestConstantValue_Equal(t *testing.T) {
	t.Parallel()

	nan := math.Float64frombits(0x7ff8000000000001)

	tests := []struct {
		name  string
		a, b  domain.ConstantValue
		equal bool
	}{
		{"same int", domain.IntConstant(1), domain.IntConstant(1), true},
		{"different int", domain.IntConstant(1), domain.IntConstant(2), false},
		{"int vs long", domain.IntConstant(1), domain.LongConstant(1), false},
		{"negative long", domain.LongConstant(-7), domain.LongConstant(-7), true},
		{"nan bits", domain.DoubleConstant(nan), domain.DoubleConstant(nan), true},
		{"signed zero", domain.DoubleConstant(0), domain.DoubleConstant(math.Copysign(0, -1)), false},
		{"float", domain.FloatConstant(1.5), domain.FloatConstantBits(math.Float32bits(1.5)), true},
		{"string ref", domain.StringConstant(3), domain.StringConstant(3), true},
		{"string vs class", domain.StringConstant(3), domain.ClassConstant(3), false},
		{
			"array",
			domain.ArrayConstant(domain.IntConstant(1), domain.StringConstant(2)),
			domain.ArrayConstant(domain.IntConstant(1), domain.StringConstant(2)),
			true,
		},
		{
			"array length",
			domain.ArrayConstant(domain.IntConstant(1)),
			domain.ArrayConstant(domain.IntConstant(1), domain.IntConstant(1)),
			false,
		},
		{"empty vs int zero", domain.Empty(), domain.IntConstant(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestConstantValue_Inlinable(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.IntConstant(1).Inlinable())
	assert.True(t, domain.LongConstant(1).Inlinable())
	assert.True(t, domain.FloatConstant(1).Inlinable())
	assert.True(t, domain.DoubleConstant(1).Inlinable())
	assert.True(t, domain.StringConstant(1).Inlinable())
	assert.False(t, domain.ClassConstant(1).Inlinable())
	assert.False(t, domain.ArrayConstant(domain.IntConstant(1)).Inlinable())
	assert.False(t, domain.Empty().Inlinable())
}

func TestConstantValue_CloneIsDeep(t *testing.T) {
	t.Parallel()

	inner := domain.ArrayConstant(domain.IntConstant(1))
	outer := domain.ArrayConstant(inner, domain.ClassConstant(4))
	clone := outer.Clone()

	assert.True(t, outer.Equal(clone))
	elems := clone.Elements()
	elems[0] = domain.Empty()
	assert.True(t, outer.Equal(clone), "Elements must return a copy")
	assert.Equal(t, []domain.SymbolID{4}, outer.Symbols())
	assert.Equal(t, "array[array[int(1)], class(#4)]", outer.String())
}
