package invalidation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/engine/invalidation"
)

func baseClass() domain.ClassInfo {
	return domain.ClassInfo{
		Name:        1,
		Super:       2,
		Interfaces:  []domain.SymbolID{3, 4},
		Access:      domain.AccPublic | domain.AccSuper,
		Fingerprint: 0xA,
		Fields: []domain.FieldInfo{
			{Name: 10, Descriptor: 11, Access: domain.AccPublic | domain.AccStatic | domain.AccFinal, Constant: domain.IntConstant(1)},
			{Name: 12, Descriptor: 13, Access: domain.AccPrivate},
		},
		Methods: []domain.MethodInfo{
			{Name: 20, Descriptor: 21, Access: domain.AccPublic, Exceptions: []domain.SymbolID{30}},
			{Name: 22, Descriptor: 23, Access: domain.AccPublic},
		},
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*domain.ClassInfo)
		want   domain.ChangeKind
	}{
		{"same fingerprint", func(c *domain.ClassInfo) { c.Methods = nil }, domain.ChangeNone},
		{"body only", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.References = []domain.SymbolID{40} }, domain.ChangeNone},
		{"interfaces reordered", func(c *domain.ClassInfo) {
			c.Fingerprint = 0xB
			c.Interfaces = []domain.SymbolID{4, 3}
		}, domain.ChangeNone},
		{"methods reordered", func(c *domain.ClassInfo) {
			c.Fingerprint = 0xB
			c.Methods[0], c.Methods[1] = c.Methods[1], c.Methods[0]
		}, domain.ChangeNone},
		{"constant changed", func(c *domain.ClassInfo) {
			c.Fingerprint = 0xB
			c.Fields[0].Constant = domain.IntConstant(2)
		}, domain.ChangeConstantOnly},
		{"super changed", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Super = 5 }, domain.ChangeStructural},
		{"interface removed", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Interfaces = c.Interfaces[:1] }, domain.ChangeStructural},
		{"class flags", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Access |= domain.AccFinal }, domain.ChangeStructural},
		{"method removed", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Methods = c.Methods[:1] }, domain.ChangeStructural},
		{"method descriptor", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Methods[1].Descriptor = 24 }, domain.ChangeStructural},
		{"method flags", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Methods[1].Access = domain.AccPrivate }, domain.ChangeStructural},
		{"method exceptions", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Methods[0].Exceptions = nil }, domain.ChangeStructural},
		{"method signature", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Methods[0].Signature = 31 }, domain.ChangeStructural},
		{"field type", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Fields[1].Descriptor = 14 }, domain.ChangeStructural},
		{"field flags", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Fields[1].Access = domain.AccPublic }, domain.ChangeStructural},
		{"field renamed", func(c *domain.ClassInfo) { c.Fingerprint = 0xB; c.Fields[1].Name = 15 }, domain.ChangeStructural},
		{"constant and structure", func(c *domain.ClassInfo) {
			c.Fingerprint = 0xB
			c.Fields[0].Constant = domain.IntConstant(2)
			c.Super = 5
		}, domain.ChangeStructural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prev := baseClass()
			next := baseClass()
			tt.mutate(&next)
			assert.Equal(t, tt.want, invalidation.Classify(&prev, next))
		})
	}
}

func TestClassify_NewClassIsStructural(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.ChangeStructural, invalidation.Classify(nil, baseClass()))
}

func TestCompare_Inlinable(t *testing.T) {
	t.Parallel()

	prev := baseClass()

	next := baseClass()
	next.Fingerprint = 0xB
	next.Fields[0].Constant = domain.IntConstant(2)
	d := invalidation.Compare(&prev, next)
	assert.Equal(t, domain.ChangeConstantOnly, d.Kind)
	assert.True(t, d.Inlinable)
	assert.Equal(t, []domain.SymbolID{10}, d.Constants)

	prev.Fields[0].Constant = domain.ClassConstant(50)
	next.Fields[0].Constant = domain.ClassConstant(51)
	d = invalidation.Compare(&prev, next)
	assert.Equal(t, domain.ChangeConstantOnly, d.Kind)
	assert.False(t, d.Inlinable)

	ch := d.Change(7)
	assert.Equal(t, invalidation.Change{Class: 7, Kind: domain.ChangeConstantOnly}, ch)
}
