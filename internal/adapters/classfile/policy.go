package classfile

import (
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// RawConstant is the ConstantValue attribute of a field as read from the pool.
type RawConstant struct {
	// Tag is the constant pool tag of the value.
	Tag  uint8
	Bits uint64
	// Text holds the value of a string constant.
	Text string
}

// ConstantPolicy decides which field values consumers may have inlined.
type ConstantPolicy interface {
	// Name identifies the policy in configuration and logs.
	Name() string
	// Constant returns the tracked value of a field, or Empty.
	// raw is nil when the field has no ConstantValue attribute.
	Constant(access domain.AccessFlags, descriptor string, raw *RawConstant, symbols *domain.SymbolTable) domain.ConstantValue
}

// JavacPolicy tracks static final fields holding a primitive or String constant,
// which javac copies into every use site.
type JavacPolicy struct{}

// Name implements ConstantPolicy.
func (JavacPolicy) Name() string { return domain.PolicyJavac }

// Constant implements ConstantPolicy.
func (JavacPolicy) Constant(
	access domain.AccessFlags, _ string, raw *RawConstant, symbols *domain.SymbolTable,
) domain.ConstantValue {
	if raw == nil || !access.Has(domain.AccStatic|domain.AccFinal) {
		return domain.Empty()
	}
	switch raw.Tag {
	case tagInteger:
		return domain.IntConstant(int32(uint32(raw.Bits)))
	case tagLong:
		return domain.LongConstant(int64(raw.Bits))
	case tagFloat:
		return domain.FloatConstantBits(uint32(raw.Bits))
	case tagDouble:
		return domain.DoubleConstantBits(raw.Bits)
	case tagString:
		return domain.StringConstant(symbols.Intern(raw.Text))
	default:
		return domain.Empty()
	}
}

// NoInliningPolicy never tracks constants, for compilers that reference fields symbolically.
type NoInliningPolicy struct{}

// Name implements ConstantPolicy.
func (NoInliningPolicy) Name() string { return domain.PolicyNone }

// Constant implements ConstantPolicy.
func (NoInliningPolicy) Constant(domain.AccessFlags, string, *RawConstant, *domain.SymbolTable) domain.ConstantValue {
	return domain.Empty()
}

// PolicyFor returns the policy configured by name.
func PolicyFor(name string) (ConstantPolicy, error) {
	switch name {
	case "", domain.PolicyJavac:
		return JavacPolicy{}, nil
	case domain.PolicyNone:
		return NoInliningPolicy{}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConstantPolicy, "failed to select constant policy"), "constant_policy", name)
	}
}
