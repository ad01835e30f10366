package domain

import (
	"fmt"
	"math"
	"strings"
)

// ConstantKind tags the variant held by a ConstantValue.
type ConstantKind uint8

const (
	// ConstantEmpty means "no constant / not applicable".
	ConstantEmpty ConstantKind = iota
	// ConstantInt holds a 32-bit integer (also used for byte, char, short and boolean fields).
	ConstantInt
	// ConstantLong holds a 64-bit integer.
	ConstantLong
	// ConstantFloat holds a 32-bit float.
	ConstantFloat
	// ConstantDouble holds a 64-bit float.
	ConstantDouble
	// ConstantString holds the symbol id of a string literal.
	ConstantString
	// ConstantClass holds the symbol id of a class literal.
	ConstantClass
	// ConstantArray holds nested constant values.
	ConstantArray
)

var constantKindNames = [...]string{
	ConstantEmpty:  "empty",
	ConstantInt:    "int",
	ConstantLong:   "long",
	ConstantFloat:  "float",
	ConstantDouble: "double",
	ConstantString: "string",
	ConstantClass:  "class",
	ConstantArray:  "array",
}

func (k ConstantKind) String() string {
	if int(k) < len(constantKindNames) {
		return constantKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ConstantValue is a closed tagged variant. The zero value is Empty.
// Float and double payloads are stored as raw bits so equality is exact.
type ConstantValue struct {
	kind  ConstantKind
	bits  uint64
	sym   SymbolID
	elems []ConstantValue
}

// Empty returns the Empty constant.
func Empty() ConstantValue { return ConstantValue{} }

// IntConstant returns an Int constant.
func IntConstant(v int32) ConstantValue {
	return ConstantValue{kind: ConstantInt, bits: uint64(uint32(v))}
}

// LongConstant returns a Long constant.
func LongConstant(v int64) ConstantValue {
	return ConstantValue{kind: ConstantLong, bits: uint64(v)}
}

// FloatConstant returns a Float constant.
func FloatConstant(v float32) ConstantValue {
	return ConstantValue{kind: ConstantFloat, bits: uint64(math.Float32bits(v))}
}

// FloatConstantBits returns a Float constant from its IEEE 754 bit pattern.
func FloatConstantBits(b uint32) ConstantValue {
	return ConstantValue{kind: ConstantFloat, bits: uint64(b)}
}

// DoubleConstant returns a Double constant.
func DoubleConstant(v float64) ConstantValue {
	return ConstantValue{kind: ConstantDouble, bits: math.Float64bits(v)}
}

// DoubleConstantBits returns a Double constant from its IEEE 754 bit pattern.
func DoubleConstantBits(b uint64) ConstantValue {
	return ConstantValue{kind: ConstantDouble, bits: b}
}

// StringConstant returns a StringRef constant pointing at an interned string.
func StringConstant(id SymbolID) ConstantValue {
	return ConstantValue{kind: ConstantString, sym: id}
}

// ClassConstant returns a ClassRef constant pointing at an interned class name.
func ClassConstant(id SymbolID) ConstantValue {
	return ConstantValue{kind: ConstantClass, sym: id}
}

// ArrayConstant returns an Array constant. The elements are copied.
func ArrayConstant(elems ...ConstantValue) ConstantValue {
	c := ConstantValue{kind: ConstantArray, elems: make([]ConstantValue, len(elems))}
	for i, e := range elems {
		c.elems[i] = e.Clone()
	}
	return c
}

// Kind returns the variant tag.
func (c ConstantValue) Kind() ConstantKind { return c.kind }

// IsEmpty reports whether c is the Empty sentinel.
func (c ConstantValue) IsEmpty() bool { return c.kind == ConstantEmpty }

// Int returns the Int payload.
func (c ConstantValue) Int() int32 { return int32(uint32(c.bits)) }

// Long returns the Long payload.
func (c ConstantValue) Long() int64 { return int64(c.bits) }

// Float returns the Float payload.
func (c ConstantValue) Float() float32 { return math.Float32frombits(uint32(c.bits)) }

// Double returns the Double payload.
func (c ConstantValue) Double() float64 { return math.Float64frombits(c.bits) }

// Bits returns the raw payload bits of a numeric constant.
func (c ConstantValue) Bits() uint64 { return c.bits }

// Symbol returns the symbol payload of a StringRef or ClassRef constant.
func (c ConstantValue) Symbol() SymbolID { return c.sym }

// Elements returns a copy of the Array payload.
func (c ConstantValue) Elements() []ConstantValue {
	if c.kind != ConstantArray {
		return nil
	}
	out := make([]ConstantValue, len(c.elems))
	for i, e := range c.elems {
		out[i] = e.Clone()
	}
	return out
}

// Inlinable reports whether consumers receive this value by copy at compile time.
// Only primitive and string constants are inlined; class literals and arrays are not.
func (c ConstantValue) Inlinable() bool {
	switch c.kind {
	case ConstantInt, ConstantLong, ConstantFloat, ConstantDouble, ConstantString:
		return true
	default:
		return false
	}
}

// Equal reports whether both tag and payload are equal.
func (c ConstantValue) Equal(o ConstantValue) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case ConstantEmpty:
		return true
	case ConstantString, ConstantClass:
		return c.sym == o.sym
	case ConstantArray:
		if len(c.elems) != len(o.elems) {
			return false
		}
		for i := range c.elems {
			if !c.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	default:
		return c.bits == o.bits
	}
}

// Clone returns a deep copy.
func (c ConstantValue) Clone() ConstantValue {
	if c.kind != ConstantArray {
		return c
	}
	out := ConstantValue{kind: ConstantArray, elems: make([]ConstantValue, len(c.elems))}
	for i, e := range c.elems {
		out.elems[i] = e.Clone()
	}
	return out
}

// Symbols returns every symbol id referenced by c, including nested array elements.
func (c ConstantValue) Symbols() []SymbolID {
	switch c.kind {
	case ConstantString, ConstantClass:
		return []SymbolID{c.sym}
	case ConstantArray:
		var ids []SymbolID
		for _, e := range c.elems {
			ids = append(ids, e.Symbols()...)
		}
		return ids
	default:
		return nil
	}
}

func (c ConstantValue) String() string {
	switch c.kind {
	case ConstantEmpty:
		return "empty"
	case ConstantInt:
		return fmt.Sprintf("int(%d)", c.Int())
	case ConstantLong:
		return fmt.Sprintf("long(%d)", c.Long())
	case ConstantFloat:
		return fmt.Sprintf("float(%g)", c.Float())
	case ConstantDouble:
		return fmt.Sprintf("double(%g)", c.Double())
	case ConstantString:
		return fmt.Sprintf("string(#%d)", c.sym)
	case ConstantClass:
		return fmt.Sprintf("class(#%d)", c.sym)
	case ConstantArray:
		parts := make([]string, len(c.elems))
		for i, e := range c.elems {
			parts[i] = e.String()
		}
		return "array[" + strings.Join(parts, ", ") + "]"
	default:
		return c.kind.String()
	}
}
