// Package descriptor decodes JVM type and method descriptors.
package descriptor

import (
	"strings"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// maxArrayDims is the JVM limit on array dimensions.
const maxArrayDims = 255

// Kind is the sort of a decoded type.
type Kind uint8

// Type kinds.
const (
	Byte Kind = iota + 1
	Char
	Double
	Float
	Int
	Long
	Short
	Boolean
	Void
	Object
	Array
)

var primitives = map[byte]Kind{
	'B': Byte,
	'C': Char,
	'D': Double,
	'F': Float,
	'I': Int,
	'J': Long,
	'S': Short,
	'Z': Boolean,
	'V': Void,
}

var codes = map[Kind]byte{
	Byte:    'B',
	Char:    'C',
	Double:  'D',
	Float:   'F',
	Int:     'I',
	Long:    'J',
	Short:   'S',
	Boolean: 'Z',
	Void:    'V',
}

// Type is one decoded field, parameter or return type.
type Type struct {
	Kind Kind
	// Class is the internal class name of an Object type.
	Class string
	// Elem is the component type of an Array type.
	Elem *Type
}

// String formats t back to descriptor form.
func (t Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Type) write(b *strings.Builder) {
	switch t.Kind {
	case Object:
		b.WriteByte('L')
		b.WriteString(t.Class)
		b.WriteByte(';')
	case Array:
		b.WriteByte('[')
		if t.Elem != nil {
			t.Elem.write(b)
		}
	default:
		b.WriteByte(codes[t.Kind])
	}
}

// IsPrimitive reports whether t is a primitive or void type.
func (t Type) IsPrimitive() bool {
	return t.Kind != Object && t.Kind != Array
}

// ClassNames returns the internal class names referenced by t, including array element classes.
func (t Type) ClassNames() []string {
	for t.Kind == Array && t.Elem != nil {
		t = *t.Elem
	}
	if t.Kind == Object {
		return []string{t.Class}
	}
	return nil
}

// Method is a decoded method descriptor.
type Method struct {
	Params []Type
	Return Type
}

// String formats m back to descriptor form.
func (m Method) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range m.Params {
		p.write(&b)
	}
	b.WriteByte(')')
	m.Return.write(&b)
	return b.String()
}

// ClassNames returns the internal class names referenced by the parameters and return type.
func (m Method) ClassNames() []string {
	var names []string
	for _, p := range m.Params {
		names = append(names, p.ClassNames()...)
	}
	return append(names, m.Return.ClassNames()...)
}

// Descriptor is either a field type or a method.
type Descriptor struct {
	Field  *Type
	Method *Method
}

// String formats d back to descriptor form.
func (d Descriptor) String() string {
	switch {
	case d.Method != nil:
		return d.Method.String()
	case d.Field != nil:
		return d.Field.String()
	default:
		return ""
	}
}

// Parse decodes a field or method descriptor, dispatching on the leading '('.
func Parse(desc string) (Descriptor, error) {
	if strings.HasPrefix(desc, "(") {
		m, err := ParseMethod(desc)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Method: &m}, nil
	}
	t, err := ParseField(desc)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Field: &t}, nil
}

// ParseField decodes a field descriptor such as I, [J or Ljava/lang/String;.
func ParseField(desc string) (Type, error) {
	t, n, err := parseType(desc, 0, len(desc), false)
	if err != nil {
		return Type{}, err
	}
	if n != len(desc) {
		return Type{}, malformed(desc, n, "trailing characters after field type")
	}
	return t, nil
}

// ParseMethod decodes a method descriptor such as (I[Ljava/lang/String;)V.
func ParseMethod(desc string) (Method, error) {
	if !strings.HasPrefix(desc, "(") {
		return Method{}, malformed(desc, 0, "method descriptor must start with '('")
	}
	end := strings.IndexByte(desc, ')')
	if end < 0 {
		return Method{}, malformed(desc, len(desc), "missing ')'")
	}

	params, err := parseParams(desc, 1, end)
	if err != nil {
		return Method{}, err
	}

	ret, n, err := parseType(desc, end+1, len(desc), true)
	if err != nil {
		return Method{}, err
	}
	if n != len(desc) {
		return Method{}, malformed(desc, n, "trailing characters after return type")
	}
	return Method{Params: params, Return: ret}, nil
}

// parseParams strips one parameter at a time from desc[off:end].
func parseParams(desc string, off, end int) ([]Type, error) {
	params := []Type{}
	for off < end {
		t, n, err := parseType(desc, off, end, false)
		if err != nil {
			return nil, err
		}
		params = append(params, t)
		off = n
	}
	return params, nil
}

// parseType decodes one type from desc[off:limit] and returns the offset after it.
func parseType(desc string, off, limit int, allowVoid bool) (Type, int, error) {
	if off >= limit {
		return Type{}, off, malformed(desc, off, "unexpected end of descriptor")
	}

	c := desc[off]
	switch c {
	case '[':
		dims := 0
		for i := off; i < limit && desc[i] == '['; i++ {
			dims++
		}
		if dims > maxArrayDims {
			return Type{}, off, malformed(desc, off, "too many array dimensions")
		}
		elem, n, err := parseType(desc, off+1, limit, false)
		if err != nil {
			return Type{}, n, err
		}
		return Type{Kind: Array, Elem: &elem}, n, nil
	case 'L':
		semi := strings.IndexByte(desc[off:limit], ';')
		if semi < 0 {
			return Type{}, off, malformed(desc, off, "unterminated object type")
		}
		name := desc[off+1 : off+semi]
		if name == "" || strings.ContainsAny(name, ".[;()") {
			return Type{}, off, malformed(desc, off, "invalid class name")
		}
		return Type{Kind: Object, Class: name}, off + semi + 1, nil
	default:
		kind, ok := primitives[c]
		if !ok {
			return Type{}, off, malformed(desc, off, "unknown type code")
		}
		if kind == Void && !allowVoid {
			return Type{}, off, malformed(desc, off, "void is only valid as a return type")
		}
		return Type{Kind: kind}, off + 1, nil
	}
}

func malformed(desc string, off int, reason string) error {
	err := zerr.Wrap(domain.ErrMalformedDescriptor, reason)
	err = zerr.With(err, "descriptor", desc)
	return zerr.With(err, "offset", off)
}
