// Package classgen assembles minimal JVM class files for tests.
package classgen

import (
	"encoding/binary"
	"math"
)

// Access flags used by tests.
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccSuper     = 0x0020
	AccInterface = 0x0200
	AccAbstract  = 0x0400
)

// Class describes a class file to assemble.
type Class struct {
	Name       string
	Super      string
	Interfaces []string
	Access     uint16
	Fields     []Field
	Methods    []Method
	// FieldRefs adds Fieldref pool entries, as emitted for field accesses in code.
	FieldRefs []Ref
	// MethodRefs adds Methodref pool entries, as emitted for calls in code.
	MethodRefs []Ref
	// ClassRefs adds bare Class pool entries.
	ClassRefs []string
	// SourceFile adds a SourceFile attribute the reader must skip.
	SourceFile string
}

// Field describes one field. Constant may be int32, int64, float32, float64 or string.
type Field struct {
	Access     uint16
	Name       string
	Descriptor string
	Constant   any
	Signature  string
}

// Method describes one method. Non-abstract methods get a stub Code attribute.
type Method struct {
	Access     uint16
	Name       string
	Descriptor string
	Exceptions []string
	Signature  string
}

// Ref is a member reference.
type Ref struct {
	Owner      string
	Name       string
	Descriptor string
}

// Bytes assembles the class file.
func (c Class) Bytes() []byte {
	p := newPool()

	this := p.class(c.Name)
	var super uint16
	if c.Super != "" {
		super = p.class(c.Super)
	}
	ifaces := make([]uint16, len(c.Interfaces))
	for i, name := range c.Interfaces {
		ifaces[i] = p.class(name)
	}
	for _, name := range c.ClassRefs {
		p.class(name)
	}
	for _, r := range c.FieldRefs {
		p.ref(9, r)
	}
	for _, r := range c.MethodRefs {
		p.ref(10, r)
	}

	var body []byte
	body = u2(body, c.Access)
	body = u2(body, this)
	body = u2(body, super)
	body = u2(body, uint16(len(ifaces)))
	for _, idx := range ifaces {
		body = u2(body, idx)
	}

	body = u2(body, uint16(len(c.Fields)))
	for _, f := range c.Fields {
		body = u2(body, f.Access)
		body = u2(body, p.utf8(f.Name))
		body = u2(body, p.utf8(f.Descriptor))
		var attrs [][]byte
		if f.Constant != nil {
			attrs = append(attrs, p.attr("ConstantValue", u2(nil, p.constant(f.Constant))))
		}
		if f.Signature != "" {
			attrs = append(attrs, p.attr("Signature", u2(nil, p.utf8(f.Signature))))
		}
		body = appendAttrs(body, attrs)
	}

	body = u2(body, uint16(len(c.Methods)))
	for _, m := range c.Methods {
		body = u2(body, m.Access)
		body = u2(body, p.utf8(m.Name))
		body = u2(body, p.utf8(m.Descriptor))
		var attrs [][]byte
		if m.Access&AccAbstract == 0 {
			// max_stack, max_locals, code_length, return, no handlers, no attributes.
			code := []byte{0, 1, 0, 1, 0, 0, 0, 1, 0xB1, 0, 0, 0, 0}
			attrs = append(attrs, p.attr("Code", code))
		}
		if len(m.Exceptions) > 0 {
			ex := u2(nil, uint16(len(m.Exceptions)))
			for _, name := range m.Exceptions {
				ex = u2(ex, p.class(name))
			}
			attrs = append(attrs, p.attr("Exceptions", ex))
		}
		if m.Signature != "" {
			attrs = append(attrs, p.attr("Signature", u2(nil, p.utf8(m.Signature))))
		}
		body = appendAttrs(body, attrs)
	}

	var classAttrs [][]byte
	if c.SourceFile != "" {
		classAttrs = append(classAttrs, p.attr("SourceFile", u2(nil, p.utf8(c.SourceFile))))
	}
	body = appendAttrs(body, classAttrs)

	out := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 65}
	out = u2(out, p.count())
	out = append(out, p.buf...)
	return append(out, body...)
}

type pool struct {
	buf   []byte
	next  uint16
	index map[string]uint16
}

func newPool() *pool {
	return &pool{next: 1, index: make(map[string]uint16)}
}

func (p *pool) count() uint16 { return p.next }

func (p *pool) add(key string, slots uint16, entry []byte) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := p.next
	p.buf = append(p.buf, entry...)
	p.next += slots
	p.index[key] = idx
	return idx
}

func (p *pool) utf8(s string) uint16 {
	entry := []byte{1}
	entry = u2(entry, uint16(len(s)))
	entry = append(entry, s...)
	return p.add("u:"+s, 1, entry)
}

func (p *pool) class(name string) uint16 {
	n := p.utf8(name)
	return p.add("c:"+name, 1, u2([]byte{7}, n))
}

func (p *pool) str(s string) uint16 {
	n := p.utf8(s)
	return p.add("s:"+s, 1, u2([]byte{8}, n))
}

func (p *pool) nameAndType(name, desc string) uint16 {
	n := p.utf8(name)
	d := p.utf8(desc)
	return p.add("nt:"+name+":"+desc, 1, u2(u2([]byte{12}, n), d))
}

func (p *pool) ref(tag byte, r Ref) uint16 {
	owner := p.class(r.Owner)
	nt := p.nameAndType(r.Name, r.Descriptor)
	key := string(rune('0'+tag)) + ":" + r.Owner + "." + r.Name + ":" + r.Descriptor
	return p.add(key, 1, u2(u2([]byte{tag}, owner), nt))
}

func (p *pool) constant(v any) uint16 {
	switch v := v.(type) {
	case int32:
		return p.add("i:"+string(u4(nil, uint32(v))), 1, u4([]byte{3}, uint32(v)))
	case float32:
		bits := math.Float32bits(v)
		return p.add("f:"+string(u4(nil, bits)), 1, u4([]byte{4}, bits))
	case int64:
		return p.add("l:"+string(u8(nil, uint64(v))), 2, u8([]byte{5}, uint64(v)))
	case float64:
		bits := math.Float64bits(v)
		return p.add("d:"+string(u8(nil, bits)), 2, u8([]byte{6}, bits))
	case string:
		return p.str(v)
	default:
		panic("classgen: unsupported constant type")
	}
}

func (p *pool) attr(name string, body []byte) []byte {
	out := u2(nil, p.utf8(name))
	out = u4(out, uint32(len(body)))
	return append(out, body...)
}

func appendAttrs(body []byte, attrs [][]byte) []byte {
	body = u2(body, uint16(len(attrs)))
	for _, a := range attrs {
		body = append(body, a...)
	}
	return body
}

func u2(b []byte, v uint16) []byte { return binary.BigEndian.AppendUint16(b, v) }
func u4(b []byte, v uint32) []byte { return binary.BigEndian.AppendUint32(b, v) }
func u8(b []byte, v uint64) []byte { return binary.BigEndian.AppendUint64(b, v) }
