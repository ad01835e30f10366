package classfile

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// poolEntry is one decoded constant pool slot.
type poolEntry struct {
	tag  uint8
	text string
	bits uint64
	// a and b hold the pool indices of reference entries.
	a, b uint16
}

type pool []poolEntry

func (p pool) entry(idx uint16, tag uint8) (poolEntry, bool) {
	if idx == 0 || int(idx) >= len(p) || p[idx].tag != tag {
		return poolEntry{}, false
	}
	return p[idx], true
}

func (p pool) utf8(idx uint16) (string, bool) {
	e, ok := p.entry(idx, tagUtf8)
	return e.text, ok
}

// className resolves a CONSTANT_Class entry to its internal name.
func (p pool) className(idx uint16) (string, bool) {
	e, ok := p.entry(idx, tagClass)
	if !ok {
		return "", false
	}
	return p.utf8(e.a)
}

func readPool(r *reader) pool {
	count := r.u2()
	if r.err != nil {
		return nil
	}
	p := make(pool, count)
	for i := 1; i < int(count); i++ {
		off := r.off
		tag := r.u1()
		e := poolEntry{tag: tag}
		switch tag {
		case tagUtf8:
			n := r.u2()
			e.text = decodeModifiedUTF8(r.bytes(int(n)))
		case tagInteger, tagFloat:
			e.bits = uint64(r.u4())
		case tagLong, tagDouble:
			e.bits = uint64(r.u4())<<32 | uint64(r.u4())
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			e.a = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			e.a = r.u2()
			e.b = r.u2()
		case tagMethodHandle:
			e.a = uint16(r.u1())
			e.b = r.u2()
		default:
			r.fail(off, "unknown constant pool tag")
		}
		if r.err != nil {
			return nil
		}
		p[i] = e
		// Long and double take two slots.
		if tag == tagLong || tag == tagDouble {
			i++
		}
	}
	return p
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8, where NUL is encoded in two
// bytes and supplementary characters as surrogate pairs.
func decodeModifiedUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 || c == 0 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, utf8.RuneError)
			i++
		}
	}
	return string(utf16.Decode(units))
}
