package store

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// FormatVersion is the version of the cache file layout.
const FormatVersion uint16 = 1

const (
	magic = "DPC1"

	tagSymbols byte = 0x53
	tagClasses byte = 0x43
	tagField   byte = 0x46
	tagMethod  byte = 0x4D

	flagParamsUnknown byte = 0x01

	headerSize  = len(magic) + 2 + 4 + 8
	trailerSize = 8

	// maxConstantDepth bounds nested array constants.
	maxConstantDepth = 64
)

// Persisted constant tags.
const (
	constEmpty byte = iota
	constInt
	constLong
	constFloat
	constDouble
	constString
	constClass
	constArray
)

// Encode serializes snap into the cache file layout.
func Encode(snap domain.Snapshot) []byte {
	buf := make([]byte, 0, 64+16*len(snap.Symbols)+128*len(snap.Classes))

	buf = append(buf, magic...)
	buf = binary.LittleEndian.AppendUint16(buf, FormatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, snap.Generation)
	buf = binary.LittleEndian.AppendUint64(buf, snap.Pass)

	buf = append(buf, tagSymbols)
	buf = binary.AppendUvarint(buf, uint64(len(snap.Symbols)))
	for _, s := range snap.Symbols {
		buf = appendString(buf, s)
	}

	buf = append(buf, tagClasses)
	buf = binary.AppendUvarint(buf, uint64(len(snap.Classes)))
	var payload []byte
	for _, info := range snap.Classes {
		payload = appendClass(payload[:0], info)
		buf = binary.AppendUvarint(buf, uint64(info.Name))
		buf = binary.AppendUvarint(buf, uint64(len(payload)))
		buf = append(buf, payload...)
	}

	return binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendID(buf []byte, id domain.SymbolID) []byte {
	return binary.AppendUvarint(buf, uint64(id))
}

func appendIDs(buf []byte, ids []domain.SymbolID) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(ids)))
	for _, id := range ids {
		buf = appendID(buf, id)
	}
	return buf
}

func appendClass(buf []byte, info domain.ClassInfo) []byte {
	buf = appendID(buf, info.Name)
	buf = appendID(buf, info.Super)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(info.Access))
	buf = binary.LittleEndian.AppendUint64(buf, info.Fingerprint)
	buf = appendIDs(buf, info.Interfaces)
	buf = appendIDs(buf, info.References)

	var body []byte
	buf = binary.AppendUvarint(buf, uint64(len(info.Fields)))
	for _, f := range info.Fields {
		body = appendID(body[:0], f.Name)
		body = appendID(body, f.Descriptor)
		body = binary.LittleEndian.AppendUint16(body, uint16(f.Access))
		body = appendConstant(body, f.Constant)
		buf = appendRecord(buf, tagField, body)
	}

	buf = binary.AppendUvarint(buf, uint64(len(info.Methods)))
	for _, m := range info.Methods {
		var flags byte
		if m.ParamsUnknown {
			flags |= flagParamsUnknown
		}
		body = appendID(body[:0], m.Name)
		body = appendID(body, m.Descriptor)
		body = binary.LittleEndian.AppendUint16(body, uint16(m.Access))
		body = append(body, flags)
		body = appendIDs(body, m.Params)
		body = appendID(body, m.Return)
		body = appendIDs(body, m.Exceptions)
		body = appendID(body, m.Signature)
		buf = appendRecord(buf, tagMethod, body)
	}
	return buf
}

func appendRecord(buf []byte, tag byte, body []byte) []byte {
	buf = append(buf, tag)
	buf = binary.AppendUvarint(buf, uint64(len(body)))
	return append(buf, body...)
}

func appendConstant(buf []byte, c domain.ConstantValue) []byte {
	switch c.Kind() {
	case domain.ConstantInt:
		buf = append(buf, constInt)
		return binary.LittleEndian.AppendUint32(buf, uint32(c.Bits()))
	case domain.ConstantLong:
		buf = append(buf, constLong)
		return binary.LittleEndian.AppendUint64(buf, c.Bits())
	case domain.ConstantFloat:
		buf = append(buf, constFloat)
		return binary.LittleEndian.AppendUint32(buf, uint32(c.Bits()))
	case domain.ConstantDouble:
		buf = append(buf, constDouble)
		return binary.LittleEndian.AppendUint64(buf, c.Bits())
	case domain.ConstantString:
		return appendID(append(buf, constString), c.Symbol())
	case domain.ConstantClass:
		return appendID(append(buf, constClass), c.Symbol())
	case domain.ConstantArray:
		elems := c.Elements()
		buf = append(buf, constArray)
		buf = binary.AppendUvarint(buf, uint64(len(elems)))
		for _, e := range elems {
			buf = appendConstant(buf, e)
		}
		return buf
	default:
		return append(buf, constEmpty)
	}
}

// Decode parses a cache file. Every inconsistency, including ids that were
// never interned in the symbol segment, fails with domain.ErrCacheCorrupted.
func Decode(data []byte) (domain.Snapshot, error) {
	if len(data) < headerSize+trailerSize {
		return domain.Snapshot{}, corrupt("truncated", len(data))
	}
	if string(data[:len(magic)]) != magic {
		return domain.Snapshot{}, corrupt("magic", 0)
	}
	if v := binary.LittleEndian.Uint16(data[len(magic):]); v != FormatVersion {
		return domain.Snapshot{}, zerr.With(corrupt("version", len(magic)), "version", v)
	}

	body := data[:len(data)-trailerSize]
	if binary.LittleEndian.Uint64(data[len(body):]) != xxhash.Sum64(body) {
		return domain.Snapshot{}, corrupt("checksum", len(body))
	}

	d := &decoder{data: body, off: len(magic) + 2}
	snap := domain.Snapshot{
		Generation: d.u32(),
		Pass:       d.u64(),
	}

	d.expect(tagSymbols, "segment")
	n := d.count()
	snap.Symbols = make([]string, 0, n)
	for range n {
		if d.err != nil {
			break
		}
		snap.Symbols = append(snap.Symbols, string(d.bytes(int(d.uvarint()))))
	}
	d.maxID = uint64(len(snap.Symbols))

	d.expect(tagClasses, "segment")
	n = d.count()
	snap.Classes = make([]domain.ClassInfo, 0, n)
	for range n {
		if d.err != nil {
			break
		}
		id := d.id()
		start := d.off
		sub := d.sub(int(d.uvarint()))
		info := sub.class()
		d.adopt(sub)
		if d.err == nil && info.Name != id {
			d.fail("class id", start)
		}
		snap.Classes = append(snap.Classes, info)
	}

	if d.err == nil && d.off != len(d.data) {
		d.fail("trailing", d.off)
	}
	if d.err != nil {
		return domain.Snapshot{}, d.err
	}
	return snap, nil
}

func corrupt(reason string, off int) error {
	err := zerr.Wrap(domain.ErrCacheCorrupted, "malformed cache file")
	err = zerr.With(err, "reason", reason)
	return zerr.With(err, "offset", off)
}

// decoder reads little-endian fields from data. The first error is latched
// and every later read returns zero values.
type decoder struct {
	data  []byte
	off   int
	base  int
	maxID uint64
	err   error
}

func (d *decoder) fail(reason string, off int) {
	if d.err == nil {
		d.err = corrupt(reason, d.base+off)
	}
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || n > len(d.data)-d.off {
		d.fail("truncated", d.off)
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() byte {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) u16() uint16 {
	if b := d.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *decoder) u64() uint64 {
	if b := d.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) bytes(n int) []byte {
	return d.take(n)
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.data[d.off:])
	if n <= 0 {
		d.fail("truncated", d.off)
		return 0
	}
	d.off += n
	return v
}

// count reads an element count; every element takes at least one byte.
func (d *decoder) count() int {
	off := d.off
	n := d.uvarint()
	if d.err == nil && n > uint64(len(d.data)-d.off) {
		d.fail("count", off)
		return 0
	}
	return int(n)
}

// id reads a symbol id that may be NoSymbol.
func (d *decoder) id() domain.SymbolID {
	off := d.off
	v := d.uvarint()
	if d.err == nil && (v > d.maxID || v > math.MaxUint32) {
		d.fail("symbol", off)
		return domain.NoSymbol
	}
	return domain.SymbolID(v)
}

func (d *decoder) ids() []domain.SymbolID {
	n := d.count()
	if n == 0 {
		return nil
	}
	ids := make([]domain.SymbolID, 0, n)
	for range n {
		ids = append(ids, d.id())
	}
	return ids
}

func (d *decoder) expect(tag byte, reason string) {
	off := d.off
	if got := d.u8(); d.err == nil && got != tag {
		d.fail(reason, off)
	}
}

// sub returns a decoder over the next n bytes. The record must be consumed completely.
func (d *decoder) sub(n int) *decoder {
	start := d.off
	b := d.take(n)
	return &decoder{data: b, base: d.base + start, maxID: d.maxID, err: d.err}
}

func (d *decoder) adopt(sub *decoder) {
	if sub.err == nil && sub.off != len(sub.data) {
		sub.fail("record length", sub.off)
	}
	if d.err == nil {
		d.err = sub.err
	}
}

func (d *decoder) class() domain.ClassInfo {
	info := domain.ClassInfo{
		Name:        d.id(),
		Super:       d.id(),
		Access:      domain.AccessFlags(d.u16()),
		Fingerprint: d.u64(),
		Interfaces:  d.ids(),
		References:  d.ids(),
	}
	if d.err == nil && info.Name == domain.NoSymbol {
		d.fail("class name", 0)
	}

	if n := d.count(); n > 0 {
		info.Fields = make([]domain.FieldInfo, 0, n)
		for range n {
			d.expect(tagField, "field tag")
			sub := d.sub(int(d.uvarint()))
			f := domain.FieldInfo{
				Name:       sub.id(),
				Descriptor: sub.id(),
				Access:     domain.AccessFlags(sub.u16()),
				Constant:   sub.constant(0),
			}
			d.adopt(sub)
			info.Fields = append(info.Fields, f)
		}
	}

	if n := d.count(); n > 0 {
		info.Methods = make([]domain.MethodInfo, 0, n)
		for range n {
			d.expect(tagMethod, "method tag")
			sub := d.sub(int(d.uvarint()))
			m := domain.MethodInfo{
				Name:       sub.id(),
				Descriptor: sub.id(),
				Access:     domain.AccessFlags(sub.u16()),
			}
			flagsOff := sub.off
			flags := sub.u8()
			if flags&^flagParamsUnknown != 0 {
				sub.fail("method flags", flagsOff)
			}
			m.ParamsUnknown = flags&flagParamsUnknown != 0
			m.Params = sub.ids()
			m.Return = sub.id()
			m.Exceptions = sub.ids()
			m.Signature = sub.id()
			d.adopt(sub)
			info.Methods = append(info.Methods, m)
		}
	}
	return info
}

func (d *decoder) constant(depth int) domain.ConstantValue {
	off := d.off
	tag := d.u8()
	if d.err != nil {
		return domain.Empty()
	}
	switch tag {
	case constEmpty:
		return domain.Empty()
	case constInt:
		return domain.IntConstant(int32(d.u32()))
	case constLong:
		return domain.LongConstant(int64(d.u64()))
	case constFloat:
		return domain.FloatConstantBits(d.u32())
	case constDouble:
		return domain.DoubleConstantBits(d.u64())
	case constString:
		return d.symbolConstant(domain.StringConstant)
	case constClass:
		return d.symbolConstant(domain.ClassConstant)
	case constArray:
		if depth >= maxConstantDepth {
			d.fail("constant depth", off)
			return domain.Empty()
		}
		n := d.count()
		elems := make([]domain.ConstantValue, 0, n)
		for range n {
			elems = append(elems, d.constant(depth+1))
		}
		return domain.ArrayConstant(elems...)
	default:
		d.fail("constant tag", off)
		return domain.Empty()
	}
}

func (d *decoder) symbolConstant(build func(domain.SymbolID) domain.ConstantValue) domain.ConstantValue {
	off := d.off
	id := d.id()
	if d.err == nil && id == domain.NoSymbol {
		d.fail("symbol", off)
	}
	return build(id)
}
