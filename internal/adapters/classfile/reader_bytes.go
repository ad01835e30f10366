package classfile

import (
	"encoding/binary"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// reader consumes big-endian class file data and latches the first error.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) fail(off int, reason string) {
	if r.err == nil {
		r.err = zerr.With(zerr.Wrap(domain.ErrInvalidClassFile, reason), "offset", off)
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.fail(r.off, "truncated class file")
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u1() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u2() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *reader) u4() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) bytes(n int) []byte {
	return r.take(n)
}

func (r *reader) skip(n int) {
	r.take(n)
}
