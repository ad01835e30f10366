// Package classfile builds class metadata from compiled JVM class files.
package classfile

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/depcache/internal/engine/descriptor"
	"go.trai.ch/zerr"
)

const classMagic = 0xCAFEBABE

// Attribute names the reader understands. All others are skipped.
const (
	attrConstantValue = "ConstantValue"
	attrSignature     = "Signature"
	attrExceptions    = "Exceptions"
)

// Reader implements ports.ClassParser for JVM class files.
type Reader struct {
	backend string
	policy  ConstantPolicy
	logger  ports.Logger
}

var _ ports.ClassParser = (*Reader)(nil)

// NewReader creates a class file reader for backend.
func NewReader(backend string, policy ConstantPolicy, logger ports.Logger) *Reader {
	if policy == nil {
		policy = JavacPolicy{}
	}
	return &Reader{backend: backend, policy: policy, logger: logger}
}

// NewForConfig selects the reader for the configured backend and constant policy.
func NewForConfig(cfg *domain.Config, logger ports.Logger) (*Reader, error) {
	switch cfg.Backend {
	case "", domain.BackendJavac, domain.BackendECJ:
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidBackend, "failed to select backend"), "backend", cfg.Backend)
	}
	policy, err := PolicyFor(cfg.ConstantPolicy)
	if err != nil {
		return nil, err
	}
	backend := cfg.Backend
	if backend == "" {
		backend = domain.BackendJavac
	}
	return NewReader(backend, policy, logger), nil
}

// Backend returns the compiler backend the reader was selected for.
func (r *Reader) Backend() string { return r.backend }

// Policy returns the constant extraction policy.
func (r *Reader) Policy() ConstantPolicy { return r.policy }

// Parse implements ports.ClassParser.
func (r *Reader) Parse(ctx context.Context, in domain.CompiledClass, symbols *domain.SymbolTable) (domain.ClassInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClassInfo{}, err
	}

	info, err := r.parse(in, symbols)
	if err != nil {
		return domain.ClassInfo{}, zerr.With(err, "class", in.Name)
	}
	return info, nil
}

// classParse holds the state of one class being decoded.
type classParse struct {
	*Reader
	in      domain.CompiledClass
	symbols *domain.SymbolTable
	name    string
	refs    []domain.SymbolID
}

func (r *Reader) parse(in domain.CompiledClass, symbols *domain.SymbolTable) (domain.ClassInfo, error) {
	br := &reader{buf: in.Bytes}
	if br.u4() != classMagic {
		br.fail(0, "bad magic number")
		return domain.ClassInfo{}, br.err
	}
	br.u2() // minor
	br.u2() // major
	cp := readPool(br)
	if br.err != nil {
		return domain.ClassInfo{}, br.err
	}

	p := &classParse{Reader: r, in: in, symbols: symbols}
	info := domain.ClassInfo{Fingerprint: xxhash.Sum64(in.Bytes)}

	info.Access = domain.AccessFlags(br.u2())
	thisOff := br.off
	name, ok := cp.className(br.u2())
	if !ok {
		br.fail(thisOff, "invalid this_class index")
		return domain.ClassInfo{}, br.err
	}
	if in.Name != "" && in.Name != name {
		return domain.ClassInfo{}, zerr.With(zerr.Wrap(domain.ErrClassNameMismatch, "failed to parse class"), "declared", name)
	}
	p.name = name
	info.Name = symbols.Intern(name)

	superOff := br.off
	if idx := br.u2(); idx != 0 {
		super, ok := cp.className(idx)
		if !ok {
			br.fail(superOff, "invalid super_class index")
			return domain.ClassInfo{}, br.err
		}
		info.Super = p.addRef(super)
	}

	count := br.u2()
	for range count {
		off := br.off
		iface, ok := cp.className(br.u2())
		if !ok {
			br.fail(off, "invalid interface index")
			return domain.ClassInfo{}, br.err
		}
		info.Interfaces = append(info.Interfaces, p.addRef(iface))
	}
	info.Interfaces = domain.SortedSet(info.Interfaces)

	info.Fields = p.readFields(br, cp)
	info.Methods = p.readMethods(br, cp)
	p.skipAttributes(br)
	if br.err != nil {
		return domain.ClassInfo{}, br.err
	}
	if br.off != len(br.buf) {
		br.fail(br.off, "trailing bytes after class file")
		return domain.ClassInfo{}, br.err
	}

	p.poolReferences(cp)
	for _, ref := range in.References {
		p.addRef(ref)
	}
	info.References = domain.SortedSet(p.refs)
	return info, nil
}

func (p *classParse) readFields(br *reader, cp pool) []domain.FieldInfo {
	count := br.u2()
	if br.err != nil || count == 0 {
		return nil
	}
	fields := make([]domain.FieldInfo, 0, count)
	for range count {
		access := domain.AccessFlags(br.u2())
		name, desc, ok := p.memberNames(br, cp)
		if !ok {
			return nil
		}

		var raw *RawConstant
		attrs := br.u2()
		for range attrs {
			attrName, body := p.attribute(br, cp)
			if attrName == attrConstantValue && len(body) >= 2 {
				raw = constantAt(cp, uint16(body[0])<<8|uint16(body[1]))
			}
		}
		if br.err != nil {
			return nil
		}

		if t, err := descriptor.ParseField(desc); err != nil {
			p.warnDescriptor("field", name, desc, err)
		} else {
			p.addRefs(t.ClassNames())
		}

		fields = append(fields, domain.FieldInfo{
			Name:       p.symbols.Intern(name),
			Descriptor: p.symbols.Intern(desc),
			Access:     access,
			Constant:   p.policy.Constant(access, desc, raw, p.symbols),
		})
	}
	return fields
}

func (p *classParse) readMethods(br *reader, cp pool) []domain.MethodInfo {
	count := br.u2()
	if br.err != nil || count == 0 {
		return nil
	}
	methods := make([]domain.MethodInfo, 0, count)
	for range count {
		access := domain.AccessFlags(br.u2())
		name, desc, ok := p.memberNames(br, cp)
		if !ok {
			return nil
		}

		m := domain.MethodInfo{
			Name:       p.symbols.Intern(name),
			Descriptor: p.symbols.Intern(desc),
			Access:     access,
		}

		attrs := br.u2()
		for range attrs {
			attrName, body := p.attribute(br, cp)
			switch attrName {
			case attrExceptions:
				m.Exceptions = p.exceptions(body, cp)
			case attrSignature:
				m.Signature = p.signature(body, cp)
			}
		}
		if br.err != nil {
			return nil
		}

		parsed, err := descriptor.ParseMethod(desc)
		if err != nil {
			p.warnDescriptor("method", name, desc, err)
			m.ParamsUnknown = true
		} else {
			m.Params = make([]domain.SymbolID, len(parsed.Params))
			for i, param := range parsed.Params {
				m.Params[i] = p.symbols.Intern(param.String())
			}
			m.Return = p.symbols.Intern(parsed.Return.String())
			p.addRefs(parsed.ClassNames())
		}
		methods = append(methods, m)
	}
	return methods
}

func (p *classParse) memberNames(br *reader, cp pool) (name, desc string, ok bool) {
	off := br.off
	name, nameOK := cp.utf8(br.u2())
	desc, descOK := cp.utf8(br.u2())
	if br.err != nil {
		return "", "", false
	}
	if !nameOK || !descOK {
		br.fail(off, "invalid member name or descriptor index")
		return "", "", false
	}
	return name, desc, true
}

// attribute reads one attribute and returns its name and body.
func (p *classParse) attribute(br *reader, cp pool) (string, []byte) {
	off := br.off
	nameIdx := br.u2()
	length := br.u4()
	body := br.bytes(int(length))
	if br.err != nil {
		return "", nil
	}
	name, ok := cp.utf8(nameIdx)
	if !ok {
		br.fail(off, "invalid attribute name index")
		return "", nil
	}
	return name, body
}

func (p *classParse) skipAttributes(br *reader) {
	count := br.u2()
	for range count {
		br.skip(2)
		br.skip(int(br.u4()))
	}
}

func (p *classParse) exceptions(body []byte, cp pool) []domain.SymbolID {
	if len(body) < 2 {
		return nil
	}
	n := int(body[0])<<8 | int(body[1])
	var ids []domain.SymbolID
	for i := 0; i < n && 2+2*i+1 < len(body); i++ {
		idx := uint16(body[2+2*i])<<8 | uint16(body[3+2*i])
		if name, ok := cp.className(idx); ok {
			ids = append(ids, p.addRef(name))
		}
	}
	return ids
}

func (p *classParse) signature(body []byte, cp pool) domain.SymbolID {
	if len(body) < 2 {
		return domain.NoSymbol
	}
	sig, ok := cp.utf8(uint16(body[0])<<8 | uint16(body[1]))
	if !ok {
		return domain.NoSymbol
	}
	return p.symbols.Intern(sig)
}

// poolReferences records every class the constant pool mentions, including the
// types in member reference descriptors.
func (p *classParse) poolReferences(cp pool) {
	for _, e := range cp {
		switch e.tag {
		case tagClass:
			if name, ok := cp.utf8(e.a); ok {
				p.addRef(name)
			}
		case tagNameAndType:
			if desc, ok := cp.utf8(e.b); ok {
				p.addDescriptorRefs(desc)
			}
		case tagMethodType:
			if desc, ok := cp.utf8(e.a); ok {
				p.addDescriptorRefs(desc)
			}
		}
	}
}

func (p *classParse) addDescriptorRefs(desc string) {
	d, err := descriptor.Parse(desc)
	if err != nil {
		return
	}
	if d.Method != nil {
		p.addRefs(d.Method.ClassNames())
	} else if d.Field != nil {
		p.addRefs(d.Field.ClassNames())
	}
}

func (p *classParse) addRefs(names []string) {
	for _, n := range names {
		p.addRef(n)
	}
}

// addRef interns a referenced class and returns its id. Array class names are
// reduced to their element class; primitive arrays yield NoSymbol.
func (p *classParse) addRef(name string) domain.SymbolID {
	if len(name) > 0 && name[0] == '[' {
		t, err := descriptor.ParseField(name)
		if err != nil {
			return domain.NoSymbol
		}
		names := t.ClassNames()
		if len(names) == 0 {
			return domain.NoSymbol
		}
		name = names[0]
	}
	id := p.symbols.Intern(name)
	if name != p.name {
		p.refs = append(p.refs, id)
	}
	return id
}

func (p *classParse) warnDescriptor(kind, name, desc string, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(fmt.Sprintf("%s: %s %s has malformed descriptor %q, parameters unknown: %v", p.name, kind, name, desc, err))
}

// constantAt reads a loadable constant for a ConstantValue attribute.
func constantAt(cp pool, idx uint16) *RawConstant {
	if idx == 0 || int(idx) >= len(cp) {
		return nil
	}
	e := cp[idx]
	switch e.tag {
	case tagInteger, tagFloat, tagLong, tagDouble:
		return &RawConstant{Tag: e.tag, Bits: e.bits}
	case tagString:
		text, ok := cp.utf8(e.a)
		if !ok {
			return nil
		}
		return &RawConstant{Tag: tagString, Text: text}
	default:
		return nil
	}
}
