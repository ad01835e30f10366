package domain

import (
	"strconv"
	"strings"
)

// ClassView is a committed class record with every symbol resolved, as shown to users.
type ClassView struct {
	Name       string       `json:"name"`
	Super      string       `json:"super,omitempty"`
	Interface  bool         `json:"interface"`
	Interfaces []string     `json:"interfaces,omitempty"`
	Fields     []FieldView  `json:"fields,omitempty"`
	Methods    []MethodView `json:"methods,omitempty"`
	References []string     `json:"references,omitempty"`
	Dependents []string     `json:"dependents,omitempty"`
}

// FieldView is a resolved FieldInfo.
type FieldView struct {
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
	Constant   string `json:"constant,omitempty"`
}

// MethodView is a resolved MethodInfo.
type MethodView struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Exceptions []string `json:"exceptions,omitempty"`
}

// NewClassView resolves info against symbols. Dependents are the ids of the
// classes that directly reference info.
func NewClassView(info ClassInfo, symbols *SymbolTable, dependents []SymbolID) (ClassView, error) {
	r := viewResolver{symbols: symbols}
	view := ClassView{
		Name:       r.name(info.Name),
		Interface:  info.IsInterface(),
		Interfaces: r.names(info.Interfaces),
		References: r.names(info.References),
		Dependents: r.names(dependents),
	}
	if info.Super != NoSymbol {
		view.Super = r.name(info.Super)
	}
	for _, f := range info.Fields {
		view.Fields = append(view.Fields, FieldView{
			Name:       r.name(f.Name),
			Descriptor: r.name(f.Descriptor),
			Constant:   r.constant(f.Constant),
		})
	}
	for _, m := range info.Methods {
		view.Methods = append(view.Methods, MethodView{
			Name:       r.name(m.Name),
			Descriptor: r.name(m.Descriptor),
			Exceptions: r.names(m.Exceptions),
		})
	}
	return view, r.err
}

// FormatConstant renders c as it would appear in Java source.
func FormatConstant(c ConstantValue, symbols *SymbolTable) (string, error) {
	r := viewResolver{symbols: symbols}
	s := r.constant(c)
	return s, r.err
}

// viewResolver keeps the first resolution error.
type viewResolver struct {
	symbols *SymbolTable
	err     error
}

func (r *viewResolver) name(id SymbolID) string {
	s, err := r.symbols.Resolve(id)
	if err != nil && r.err == nil {
		r.err = err
	}
	return s
}

func (r *viewResolver) names(ids []SymbolID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = r.name(id)
	}
	return out
}

func (r *viewResolver) constant(c ConstantValue) string {
	switch c.Kind() {
	case ConstantEmpty:
		return ""
	case ConstantInt:
		return strconv.FormatInt(int64(c.Int()), 10)
	case ConstantLong:
		return strconv.FormatInt(c.Long(), 10) + "L"
	case ConstantFloat:
		return strconv.FormatFloat(float64(c.Float()), 'g', -1, 32) + "f"
	case ConstantDouble:
		return strconv.FormatFloat(c.Double(), 'g', -1, 64)
	case ConstantString:
		return strconv.Quote(r.name(c.Symbol()))
	case ConstantClass:
		return r.name(c.Symbol()) + ".class"
	case ConstantArray:
		elems := c.Elements()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = r.constant(e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return c.String()
	}
}
