package ir

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/irgen"
)

// Module owns the aggregate type handles and emitted functions for one
// compilation. It carries the Target whose geometry all layout computation
// in this module uses.
type Module struct {
	target    irgen.Target
	byName    map[string]*StructType
	funcNames map[string]struct{}
	funcs     []*Func
	anon      int
}

// NewModule creates a module for the given target.
func NewModule(target irgen.Target) *Module {
	return &Module{
		target:    target,
		byName:    make(map[string]*StructType),
		funcNames: make(map[string]struct{}),
	}
}

// Target returns the module's target description.
func (m *Module) Target() irgen.Target { return m.target }

// PtrType returns the representation of a linear-memory pointer on this
// module's target.
func (m *Module) PtrType() *Type {
	return &Type{Kind: KindPointer, Size: m.target.PointerSize, Align: m.target.PointerAlign}
}

// DeclareStruct creates an opaque (forward-declared) aggregate handle.
// Its body is filled later, exactly once, with SetBody.
func (m *Module) DeclareStruct(name string) *StructType {
	st := &StructType{name: m.structName(name), opaque: true}
	m.byName[st.name] = st
	return st
}

// NewStruct creates an aggregate handle with its body already set.
func (m *Module) NewStruct(name string, members []Member, size, align uint32) *StructType {
	st := &StructType{
		name:    m.structName(name),
		members: append([]Member(nil), members...),
		size:    size,
		align:   align,
	}
	m.byName[st.name] = st
	return st
}

// AnonStruct synthesizes an unnamed aggregate handle with the given body.
func (m *Module) AnonStruct(members []Member, size, align uint32) *StructType {
	m.anon++
	return m.NewStruct(fmt.Sprintf("anon.%d", m.anon), members, size, align)
}

// Struct looks up a named handle.
func (m *Module) Struct(name string) (*StructType, bool) {
	st, ok := m.byName[name]
	return st, ok
}

func (m *Module) structName(name string) string {
	if name == "" {
		m.anon++
		name = fmt.Sprintf("struct.%d", m.anon)
	}
	if _, taken := m.byName[name]; taken {
		panic("ir: duplicate struct name " + name)
	}
	return name
}

// NewFunc starts a function with the given signature. The function is
// exported under its name when the module is encoded; names must be unique
// within the module.
func (m *Module) NewFunc(name string, params, results []ValType) *Func {
	if _, taken := m.funcNames[name]; taken {
		panic("ir: duplicate function name " + name)
	}
	m.funcNames[name] = struct{}{}
	f := &Func{
		mod:     m,
		name:    name,
		params:  append([]ValType(nil), params...),
		results: append([]ValType(nil), results...),
	}
	m.funcs = append(m.funcs, f)
	Logger().Debug("ir: new function",
		zap.String("name", name),
		zap.Int("params", len(params)),
		zap.Int("results", len(results)))
	return f
}

// Funcs returns the functions emitted so far.
func (m *Module) Funcs() []*Func { return m.funcs }
