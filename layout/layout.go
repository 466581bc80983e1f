package layout

import "github.com/wippyai/irgen/ir"

// StructLayout is the immutable result of laying out a complete aggregate.
// It is safe for concurrent reads.
type StructLayout struct {
	ty       *ir.StructType
	elements []ElementLayout
	size     Size
	align    Alignment
}

// New lays out a complete aggregate in one pass: a fresh builder, the heap
// header iff kind is HeapObject, then all fields in a single batch under
// the given strategy.
//
// If typeToFill is non-nil it must be an opaque handle; its body is filled
// with the result. Otherwise a new anonymous aggregate is synthesized.
func New(m *ir.Module, kind Kind, strategy Strategy, fields []TypeInfo, typeToFill *ir.StructType) *StructLayout {
	b := NewBuilder(m)
	if kind == HeapObject {
		b.AddHeapHeader()
	}

	elements := make([]ElementLayout, len(fields))
	for i, ti := range fields {
		elements[i] = Element(ti)
	}
	b.AddFields(elements, strategy)

	ty := typeToFill
	if ty != nil {
		b.SetAsBodyOfStruct(ty)
	} else {
		ty = b.AsAnonStruct()
	}

	return &StructLayout{
		ty:       ty,
		elements: elements,
		size:     b.Size(),
		align:    b.Alignment(),
	}
}

// FromBuilder wraps an already-populated builder and an externally
// assembled element list, for callers that interleaved their own
// bookkeeping around the builder's incremental calls.
func FromBuilder(b *Builder, ty *ir.StructType, elements []ElementLayout) *StructLayout {
	return &StructLayout{
		ty:       ty,
		elements: append([]ElementLayout(nil), elements...),
		size:     b.Size(),
		align:    b.Alignment(),
	}
}

// Elements returns the element layouts, positionally parallel to the fields
// supplied at construction.
func (l *StructLayout) Elements() []ElementLayout { return l.elements }

// Type returns the aggregate representation handle.
func (l *StructLayout) Type() *ir.StructType { return l.ty }

// Size returns the aggregate's total size.
func (l *StructLayout) Size() Size { return l.size }

// Alignment returns the aggregate's alignment.
func (l *StructLayout) Alignment() Alignment { return l.align }

// Empty reports whether the aggregate occupies no storage.
func (l *StructLayout) Empty() bool { return l.size.IsZero() }

// HasStaticLayout reports whether size and alignment are emitted as
// compile-time constants. Finalized layouts always are; aggregates whose
// fields lost static knowledge are finished with runtime-computed offsets
// by a higher-level mechanism.
func (l *StructLayout) HasStaticLayout() bool { return true }

// EmitSize emits the aggregate's size as a constant of the target's
// pointer width.
func (l *StructLayout) EmitSize(fn *ir.Func) ir.Value {
	return emitGeometry(fn, uint32(l.size))
}

// EmitAlign emits the aggregate's alignment as a constant of the target's
// pointer width.
func (l *StructLayout) EmitAlign(fn *ir.Func) ir.Value {
	return emitGeometry(fn, uint32(l.align))
}

// EmitCastTo retypes a pointer value as a pointer to this aggregate. There
// is no runtime check; the pointer must reference compatibly laid out
// storage.
func (l *StructLayout) EmitCastTo(fn *ir.Func, ptr ir.Value) ir.Address {
	return ir.NewAddress(ptr, ir.StructRef(l.ty), uint32(l.align))
}

func emitGeometry(fn *ir.Func, v uint32) ir.Value {
	if fn.Module().Target().PointerSize == 8 {
		return fn.EmitI64Const(uint64(v))
	}
	return fn.EmitI32Const(v)
}
