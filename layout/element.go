package layout

import "github.com/wippyai/irgen/ir"

// NoStructIndex records that an element occupies no storage slot in the
// aggregate representation: either it is zero-size and was elided, or the
// layout lost static knowledge before the element was placed.
const NoStructIndex = ^uint32(0)

// ElementLayout is the layout of a single field of an aggregate. Records
// are created with the field's TypeInfo set; the builder fills ByteOffset
// and Index. An element is owned by the builder or finalized layout that
// placed it, and its ByteOffset is meaningful only while the owning layout
// is statically known.
type ElementLayout struct {
	Type       TypeInfo
	ByteOffset Size
	Index      uint32
}

// Element returns a record for the given field, not yet placed.
func Element(ti TypeInfo) ElementLayout {
	return ElementLayout{Type: ti, Index: NoStructIndex}
}

// HasStorage reports whether the element occupies a slot in the aggregate
// representation.
func (e *ElementLayout) HasStorage() bool { return e.Index != NoStructIndex }

// StructIndex returns the element's slot index in the aggregate
// representation, or false when it has no storage.
func (e *ElementLayout) StructIndex() (uint32, bool) {
	if e.Index == NoStructIndex {
		return 0, false
	}
	return e.Index, true
}

// Project computes the address of this field from a typed base address of
// the aggregate. The owning layout must be statically known and the element
// must have storage; fields placed after static knowledge was lost are
// projected by the caller with a runtime-computed offset and
// ir.Func.EmitPtrAdd instead.
func (e *ElementLayout) Project(fn *ir.Func, base ir.Address) ir.Address {
	if !e.HasStorage() {
		panic("layout: projecting element without storage")
	}
	st := base.Struct()
	if st == nil {
		panic("layout: projecting through an address not typed to an aggregate")
	}
	member := st.Member(int(e.Index))

	ptr := base.Pointer()
	if member.Offset != 0 {
		var off ir.Value
		if ptr.Type() == ir.ValI64 {
			off = fn.EmitI64Const(uint64(member.Offset))
		} else {
			off = fn.EmitI32Const(member.Offset)
		}
		ptr = fn.EmitPtrAdd(ptr, off)
	}

	align := Alignment(base.Alignment()).AlignmentAt(Size(member.Offset))
	return ir.NewAddress(ptr, member.Type, uint32(align))
}
