package layout

import "github.com/wippyai/irgen/ir"

// The heap object header (reference count and metadata) is a module-wide
// constant fixed by the target, not computed per layout. These helpers are
// shared by the builder and by low-level callers that maintain their own
// (size, alignment, field-list) triple.

// HeapHeaderSize returns the size of the heap object header on the
// module's target.
func HeapHeaderSize(m *ir.Module) Size {
	return Size(m.Target().HeapHeaderSize)
}

// HeapHeaderAlignment returns the alignment of the heap object header on
// the module's target.
func HeapHeaderAlignment(m *ir.Module) Alignment {
	return Alignment(m.Target().HeapHeaderAlign)
}

// AddHeapHeaderToLayout prepends the heap header to an externally
// maintained layout triple, with the same effect Builder.AddHeapHeader has
// on a fresh builder. The triple must not contain any fields yet.
func AddHeapHeaderToLayout(m *ir.Module, size *Size, align *Alignment, fields *[]*ir.Type) {
	if len(*fields) != 0 || !size.IsZero() {
		panic("layout: heap header must precede all fields")
	}
	t := m.Target()
	*fields = append(*fields, ir.BytesType(t.HeapHeaderSize, t.HeapHeaderAlign))
	*size = Size(t.HeapHeaderSize)
	*align = Alignment(t.HeapHeaderAlign)
}
