package layout

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/irgen/ir"
)

// Strategy governs how much leeway the packer has to rearrange fields.
type Strategy int

const (
	// Optimal lets the packer reorder fixed-size fields freely to minimize
	// padding; nothing external depends on field ordering.
	Optimal Strategy = iota

	// Universal keeps declaration order so separately compiled translation
	// units derive bit-identical layouts without coordination.
	Universal
)

func (s Strategy) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Universal:
		return "universal"
	default:
		return "unknown"
	}
}

// Kind is the kind of object being laid out.
type Kind int

const (
	// NonHeapObject does not reserve an object header.
	NonHeapObject Kind = iota

	// HeapObject reserves the target's heap header before any field.
	HeapObject
)

func (k Kind) String() string {
	switch k {
	case NonHeapObject:
		return "non-heap"
	case HeapObject:
		return "heap"
	default:
		return "unknown"
	}
}

// Builder accumulates the layout of one aggregate. It is created per
// aggregate, mutated by one goroutine, and consumed once by a finalized
// layout; it is not reusable afterwards.
type Builder struct {
	mod     *ir.Module
	fields  []*ir.Type
	offsets []uint32
	size    Size
	align   Alignment
	known   bool
}

// NewBuilder creates an empty builder over the module's target.
func NewBuilder(m *ir.Module) *Builder {
	return &Builder{mod: m, align: 1, known: true}
}

// AddHeapHeader reserves the target's heap object header. It must be the
// first mutating call on the builder.
func (b *Builder) AddHeapHeader() {
	if len(b.fields) != 0 || !b.size.IsZero() {
		panic("layout: heap header must be the first addition")
	}
	AddHeapHeaderToLayout(b.mod, &b.size, &b.align, &b.fields)
	b.offsets = append(b.offsets, 0)
}

// AddFields places a batch of fields under the given strategy. The records
// need only have Type set; offsets and struct indices are filled in.
//
// It returns whether the batch may have increased the storage requirements
// of the layout.
func (b *Builder) AddFields(fields []ElementLayout, strategy Strategy) bool {
	// Once static knowledge is gone no bound can be asserted for anything
	// that follows, so the batch always reports growth.
	grew := !b.known

	order := make([]int, len(fields))
	for i := range order {
		order[i] = i
	}
	if strategy == Optimal && b.known {
		// Only fields ahead of the first unresolved one may be reordered:
		// an unresolved field denies a static offset to everything after it
		// in declaration order, and reordering must not rescue them.
		n := len(fields)
		for i := range fields {
			if !isFixed(fields[i].Type) {
				n = i
				break
			}
		}
		// Widest alignment packs first; ties keep declaration order.
		sort.SliceStable(order[:n], func(i, j int) bool {
			a, c := &fields[order[i]], &fields[order[j]]
			return a.Type.FixedAlignment() > c.Type.FixedAlignment()
		})
	}

	for _, idx := range order {
		e := &fields[idx]

		if b.known && isFixed(e.Type) {
			sz := e.Type.FixedSize()
			al := e.Type.FixedAlignment()

			off := b.size.RoundUpTo(al)
			// Padding ahead of the field and a raised alignment are growth
			// too, even when the field itself is zero-size.
			if off != b.size || al > b.align {
				grew = true
			}
			e.ByteOffset = off
			b.size = off + sz
			b.align = b.align.Max(al)

			if sz.IsZero() {
				// Zero-size fields are elided from the representation.
				e.Index = NoStructIndex
				continue
			}
			e.Index = uint32(len(b.fields))
			b.fields = append(b.fields, e.Type.StorageType(b.mod))
			b.offsets = append(b.offsets, uint32(off))
			grew = true
			continue
		}

		if b.known {
			b.known = false
			Logger().Debug("layout: static layout lost",
				zap.Int("field", idx),
				zap.Uint32("size_so_far", uint32(b.size)))
		}
		e.ByteOffset = 0
		e.Index = NoStructIndex
		b.fields = append(b.fields, e.Type.StorageType(b.mod))
		b.offsets = append(b.offsets, 0)
		grew = true
	}
	return grew
}

func isFixed(ti TypeInfo) bool {
	return ti.HasFixedSize() && ti.HasFixedAlignment()
}

// Empty reports whether the layout is known to occupy no storage.
func (b *Builder) Empty() bool { return b.known && b.size.IsZero() }

// StructFields returns the representations accumulated so far, in emission
// order.
func (b *Builder) StructFields() []*ir.Type { return b.fields }

// HasKnownLayout reports whether every offset so far is a compile-time
// constant. Once false it stays false for the builder's lifetime.
func (b *Builder) HasKnownLayout() bool { return b.known }

// Size returns the storage size accumulated so far.
func (b *Builder) Size() Size { return b.size }

// Alignment returns the alignment accumulated so far: the maximum over the
// header, if any, and every field placed.
func (b *Builder) Alignment() Alignment { return b.align }

// AsAnonStruct materializes the accumulated representations as a new
// anonymous aggregate. It does not mutate the builder and may be called
// repeatedly.
func (b *Builder) AsAnonStruct() *ir.StructType {
	return b.mod.AnonStruct(b.members(), uint32(b.size), uint32(b.align))
}

// SetAsBodyOfStruct fills a forward-declared opaque handle with the
// accumulated representations. The handle must not already have a body.
func (b *Builder) SetAsBodyOfStruct(t *ir.StructType) {
	t.SetBody(b.members(), uint32(b.size), uint32(b.align))
}

func (b *Builder) members() []ir.Member {
	members := make([]ir.Member, len(b.fields))
	for i, ft := range b.fields {
		members[i] = ir.Member{Type: ft, Offset: b.offsets[i]}
	}
	return members
}
