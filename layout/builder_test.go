package layout

import (
	"testing"

	"github.com/wippyai/irgen"
	"github.com/wippyai/irgen/ir"
)

// stubInfo is a minimal field descriptor for packer tests.
type stubInfo struct {
	size  Size
	align Alignment
	fixed bool
}

func fixedTI(size Size, align Alignment) TypeInfo {
	return stubInfo{size: size, align: align, fixed: true}
}

func deferredTI() TypeInfo {
	return stubInfo{}
}

func (s stubInfo) HasFixedSize() bool      { return s.fixed }
func (s stubInfo) HasFixedAlignment() bool { return s.fixed }

func (s stubInfo) FixedSize() Size {
	if !s.fixed {
		panic("stub: no fixed size")
	}
	return s.size
}

func (s stubInfo) FixedAlignment() Alignment {
	if !s.fixed {
		panic("stub: no fixed alignment")
	}
	return s.align
}

func (s stubInfo) StorageType(m *ir.Module) *ir.Type {
	if !s.fixed {
		return ir.OpaqueType("stub")
	}
	return ir.BytesType(uint32(s.size), uint32(s.align))
}

func elements(infos ...TypeInfo) []ElementLayout {
	out := make([]ElementLayout, len(infos))
	for i, ti := range infos {
		out[i] = Element(ti)
	}
	return out
}

func newTestModule() *ir.Module {
	return ir.NewModule(irgen.Wasm32())
}

func TestUniversalKeepsDeclarationOrder(t *testing.T) {
	b := NewBuilder(newTestModule())
	elts := elements(fixedTI(4, 4), fixedTI(1, 1), fixedTI(4, 4))

	grew := b.AddFields(elts, Universal)

	if !grew {
		t.Error("fields should report storage growth")
	}
	wantOffsets := []Size{0, 4, 8}
	for i, want := range wantOffsets {
		if elts[i].ByteOffset != want {
			t.Errorf("field %d offset: got %d, want %d", i, elts[i].ByteOffset, want)
		}
	}
	for i := range elts {
		if idx, ok := elts[i].StructIndex(); !ok || idx != uint32(i) {
			t.Errorf("field %d index: got %d/%v, want %d", i, idx, ok, i)
		}
	}
	if b.Size() != 12 {
		t.Errorf("size: got %d, want 12", b.Size())
	}
	if b.Alignment() != 4 {
		t.Errorf("alignment: got %d, want 4", b.Alignment())
	}
	if !b.HasKnownLayout() {
		t.Error("layout should stay known")
	}
}

func TestOptimalPacksWidestFirst(t *testing.T) {
	b := NewBuilder(newTestModule())
	elts := elements(fixedTI(4, 4), fixedTI(1, 1), fixedTI(4, 4))

	b.AddFields(elts, Optimal)

	if b.Size() != 9 {
		t.Errorf("size: got %d, want 9", b.Size())
	}
	if b.Alignment() != 4 {
		t.Errorf("alignment: got %d, want 4", b.Alignment())
	}
	// The two 4-byte fields pack first; the 1-byte field lands behind them
	// without forcing extra padding.
	if elts[0].ByteOffset != 0 {
		t.Errorf("first 4-byte field offset: got %d, want 0", elts[0].ByteOffset)
	}
	if elts[2].ByteOffset != 4 {
		t.Errorf("second 4-byte field offset: got %d, want 4", elts[2].ByteOffset)
	}
	if elts[1].ByteOffset != 8 {
		t.Errorf("1-byte field offset: got %d, want 8", elts[1].ByteOffset)
	}
}

func TestOptimalReordersOnlyAheadOfUnknownField(t *testing.T) {
	b := NewBuilder(newTestModule())
	elts := elements(fixedTI(1, 1), fixedTI(4, 4), deferredTI(), fixedTI(2, 2))

	b.AddFields(elts, Optimal)

	// The fixed prefix before the unresolved field still packs widest
	// first: the 4-byte field takes offset 0, the 1-byte field follows.
	if elts[1].ByteOffset != 0 {
		t.Errorf("4-byte field offset: got %d, want 0", elts[1].ByteOffset)
	}
	if idx, ok := elts[1].StructIndex(); !ok || idx != 0 {
		t.Errorf("4-byte field index: got %d/%v, want 0", idx, ok)
	}
	if elts[0].ByteOffset != 4 {
		t.Errorf("1-byte field offset: got %d, want 4", elts[0].ByteOffset)
	}

	// The unresolved field and everything after it end with no static slot,
	// fixed or not.
	if elts[2].HasStorage() {
		t.Error("unresolved field should have no storage slot")
	}
	if elts[3].HasStorage() {
		t.Error("fixed field after an unresolved field should have no storage slot")
	}
	if b.HasKnownLayout() {
		t.Error("layout should no longer be known")
	}
}

func TestFixedFieldAfterUnknownGetsNoSlot(t *testing.T) {
	for _, strategy := range []Strategy{Optimal, Universal} {
		t.Run(strategy.String(), func(t *testing.T) {
			b := NewBuilder(newTestModule())
			elts := elements(deferredTI(), fixedTI(4, 4))

			b.AddFields(elts, strategy)

			if idx, ok := elts[1].StructIndex(); ok {
				t.Errorf("fixed field after an unresolved field: got slot %d offset %d, want no slot",
					idx, elts[1].ByteOffset)
			}
		})
	}
}

func TestOptimalNeverWorseThanUniversal(t *testing.T) {
	cases := [][]TypeInfo{
		{fixedTI(1, 1), fixedTI(8, 8), fixedTI(1, 1), fixedTI(4, 4)},
		{fixedTI(2, 2), fixedTI(1, 1), fixedTI(2, 2), fixedTI(1, 1)},
		{fixedTI(4, 4), fixedTI(4, 4)},
		{fixedTI(1, 1), fixedTI(2, 2), fixedTI(4, 4), fixedTI(8, 8)},
		{},
	}

	for _, infos := range cases {
		opt := NewBuilder(newTestModule())
		opt.AddFields(elements(infos...), Optimal)

		uni := NewBuilder(newTestModule())
		uni.AddFields(elements(infos...), Universal)

		if opt.Size() > uni.Size() {
			t.Errorf("optimal %d > universal %d for %d fields",
				opt.Size(), uni.Size(), len(infos))
		}
	}
}

func TestHeapHeader(t *testing.T) {
	target := irgen.Target{
		Name:            "test",
		PointerSize:     4,
		PointerAlign:    4,
		HeapHeaderSize:  16,
		HeapHeaderAlign: 8,
	}
	m := ir.NewModule(target)

	b := NewBuilder(m)
	b.AddHeapHeader()

	if b.Empty() {
		t.Error("builder should not be empty after the header")
	}
	if b.Size() != Size(HeapHeaderSize(m)) {
		t.Errorf("size: got %d, want %d", b.Size(), HeapHeaderSize(m))
	}

	elts := elements(fixedTI(4, 4))
	b.AddFields(elts, Universal)

	if b.Size() != 20 {
		t.Errorf("size: got %d, want 20", b.Size())
	}
	if b.Alignment() != 8 {
		t.Errorf("alignment: got %d, want 8", b.Alignment())
	}
	if elts[0].ByteOffset != 16 {
		t.Errorf("field offset: got %d, want 16", elts[0].ByteOffset)
	}
	// Header occupies slot 0, the field slot 1.
	if idx, ok := elts[0].StructIndex(); !ok || idx != 1 {
		t.Errorf("field index: got %d/%v, want 1", idx, ok)
	}
}

func TestHeapHeaderMustComeFirst(t *testing.T) {
	b := NewBuilder(newTestModule())
	b.AddFields(elements(fixedTI(4, 4)), Universal)

	defer func() {
		if recover() == nil {
			t.Error("expected panic adding the header after a field")
		}
	}()
	b.AddHeapHeader()
}

func TestAddHeapHeaderToLayoutMatchesBuilder(t *testing.T) {
	m := newTestModule()

	b := NewBuilder(m)
	b.AddHeapHeader()

	var (
		size   Size
		align  Alignment = 1
		fields []*ir.Type
	)
	AddHeapHeaderToLayout(m, &size, &align, &fields)

	if size != b.Size() {
		t.Errorf("size: got %d, want %d", size, b.Size())
	}
	if align != b.Alignment() {
		t.Errorf("alignment: got %d, want %d", align, b.Alignment())
	}
	if len(fields) != len(b.StructFields()) {
		t.Errorf("fields: got %d, want %d", len(fields), len(b.StructFields()))
	}
}

func TestKnownLayoutLostIsPermanent(t *testing.T) {
	for _, strategy := range []Strategy{Optimal, Universal} {
		t.Run(strategy.String(), func(t *testing.T) {
			b := NewBuilder(newTestModule())
			elts := elements(deferredTI(), fixedTI(4, 4))

			grew := b.AddFields(elts, strategy)

			if !grew {
				t.Error("batch with unresolved field should report growth")
			}
			if b.HasKnownLayout() {
				t.Error("layout should no longer be known")
			}
			// Neither field gets a static slot: the unresolved field denies
			// one to every field after it, under any strategy.
			for i := range elts {
				if elts[i].HasStorage() {
					t.Errorf("field %d should have no storage slot", i)
				}
			}

			// Later batches never regain static knowledge, and always
			// report growth.
			later := elements(fixedTI(1, 1))
			if !b.AddFields(later, strategy) {
				t.Error("batch after knowledge loss should report growth")
			}
			if later[0].HasStorage() {
				t.Error("field after knowledge loss should have no storage slot")
			}
			if b.HasKnownLayout() {
				t.Error("layout must stay unknown")
			}
		})
	}
}

func TestZeroSizeFieldsAreElided(t *testing.T) {
	b := NewBuilder(newTestModule())
	elts := elements(fixedTI(4, 4), fixedTI(0, 1), fixedTI(4, 4))

	b.AddFields(elts, Universal)

	if elts[1].HasStorage() {
		t.Error("zero-size field should have no storage slot")
	}
	if idx, ok := elts[0].StructIndex(); !ok || idx != 0 {
		t.Errorf("first field index: got %d/%v, want 0", idx, ok)
	}
	if idx, ok := elts[2].StructIndex(); !ok || idx != 1 {
		t.Errorf("third field index: got %d/%v, want 1", idx, ok)
	}
	if got := len(b.StructFields()); got != 2 {
		t.Errorf("representation slots: got %d, want 2", got)
	}
	if b.Size() != 8 {
		t.Errorf("size: got %d, want 8", b.Size())
	}
}

func TestZeroSizeBatchReportsNoGrowth(t *testing.T) {
	b := NewBuilder(newTestModule())
	if b.AddFields(elements(fixedTI(0, 1), fixedTI(0, 1)), Universal) {
		t.Error("zero-size fields should not report growth")
	}
	if !b.Empty() {
		t.Error("builder should still be empty")
	}
}

func TestAlignedZeroSizeFieldReportsGrowth(t *testing.T) {
	b := NewBuilder(newTestModule())
	b.AddFields(elements(fixedTI(1, 1)), Universal)

	// Zero bytes of storage, but the 8-byte alignment pads the size from
	// 1 to 8 and raises the aggregate alignment.
	if !b.AddFields(elements(fixedTI(0, 8)), Universal) {
		t.Errorf("size grew to %d, align %d, but no growth was reported",
			b.Size(), b.Alignment())
	}
	if b.Size() != 8 {
		t.Errorf("size: got %d, want 8", b.Size())
	}
	if b.Alignment() != 8 {
		t.Errorf("alignment: got %d, want 8", b.Alignment())
	}

	// An alignment the layout already satisfies is still no growth.
	if b.AddFields(elements(fixedTI(0, 4)), Universal) {
		t.Error("satisfied zero-size field should not report growth")
	}
}

func TestEmpty(t *testing.T) {
	b := NewBuilder(newTestModule())
	if !b.Empty() {
		t.Error("fresh builder should be empty")
	}

	h := NewBuilder(newTestModule())
	h.AddHeapHeader()
	if h.Empty() {
		t.Error("header makes the layout nonempty")
	}

	u := NewBuilder(newTestModule())
	u.AddFields(elements(deferredTI()), Universal)
	if u.Empty() {
		t.Error("unknown layout is never empty")
	}
}

func TestAsAnonStruct(t *testing.T) {
	b := NewBuilder(newTestModule())
	b.AddFields(elements(fixedTI(4, 4), fixedTI(1, 1)), Universal)

	st := b.AsAnonStruct()
	if !st.Complete() {
		t.Fatal("anonymous struct should have a body")
	}
	if st.NumMembers() != 2 {
		t.Fatalf("members: got %d, want 2", st.NumMembers())
	}
	if st.Member(1).Offset != 4 {
		t.Errorf("member 1 offset: got %d, want 4", st.Member(1).Offset)
	}
	if st.Size() != 5 {
		t.Errorf("size: got %d, want 5", st.Size())
	}

	// AsAnonStruct is repeatable and does not disturb the builder.
	again := b.AsAnonStruct()
	if again.NumMembers() != 2 || b.Size() != 5 {
		t.Error("builder state changed by materialization")
	}
}

func TestSetAsBodyOfStruct(t *testing.T) {
	m := newTestModule()
	b := NewBuilder(m)
	b.AddFields(elements(fixedTI(8, 8)), Universal)

	st := m.DeclareStruct("node")
	b.SetAsBodyOfStruct(st)

	if !st.Complete() {
		t.Fatal("handle should have a body")
	}
	if st.Align() != 8 {
		t.Errorf("alignment: got %d, want 8", st.Align())
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic filling an already-bodied handle")
		}
	}()
	b.SetAsBodyOfStruct(st)
}
