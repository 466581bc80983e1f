package exec

import (
	"context"
	"testing"

	"github.com/wippyai/irgen"
	"github.com/wippyai/irgen/ir"
	"github.com/wippyai/irgen/layout"
	"github.com/wippyai/irgen/lower"

	"go.bytecodealliance.org/wit"
)

// End-to-end: lay out a record, emit its geometry and a projection, run
// the binary, and check the executed numbers against the static layout.
func TestEmittedGeometryMatchesLayout(t *testing.T) {
	ctx := context.Background()
	m := ir.NewModule(irgen.Wasm32())
	lw := lower.NewLowerer(m)

	var fields []layout.TypeInfo
	for _, wt := range []wit.Type{wit.U32{}, wit.U8{}} {
		ti, err := lw.TypeInfo(wt)
		if err != nil {
			t.Fatalf("lower: %v", err)
		}
		fields = append(fields, ti)
	}
	l := layout.New(m, layout.NonHeapObject, layout.Universal, fields, nil)

	sizeFn := m.NewFunc("size", nil, []ir.ValType{ir.ValI32})
	sizeFn.Return(l.EmitSize(sizeFn))

	alignFn := m.NewFunc("align", nil, []ir.ValType{ir.ValI32})
	alignFn.Return(l.EmitAlign(alignFn))

	projFn := m.NewFunc("project_y", []ir.ValType{ir.ValI32}, []ir.ValType{ir.ValI32})
	base := l.EmitCastTo(projFn, projFn.Param(0))
	elt := l.Elements()[1]
	projFn.Return(elt.Project(projFn, base).Pointer())

	binary, err := m.EncodeBinary()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	inst, err := Instantiate(ctx, binary)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	defer inst.Close(ctx)

	size, err := inst.CallU32(ctx, "size")
	if err != nil {
		t.Fatalf("call size: %v", err)
	}
	if size != uint32(l.Size()) {
		t.Errorf("executed size: got %d, want %d", size, l.Size())
	}

	align, err := inst.CallU32(ctx, "align")
	if err != nil {
		t.Fatalf("call align: %v", err)
	}
	if align != uint32(l.Alignment()) {
		t.Errorf("executed align: got %d, want %d", align, l.Alignment())
	}

	const baseAddr = 1024
	ptr, err := inst.CallU32(ctx, "project_y", baseAddr)
	if err != nil {
		t.Fatalf("call project_y: %v", err)
	}
	want := baseAddr + uint32(l.Elements()[1].ByteOffset)
	if ptr != want {
		t.Errorf("projected pointer: got %d, want %d", ptr, want)
	}
}

func TestRunU32(t *testing.T) {
	m := ir.NewModule(irgen.Wasm32())
	f := m.NewFunc("answer", nil, []ir.ValType{ir.ValI32})
	f.Return(f.EmitI32Const(42))

	got, err := RunU32(context.Background(), m, "answer")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestCallMissingFunction(t *testing.T) {
	ctx := context.Background()
	m := ir.NewModule(irgen.Wasm32())
	f := m.NewFunc("only", nil, nil)
	f.Return()

	binary, err := m.EncodeBinary()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	inst, err := Instantiate(ctx, binary)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	defer inst.Close(ctx)

	if _, err := inst.Call(ctx, "nope"); err == nil {
		t.Error("expected error for missing export")
	}
}

func TestInstantiateGarbage(t *testing.T) {
	if _, err := Instantiate(context.Background(), []byte("not wasm")); err == nil {
		t.Error("expected error for invalid binary")
	}
}
