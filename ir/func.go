package ir

import "bytes"

// Value is an emitted value: a typed local in the current function.
type Value struct {
	local uint32
	typ   ValType
}

// Type returns the value's wasm type.
func (v Value) Type() ValType { return v.typ }

// Address is a pointer value typed with the element it references and the
// alignment known to hold for it. Retyping a pointer produces a new Address
// over the same value; no runtime operation is involved.
type Address struct {
	elem  *Type
	ptr   Value
	align uint32
}

// NewAddress pairs a pointer value with an element type and alignment.
func NewAddress(ptr Value, elem *Type, align uint32) Address {
	return Address{elem: elem, ptr: ptr, align: align}
}

// Pointer returns the raw pointer value.
func (a Address) Pointer() Value { return a.ptr }

// ElemType returns the element type the address is known to reference.
func (a Address) ElemType() *Type { return a.elem }

// Struct returns the aggregate handle when the address references one,
// nil otherwise.
func (a Address) Struct() *StructType {
	if a.elem != nil && a.elem.Kind == KindStruct {
		return a.elem.Struct
	}
	return nil
}

// Alignment returns the alignment in bytes known for the address.
func (a Address) Alignment() uint32 { return a.align }

// Func accumulates the body of one emitted function. Every Emit method
// leaves its result in a fresh local so emitted values can be reused
// regardless of stack discipline.
type Func struct {
	mod      *Module
	name     string
	params   []ValType
	results  []ValType
	locals   []ValType
	code     bytes.Buffer
	finished bool
}

// Name returns the function's export name.
func (f *Func) Name() string { return f.name }

// Module returns the module the function belongs to.
func (f *Func) Module() *Module { return f.mod }

// Param returns the i-th parameter as a value.
func (f *Func) Param(i int) Value {
	return Value{local: uint32(i), typ: f.params[i]}
}

func (f *Func) newLocal(t ValType) Value {
	idx := uint32(len(f.params) + len(f.locals))
	f.locals = append(f.locals, t)
	return Value{local: idx, typ: t}
}

func (f *Func) emitGet(v Value) {
	f.code.WriteByte(OpLocalGet)
	WriteLEB128u(&f.code, v.local)
}

func (f *Func) emitSet(v Value) {
	f.code.WriteByte(OpLocalSet)
	WriteLEB128u(&f.code, v.local)
}

// EmitI32Const emits a 32-bit integer constant.
func (f *Func) EmitI32Const(v uint32) Value {
	f.checkOpen()
	f.code.WriteByte(OpI32Const)
	WriteLEB128s(&f.code, int32(v))
	out := f.newLocal(ValI32)
	f.emitSet(out)
	return out
}

// EmitI64Const emits a 64-bit integer constant.
func (f *Func) EmitI64Const(v uint64) Value {
	f.checkOpen()
	f.code.WriteByte(OpI64Const)
	WriteLEB128s64(&f.code, int64(v))
	out := f.newLocal(ValI64)
	f.emitSet(out)
	return out
}

// EmitI32Add emits a + b for two i32 values.
func (f *Func) EmitI32Add(a, b Value) Value {
	f.checkOpen()
	if a.typ != ValI32 || b.typ != ValI32 {
		panic("ir: i32.add on non-i32 values")
	}
	f.emitGet(a)
	f.emitGet(b)
	f.code.WriteByte(OpI32Add)
	out := f.newLocal(ValI32)
	f.emitSet(out)
	return out
}

// EmitPtrAdd advances a pointer value by a byte offset of the same width.
// This is the runtime-offset path for fields whose layout was not known at
// compile time: the caller obtains the offset elsewhere and applies it here.
func (f *Func) EmitPtrAdd(ptr, off Value) Value {
	f.checkOpen()
	if ptr.typ != off.typ {
		panic("ir: pointer and offset widths differ")
	}
	if ptr.typ == ValI64 {
		f.emitGet(ptr)
		f.emitGet(off)
		f.code.WriteByte(OpI64Add)
		out := f.newLocal(ValI64)
		f.emitSet(out)
		return out
	}
	return f.EmitI32Add(ptr, off)
}

// Return finishes the function, returning the given values. No further
// emission is permitted afterwards.
func (f *Func) Return(vals ...Value) {
	f.checkOpen()
	if len(vals) != len(f.results) {
		panic("ir: return arity mismatch")
	}
	for i, v := range vals {
		if v.typ != f.results[i] {
			panic("ir: return type mismatch")
		}
		f.emitGet(v)
	}
	f.finished = true
}

// Finished reports whether Return has been called.
func (f *Func) Finished() bool { return f.finished }

func (f *Func) checkOpen() {
	if f.finished {
		panic("ir: emission into finished function " + f.name)
	}
}
