package ir

import "fmt"

// ValType represents a WebAssembly value type.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "unknown"
	}
}

// ByteSize returns the storage size of the value type in linear memory.
func (v ValType) ByteSize() uint32 {
	switch v {
	case ValI32, ValF32:
		return 4
	case ValI64, ValF64:
		return 8
	default:
		return 0
	}
}

// TypeKind discriminates the storage representations a member slot can hold.
type TypeKind uint8

const (
	KindScalar  TypeKind = iota // a single wasm value type
	KindPointer                 // linear-memory pointer, width from the target
	KindBytes                   // raw byte block with explicit size and alignment
	KindStruct                  // a nested aggregate
	KindOpaque                  // layout unknown until a later stage
)

// Type describes the storage representation of one member slot.
type Type struct {
	Struct *StructType // KindStruct
	Name   string      // KindOpaque diagnostic name
	Val    ValType     // KindScalar
	Size   uint32      // KindPointer, KindBytes
	Align  uint32      // KindPointer, KindBytes
	Kind   TypeKind
}

// ScalarType returns the representation of a single wasm value.
func ScalarType(v ValType) *Type {
	return &Type{Kind: KindScalar, Val: v}
}

// BytesType returns an opaque byte block of the given size and alignment.
// Used for payload areas whose internal structure the backend never
// addresses, such as variant payloads and the heap object header.
func BytesType(size, align uint32) *Type {
	return &Type{Kind: KindBytes, Size: size, Align: align}
}

// OpaqueType returns a representation for a type whose size and alignment
// are not known at compile time. It occupies a member slot but reports no
// static size.
func OpaqueType(name string) *Type {
	return &Type{Kind: KindOpaque, Name: name}
}

// StructRef wraps an aggregate type handle as a member representation.
func StructRef(st *StructType) *Type {
	return &Type{Kind: KindStruct, Struct: st}
}

// ByteSize returns the static size of the representation, or false when the
// size is not known at compile time.
func (t *Type) ByteSize() (uint32, bool) {
	switch t.Kind {
	case KindScalar:
		return t.Val.ByteSize(), true
	case KindPointer, KindBytes:
		return t.Size, true
	case KindStruct:
		if !t.Struct.Complete() {
			return 0, false
		}
		return t.Struct.Size(), true
	default:
		return 0, false
	}
}

// ByteAlign returns the static alignment of the representation, or false
// when it is not known at compile time.
func (t *Type) ByteAlign() (uint32, bool) {
	switch t.Kind {
	case KindScalar:
		return t.Val.ByteSize(), true
	case KindPointer, KindBytes:
		return t.Align, true
	case KindStruct:
		if !t.Struct.Complete() {
			return 0, false
		}
		return t.Struct.Align(), true
	default:
		return 0, false
	}
}

func (t *Type) String() string {
	switch t.Kind {
	case KindScalar:
		return t.Val.String()
	case KindPointer:
		return "ptr"
	case KindBytes:
		return fmt.Sprintf("bytes<%d,%d>", t.Size, t.Align)
	case KindStruct:
		return "%" + t.Struct.Name()
	case KindOpaque:
		return "opaque<" + t.Name + ">"
	default:
		return "unknown"
	}
}

// Member is one storage slot of an aggregate: its representation and its
// byte offset from the start of the aggregate.
type Member struct {
	Type   *Type
	Offset uint32
}

// StructType is an aggregate type handle. It is created either complete or
// opaque; an opaque handle is filled exactly once with SetBody.
type StructType struct {
	name    string
	members []Member
	size    uint32
	align   uint32
	opaque  bool
}

// Name returns the handle's name. Anonymous aggregates are named by the
// module that synthesized them.
func (t *StructType) Name() string { return t.name }

// Complete reports whether the handle has a body.
func (t *StructType) Complete() bool { return !t.opaque }

// NumMembers returns the number of member slots.
func (t *StructType) NumMembers() int { return len(t.members) }

// Member returns the member slot at index i.
func (t *StructType) Member(i int) Member { return t.members[i] }

// Size returns the aggregate's total size in bytes.
// The handle must have a body.
func (t *StructType) Size() uint32 {
	if t.opaque {
		panic("ir: size of opaque struct " + t.name)
	}
	return t.size
}

// Align returns the aggregate's alignment in bytes.
// The handle must have a body.
func (t *StructType) Align() uint32 {
	if t.opaque {
		panic("ir: alignment of opaque struct " + t.name)
	}
	return t.align
}

// SetBody fills an opaque handle with its member list, size and alignment.
// Filling a handle that already has a body is a contract violation.
func (t *StructType) SetBody(members []Member, size, align uint32) {
	if !t.opaque {
		panic("ir: struct " + t.name + " already has a body")
	}
	t.members = append([]Member(nil), members...)
	t.size = size
	t.align = align
	t.opaque = false
}
