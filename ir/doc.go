// Package ir is the code-generation side of the layout engine: aggregate
// type handles, a small function emitter, and wasm binary encoding.
//
// Aggregate types are sequences of member slots with byte offsets. A struct
// type may be forward-declared opaque and filled exactly once with SetBody,
// which is how recursive aggregates are emitted. The Func emitter produces
// the narrow instruction set layout finalization needs: integer constants,
// adds for address arithmetic, and returns. Emitted functions assemble into
// a complete wasm module with EncodeBinary, which the exec package can run.
//
// Pointer values in linear memory are plain integers, so retyping a pointer
// to an aggregate is purely structural: an Address pairs a pointer value
// with an element type and the alignment known for it.
package ir
