// Package layout computes the in-memory layout of aggregate types.
//
// A Builder accumulates fields under a chosen Strategy: Optimal lets the
// packer reorder fixed-size fields to minimize padding, Universal keeps
// declaration order so independently compiled units derive bit-identical
// layouts. Fields whose size or alignment is unresolved at compile time
// (generic parameters instantiated later) degrade the builder to an unknown
// layout; this is a normal outcome, not an error. Heap objects reserve the
// target's object header before any field.
//
// Finalizing produces an immutable StructLayout whose element records are
// positionally parallel to the fields supplied, each carrying its byte
// offset and its slot index in the emitted aggregate representation.
// Zero-size fields are elided from the representation and carry no slot.
//
// Contract violations (adding the heap header after other mutations,
// projecting an element without storage, filling an already-bodied handle)
// panic; nothing in this package returns an error.
package layout
