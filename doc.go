// Package irgen computes the in-memory layout of aggregate types for a
// WebAssembly code-generation backend.
//
// Given an ordered list of field descriptors, the engine decides each field's
// byte offset, the aggregate's total size and alignment, and whether a heap
// object header must be prefixed for reference-counted allocations.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	irgen/           Root package with the Target description
//	├── layout/      Struct layout builder and finalized layouts
//	├── ir/          Aggregate type handles and function emission
//	├── lower/       WIT types to field descriptors
//	├── exec/        Runs emitted modules under wazero for verification
//	├── errors/      Structured error types for the fallible surface
//	└── cmd/inspect  Layout inspector CLI
//
// # Quick Start
//
// Compute the layout of a struct with two fields:
//
//	mod := ir.NewModule(irgen.Wasm32())
//	lw := lower.NewLowerer(mod)
//	a, _ := lw.TypeInfo(wit.U64{})
//	b, _ := lw.TypeInfo(wit.U8{})
//	l := layout.New(mod, layout.NonHeapObject, layout.Optimal, []layout.TypeInfo{a, b}, nil)
//	fmt.Println(l.Size(), l.Alignment())
//
// Layouts are immutable once finalized and safe for concurrent reads. A
// Builder must be confined to a single goroutine.
package irgen
