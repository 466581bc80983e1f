package ir

// Section IDs for the binary sections this emitter produces.
// Sections must appear in increasing order by ID.
const (
	SectionType     byte = 1  // Type section (function signatures)
	SectionFunction byte = 3  // Function section (type indices)
	SectionExport   byte = 7  // Export section
	SectionCode     byte = 10 // Code section (function bodies)
)

// KindFunc is the export descriptor kind for functions.
const KindFunc byte = 0

// FuncTypeByte introduces a function signature in the type section.
const FuncTypeByte byte = 0x60

// Value type encodings as defined in the WebAssembly binary format.
const (
	ValI32 ValType = 0x7F // 32-bit integer
	ValI64 ValType = 0x7E // 64-bit integer
	ValF32 ValType = 0x7D // 32-bit float
	ValF64 ValType = 0x7C // 64-bit float
)

// Opcodes used by the emitter.
const (
	OpLocalGet byte = 0x20
	OpLocalSet byte = 0x21
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpI32Add   byte = 0x6A
	OpI64Add   byte = 0x7C
	OpEnd      byte = 0x0B
)
