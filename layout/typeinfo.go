package layout

import "github.com/wippyai/irgen/ir"

// TypeInfo describes one field to the packer. It is produced by the
// type-lowering side (see package lower); the packer only asks whether size
// and alignment are fixed at compile time and how the field is represented
// in the emitted aggregate.
//
// FixedSize and FixedAlignment may only be called when the corresponding
// Has query reports true.
type TypeInfo interface {
	HasFixedSize() bool
	FixedSize() Size
	HasFixedAlignment() bool
	FixedAlignment() Alignment

	// StorageType materializes the field's representation for embedding
	// into an aggregate owned by m.
	StorageType(m *ir.Module) *ir.Type
}
