// Package lower turns WIT types into the field descriptors the layout
// packer consumes, following the Canonical ABI's size and alignment rules
// on the module's target.
//
// Concrete WIT types lower to descriptors with fixed size and alignment.
// A typedef without a resolved kind lowers to a deferred descriptor: its
// size and alignment stay unknown until a later stage, which is the normal
// way a generic field degrades a layout to runtime-computed offsets.
package lower
