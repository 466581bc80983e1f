package lower

import (
	"github.com/wippyai/irgen/ir"
	"github.com/wippyai/irgen/layout"
)

type fixedInfo struct {
	rep   *ir.Type
	size  layout.Size
	align layout.Alignment
}

func fixed(size layout.Size, align layout.Alignment, rep *ir.Type) layout.TypeInfo {
	return fixedInfo{rep: rep, size: size, align: align}
}

func (f fixedInfo) HasFixedSize() bool { return true }

func (f fixedInfo) FixedSize() layout.Size { return f.size }

func (f fixedInfo) HasFixedAlignment() bool { return true }

func (f fixedInfo) FixedAlignment() layout.Alignment { return f.align }

func (f fixedInfo) StorageType(m *ir.Module) *ir.Type { return f.rep }

type deferredInfo struct {
	name string
}

// Deferred returns a descriptor for a field whose size and alignment are
// resolved only at a later stage, such as a generic parameter awaiting
// instantiation. Absorbing one makes a layout non-static.
func Deferred(name string) layout.TypeInfo {
	return deferredInfo{name: name}
}

func (d deferredInfo) HasFixedSize() bool      { return false }
func (d deferredInfo) HasFixedAlignment() bool { return false }

func (d deferredInfo) FixedSize() layout.Size {
	panic("lower: deferred type " + d.name + " has no fixed size")
}

func (d deferredInfo) FixedAlignment() layout.Alignment {
	panic("lower: deferred type " + d.name + " has no fixed alignment")
}

func (d deferredInfo) StorageType(m *ir.Module) *ir.Type {
	return ir.OpaqueType(d.name)
}
