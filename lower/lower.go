package lower

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/irgen/errors"
	"github.com/wippyai/irgen/ir"
	"github.com/wippyai/irgen/layout"
)

// Lowerer maps WIT types to layout field descriptors for one module.
// Results are cached per typedef.
type Lowerer struct {
	mod   *ir.Module
	cache map[*wit.TypeDef]layout.TypeInfo
}

// NewLowerer creates a lowerer over the module's target geometry.
func NewLowerer(m *ir.Module) *Lowerer {
	return &Lowerer{
		mod:   m,
		cache: make(map[*wit.TypeDef]layout.TypeInfo),
	}
}

// TypeInfo lowers a WIT type to a field descriptor.
func (l *Lowerer) TypeInfo(t wit.Type) (layout.TypeInfo, error) {
	switch typ := t.(type) {
	case wit.Bool, wit.U8, wit.S8:
		return fixed(1, 1, ir.BytesType(1, 1)), nil
	case wit.U16, wit.S16:
		return fixed(2, 2, ir.BytesType(2, 2)), nil
	case wit.U32, wit.S32:
		return fixed(4, 4, ir.ScalarType(ir.ValI32)), nil
	case wit.Char:
		return fixed(4, 4, ir.ScalarType(ir.ValI32)), nil
	case wit.F32:
		return fixed(4, 4, ir.ScalarType(ir.ValF32)), nil
	case wit.U64, wit.S64:
		return fixed(8, 8, ir.ScalarType(ir.ValI64)), nil
	case wit.F64:
		return fixed(8, 8, ir.ScalarType(ir.ValF64)), nil
	case wit.String:
		return l.ptrLen(), nil
	case *wit.TypeDef:
		return l.typeDef(typ)
	default:
		return nil, errors.Unsupported(errors.PhaseLower, nil, typeString(t))
	}
}

func (l *Lowerer) typeDef(t *wit.TypeDef) (layout.TypeInfo, error) {
	if cached, ok := l.cache[t]; ok {
		return cached, nil
	}

	var (
		info layout.TypeInfo
		err  error
	)
	switch kind := t.Kind.(type) {
	case *wit.Record:
		info, err = l.record(typeName(t), kind.Fields)
	case *wit.Tuple:
		fields := make([]wit.Field, len(kind.Types))
		for i, ft := range kind.Types {
			fields[i] = wit.Field{Type: ft}
		}
		info, err = l.record(typeName(t), fields)
	case *wit.Variant:
		info, err = l.variant(kind)
	case *wit.Enum:
		n := discriminantSize(len(kind.Cases))
		info = fixed(layout.Size(n), layout.Alignment(n), ir.BytesType(n, n))
	case *wit.Flags:
		info = flags(len(kind.Flags))
	case *wit.List:
		info = l.ptrLen()
	case *wit.Option:
		info, err = l.option(kind)
	case *wit.Result:
		info, err = l.result(kind)
	case *wit.Own, *wit.Borrow:
		// Resource handles are indices, not storage.
		info = fixed(4, 4, ir.ScalarType(ir.ValI32))
	case wit.Type:
		return l.TypeInfo(kind)
	case nil:
		// Unresolved typedef: size and alignment arrive at a later stage.
		info = Deferred(typeName(t))
	default:
		err = errors.Unsupported(errors.PhaseLower, []string{typeName(t)}, typeString(t))
	}
	if err != nil {
		return nil, err
	}

	l.cache[t] = info
	return info, nil
}

func (l *Lowerer) record(name string, fields []wit.Field) (layout.TypeInfo, error) {
	infos := make([]layout.TypeInfo, len(fields))
	for i, f := range fields {
		ti, err := l.TypeInfo(f.Type)
		if err != nil {
			return nil, err
		}
		infos[i] = ti
	}
	// Declaration order: Canonical ABI layouts must agree across modules.
	sl := layout.New(l.mod, layout.NonHeapObject, layout.Universal, infos, nil)

	// Embedded records carry their tail padding.
	size := sl.Size().RoundUpTo(sl.Alignment())
	return fixed(size, sl.Alignment(), ir.StructRef(sl.Type())), nil
}

func (l *Lowerer) variant(v *wit.Variant) (layout.TypeInfo, error) {
	disc := discriminantSize(len(v.Cases))
	maxAlign := layout.Alignment(disc)
	maxSize := layout.Size(0)

	for _, cs := range v.Cases {
		if cs.Type == nil {
			continue
		}
		ti, err := l.TypeInfo(cs.Type)
		if err != nil {
			return nil, err
		}
		if !ti.HasFixedSize() || !ti.HasFixedAlignment() {
			continue
		}
		maxAlign = maxAlign.Max(ti.FixedAlignment())
		if s := ti.FixedSize(); s > maxSize {
			maxSize = s
		}
	}

	payload := layout.Size(disc).RoundUpTo(maxAlign)
	total := (payload + maxSize).RoundUpTo(maxAlign)
	return fixed(total, maxAlign, ir.BytesType(uint32(total), uint32(maxAlign))), nil
}

func (l *Lowerer) option(o *wit.Option) (layout.TypeInfo, error) {
	inner, err := l.TypeInfo(o.Type)
	if err != nil {
		return nil, err
	}
	align := layout.Alignment(1)
	size := layout.Size(0)
	if inner.HasFixedSize() && inner.HasFixedAlignment() {
		align = inner.FixedAlignment()
		size = inner.FixedSize()
	}
	payload := layout.Size(1).RoundUpTo(align)
	total := (payload + size).RoundUpTo(align)
	return fixed(total, align, ir.BytesType(uint32(total), uint32(align))), nil
}

func (l *Lowerer) result(r *wit.Result) (layout.TypeInfo, error) {
	align := layout.Alignment(1)
	size := layout.Size(0)
	for _, t := range []wit.Type{r.OK, r.Err} {
		if t == nil {
			continue
		}
		ti, err := l.TypeInfo(t)
		if err != nil {
			return nil, err
		}
		if !ti.HasFixedSize() || !ti.HasFixedAlignment() {
			continue
		}
		align = align.Max(ti.FixedAlignment())
		if s := ti.FixedSize(); s > size {
			size = s
		}
	}
	payload := layout.Size(1).RoundUpTo(align)
	total := (payload + size).RoundUpTo(align)
	return fixed(total, align, ir.BytesType(uint32(total), uint32(align))), nil
}

// ptrLen is the (pointer, length) pair strings and lists lower to.
func (l *Lowerer) ptrLen() layout.TypeInfo {
	t := l.mod.Target()
	return fixed(
		layout.Size(2*t.PointerSize),
		layout.Alignment(t.PointerAlign),
		ir.BytesType(2*t.PointerSize, t.PointerAlign),
	)
}

func flags(n int) layout.TypeInfo {
	switch {
	case n == 0:
		return fixed(0, 1, ir.BytesType(0, 1))
	case n <= 8:
		return fixed(1, 1, ir.BytesType(1, 1))
	case n <= 16:
		return fixed(2, 2, ir.BytesType(2, 2))
	case n <= 32:
		return fixed(4, 4, ir.ScalarType(ir.ValI32))
	case n <= 64:
		return fixed(8, 8, ir.ScalarType(ir.ValI64))
	default:
		// >64 flags: multiple u32s per Canonical ABI spec
		numU32s := uint32((n + 31) / 32)
		return fixed(layout.Size(numU32s*4), 4, ir.BytesType(numU32s*4, 4))
	}
}

func discriminantSize(cases int) uint32 {
	switch {
	case cases <= 1<<8:
		return 1
	case cases <= 1<<16:
		return 2
	default:
		return 4
	}
}

func typeName(t *wit.TypeDef) string {
	if t.Name != nil {
		return *t.Name
	}
	return "anon"
}

func typeString(t any) string {
	if s, ok := t.(interface{ String() string }); ok {
		return s.String()
	}
	return "unknown"
}
