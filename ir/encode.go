package ir

import (
	"bytes"

	"github.com/wippyai/irgen/errors"
)

var moduleHeader = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// EncodeBinary encodes the module's emitted functions as a WebAssembly
// binary, exporting each function under its name. Every function must be
// finished with Return first.
func (m *Module) EncodeBinary() ([]byte, error) {
	for _, f := range m.funcs {
		if !f.finished {
			return nil, errors.EmitFailed("function "+f.name+" has no return", nil)
		}
	}

	var w bytes.Buffer
	w.Write(moduleHeader)

	// Type section: one deduplicated signature per distinct shape.
	typeIdx := make([]uint32, len(m.funcs))
	var sec bytes.Buffer

	sigKey := func(f *Func) string {
		k := make([]byte, 0, len(f.params)+len(f.results)+1)
		for _, p := range f.params {
			k = append(k, byte(p))
		}
		k = append(k, 0)
		for _, r := range f.results {
			k = append(k, byte(r))
		}
		return string(k)
	}
	seen := make(map[string]uint32)
	var order []*Func
	for i, f := range m.funcs {
		key := sigKey(f)
		idx, ok := seen[key]
		if !ok {
			idx = uint32(len(order))
			seen[key] = idx
			order = append(order, f)
		}
		typeIdx[i] = idx
	}

	WriteLEB128u(&sec, uint32(len(order)))
	for _, f := range order {
		sec.WriteByte(FuncTypeByte)
		writeValTypes(&sec, f.params)
		writeValTypes(&sec, f.results)
	}
	writeSection(&w, SectionType, sec.Bytes())

	// Function section
	sec.Reset()
	WriteLEB128u(&sec, uint32(len(m.funcs)))
	for _, idx := range typeIdx {
		WriteLEB128u(&sec, idx)
	}
	writeSection(&w, SectionFunction, sec.Bytes())

	// Export section
	sec.Reset()
	WriteLEB128u(&sec, uint32(len(m.funcs)))
	for i, f := range m.funcs {
		WriteLEB128u(&sec, uint32(len(f.name)))
		sec.WriteString(f.name)
		sec.WriteByte(KindFunc)
		WriteLEB128u(&sec, uint32(i))
	}
	writeSection(&w, SectionExport, sec.Bytes())

	// Code section
	sec.Reset()
	WriteLEB128u(&sec, uint32(len(m.funcs)))
	for _, f := range m.funcs {
		body := encodeBody(f)
		WriteLEB128u(&sec, uint32(len(body)))
		sec.Write(body)
	}
	writeSection(&w, SectionCode, sec.Bytes())

	return w.Bytes(), nil
}

func encodeBody(f *Func) []byte {
	var b bytes.Buffer

	// Locals, run-length grouped by type.
	type group struct {
		typ   ValType
		count uint32
	}
	var groups []group
	for _, l := range f.locals {
		if n := len(groups); n > 0 && groups[n-1].typ == l {
			groups[n-1].count++
			continue
		}
		groups = append(groups, group{typ: l, count: 1})
	}
	WriteLEB128u(&b, uint32(len(groups)))
	for _, g := range groups {
		WriteLEB128u(&b, g.count)
		b.WriteByte(byte(g.typ))
	}

	b.Write(f.code.Bytes())
	b.WriteByte(OpEnd)
	return b.Bytes()
}

func writeValTypes(w *bytes.Buffer, types []ValType) {
	WriteLEB128u(w, uint32(len(types)))
	for _, t := range types {
		w.WriteByte(byte(t))
	}
}

func writeSection(w *bytes.Buffer, id byte, payload []byte) {
	w.WriteByte(id)
	WriteLEB128u(w, uint32(len(payload)))
	w.Write(payload)
}
