package irgen

import (
	"math/bits"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/irgen/errors"
)

// Target describes the memory geometry layout computation depends on:
// pointer width and the heap object header reserved in front of
// reference-counted allocations. A Target is resolved once at startup and
// passed explicitly into every module; layout code never reads ambient
// global state.
type Target struct {
	Name            string `toml:"name"`
	PointerSize     uint32 `toml:"pointer_size"`
	PointerAlign    uint32 `toml:"pointer_align"`
	HeapHeaderSize  uint32 `toml:"heap_header_size"`
	HeapHeaderAlign uint32 `toml:"heap_header_align"`
}

// Wasm32 returns the default 32-bit linear memory target. The heap header is
// a reference count plus a metadata pointer, both pointer-sized.
func Wasm32() Target {
	return Target{
		Name:            "wasm32",
		PointerSize:     4,
		PointerAlign:    4,
		HeapHeaderSize:  8,
		HeapHeaderAlign: 4,
	}
}

// Wasm64 returns the 64-bit linear memory target.
func Wasm64() Target {
	return Target{
		Name:            "wasm64",
		PointerSize:     8,
		PointerAlign:    8,
		HeapHeaderSize:  16,
		HeapHeaderAlign: 8,
	}
}

// Validate checks the geometry invariants: alignments must be nonzero powers
// of two, the header size a multiple of its alignment.
func (t Target) Validate() error {
	if t.Name == "" {
		return errors.InvalidInput(errors.PhaseConfig, "target has no name")
	}
	if !isPow2(t.PointerAlign) {
		return errors.BadAlignment(t.Name, "pointer_align", t.PointerAlign)
	}
	if !isPow2(t.HeapHeaderAlign) {
		return errors.BadAlignment(t.Name, "heap_header_align", t.HeapHeaderAlign)
	}
	if t.PointerSize == 0 || t.PointerSize%t.PointerAlign != 0 {
		return errors.BadGeometry(t.Name, "pointer_size", t.PointerSize)
	}
	if t.HeapHeaderSize%t.HeapHeaderAlign != 0 {
		return errors.BadGeometry(t.Name, "heap_header_size", t.HeapHeaderSize)
	}
	return nil
}

func isPow2(v uint32) bool {
	return v != 0 && bits.OnesCount32(v) == 1
}

type targetFile struct {
	Targets map[string]Target `toml:"targets"`
}

// LoadTargets reads a TOML target description file. Each [targets.<name>]
// table becomes a validated Target keyed by name:
//
//	[targets.wasm32-big-header]
//	pointer_size = 4
//	pointer_align = 4
//	heap_header_size = 16
//	heap_header_align = 8
func LoadTargets(path string) (map[string]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseFailed("target file", err)
	}
	var file targetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.ParseFailed("target file", err)
	}
	out := make(map[string]Target, len(file.Targets))
	for name, t := range file.Targets {
		if t.Name == "" {
			t.Name = name
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}
