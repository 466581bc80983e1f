package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.bytecodealliance.org/wit"
	"golang.org/x/term"

	"github.com/wippyai/irgen"
	"github.com/wippyai/irgen/exec"
	"github.com/wippyai/irgen/ir"
	"github.com/wippyai/irgen/layout"
	"github.com/wippyai/irgen/lower"
)

func main() {
	var (
		fieldsStr   = flag.String("fields", "", "Comma-separated field types (u8,u32,string,?name for deferred)")
		strategyStr = flag.String("strategy", "universal", "Packing strategy: universal or optimal")
		heap        = flag.Bool("heap", false, "Lay out as a heap object with a header")
		targetName  = flag.String("target", "wasm32", "Target geometry: wasm32, wasm64, or a name from -targets")
		targetsFile = flag.String("targets", "", "TOML file with custom target descriptions")
		verify      = flag.Bool("verify", false, "Execute the emitted geometry functions and cross-check")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	target, err := resolveTarget(*targetName, *targetsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(target); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *fieldsStr == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -fields u8,u32,u8 [-strategy optimal] [-heap] [-target wasm64]")
		fmt.Fprintln(os.Stderr, "       inspect -fields u8,string -verify")
		fmt.Fprintln(os.Stderr, "       inspect -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(target, *fieldsStr, *strategyStr, *heap, *verify); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(target irgen.Target, fieldsStr, strategyStr string, heap, verify bool) error {
	strategy, err := parseStrategy(strategyStr)
	if err != nil {
		return err
	}

	m := ir.NewModule(target)
	names, fields, err := parseFields(m, fieldsStr)
	if err != nil {
		return err
	}

	kind := layout.NonHeapObject
	if heap {
		kind = layout.HeapObject
	}
	l := layout.New(m, kind, strategy, fields, nil)

	known := true
	for _, ti := range fields {
		if !ti.HasFixedSize() || !ti.HasFixedAlignment() {
			known = false
			break
		}
	}

	fmt.Printf("Target: %s (pointer %d/%d)\n", target.Name, target.PointerSize, target.PointerAlign)
	fmt.Printf("Strategy: %s, kind: %s\n\n", strategy, kind)
	printLayout(m, l, names, heap, known)

	if !verify {
		return nil
	}
	if !known {
		fmt.Println("\nSkipping -verify: layout is not fully known")
		return nil
	}
	return verifyLayout(m, l)
}

func printLayout(m *ir.Module, l *layout.StructLayout, names []string, heap, known bool) {
	if heap {
		fmt.Printf("  %-12s offset %4d  (heap header, %d bytes)\n",
			"header", 0, layout.HeapHeaderSize(m))
	}
	for i, e := range l.Elements() {
		name := fmt.Sprintf("field%d", i)
		if i < len(names) {
			name = names[i]
		}
		idx, ok := e.StructIndex()
		switch {
		case ok:
			fmt.Printf("  %-12s offset %4d  slot %d  %s\n",
				name, e.ByteOffset, idx, e.Type.StorageType(m))
		case e.Type.HasFixedSize() && e.Type.HasFixedAlignment():
			fmt.Printf("  %-12s offset %4d  (zero size, elided)\n", name, e.ByteOffset)
		default:
			fmt.Printf("  %-12s offset unknown\n", name)
		}
	}
	if known {
		fmt.Printf("\nSize: %d bytes, alignment: %d\n", l.Size(), l.Alignment())
	} else {
		fmt.Printf("\nSize: at least %d bytes (layout not fully known), alignment: %d\n",
			l.Size(), l.Alignment())
	}
}

// verifyLayout emits size and alignment functions, runs them, and checks
// the executed numbers against the static computation.
func verifyLayout(m *ir.Module, l *layout.StructLayout) error {
	ctx := context.Background()

	sizeFn := m.NewFunc("size", nil, []ir.ValType{ir.ValI32})
	sizeFn.Return(l.EmitSize(sizeFn))
	alignFn := m.NewFunc("align", nil, []ir.ValType{ir.ValI32})
	alignFn.Return(l.EmitAlign(alignFn))

	binary, err := m.EncodeBinary()
	if err != nil {
		return err
	}
	inst, err := exec.Instantiate(ctx, binary)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	size, err := inst.CallU32(ctx, "size")
	if err != nil {
		return err
	}
	align, err := inst.CallU32(ctx, "align")
	if err != nil {
		return err
	}

	fmt.Printf("\nExecuted: size=%d align=%d", size, align)
	if size == uint32(l.Size()) && align == uint32(l.Alignment()) {
		fmt.Println("  OK")
		return nil
	}
	return fmt.Errorf("executed geometry %d/%d disagrees with static %d/%d",
		size, align, l.Size(), l.Alignment())
}

func parseStrategy(s string) (layout.Strategy, error) {
	switch s {
	case "universal":
		return layout.Universal, nil
	case "optimal":
		return layout.Optimal, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q (want universal or optimal)", s)
	}
}

// parseFields maps a comma-separated type list to field descriptors.
// A ?name token stands for a field whose layout is not known statically.
func parseFields(m *ir.Module, s string) ([]string, []layout.TypeInfo, error) {
	lw := lower.NewLowerer(m)
	var (
		names  []string
		fields []layout.TypeInfo
	)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if name, ok := strings.CutPrefix(tok, "?"); ok {
			if name == "" {
				name = "deferred"
			}
			names = append(names, name)
			fields = append(fields, lower.Deferred(name))
			continue
		}
		wt, err := primitiveType(tok)
		if err != nil {
			return nil, nil, err
		}
		ti, err := lw.TypeInfo(wt)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, tok)
		fields = append(fields, ti)
	}
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("no fields given")
	}
	return names, fields, nil
}

func primitiveType(name string) (wit.Type, error) {
	switch name {
	case "bool":
		return wit.Bool{}, nil
	case "u8":
		return wit.U8{}, nil
	case "s8":
		return wit.S8{}, nil
	case "u16":
		return wit.U16{}, nil
	case "s16":
		return wit.S16{}, nil
	case "u32":
		return wit.U32{}, nil
	case "s32":
		return wit.S32{}, nil
	case "u64":
		return wit.U64{}, nil
	case "s64":
		return wit.S64{}, nil
	case "f32":
		return wit.F32{}, nil
	case "f64":
		return wit.F64{}, nil
	case "char":
		return wit.Char{}, nil
	case "string":
		return wit.String{}, nil
	default:
		return nil, fmt.Errorf("unknown field type %q", name)
	}
}

func resolveTarget(name, file string) (irgen.Target, error) {
	if file != "" {
		targets, err := irgen.LoadTargets(file)
		if err != nil {
			return irgen.Target{}, err
		}
		if t, ok := targets[name]; ok {
			return t, nil
		}
	}
	switch name {
	case "wasm32":
		return irgen.Wasm32(), nil
	case "wasm64":
		return irgen.Wasm64(), nil
	default:
		return irgen.Target{}, fmt.Errorf("unknown target %q", name)
	}
}
