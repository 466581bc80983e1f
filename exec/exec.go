package exec

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/irgen/errors"
	"github.com/wippyai/irgen/ir"
)

// Instance wraps an instantiated emitted module.
type Instance struct {
	rt  wazero.Runtime
	mod api.Module
}

// Instantiate compiles and instantiates an emitted binary.
// The caller must Close the instance.
func Instantiate(ctx context.Context, binary []byte) (*Instance, error) {
	rt := wazero.NewRuntime(ctx)
	mod, err := rt.Instantiate(ctx, binary)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Trap("instantiate", err)
	}
	return &Instance{rt: rt, mod: mod}, nil
}

// Call invokes an exported function and returns its raw results.
func (i *Instance) Call(ctx context.Context, fn string, args ...uint64) ([]uint64, error) {
	f := i.mod.ExportedFunction(fn)
	if f == nil {
		return nil, errors.NotFound(errors.PhaseExec, "function", fn)
	}
	res, err := f.Call(ctx, args...)
	if err != nil {
		return nil, errors.Trap(fn, err)
	}
	return res, nil
}

// CallU32 invokes an exported function returning a single value and
// truncates it to 32 bits.
func (i *Instance) CallU32(ctx context.Context, fn string, args ...uint64) (uint32, error) {
	res, err := i.Call(ctx, fn, args...)
	if err != nil {
		return 0, err
	}
	if len(res) != 1 {
		return 0, errors.InvalidInput(errors.PhaseExec, "expected one result from "+fn)
	}
	return uint32(res[0]), nil
}

// Close releases the instance and its runtime.
func (i *Instance) Close(ctx context.Context) error {
	if err := i.mod.Close(ctx); err != nil {
		i.rt.Close(ctx)
		return err
	}
	return i.rt.Close(ctx)
}

// RunU32 is the one-shot path: encode the module, run a single exported
// function, tear everything down.
func RunU32(ctx context.Context, m *ir.Module, fn string, args ...uint64) (uint32, error) {
	binary, err := m.EncodeBinary()
	if err != nil {
		return 0, err
	}
	inst, err := Instantiate(ctx, binary)
	if err != nil {
		return 0, err
	}
	defer inst.Close(ctx)
	return inst.CallU32(ctx, fn, args...)
}
