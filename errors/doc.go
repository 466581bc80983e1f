// Package errors provides structured error types for the layout engine's
// fallible surface: target configuration, WIT lowering, binary emission and
// module execution.
//
// Errors carry a Phase (where processing failed) and a Kind (what went
// wrong), so callers can match with errors.Is without string inspection:
//
//	err := errors.New(errors.PhaseLower, errors.KindUnsupported).
//	    Path("point", "x").
//	    WitType("future<u32>").
//	    Detail("no storage representation").
//	    Build()
//
// Contract violations inside the layout core (projecting a no-storage
// element, filling an already-bodied type) are programmer errors and panic;
// they never surface as values of this package.
package errors
