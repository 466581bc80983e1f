// Package exec instantiates emitted modules under wazero and calls their
// exported functions. It exists to verify that emitted size, alignment and
// projection code computes the same numbers the layout engine derived
// statically.
package exec
