package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConfig Phase = "config" // target description loading
	PhaseLower  Phase = "lower"  // WIT type lowering
	PhaseLayout Phase = "layout" // layout computation
	PhaseEmit   Phase = "emit"   // binary emission
	PhaseExec   Phase = "exec"   // running emitted modules
	PhaseParse  Phase = "parse"  // input parsing
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindInvalidData  Kind = "invalid_data"
	KindUnsupported  Kind = "unsupported"
	KindNotFound     Kind = "not_found"
	KindOverflow     Kind = "overflow"
	KindBadGeometry  Kind = "bad_geometry"
	KindTrap         Kind = "trap"
)

// Error is the structured error type used throughout the engine
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	WitType string
	Target  string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.WitType != "" {
		b.WriteString(": WIT type ")
		b.WriteString(e.WitType)
	}
	if e.Target != "" {
		b.WriteString(": target ")
		b.WriteString(e.Target)
	}

	if e.Detail != "" {
		if e.WitType != "" || e.Target != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// WitType sets the WIT type name
func (b *Builder) WitType(t string) *Builder {
	b.err.WitType = t
	return b
}

// Target sets the target name
func (b *Builder) Target(t string) *Builder {
	b.err.Target = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Unsupported creates an unsupported type error
func Unsupported(phase Phase, path []string, witType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUnsupported,
		Path:    path,
		WitType: witType,
	}
}

// Overflow creates a size overflow error
func Overflow(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: detail,
	}
}

// BadAlignment creates a target geometry error for a non-power-of-two
// alignment field
func BadAlignment(target, field string, value uint32) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindBadGeometry,
		Target: target,
		Detail: fmt.Sprintf("%s = %d is not a power of two", field, value),
		Value:  value,
	}
}

// BadGeometry creates a target geometry error
func BadGeometry(target, field string, value uint32) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindBadGeometry,
		Target: target,
		Detail: fmt.Sprintf("%s = %d violates target geometry", field, value),
		Value:  value,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// EmitFailed creates a binary emission error
func EmitFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseEmit,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Trap creates an execution error for a trapped or failed call
func Trap(fn string, cause error) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindTrap,
		Detail: fmt.Sprintf("call %s", fn),
		Cause:  cause,
	}
}
