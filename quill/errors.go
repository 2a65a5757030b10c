package quill

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies runtime failures. Scripts see it as the type field
// of a caught error object.
type ErrorKind string

const (
	ErrorNoSuchField             ErrorKind = "NoSuchField"
	ErrorIndexOutOfBounds        ErrorKind = "IndexOutOfBounds"
	ErrorNotCallable             ErrorKind = "NotCallable"
	ErrorType                    ErrorKind = "TypeError"
	ErrorArityMismatch           ErrorKind = "ArityMismatch"
	ErrorDivisionByZero          ErrorKind = "DivisionByZero"
	ErrorInvalidAssignmentTarget ErrorKind = "InvalidAssignmentTarget"
	ErrorUndefinedVariable       ErrorKind = "UndefinedVariable"
	ErrorInvalidControlFlow      ErrorKind = "InvalidControlFlow"
	ErrorRecursionLimit          ErrorKind = "RecursionLimit"
	ErrorHost                    ErrorKind = "HostError"
	ErrorThrown                  ErrorKind = "Thrown"
	ErrorAssertion               ErrorKind = "AssertionError"
)

var (
	// ErrModuleNotFound is returned by a Source that does not hold the
	// requested module.
	ErrModuleNotFound = errors.New("module not found")

	ErrStepQuotaExceeded = errors.New("step quota exceeded")

	// ErrUnordered is returned by Value.Compare when a NaN is involved.
	ErrUnordered = errors.New("unordered comparison")
)

// Fault is a classified failure raised by value operations. Natives may
// return one to choose the kind a script sees.
type Fault struct {
	Kind    ErrorKind
	Message string
}

func (f *Fault) Error() string { return f.Message }

// Errorf builds a Fault of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return faultf(kind, format, args...)
}

func faultf(kind ErrorKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ThrownError lets a native throw an arbitrary script value.
type ThrownError struct {
	Value Value
}

func (e *ThrownError) Error() string { return "thrown: " + e.Value.String() }

// Throw returns an error that surfaces in the script as `throw v`.
func Throw(v Value) error { return &ThrownError{Value: v} }

type StackFrame struct {
	Function string
	Module   string
	Pos      Position
}

// SyntaxError reports a fatal parse failure or trailing unparsed input.
type SyntaxError struct {
	Module    string
	Pos       Position
	Message   string
	CodeFrame string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	b.WriteString("syntax error")
	if e.Module != "" {
		fmt.Fprintf(&b, " in module %s", e.Module)
	}
	fmt.Fprintf(&b, " at %s: %s", e.Pos, e.Message)
	if e.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(e.CodeFrame)
	}
	return b.String()
}

// RuntimeError is an uncaught throw. Value holds the thrown script value;
// for failures raised by the interpreter it is the error object the script
// would have caught.
type RuntimeError struct {
	Kind      ErrorKind
	Message   string
	Value     Value
	Module    string
	Pos       Position
	CodeFrame string
	Frames    []StackFrame
}

// UnresolvedImportError means no configured source holds an imported module.
type UnresolvedImportError struct {
	Name       string
	ImportedBy string
}

func (e *UnresolvedImportError) Error() string {
	if e.ImportedBy == "" {
		return fmt.Sprintf("unresolved import %q", e.Name)
	}
	return fmt.Sprintf("unresolved import %q (imported by %s)", e.Name, e.ImportedBy)
}

func (e *UnresolvedImportError) Unwrap() error { return ErrModuleNotFound }

// CircularDependencyError carries one concrete cycle, first module repeated
// at the end.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return "circular module dependency: " + strings.Join(e.Cycle, " -> ")
}
