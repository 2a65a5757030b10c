package quill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

type signalKind int

const (
	sigBreak signalKind = iota + 1
	sigContinue
	sigReturn
	sigThrow
	// sigAbort ends the run: cancellation or an exhausted step quota. It
	// is never caught and skips finally blocks.
	sigAbort
)

func (k signalKind) String() string {
	switch k {
	case sigBreak:
		return "break"
	case sigContinue:
		return "continue"
	case sigReturn:
		return "return"
	case sigThrow:
		return "throw"
	case sigAbort:
		return "abort"
	default:
		return "normal"
	}
}

// signal is the non-local outcome of executing a statement. A nil *signal
// means execution completed normally.
type signal struct {
	kind   signalKind
	value  Value
	pos    Position
	module string
	frames []StackFrame
	err    error
}

type callFrame struct {
	Function string
	Module   string
	Pos      Position
}

// Execution is the state of one run: step accounting, the call stack, the
// recursion guard and the cancellation flag. Natives receive it so they can
// write output or call back into script functions.
type Execution struct {
	engine      *Engine
	ctx         context.Context
	root        *Scope
	out         io.Writer
	quota       int
	steps       int
	callLimit   int
	callStack   []callFrame
	module      string
	sources     map[string]string
	guard       guard
	nativeDepth int
	lastValue   Value
	interrupted atomic.Bool
}

func (exec *Execution) Engine() *Engine          { return exec.engine }
func (exec *Execution) Context() context.Context { return exec.ctx }
func (exec *Execution) Output() io.Writer        { return exec.out }
func (exec *Execution) Root() *Scope             { return exec.root }

// step charges one unit of work and polls the cancellation flag.
func (exec *Execution) step() *signal {
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return &signal{kind: sigAbort, err: fmt.Errorf("%w (%d)", ErrStepQuotaExceeded, exec.quota)}
	}
	if exec.interrupted.Load() {
		return exec.cancelled()
	}
	return nil
}

func (exec *Execution) cancelled() *signal {
	cause := context.Cause(exec.ctx)
	if cause == nil {
		cause = context.Canceled
	}
	return &signal{kind: sigAbort, err: cause}
}

// throwValue raises v as a script exception at pos.
func (exec *Execution) throwValue(pos Position, v Value) *signal {
	return &signal{kind: sigThrow, value: v, pos: pos, module: exec.module, frames: exec.snapshotFrames(pos)}
}

// throwf raises an interpreter failure as a catchable error object.
func (exec *Execution) throwf(pos Position, kind ErrorKind, format string, args ...any) *signal {
	return exec.throwValue(pos, errorObject(kind, fmt.Sprintf(format, args...), pos))
}

// throwError converts an error from a value operation or a native into a
// signal. Faults keep their kind and thrown values are rethrown as they
// were; any other error is a HostError.
func (exec *Execution) throwError(pos Position, err error) *signal {
	var aborted *abortError
	if errors.As(err, &aborted) {
		return &signal{kind: sigAbort, err: aborted.err}
	}
	var rt *RuntimeError
	if errors.As(err, &rt) {
		return &signal{kind: sigThrow, value: rt.Value, pos: rt.Pos, module: rt.Module, frames: rt.Frames}
	}
	var thrown *ThrownError
	if errors.As(err, &thrown) {
		return exec.throwValue(pos, thrown.Value)
	}
	var fault *Fault
	if errors.As(err, &fault) {
		return exec.throwf(pos, fault.Kind, "%s", fault.Message)
	}
	return exec.throwf(pos, ErrorHost, "%s", err.Error())
}

func errorObject(kind ErrorKind, message string, pos Position) Value {
	return NewObject(map[string]Value{
		"type":    NewString(string(kind)),
		"message": NewString(message),
		"line":    NewInt(int64(pos.Line)),
		"column":  NewInt(int64(pos.Column)),
	})
}

// snapshotFrames lists the innermost frame first. Each call site is
// attributed to the function that made the call.
func (exec *Execution) snapshotFrames(pos Position) []StackFrame {
	frames := make([]StackFrame, 0, len(exec.callStack)+1)
	if len(exec.callStack) == 0 {
		return append(frames, StackFrame{Function: topLevelName(exec.module), Module: exec.module, Pos: pos})
	}
	current := exec.callStack[len(exec.callStack)-1]
	frames = append(frames, StackFrame{Function: current.Function, Module: exec.module, Pos: pos})
	for i := len(exec.callStack) - 1; i >= 0; i-- {
		cf := exec.callStack[i]
		caller := topLevelName(cf.Module)
		if i > 0 {
			caller = exec.callStack[i-1].Function
		}
		frames = append(frames, StackFrame{Function: caller, Module: cf.Module, Pos: cf.Pos})
	}
	return frames
}

func topLevelName(module string) string {
	if module == "" {
		return "<main>"
	}
	return "<module " + module + ">"
}

// abortError carries a run-ending condition through native code so that
// Call can hand it back to the evaluator unchanged.
type abortError struct {
	err error
}

func (e *abortError) Error() string { return e.err.Error() }
func (e *abortError) Unwrap() error { return e.err }

// errorFromSignal turns an escaping signal into the error a native or host
// sees.
func (exec *Execution) errorFromSignal(sig *signal) error {
	switch sig.kind {
	case sigAbort:
		return &abortError{err: sig.err}
	case sigThrow:
		return exec.runtimeError(sig)
	default:
		return exec.runtimeError(exec.throwf(sig.pos, ErrorInvalidControlFlow, "%s outside of a loop", sig.kind))
	}
}

// runtimeError describes an uncaught throw. Error objects produced by the
// interpreter keep their kind; any other thrown value is reported as Thrown.
func (exec *Execution) runtimeError(sig *signal) *RuntimeError {
	kind, message := ErrorThrown, sig.value.String()
	if obj := sig.value.Object(); obj != nil {
		t, hasType := obj.Get("type")
		m, hasMessage := obj.Get("message")
		if hasType && hasMessage && t.Kind() == KindString {
			kind, message = ErrorKind(t.String()), m.String()
		}
	}
	return &RuntimeError{
		Kind:      kind,
		Message:   message,
		Value:     sig.value,
		Module:    sig.module,
		Pos:       sig.pos,
		CodeFrame: formatCodeFrame(exec.sources[sig.module], sig.pos),
		Frames:    sig.frames,
	}
}

// runModule executes a parsed module's top-level statements against the
// root scope. A top-level return ends the module early.
func (exec *Execution) runModule(name string, prog *Program) error {
	exec.module = name
	exec.lastValue = Undefined()
	for _, stmt := range prog.Statements {
		sig := exec.execTopLevel(stmt)
		if sig == nil {
			continue
		}
		switch sig.kind {
		case sigReturn:
			exec.lastValue = sig.value
			return nil
		case sigAbort:
			return sig.err
		case sigThrow:
			return exec.runtimeError(sig)
		default:
			return exec.runtimeError(exec.throwf(sig.pos, ErrorInvalidControlFlow, "%s outside of a loop", sig.kind))
		}
	}
	return nil
}

func (exec *Execution) execTopLevel(stmt Statement) *signal {
	if es, ok := stmt.(*ExprStmt); ok {
		if sig := exec.step(); sig != nil {
			return sig
		}
		val, sig := exec.evalExpr(es.Expr, exec.root, 1)
		if sig == nil {
			exec.lastValue = val
		}
		return sig
	}
	return exec.execStmt(stmt, exec.root, 0)
}
