package quill

func (exec *Execution) evalCall(e *CallExpr, scope *Scope, depth int) (Value, *signal) {
	callee, sig := exec.evalExpr(e.Callee, scope, depth)
	if sig != nil {
		return Value{}, sig
	}
	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		val, sig := exec.evalExpr(arg, scope, depth)
		if sig != nil {
			return Value{}, sig
		}
		args = append(args, val)
	}
	return exec.invoke(callee, args, e.position, depth)
}

func (exec *Execution) invoke(callee Value, args []Value, pos Position, depth int) (Value, *signal) {
	switch callee.Kind() {
	case KindFunction:
		return exec.callFunction(callee.Function(), args, pos, depth)
	case KindBuiltin:
		return exec.callBuiltin(callee.Builtin(), args, pos, depth)
	default:
		return Value{}, exec.throwf(pos, ErrorNotCallable, "%s is not callable", callee.Kind())
	}
}

// callFunction runs a closure body in a fresh child of its captured scope.
// Falling off the end yields undefined.
func (exec *Execution) callFunction(fn *Function, args []Value, pos Position, depth int) (Value, *signal) {
	if len(args) != len(fn.Params) {
		return Value{}, exec.throwf(pos, ErrorArityMismatch, "%s expects %d arguments, got %d", fn.displayName(), len(fn.Params), len(args))
	}
	if exec.callLimit > 0 && len(exec.callStack) >= exec.callLimit {
		return Value{}, exec.throwf(pos, ErrorRecursionLimit, "call depth exceeded %d", exec.callLimit)
	}

	callScope := NewScope(fn.Scope)
	for i, name := range fn.Params {
		callScope.Declare(name, args[i])
	}

	exec.callStack = append(exec.callStack, callFrame{Function: fn.displayName(), Module: exec.module, Pos: pos})
	caller := exec.module
	exec.module = fn.Module
	sig := exec.execStatements(fn.Body.Statements, callScope, depth)
	exec.module = caller
	exec.callStack = exec.callStack[:len(exec.callStack)-1]

	if sig == nil {
		return Undefined(), nil
	}
	switch sig.kind {
	case sigReturn:
		return sig.value, nil
	case sigBreak, sigContinue:
		return Value{}, exec.throwf(sig.pos, ErrorInvalidControlFlow, "%s cannot cross a function boundary", sig.kind)
	default:
		return Value{}, sig
	}
}

func (exec *Execution) callBuiltin(b *Builtin, args []Value, pos Position, depth int) (Value, *signal) {
	if b.Variadic && len(args) < b.Arity {
		return Value{}, exec.throwf(pos, ErrorArityMismatch, "%s expects at least %d arguments, got %d", b.Name, b.Arity, len(args))
	}
	if !b.Variadic && len(args) != b.Arity {
		return Value{}, exec.throwf(pos, ErrorArityMismatch, "%s expects %d arguments, got %d", b.Name, b.Arity, len(args))
	}
	saved := exec.nativeDepth
	exec.nativeDepth = depth
	val, err := b.Fn(exec, args)
	exec.nativeDepth = saved
	if err != nil {
		return Value{}, exec.throwError(pos, err)
	}
	return val, nil
}

// Call invokes a script or native callable from native code. An uncaught
// throw comes back as *RuntimeError; returning that error from the native
// rethrows the original value.
func (exec *Execution) Call(fn Value, args ...Value) (Value, error) {
	var pos Position
	if len(exec.callStack) > 0 {
		pos = exec.callStack[len(exec.callStack)-1].Pos
	}
	val, sig := exec.invoke(fn, args, pos, exec.nativeDepth+1)
	if sig != nil {
		return Value{}, exec.errorFromSignal(sig)
	}
	return val, nil
}
