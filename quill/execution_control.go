package quill

// loopControl folds an iteration's signal into the loop: break stops the
// loop normally, continue moves on, and anything else leaves the loop.
func loopControl(sig *signal) (stop bool, out *signal) {
	if sig == nil {
		return false, nil
	}
	switch sig.kind {
	case sigBreak:
		return true, nil
	case sigContinue:
		return false, nil
	default:
		return true, sig
	}
}

func (exec *Execution) condition(expr Expression, scope *Scope, depth int) (bool, *signal) {
	val, sig := exec.evalExpr(expr, scope, depth)
	if sig != nil {
		return false, sig
	}
	return val.Truthy(), nil
}

func (exec *Execution) execIf(s *IfStmt, scope *Scope, depth int) *signal {
	ok, sig := exec.condition(s.Condition, scope, depth)
	if sig != nil {
		return sig
	}
	if ok {
		return exec.execStmt(s.Then, scope, depth)
	}
	for _, clause := range s.ElseIf {
		ok, sig := exec.condition(clause.Condition, scope, depth)
		if sig != nil {
			return sig
		}
		if ok {
			return exec.execStmt(clause.Body, scope, depth)
		}
	}
	if s.Else != nil {
		return exec.execStmt(s.Else, scope, depth)
	}
	return nil
}

func (exec *Execution) execWhile(s *WhileStmt, scope *Scope, depth int) *signal {
	for {
		ok, sig := exec.condition(s.Condition, scope, depth)
		if sig != nil {
			return sig
		}
		if !ok {
			return nil
		}
		if stop, out := loopControl(exec.execStmt(s.Body, scope, depth)); stop {
			return out
		}
	}
}

// execFor runs the three-clause loop. The init clause binds into a single
// loop scope shared by every iteration; the body block still gets a fresh
// scope each time round.
func (exec *Execution) execFor(s *ForStmt, scope *Scope, depth int) *signal {
	loopScope := NewScope(scope)
	if s.Init != nil {
		if sig := exec.execStmt(s.Init, loopScope, depth); sig != nil {
			return sig
		}
	}
	for {
		if s.Condition != nil {
			ok, sig := exec.condition(s.Condition, loopScope, depth)
			if sig != nil {
				return sig
			}
			if !ok {
				return nil
			}
		}
		if stop, out := loopControl(exec.execStmt(s.Body, loopScope, depth)); stop {
			return out
		}
		if s.Update != nil {
			if sig := exec.execStmt(s.Update, loopScope, depth); sig != nil {
				return sig
			}
		}
	}
}

// execTry runs the protected block, hands a throw to the catch block, and
// always runs finally on the way out unless the run is aborting. A signal
// raised by finally replaces whatever was pending.
func (exec *Execution) execTry(s *TryStmt, scope *Scope, depth int) *signal {
	sig := exec.execBlock(s.Body, scope, depth)
	if sig != nil && sig.kind == sigThrow && s.Catch != nil {
		catchScope := NewScope(scope)
		catchScope.Declare(s.CatchName, sig.value)
		sig = exec.execStatements(s.Catch.Statements, catchScope, depth)
	}
	if sig != nil && sig.kind == sigAbort {
		return sig
	}
	if s.Finally != nil {
		if final := exec.execBlock(s.Finally, scope, depth); final != nil {
			return final
		}
	}
	return sig
}
