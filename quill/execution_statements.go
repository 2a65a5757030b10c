package quill

// execStmt runs one statement at the given evaluation depth.
func (exec *Execution) execStmt(stmt Statement, scope *Scope, depth int) *signal {
	if exec.guard.exhausted(depth) {
		return exec.guard.resume(func(fresh int) outcome {
			return outcome{sig: exec.execStmt(stmt, scope, fresh)}
		}).sig
	}
	if sig := exec.step(); sig != nil {
		return sig
	}
	depth++

	switch s := stmt.(type) {
	case *ExprStmt:
		_, sig := exec.evalExpr(s.Expr, scope, depth)
		return sig
	case *VarStmt:
		val := Undefined()
		if s.Value != nil {
			v, sig := exec.evalExpr(s.Value, scope, depth)
			if sig != nil {
				return sig
			}
			val = v
		}
		scope.Declare(s.Name, val)
		return nil
	case *AssignStmt:
		return exec.assign(s, scope, depth)
	case *BlockStmt:
		return exec.execBlock(s, scope, depth)
	case *IfStmt:
		return exec.execIf(s, scope, depth)
	case *WhileStmt:
		return exec.execWhile(s, scope, depth)
	case *ForStmt:
		return exec.execFor(s, scope, depth)
	case *BreakStmt:
		return &signal{kind: sigBreak, pos: s.position}
	case *ContinueStmt:
		return &signal{kind: sigContinue, pos: s.position}
	case *ReturnStmt:
		val := Undefined()
		if s.Value != nil {
			v, sig := exec.evalExpr(s.Value, scope, depth)
			if sig != nil {
				return sig
			}
			val = v
		}
		return &signal{kind: sigReturn, value: val, pos: s.position}
	case *ThrowStmt:
		val, sig := exec.evalExpr(s.Value, scope, depth)
		if sig != nil {
			return sig
		}
		return exec.throwValue(s.position, val)
	case *TryStmt:
		return exec.execTry(s, scope, depth)
	default:
		return exec.throwf(stmt.Pos(), ErrorType, "unsupported statement %T", stmt)
	}
}

// execBlock runs b in a fresh child of scope.
func (exec *Execution) execBlock(b *BlockStmt, scope *Scope, depth int) *signal {
	return exec.execStatements(b.Statements, NewScope(scope), depth)
}

func (exec *Execution) execStatements(stmts []Statement, scope *Scope, depth int) *signal {
	for _, stmt := range stmts {
		if sig := exec.execStmt(stmt, scope, depth); sig != nil {
			return sig
		}
	}
	return nil
}
