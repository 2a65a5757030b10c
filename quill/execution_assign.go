package quill

// assign evaluates the target's sub-expressions, then the value, then
// stores it.
func (exec *Execution) assign(s *AssignStmt, scope *Scope, depth int) *signal {
	switch target := s.Target.(type) {
	case *Identifier:
		val, sig := exec.evalExpr(s.Value, scope, depth)
		if sig != nil {
			return sig
		}
		if !scope.Assign(target.Name, val) {
			return exec.throwf(target.position, ErrorUndefinedVariable, "assignment to undeclared variable %s", target.Name)
		}
		return nil
	case *MemberExpr:
		obj, sig := exec.evalExpr(target.Object, scope, depth)
		if sig != nil {
			return sig
		}
		val, sig := exec.evalExpr(s.Value, scope, depth)
		if sig != nil {
			return sig
		}
		if err := obj.SetField(target.Property, val); err != nil {
			return exec.throwError(target.position, err)
		}
		return nil
	case *IndexExpr:
		obj, sig := exec.evalExpr(target.Object, scope, depth)
		if sig != nil {
			return sig
		}
		idx, sig := exec.evalExpr(target.Index, scope, depth)
		if sig != nil {
			return sig
		}
		val, sig := exec.evalExpr(s.Value, scope, depth)
		if sig != nil {
			return sig
		}
		if err := setIndex(obj, idx, val); err != nil {
			return exec.throwError(target.position, err)
		}
		return nil
	default:
		return exec.throwf(s.position, ErrorInvalidAssignmentTarget, "cannot assign to %s", describeTarget(s.Target))
	}
}

func setIndex(obj, idx, val Value) error {
	switch obj.Kind() {
	case KindList:
		if idx.Kind() != KindInt {
			return faultf(ErrorType, "list index must be int, got %s", idx.Kind())
		}
		return obj.List().SetIndex(idx.Int(), val)
	case KindObject, KindHost:
		if idx.Kind() != KindString {
			return faultf(ErrorType, "%s key must be string, got %s", obj.Kind(), idx.Kind())
		}
		return obj.SetField(idx.data.(string), val)
	default:
		return faultf(ErrorType, "cannot assign by index into %s", obj.Kind())
	}
}

func describeTarget(expr Expression) string {
	switch expr.(type) {
	case *Literal:
		return "a literal"
	case *CallExpr:
		return "a call result"
	case *BinaryExpr, *UnaryExpr:
		return "an operator result"
	case *FunctionLiteral:
		return "a function literal"
	case *ListLiteral, *ObjectLiteral:
		return "a collection literal"
	default:
		return "expression"
	}
}
